package mailer

import (
	"strings"
	"testing"

	"github.com/emersion/go-smtp"
)

func TestEmail_Build_TextOnly(t *testing.T) {
	e := Email{To: "user@example.org", Subject: "Welcome", TextBody: "Hello there.\nSecond line."}
	data, err := e.Build("hello@trinexa.ai", "Trinexa", "trinexa.ai")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	msg := string(data)

	for _, want := range []string{
		"From: \"Trinexa\" <hello@trinexa.ai>\r\n",
		"To: user@example.org\r\n",
		"Subject: Welcome\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n",
		"Hello there.\r\nSecond line.",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
	if !strings.Contains(msg, "@trinexa.ai>") {
		t.Error("Message-ID should use the sending domain")
	}
}

func TestEmail_Build_Multipart(t *testing.T) {
	e := Email{
		To:       "user@example.org",
		Subject:  "Welcome",
		TextBody: "plain version",
		HTMLBody: "<p>html version</p>",
	}
	data, err := e.Build("hello@trinexa.ai", "", "trinexa.ai")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	msg := string(data)

	if !strings.Contains(msg, "multipart/alternative") {
		t.Error("expected multipart/alternative content type")
	}
	text := strings.Index(msg, "plain version")
	html := strings.Index(msg, "<p>html version</p>")
	if text < 0 || html < 0 {
		t.Fatal("missing body parts")
	}
	if text > html {
		t.Error("HTML part must come after the text part")
	}
}

func TestEmail_Build_SubjectEncoding(t *testing.T) {
	e := Email{To: "user@example.org", Subject: "Démo réservée", TextBody: "x"}
	data, err := e.Build("hello@trinexa.ai", "", "trinexa.ai")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(string(data), "=?utf-8?q?") {
		t.Error("non-ASCII subject should be Q-encoded")
	}
}

func TestEmail_Validate(t *testing.T) {
	cases := []struct {
		name string
		e    Email
		ok   bool
	}{
		{"valid", Email{To: "a@b.org", Subject: "s", TextBody: "x"}, true},
		{"bad address", Email{To: "not-an-address", Subject: "s", TextBody: "x"}, false},
		{"no subject", Email{To: "a@b.org", TextBody: "x"}, false},
		{"no body", Email{To: "a@b.org", Subject: "s"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.e.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	perm := categorize(&smtp.SMTPError{Code: 550, Message: "no such user"}, "RCPT TO")
	if perm.Temporary {
		t.Error("5xx should be permanent")
	}
	temp := categorize(&smtp.SMTPError{Code: 451, Message: "try again"}, "DATA")
	if !temp.Temporary {
		t.Error("4xx should be temporary")
	}
	if !IsTemporary(temp) || IsTemporary(perm) {
		t.Error("IsTemporary disagrees with categorize")
	}
}
