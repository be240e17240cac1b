package mailer

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Email is one outbound message before assembly.
type Email struct {
	To       string
	ToName   string
	Subject  string
	TextBody string
	HTMLBody string
}

// Validate checks the fields required to assemble and deliver the message.
func (e Email) Validate() error {
	if _, err := mail.ParseAddress(e.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", e.To, err)
	}
	if e.Subject == "" {
		return fmt.Errorf("empty subject")
	}
	if e.TextBody == "" && e.HTMLBody == "" {
		return fmt.Errorf("empty body")
	}
	return nil
}

// Build assembles the RFC 5322 message. Messages with both text and HTML
// bodies become multipart/alternative with the HTML part last.
func (e Email) Build(from, fromName, heloDomain string) ([]byte, error) {
	var buf bytes.Buffer

	writeHeader := func(name, value string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", name, value)
	}

	writeHeader("From", formatAddress(from, fromName))
	writeHeader("To", formatAddress(e.To, e.ToName))
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", e.Subject))
	writeHeader("Date", time.Now().UTC().Format(time.RFC1123Z))
	writeHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.New().String(), heloDomain))
	writeHeader("MIME-Version", "1.0")

	switch {
	case e.TextBody != "" && e.HTMLBody != "":
		mw := multipart.NewWriter(&buf)
		writeHeader("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mw.Boundary()))
		buf.WriteString("\r\n")
		if err := writePart(mw, "text/plain; charset=utf-8", e.TextBody); err != nil {
			return nil, err
		}
		if err := writePart(mw, "text/html; charset=utf-8", e.HTMLBody); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
	case e.HTMLBody != "":
		writeHeader("Content-Type", "text/html; charset=utf-8")
		buf.WriteString("\r\n")
		buf.WriteString(normalizeCRLF(e.HTMLBody))
	default:
		writeHeader("Content-Type", "text/plain; charset=utf-8")
		buf.WriteString("\r\n")
		buf.WriteString(normalizeCRLF(e.TextBody))
	}

	return buf.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	hdr := map[string][]string{"Content-Type": {contentType}}
	w, err := mw.CreatePart(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(normalizeCRLF(body)))
	return err
}

func formatAddress(address, name string) string {
	if name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}

// normalizeCRLF converts bare LF line endings to CRLF.
func normalizeCRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
