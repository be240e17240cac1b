package template

import (
	"reflect"
	"testing"
)

func TestExtractVariables(t *testing.T) {
	vars := ExtractVariables(
		"Hello {name}, your demo is on {demo_date}.",
		"Subject for {name} at {company}",
	)
	want := []string{"company", "demo_date", "name"}
	if !reflect.DeepEqual(vars, want) {
		t.Errorf("ExtractVariables() = %v, want %v", vars, want)
	}
}

func TestExtractVariables_None(t *testing.T) {
	vars := ExtractVariables("plain text, no placeholders, {not-a-var}")
	if len(vars) != 0 {
		t.Errorf("ExtractVariables() = %v, want empty", vars)
	}
}

func TestSubstitute(t *testing.T) {
	out := Substitute("Hi {name}, see you on {date}. Regards, {name}.", map[string]string{
		"name": "Ada",
		"date": "Friday",
	})
	want := "Hi Ada, see you on Friday. Regards, Ada."
	if out != want {
		t.Errorf("Substitute() = %q, want %q", out, want)
	}
}

func TestSubstitute_MissingKeptIntact(t *testing.T) {
	out := Substitute("Hi {name}, code {code}", map[string]string{"name": "Ada"})
	if out != "Hi Ada, code {code}" {
		t.Errorf("Substitute() = %q", out)
	}
}

func TestMissingVariables(t *testing.T) {
	missing := MissingVariables("Hi {name}, code {code}", map[string]string{"name": "Ada"})
	if !reflect.DeepEqual(missing, []string{"code"}) {
		t.Errorf("MissingVariables() = %v", missing)
	}
}

func TestPreview(t *testing.T) {
	out := Preview("Hello {first_name}!")
	if out != "Hello [first name]!" {
		t.Errorf("Preview() = %q", out)
	}
}
