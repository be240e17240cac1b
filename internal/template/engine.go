// Package template implements the {variable} placeholder format used by
// email and message templates. Variables are extracted from template bodies
// at save time and substituted per recipient at send time.
package template

import (
	"regexp"
	"sort"
	"strings"
)

// varPattern matches {variable_name} placeholders.
var varPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// ExtractVariables returns the distinct placeholder names found in the given
// bodies, sorted. This is the canonical derivation of a template's
// `variables` column; callers must re-run it on every content edit.
func ExtractVariables(bodies ...string) []string {
	seen := map[string]bool{}
	for _, body := range bodies {
		for _, m := range varPattern.FindAllStringSubmatch(body, -1) {
			seen[m[1]] = true
		}
	}

	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// Substitute replaces {variable} placeholders with values from data.
// Placeholders with no matching key are left intact so a missing value is
// visible in the output rather than silently blank.
func Substitute(body string, data map[string]string) string {
	return varPattern.ReplaceAllStringFunc(body, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := data[name]; ok {
			return v
		}
		return m
	})
}

// MissingVariables returns the placeholders in body that data does not
// provide a value for.
func MissingVariables(body string, data map[string]string) []string {
	missing := []string{}
	for _, v := range ExtractVariables(body) {
		if _, ok := data[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}

// Preview substitutes sample values for every placeholder, for the template
// editor's preview pane.
func Preview(body string) string {
	return varPattern.ReplaceAllStringFunc(body, func(m string) string {
		name := m[1 : len(m)-1]
		return "[" + strings.ReplaceAll(name, "_", " ") + "]"
	})
}
