// Package prompt provides the per-row prompt renderer and a small library
// of reusable prompt templates loadable from YAML.
package prompt

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{ name }} references. Names allow letters,
// digits, underscore, hyphen and interior spaces; whitespace inside the
// delimiters is trimmed before lookup.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_\- ]+?)\s*\}\}`)

// Render substitutes column references in a template with row values.
// Missing names substitute to the empty string; text that does not match
// the placeholder pattern is left verbatim. Substitution is a single pass:
// substituted output is never re-scanned.
func Render(template string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		sub := placeholderPattern.FindStringSubmatch(match)
		if sub == nil {
			return match
		}
		return values[strings.TrimSpace(sub[1])]
	})
}

// References returns the distinct placeholder names used by a template, in
// first-appearance order. The editor uses this to flag references to columns
// that do not exist in the data table.
func References(template string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, sub := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		name := strings.TrimSpace(sub[1])
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
