// Package tagext extracts named sections from model responses marked up with
// lightweight XML-like tags. The matching is deliberately regex-based and
// permissive: model output is rarely well-formed XML, and all we need is the
// first matching open/close pair for each tag of interest.
package tagext

import (
	"regexp"
	"strings"
	"sync"

	"promptsheet/pkg/core/table"
)

var patternCache = struct {
	sync.RWMutex
	m map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

func tagPattern(tag string) *regexp.Regexp {
	patternCache.RLock()
	re, ok := patternCache.m[tag]
	patternCache.RUnlock()
	if ok {
		return re
	}
	re = regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(tag) + `>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
	patternCache.Lock()
	patternCache.m[tag] = re
	patternCache.Unlock()
	return re
}

// ParseTags extracts the trimmed inner text of the first case-insensitive,
// non-greedy match for each tag. Absent tags map to the empty string; this
// never fails.
func ParseTags(text string, tags []string) map[string]string {
	extracted := make(map[string]string, len(tags))
	for _, tag := range tags {
		if m := tagPattern(tag).FindStringSubmatch(text); m != nil {
			extracted[tag] = strings.TrimSpace(m[1])
		} else {
			extracted[tag] = ""
		}
	}
	return extracted
}

// ValidationResult reports which required tags are missing from a response.
type ValidationResult struct {
	IsValid     bool
	MissingTags []string
	RawText     string
}

// Validate checks that every required tag has at least one open/close pair
// in the text.
func Validate(text string, requiredTags []string) ValidationResult {
	var missing []string
	for _, tag := range requiredTags {
		if !tagPattern(tag).MatchString(text) {
			missing = append(missing, tag)
		}
	}
	return ValidationResult{IsValid: len(missing) == 0, MissingTags: missing, RawText: text}
}

// ExtractTable derives a same-shaped table for one tag. A column is
// tag-bearing when ANY of its cells contains a non-empty match; tag-bearing
// columns are fully replaced with the extracted content (empty string where
// the tag is absent in a particular cell) while all other columns pass
// through unchanged. Deciding per column, not per cell, is what separates
// analysis columns from plain data columns without extra schema metadata.
func ExtractTable(t *table.Table, tag string) *table.Table {
	out := t.Clone()
	re := tagPattern(tag)
	for _, col := range t.Columns() {
		bearing := false
		for row := 0; row < t.RowCount(); row++ {
			if m := re.FindStringSubmatch(t.Value(row, col)); m != nil && strings.TrimSpace(m[1]) != "" {
				bearing = true
				break
			}
		}
		if !bearing {
			continue
		}
		for row := 0; row < t.RowCount(); row++ {
			if m := re.FindStringSubmatch(t.Value(row, col)); m != nil {
				out.SetValue(row, col, strings.TrimSpace(m[1]))
			} else {
				out.SetValue(row, col, "")
			}
		}
	}
	return out
}

var (
	leadingFencePattern  = regexp.MustCompile("^```[a-zA-Z]*\n")
	trailingFencePattern = regexp.MustCompile("\n```$")
)

// FallbackAnswer produces a best-effort single "answer" entry when no tags
// were found at all: the trimmed text with one leading and one trailing
// code-fence marker stripped if present.
func FallbackAnswer(text string) map[string]string {
	cleaned := strings.TrimSpace(text)
	cleaned = leadingFencePattern.ReplaceAllString(cleaned, "")
	cleaned = trailingFencePattern.ReplaceAllString(cleaned, "")
	return map[string]string{"answer": cleaned}
}

// MergeHistory appends the latest extraction values onto the per-tag history
// lists, creating lists as needed. When maxHistory > 0 each list is truncated
// to keep only the most recent entries after appending. The accumulator is
// mutated and returned for convenience.
func MergeHistory(existing map[string][]string, latest map[string]string, maxHistory int) map[string][]string {
	for tag, content := range latest {
		history := append(existing[tag], content)
		if maxHistory > 0 && len(history) > maxHistory {
			history = history[len(history)-maxHistory:]
		}
		existing[tag] = history
	}
	return existing
}
