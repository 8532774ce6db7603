package sheets

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	urlIDPattern  = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{20,}$`)
)

// ExtractSheetID accepts a spreadsheet reference in any of its usual shapes:
// a full edit URL, a sharing URL, or the bare document ID, and returns the ID.
func ExtractSheetID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty spreadsheet reference")
	}
	if m := urlIDPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if strings.Contains(ref, "/") || strings.Contains(ref, "?") {
		return "", fmt.Errorf("unrecognized spreadsheet URL: %s", ref)
	}
	if !bareIDPattern.MatchString(ref) {
		return "", fmt.Errorf("value does not look like a spreadsheet ID: %s", ref)
	}
	return ref, nil
}
