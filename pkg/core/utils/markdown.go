package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

// CleanMarkdown trims an answer and strips one outer code fence when the
// whole payload is wrapped in one, leaving plain markdown for rendering.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") {
		return cleaned
	}

	inner := strings.TrimPrefix(cleaned, "```")
	inner = strings.TrimSuffix(inner, "```")
	// Drop the fence's language hint, if any.
	if idx := strings.IndexByte(inner, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(inner[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, " \t") {
			inner = inner[idx+1:]
		}
	}
	return strings.TrimSpace(inner)
}

// RenderMarkdown converts cleaned markdown to HTML for the extract view.
func RenderMarkdown(input string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(CleanMarkdown(input)), &buf); err != nil {
		return "", fmt.Errorf("markdown render failed: %w", err)
	}
	return buf.String(), nil
}
