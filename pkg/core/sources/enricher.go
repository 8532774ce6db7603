// Package sources extracts cited links from model answers and enriches them
// with real page titles for the sources view.
package sources

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Citation is one cited link: the link text as the model emitted it, the
// target URL, and the page's own title when it could be fetched.
type Citation struct {
	Label     string `json:"label"`
	URL       string `json:"url"`
	PageTitle string `json:"page_title,omitempty"`
}

var markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^)\s]+)\)`)

// ParseCitations pulls every markdown link out of an answer, deduplicated by
// URL in first-appearance order.
func ParseCitations(answer string) []Citation {
	seen := make(map[string]bool)
	var citations []Citation
	for _, m := range markdownLinkPattern.FindAllStringSubmatch(answer, -1) {
		url := m[2]
		if seen[url] {
			continue
		}
		seen[url] = true
		citations = append(citations, Citation{Label: strings.TrimSpace(m[1]), URL: url})
	}
	return citations
}

// Enricher resolves cited URLs' page titles.
type Enricher struct {
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewEnricher builds an enricher with a bounded-timeout client.
func NewEnricher(logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Logger:     logger,
	}
}

// Enrich fetches each citation's page and fills PageTitle from its <title>
// element. Fetch failures leave the citation as parsed; a sources view with
// bare labels beats a failed extraction.
func (e *Enricher) Enrich(ctx context.Context, citations []Citation) []Citation {
	out := make([]Citation, len(citations))
	copy(out, citations)
	for i := range out {
		title, err := e.fetchTitle(ctx, out[i].URL)
		if err != nil {
			e.Logger.Debug("citation title fetch failed",
				zap.String("url", out[i].URL), zap.Error(err))
			continue
		}
		out[i].PageTitle = title
	}
	return out
}

func (e *Enricher) fetchTitle(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "promptsheet/1.0")

	client := e.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return "", fmt.Errorf("page has no title")
	}
	return title, nil
}
