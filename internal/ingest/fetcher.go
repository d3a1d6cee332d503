package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxArticleLength caps extracted article bodies.
const maxArticleLength = 5000

// Fetcher retrieves the body text of an article page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher downloads article pages over HTTP and extracts readable text.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher builds a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Candidate containers tried in order; the first non-empty match wins.
var contentSelectors = []string{
	"article",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"main",
}

// Fetch downloads a page and extracts its main text content.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "periksa/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch article: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse article html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside").Remove()

	var text string
	for _, selector := range contentSelectors {
		text = strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			break
		}
	}
	if text == "" {
		text = strings.TrimSpace(doc.Find("body").Text())
	}

	text = collapseWhitespace(text)
	if len(text) > maxArticleLength {
		text = text[:maxArticleLength]
	}
	return text, nil
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

var _ Fetcher = (*HTTPFetcher)(nil)
