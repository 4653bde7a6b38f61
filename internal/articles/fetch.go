// Package articles handles article ingestion: fetching a page, extracting
// readable text, and admitting the result into the vector store exactly once
// per source URL.
package articles

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/TatievskiArik/Article-RAG-System/internal/store"
)

// FetchError reports that the ingestion source was unreachable or returned a
// non-OK response. It is fatal to that ingestion attempt and never retried
// automatically.
type FetchError struct {
	URL    string
	Status int // HTTP status, 0 when the request itself failed
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("articles: fetch %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("articles: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// strippedTags are removed from the document before text extraction: scripts,
// styling, imagery, and page chrome contribute nothing to article content.
const strippedTags = "script, style, img, button, nav, footer, header, aside, noscript"

// Fetcher retrieves pages and turns them into articles.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default with a 30 second
// timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch downloads rawURL and extracts a new article from it. Each call
// generates a fresh UID; dedup against existing articles happens upstream.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (store.Article, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return store.Article{}, &FetchError{URL: rawURL, Err: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return store.Article{}, &FetchError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", parsed.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return store.Article{}, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", "ArticleRAG/1.0 (Article Fetcher)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return store.Article{}, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return store.Article{}, &FetchError{URL: rawURL, Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return store.Article{}, &FetchError{URL: rawURL, Err: fmt.Errorf("parse HTML: %w", err)}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find(strippedTags).Remove()
	content := collapseLines(doc.Text())

	return store.Article{
		UID:     uuid.NewString(),
		URL:     rawURL,
		Title:   title,
		Content: content,
	}, nil
}

// collapseLines trims every line and drops blank ones, leaving one line per
// text run.
func collapseLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
