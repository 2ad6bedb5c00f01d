package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"articleforge/internal/domain"
	"articleforge/internal/ports"
)

const userAgent = "articleforge/1.0"

// Extractor fetches pages and reduces them to title plus main body text.
// Extraction is a pure transform and never fails; fetch errors propagate
// to the caller untouched, with no retries at this layer.
type Extractor struct {
	client     *http.Client
	strategies []Strategy
	logger     *slog.Logger
}

var _ ports.PageScraper = (*Extractor)(nil)

// NewExtractor wires an HTTP client and the ordered strategy chain.
// A nil client gets a 20-second timeout default; nil strategies get the
// default chain.
func NewExtractor(client *http.Client, strategies []Strategy, logger *slog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if strategies == nil {
		strategies = DefaultStrategies()
	}
	return &Extractor{client: client, strategies: strategies, logger: logger}
}

// Scrape fetches pageURL and extracts its document.
func (e *Extractor) Scrape(ctx context.Context, pageURL string) (domain.ScrapedDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.ScrapedDocument{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.ScrapedDocument{}, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ScrapedDocument{}, fmt.Errorf("page %s returned %s", pageURL, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ScrapedDocument{}, fmt.Errorf("read page body: %w", err)
	}

	return e.Extract(raw, pageURL), nil
}

// Extract reduces raw HTML to a ScrapedDocument. It tries each strategy in
// order and keeps the first non-empty body text; the title falls back to
// the source URL when the document carries none.
func (e *Extractor) Extract(raw []byte, pageURL string) domain.ScrapedDocument {
	result := domain.ScrapedDocument{URL: pageURL, Title: pageURL}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return result
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		result.Title = title
	}

	parsedURL, _ := url.Parse(pageURL)
	page := Page{URL: parsedURL, Doc: doc, Raw: raw}

	for _, strategy := range e.strategies {
		if text := strategy.Extract(page); text != "" {
			result.Content = text
			e.debug("content extracted", "url", pageURL, "strategy", strategy.Name(), "chars", len(text))
			return result
		}
	}

	return result
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
