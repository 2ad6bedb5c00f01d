package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"articleforge/internal/domain"
	"articleforge/internal/ports"
)

// BlogCrawler walks the blog listing pages and produces ingestible article
// payloads, oldest first, deduplicated by slug.
type BlogCrawler struct {
	client   *http.Client
	scraper  ports.PageScraper
	baseURL  string
	maxPages int
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*BlogCrawler)(nil)

// NewBlogCrawler wires an HTTP client for listing pages and a scraper for
// article bodies. maxPages defaults to 20.
func NewBlogCrawler(client *http.Client, scraper ports.PageScraper, baseURL string, maxPages int, logger *slog.Logger) *BlogCrawler {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxPages <= 0 {
		maxPages = 20
	}
	return &BlogCrawler{
		client:   client,
		scraper:  scraper,
		baseURL:  baseURL,
		maxPages: maxPages,
		logger:   logger,
	}
}

// CrawlOldest collects listing metadata page by page, keeps the oldest
// limit entries, fetches each article body, and returns deduplicated
// creation payloads. Per-item fetch failures are logged and dropped; only
// an unreachable first listing page fails the whole crawl.
func (c *BlogCrawler) CrawlOldest(ctx context.Context, limit int) ([]domain.CreateArticle, error) {
	var metas []domain.ArticleMeta

	for page := 1; page <= c.maxPages; page++ {
		pageURL := buildPageURL(c.baseURL, page)

		doc, err := c.fetchDocument(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetch listing page 1: %w", err)
			}
			c.warn("listing page fetch failed, stopping pagination", "url", pageURL, "error", err)
			break
		}

		pageMetas := parseListing(doc, pageURL)
		c.debug("listing page parsed", "url", pageURL, "entries", len(pageMetas))
		if len(pageMetas) == 0 {
			break
		}
		metas = append(metas, pageMetas...)
	}

	if len(metas) == 0 {
		return nil, nil
	}

	// Undated entries sort after every dated one so confirmed older
	// content is preferred; stable sort keeps their discovery order.
	sort.SliceStable(metas, func(i, j int) bool {
		a, b := metas[i].PublishedAt, metas[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})

	if limit > 0 && len(metas) > limit {
		metas = metas[:limit]
	}

	order := make([]string, 0, len(metas))
	bySlug := make(map[string]domain.CreateArticle, len(metas))

	for _, meta := range metas {
		document, err := c.scraper.Scrape(ctx, meta.URL)
		if err != nil {
			c.warn("article body fetch failed, dropping entry", "url", meta.URL, "error", err)
			continue
		}

		slug := slugForURL(meta.URL, meta.Title)
		if _, exists := bySlug[slug]; !exists {
			order = append(order, slug)
		}
		bySlug[slug] = domain.CreateArticle{
			Title:           meta.Title,
			Slug:            slug,
			Author:          meta.Author,
			SourceURL:       meta.URL,
			PublishedAt:     meta.PublishedAt,
			Summary:         meta.Summary,
			CoverImage:      meta.CoverImage,
			OriginalContent: document.Content,
		}
	}

	payloads := make([]domain.CreateArticle, 0, len(order))
	for _, slug := range order {
		payloads = append(payloads, bySlug[slug])
	}
	return payloads, nil
}

func (c *BlogCrawler) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "articleforge/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// parseListing extracts one ArticleMeta per listing entry that carries both
// a title and a resolvable link; entries missing either are dropped.
func parseListing(doc *goquery.Document, pageURL string) []domain.ArticleMeta {
	base, _ := url.Parse(pageURL)
	var metas []domain.ArticleMeta

	doc.Find("article").Each(func(_ int, entry *goquery.Selection) {
		anchor := entry.Find("h2 a, h3 a, .entry-title a").First()
		title := strings.TrimSpace(anchor.Text())
		href, _ := anchor.Attr("href")
		link := resolveLink(base, href)
		if title == "" || link == "" {
			return
		}

		author := firstText(entry, "[rel='author']")
		if author == "" {
			author = firstText(entry, ".author a")
		}
		if author == "" {
			author = firstText(entry, ".author")
		}

		summary := firstText(entry, ".entry-summary p")
		if summary == "" {
			summary = firstText(entry, "p")
		}

		cover, _ := entry.Find("img").First().Attr("src")

		metas = append(metas, domain.ArticleMeta{
			Title:       title,
			URL:         link,
			Author:      author,
			Summary:     summary,
			CoverImage:  cover,
			PublishedAt: parsePublished(entry),
		})
	})

	return metas
}

func parsePublished(entry *goquery.Selection) *time.Time {
	candidates := []string{}
	if datetime, ok := entry.Find("time").First().Attr("datetime"); ok {
		candidates = append(candidates, datetime)
	}
	candidates = append(candidates,
		firstText(entry, "time"),
		firstText(entry, ".posted-on"),
		firstText(entry, ".entry-meta"),
	)

	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if parsed, err := dateparse.ParseAny(raw); err == nil {
			return &parsed
		}
	}
	return nil
}

func firstText(entry *goquery.Selection, selector string) string {
	return strings.TrimSpace(entry.Find(selector).First().Text())
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Host == "" {
		return ""
	}
	return parsed.String()
}

func (c *BlogCrawler) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *BlogCrawler) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

// buildPageURL follows the blog's /page/{n}/ pagination pattern; page 1 is
// the listing root itself.
func buildPageURL(base string, page int) string {
	if page <= 1 {
		return base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%spage/%d/", base, page)
}
