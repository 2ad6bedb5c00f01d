package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"articleforge/internal/domain"
)

type fakeScraper struct {
	failFor map[string]bool
}

func (f *fakeScraper) Scrape(_ context.Context, pageURL string) (domain.ScrapedDocument, error) {
	if f.failFor[pageURL] {
		return domain.ScrapedDocument{}, errors.New("boom")
	}
	return domain.ScrapedDocument{
		URL:     pageURL,
		Title:   "Body of " + pageURL,
		Content: "content for " + pageURL,
	}, nil
}

func listingEntry(title, href, date string) string {
	var b strings.Builder
	b.WriteString(`<article>`)
	b.WriteString(fmt.Sprintf(`<h2><a href=%q>%s</a></h2>`, href, title))
	if date != "" {
		b.WriteString(fmt.Sprintf(`<time datetime=%q>%s</time>`, date, date))
	}
	b.WriteString(`<span class="author">Jo Writer</span>`)
	b.WriteString(`<p>A short teaser.</p>`)
	b.WriteString(`<img src="https://cdn.example.org/cover.jpg">`)
	b.WriteString(`</article>`)
	return b.String()
}

func TestBuildPageURL(t *testing.T) {
	t.Parallel()

	base := "https://blog.example.org/posts/"
	if got := buildPageURL(base, 1); got != base {
		t.Fatalf("page 1 should be the base url, got %s", got)
	}
	if got := buildPageURL(base, 3); got != base+"page/3/" {
		t.Fatalf("unexpected page url: %s", got)
	}
	if got := buildPageURL("https://blog.example.org/posts", 2); got != "https://blog.example.org/posts/page/2/" {
		t.Fatalf("missing trailing slash not handled: %s", got)
	}
}

func TestParseListing(t *testing.T) {
	t.Parallel()

	html := `<html><body>` +
		listingEntry("Hello World", "/posts/hello-world/", "2023-04-05T10:00:00Z") +
		`<article><h2><a href="/posts/no-title/"></a></h2></article>` +
		`<article><h2><a>No Link Here</a></h2></article>` +
		`</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	metas := parseListing(doc, "https://blog.example.org/posts/")
	if len(metas) != 1 {
		t.Fatalf("expected 1 valid entry, got %d", len(metas))
	}

	meta := metas[0]
	if meta.Title != "Hello World" {
		t.Fatalf("unexpected title: %s", meta.Title)
	}
	if meta.URL != "https://blog.example.org/posts/hello-world/" {
		t.Fatalf("relative link not resolved: %s", meta.URL)
	}
	if meta.Author != "Jo Writer" {
		t.Fatalf("unexpected author: %s", meta.Author)
	}
	if meta.Summary != "A short teaser." {
		t.Fatalf("unexpected summary: %s", meta.Summary)
	}
	if meta.CoverImage != "https://cdn.example.org/cover.jpg" {
		t.Fatalf("unexpected cover image: %s", meta.CoverImage)
	}
	if meta.PublishedAt == nil || meta.PublishedAt.Year() != 2023 {
		t.Fatalf("unexpected published date: %v", meta.PublishedAt)
	}
}

func TestCrawlOldestStopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if strings.Contains(r.URL.Path, "page/") {
			_, _ = w.Write([]byte(`<html><body></body></html>`))
			return
		}
		html := `<html><body>` +
			listingEntry("Newest", "/posts/newest/", "2024-03-01T00:00:00Z") +
			listingEntry("Middle", "/posts/middle/", "2023-06-01T00:00:00Z") +
			listingEntry("Oldest", "/posts/oldest/", "2022-01-01T00:00:00Z") +
			`</body></html>`
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	c := NewBlogCrawler(server.Client(), &fakeScraper{}, server.URL+"/", 20, nil)
	payloads, err := c.CrawlOldest(context.Background(), 3)
	if err != nil {
		t.Fatalf("CrawlOldest error: %v", err)
	}

	if len(requested) != 2 {
		t.Fatalf("expected 2 listing fetches (page 1 + empty page 2), got %d", len(requested))
	}
	if len(payloads) != 3 {
		t.Fatalf("expected 3 payloads, got %d", len(payloads))
	}
	if payloads[0].Slug != "oldest" || payloads[1].Slug != "middle" || payloads[2].Slug != "newest" {
		t.Fatalf("payloads not sorted oldest first: %+v", payloads)
	}
}

func TestCrawlOldestUndatedSortLast(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "page/") {
			_, _ = w.Write([]byte(`<html><body></body></html>`))
			return
		}
		html := `<html><body>` +
			listingEntry("Undated", "/posts/undated/", "") +
			listingEntry("Dated", "/posts/dated/", "2024-01-01T00:00:00Z") +
			`</body></html>`
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	c := NewBlogCrawler(server.Client(), &fakeScraper{}, server.URL+"/", 20, nil)
	payloads, err := c.CrawlOldest(context.Background(), 2)
	if err != nil {
		t.Fatalf("CrawlOldest error: %v", err)
	}

	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}
	if payloads[0].Slug != "dated" {
		t.Fatalf("dated entry should sort before undated, got %s first", payloads[0].Slug)
	}
	if payloads[1].Slug != "undated" {
		t.Fatalf("undated entry should sort last, got %s", payloads[1].Slug)
	}
}

func TestCrawlOldestDeduplicatesBySlug(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "page/") {
			_, _ = w.Write([]byte(`<html><body></body></html>`))
			return
		}
		html := `<html><body>` +
			listingEntry("First Version", "/posts/duplicate/", "2022-01-01T00:00:00Z") +
			listingEntry("Second Version", "/archive/duplicate/", "2022-02-01T00:00:00Z") +
			`</body></html>`
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	c := NewBlogCrawler(server.Client(), &fakeScraper{}, server.URL+"/", 20, nil)
	payloads, err := c.CrawlOldest(context.Background(), 5)
	if err != nil {
		t.Fatalf("CrawlOldest error: %v", err)
	}

	if len(payloads) != 1 {
		t.Fatalf("expected 1 deduplicated payload, got %d", len(payloads))
	}
	if payloads[0].Title != "Second Version" {
		t.Fatalf("last entry for a slug should win, got %s", payloads[0].Title)
	}
}

func TestCrawlOldestDropsFailedBodies(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "page/") {
			_, _ = w.Write([]byte(`<html><body></body></html>`))
			return
		}
		html := `<html><body>` +
			listingEntry("Good", "/posts/good/", "2022-01-01T00:00:00Z") +
			listingEntry("Broken", "/posts/broken/", "2022-02-01T00:00:00Z") +
			`</body></html>`
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	scraper := &fakeScraper{failFor: map[string]bool{server.URL + "/posts/broken/": true}}
	c := NewBlogCrawler(server.Client(), scraper, server.URL+"/", 20, nil)
	payloads, err := c.CrawlOldest(context.Background(), 5)
	if err != nil {
		t.Fatalf("CrawlOldest error: %v", err)
	}

	if len(payloads) != 1 {
		t.Fatalf("expected failing entry to be dropped, got %d payloads", len(payloads))
	}
	if payloads[0].Slug != "good" {
		t.Fatalf("unexpected surviving slug: %s", payloads[0].Slug)
	}
}

func TestCrawlOldestFirstPageUnreachableIsFatal(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewBlogCrawler(server.Client(), &fakeScraper{}, server.URL+"/", 20, nil)
	if _, err := c.CrawlOldest(context.Background(), 5); err == nil {
		t.Fatal("expected error when the first listing page is unreachable")
	}
}
