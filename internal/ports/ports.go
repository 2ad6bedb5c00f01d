package ports

import (
	"context"

	"articleforge/internal/domain"
)

// ArticleRepository persists articles and their augmentation state.
type ArticleRepository interface {
	List(ctx context.Context) ([]domain.Article, error)
	Get(ctx context.Context, id string) (domain.Article, error)
	Create(ctx context.Context, payload domain.CreateArticle) (domain.Article, error)
	Update(ctx context.Context, id string, payload domain.UpdateArticle) (domain.Article, error)
	Delete(ctx context.Context, id string) error

	// UpsertBySlug creates or refreshes an article from a crawl payload.
	// It never touches updatedContent, references, or aiVersion.
	UpsertBySlug(ctx context.Context, payload domain.CreateArticle) (domain.Article, error)

	// ApplyAugmentation atomically sets the rewritten content and
	// references and increments the AI version counter.
	ApplyAugmentation(ctx context.Context, id string, updatedContent string, refs []domain.ArticleReference) (domain.Article, error)
}

// SearchResult is one candidate returned by a search provider.
type SearchResult struct {
	Title       string
	Link        string
	Snippet     string
	DisplayLink string
}

// SearchProvider finds reference candidates for a query, excluding any
// result hosted on excludeHost.
type SearchProvider interface {
	Search(ctx context.Context, query, excludeHost string, count int) ([]SearchResult, error)
}

// PageScraper fetches a page and extracts its title and main text.
type PageScraper interface {
	Scrape(ctx context.Context, pageURL string) (domain.ScrapedDocument, error)
}

// Rewriter produces the AI-rewritten article body from a composed prompt.
type Rewriter interface {
	Rewrite(ctx context.Context, prompt string) (string, error)
}

// ArticleSource produces ingestible article payloads from an external site.
type ArticleSource interface {
	CrawlOldest(ctx context.Context, limit int) ([]domain.CreateArticle, error)
}
