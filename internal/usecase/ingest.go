package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"articleforge/internal/ports"
)

// Ingestor runs one crawl pass and upserts the results into the store.
type Ingestor struct {
	source     ports.ArticleSource
	repository ports.ArticleRepository
	limit      int
	logger     *slog.Logger
}

// NewIngestor wires the crawler and repository; limit bounds how many
// articles one run ingests.
func NewIngestor(source ports.ArticleSource, repository ports.ArticleRepository, limit int, logger *slog.Logger) *Ingestor {
	if limit <= 0 {
		limit = 5
	}
	return &Ingestor{source: source, repository: repository, limit: limit, logger: logger}
}

// Run crawls the oldest articles and upserts each payload by slug.
// Re-crawling a known article refreshes its metadata without touching its
// AI state. Persistence failures surface to the caller as-is.
func (i *Ingestor) Run(ctx context.Context) (int, error) {
	payloads, err := i.source.CrawlOldest(ctx, i.limit)
	if err != nil {
		return 0, fmt.Errorf("crawl: %w", err)
	}

	if len(payloads) == 0 {
		if i.logger != nil {
			i.logger.Warn("no articles scraped")
		}
		return 0, nil
	}

	count := 0
	for _, payload := range payloads {
		if _, err := i.repository.UpsertBySlug(ctx, payload); err != nil {
			return count, fmt.Errorf("upsert article %s: %w", payload.Slug, err)
		}
		count++
	}

	if i.logger != nil {
		i.logger.Info("crawl completed", "count", count)
	}
	return count, nil
}
