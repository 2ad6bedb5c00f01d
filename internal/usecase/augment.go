package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"articleforge/internal/domain"
	"articleforge/internal/ports"
)

// AugmentorDeps wires all driven adapters into the augmentation pipeline.
type AugmentorDeps struct {
	Repository ports.ArticleRepository
	Search     ports.SearchProvider
	Scraper    ports.PageScraper
	Rewriter   ports.Rewriter
	Logger     *slog.Logger
}

// AugmentorOptions bounds one augmentation run.
type AugmentorOptions struct {
	// MaxPerRun caps how many pending articles one run processes.
	MaxPerRun int
	// SearchCount is requested from the provider; larger than
	// ReferenceCount to absorb filtering losses.
	SearchCount int
	// ReferenceCount is the exact number of independent references an
	// augmentation requires.
	ReferenceCount int
}

func (o AugmentorOptions) withDefaults() AugmentorOptions {
	if o.MaxPerRun <= 0 {
		o.MaxPerRun = 5
	}
	if o.SearchCount <= 0 {
		o.SearchCount = 6
	}
	if o.ReferenceCount <= 0 {
		o.ReferenceCount = 2
	}
	return o
}

// Augmentor runs the augmentation workflow: pick pending articles, gather
// references, rewrite, persist.
type Augmentor struct {
	repository ports.ArticleRepository
	search     ports.SearchProvider
	scraper    ports.PageScraper
	rewriter   ports.Rewriter
	logger     *slog.Logger
	opts       AugmentorOptions
}

// NewAugmentor constructs the orchestration component.
func NewAugmentor(deps AugmentorDeps, opts AugmentorOptions) *Augmentor {
	return &Augmentor{
		repository: deps.Repository,
		search:     deps.Search,
		scraper:    deps.Scraper,
		rewriter:   deps.Rewriter,
		logger:     deps.Logger,
		opts:       opts.withDefaults(),
	}
}

// ProcessPending selects not-yet-augmented articles up to the per-run cap
// and processes them one at a time. Per-article failures are logged and
// the batch moves on; the returned count is the number of articles
// actually augmented.
func (a *Augmentor) ProcessPending(ctx context.Context) (int, error) {
	articles, err := a.repository.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list articles: %w", err)
	}

	var batch []domain.Article
	for _, article := range articles {
		if article.Pending() {
			batch = append(batch, article)
		}
		if len(batch) == a.opts.MaxPerRun {
			break
		}
	}

	if len(batch) == 0 {
		a.info("no pending articles detected")
		return 0, nil
	}

	processed := 0
	for _, article := range batch {
		augmented, err := a.processArticle(ctx, article)
		if err != nil {
			a.error("failed to augment article", "article_id", article.ID, "title", article.Title, "error", err)
			continue
		}
		if augmented {
			processed++
		}
	}

	a.info("augmentation run completed", "pending", len(batch), "processed", processed)
	return processed, nil
}

// processArticle runs the full pipeline for one article. It returns
// (false, nil) when too few independent references were found, which is an
// expected outcome, not an error. Nothing is persisted unless every step
// succeeds.
func (a *Augmentor) processArticle(ctx context.Context, article domain.Article) (bool, error) {
	origin, err := url.Parse(article.SourceURL)
	if err != nil {
		return false, fmt.Errorf("parse source url: %w", err)
	}

	candidates, err := a.search.Search(ctx, article.Title, origin.Host, a.opts.SearchCount)
	if err != nil {
		return false, fmt.Errorf("search references: %w", err)
	}

	if len(candidates) < a.opts.ReferenceCount {
		a.warn("insufficient reference articles found",
			"article_id", article.ID, "title", article.Title, "found", len(candidates))
		return false, nil
	}
	picks := candidates[:a.opts.ReferenceCount]

	scraped, err := a.fetchReferences(ctx, picks)
	if err != nil {
		return false, err
	}

	promptRefs := make([]PromptReference, len(scraped))
	references := make([]domain.ArticleReference, len(scraped))
	for i, entry := range scraped {
		promptRefs[i] = PromptReference{
			Title:   entry.reference.Title,
			URL:     entry.reference.URL,
			Excerpt: entry.content,
		}
		references[i] = entry.reference
	}

	prompt := BuildRewritePrompt(article.Title, article.OriginalContent, promptRefs)

	rewritten, err := a.rewriter.Rewrite(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("rewrite: %w", err)
	}

	if _, err := a.repository.ApplyAugmentation(ctx, article.ID, rewritten, references); err != nil {
		return false, fmt.Errorf("apply augmentation: %w", err)
	}

	a.info("article augmented", "article_id", article.ID, "references", len(references))
	return true, nil
}

type scrapedReference struct {
	reference domain.ArticleReference
	content   string
}

// fetchReferences scrapes the chosen candidate pages concurrently; the
// fetches are independent and share no state until both resolve.
func (a *Augmentor) fetchReferences(ctx context.Context, picks []ports.SearchResult) ([]scrapedReference, error) {
	results := make([]scrapedReference, len(picks))
	errs := make([]error, len(picks))

	var wg sync.WaitGroup
	for i, pick := range picks {
		wg.Add(1)
		go func(i int, pick ports.SearchResult) {
			defer wg.Done()

			document, err := a.scraper.Scrape(ctx, pick.Link)
			if err != nil {
				errs[i] = fmt.Errorf("fetch reference %s: %w", pick.Link, err)
				return
			}

			var sourceDomain string
			if parsed, err := url.Parse(document.URL); err == nil {
				sourceDomain = parsed.Host
			}

			results[i] = scrapedReference{
				reference: domain.ArticleReference{
					Title:        document.Title,
					URL:          document.URL,
					Summary:      pick.Snippet,
					SourceDomain: sourceDomain,
				},
				content: document.Content,
			}
		}(i, pick)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (a *Augmentor) info(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

func (a *Augmentor) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

func (a *Augmentor) error(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Error(msg, args...)
	}
}
