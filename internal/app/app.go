package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"articleforge/internal/config"
	"articleforge/internal/infrastructure/crawler"
	"articleforge/internal/infrastructure/httpapi"
	"articleforge/internal/infrastructure/llm"
	"articleforge/internal/infrastructure/scheduler"
	"articleforge/internal/infrastructure/scrape"
	"articleforge/internal/infrastructure/search"
	"articleforge/internal/infrastructure/storage"
	"articleforge/internal/logging"
	"articleforge/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	repo   *storage.PostgresRepository
}

// New opens the article store and prepares shared dependencies.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := storage.NewPostgresRepository(db)

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		db:     db,
		repo:   repo,
	}, nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	return a.db.Close()
}

// RunServer ensures the schema and serves the CRUD API until ctx is done.
func (a *Application) RunServer(ctx context.Context) error {
	if err := a.repo.EnsureSchema(ctx); err != nil {
		return err
	}

	api := httpapi.NewServer(a.repo, a.logger.With("component", "httpapi"))
	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	a.logger.Info("server listening", "addr", a.cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// RunCrawl performs a single crawl-and-ingest pass.
func (a *Application) RunCrawl(ctx context.Context) error {
	if err := a.cfg.ValidateCrawler(); err != nil {
		return err
	}
	if err := a.repo.EnsureSchema(ctx); err != nil {
		return err
	}

	client := &http.Client{Timeout: a.cfg.Crawler.Timeout()}
	extractor := scrape.NewExtractor(client, nil, a.logger.With("component", "extractor"))
	source := crawler.NewBlogCrawler(client, extractor,
		a.cfg.Crawler.BaseURL, a.cfg.Crawler.MaxPages,
		a.logger.With("component", "crawler"))

	ingestor := usecase.NewIngestor(source, a.repo, a.cfg.Crawler.Limit,
		a.logger.With("component", "ingestor"))
	_, err := ingestor.Run(ctx)
	return err
}

// RunBot performs augmentation runs: one-shot by default, recurring when
// an interval is configured.
func (a *Application) RunBot(ctx context.Context) error {
	if err := a.cfg.ValidateBot(); err != nil {
		return err
	}

	client := &http.Client{Timeout: a.cfg.Bot.Timeout()}
	extractor := scrape.NewExtractor(client, nil, a.logger.With("component", "extractor"))
	provider := search.NewGoogleClient(a.cfg.Search.Endpoint, a.cfg.Search.APIKey,
		a.cfg.Search.EngineID, client, a.logger.With("component", "search"))
	rewriter := llm.NewOpenAIClient(a.cfg.LLM)

	augmentor := usecase.NewAugmentor(usecase.AugmentorDeps{
		Repository: a.repo,
		Search:     provider,
		Scraper:    extractor,
		Rewriter:   rewriter,
		Logger:     a.logger.With("component", "augmentor"),
	}, usecase.AugmentorOptions{
		MaxPerRun:      a.cfg.Bot.MaxPerRun,
		SearchCount:    a.cfg.Bot.SearchCount,
		ReferenceCount: a.cfg.Bot.ReferenceCount,
	})

	interval := a.cfg.Bot.Interval()
	if interval <= 0 {
		_, err := augmentor.ProcessPending(ctx)
		return err
	}

	runner := scheduler.NewInterval(interval)
	runner.Run(ctx, func(time.Time) {
		if _, err := augmentor.ProcessPending(ctx); err != nil {
			a.logger.Error("augmentation run failed", "error", err)
		}
	})
	return nil
}
