package usecase

import (
	"context"
	"errors"
	"testing"

	"articleforge/internal/domain"
)

type fakeSource struct {
	payloads []domain.CreateArticle
	err      error
	gotLimit int
}

func (f *fakeSource) CrawlOldest(_ context.Context, limit int) ([]domain.CreateArticle, error) {
	f.gotLimit = limit
	return f.payloads, f.err
}

type upsertRecorder struct {
	fakeRepo
	upserted []domain.CreateArticle
}

func (u *upsertRecorder) UpsertBySlug(_ context.Context, payload domain.CreateArticle) (domain.Article, error) {
	u.upserted = append(u.upserted, payload)
	return domain.Article{Slug: payload.Slug}, nil
}

func TestIngestorRun(t *testing.T) {
	t.Parallel()

	source := &fakeSource{payloads: []domain.CreateArticle{
		{Slug: "one", Title: "One"},
		{Slug: "two", Title: "Two"},
	}}
	repo := &upsertRecorder{}

	ingestor := NewIngestor(source, repo, 5, nil)
	count, err := ingestor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 ingested, got %d", count)
	}
	if source.gotLimit != 5 {
		t.Fatalf("limit not forwarded: %d", source.gotLimit)
	}
	if len(repo.upserted) != 2 || repo.upserted[0].Slug != "one" {
		t.Fatalf("unexpected upserts: %+v", repo.upserted)
	}
}

func TestIngestorRunCrawlFailureIsFatal(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("listing unreachable")}
	ingestor := NewIngestor(source, &upsertRecorder{}, 5, nil)

	if _, err := ingestor.Run(context.Background()); err == nil {
		t.Fatal("expected crawl failure to propagate")
	}
}

func TestIngestorRunEmptyCrawl(t *testing.T) {
	t.Parallel()

	ingestor := NewIngestor(&fakeSource{}, &upsertRecorder{}, 5, nil)
	count, err := ingestor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 ingested, got %d", count)
	}
}
