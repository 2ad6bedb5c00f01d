package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"articleforge/internal/domain"
	"articleforge/internal/ports"
)

type memoryRepo struct {
	articles map[string]domain.Article
	nextID   int
}

var _ ports.ArticleRepository = (*memoryRepo)(nil)

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{articles: map[string]domain.Article{}}
}

func (m *memoryRepo) List(context.Context) ([]domain.Article, error) {
	out := make([]domain.Article, 0, len(m.articles))
	for _, a := range m.articles {
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (domain.Article, error) {
	article, ok := m.articles[id]
	if !ok {
		return domain.Article{}, domain.ErrNotFound
	}
	return article, nil
}

func (m *memoryRepo) Create(_ context.Context, payload domain.CreateArticle) (domain.Article, error) {
	for _, a := range m.articles {
		if a.Slug == payload.Slug {
			return domain.Article{}, domain.ErrSlugConflict
		}
	}
	m.nextID++
	article := domain.Article{
		ID:              fmt.Sprintf("id-%d", m.nextID),
		Title:           payload.Title,
		Slug:            payload.Slug,
		Author:          payload.Author,
		SourceURL:       payload.SourceURL,
		PublishedAt:     payload.PublishedAt,
		Summary:         payload.Summary,
		CoverImage:      payload.CoverImage,
		OriginalContent: payload.OriginalContent,
	}
	m.articles[article.ID] = article
	return article, nil
}

func (m *memoryRepo) Update(ctx context.Context, id string, payload domain.UpdateArticle) (domain.Article, error) {
	article, err := m.Get(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}
	if payload.Title != nil {
		article.Title = *payload.Title
	}
	if payload.OriginalContent != nil {
		article.OriginalContent = *payload.OriginalContent
	}
	m.articles[id] = article
	return article, nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.articles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.articles, id)
	return nil
}

func (m *memoryRepo) UpsertBySlug(ctx context.Context, payload domain.CreateArticle) (domain.Article, error) {
	for id, a := range m.articles {
		if a.Slug == payload.Slug {
			a.Title = payload.Title
			a.OriginalContent = payload.OriginalContent
			m.articles[id] = a
			return a, nil
		}
	}
	return m.Create(ctx, payload)
}

func (m *memoryRepo) ApplyAugmentation(ctx context.Context, id, updatedContent string, refs []domain.ArticleReference) (domain.Article, error) {
	article, err := m.Get(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}
	article.UpdatedContent = updatedContent
	article.References = refs
	article.AIVersion++
	m.articles[id] = article
	return article, nil
}

func newTestServer() (*httptest.Server, *memoryRepo) {
	repo := newMemoryRepo()
	server := NewServer(repo, nil)
	return httptest.NewServer(server.Handler()), repo
}

func decodeData(t *testing.T, resp *http.Response) articleResponse {
	t.Helper()
	var body struct {
		Data articleResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body.Data
}

func createFixture(t *testing.T, baseURL string) articleResponse {
	t.Helper()
	payload := `{"title":"T","slug":"t-slug","sourceUrl":"https://o.example.org/t","originalContent":"body"}`
	resp, err := http.Post(baseURL+"/api/articles", "application/json", bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	return decodeData(t, resp)
}

func TestCreateAndGetArticle(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer()
	defer ts.Close()

	created := createFixture(t, ts.URL)
	if created.Slug != "t-slug" {
		t.Fatalf("unexpected slug: %s", created.Slug)
	}

	resp, err := http.Get(ts.URL + "/api/articles/" + created.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	fetched := decodeData(t, resp)
	if fetched.Title != "T" || fetched.AIVersion != 0 {
		t.Fatalf("unexpected article: %+v", fetched)
	}
	if fetched.UpdatedContent != nil {
		t.Fatal("updatedContent must be null before augmentation")
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/articles", "application/json",
		bytes.NewBufferString(`{"title":"only title"}`))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateSlugConflict(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer()
	defer ts.Close()

	createFixture(t, ts.URL)
	payload := `{"title":"T2","slug":"t-slug","sourceUrl":"https://o.example.org/t2","originalContent":"body2"}`
	resp, err := http.Post(ts.URL+"/api/articles", "application/json", bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestGetMissingArticle(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/articles/nope")
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteArticle(t *testing.T) {
	t.Parallel()

	ts, repo := newTestServer()
	defer ts.Close()

	created := createFixture(t, ts.URL)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/articles/"+created.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if len(repo.articles) != 0 {
		t.Fatal("article not removed")
	}
}

func TestAIUpdate(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer()
	defer ts.Close()

	created := createFixture(t, ts.URL)

	payload := `{"updatedContent":"rewritten","references":[{"title":"R1","url":"https://r1.example.com"},{"title":"R2","url":"https://r2.example.com"}]}`
	resp, err := http.Post(ts.URL+"/api/articles/"+created.ID+"/ai-update", "application/json",
		bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("ai-update request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	updated := decodeData(t, resp)
	if updated.AIVersion != 1 {
		t.Fatalf("expected aiVersion 1, got %d", updated.AIVersion)
	}
	if updated.UpdatedContent == nil || *updated.UpdatedContent != "rewritten" {
		t.Fatalf("unexpected updated content: %v", updated.UpdatedContent)
	}
	if len(updated.References) != 2 {
		t.Fatalf("expected 2 references, got %d", len(updated.References))
	}
}

func TestAIUpdateValidation(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer()
	defer ts.Close()

	created := createFixture(t, ts.URL)

	resp, err := http.Post(ts.URL+"/api/articles/"+created.ID+"/ai-update", "application/json",
		bytes.NewBufferString(`{"updatedContent":"x","references":[]}`))
	if err != nil {
		t.Fatalf("ai-update request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
