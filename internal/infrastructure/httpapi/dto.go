package httpapi

import (
	"strings"
	"time"

	"articleforge/internal/domain"
)

type envelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

type articleResponse struct {
	ID              string                    `json:"id"`
	Title           string                    `json:"title"`
	Slug            string                    `json:"slug"`
	Author          *string                   `json:"author"`
	SourceURL       string                    `json:"sourceUrl"`
	PublishedAt     *time.Time                `json:"publishedAt"`
	Summary         *string                   `json:"summary"`
	CoverImage      *string                   `json:"coverImage"`
	OriginalContent string                    `json:"originalContent"`
	UpdatedContent  *string                   `json:"updatedContent"`
	References      []domain.ArticleReference `json:"references"`
	AIVersion       int                       `json:"aiVersion"`
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

func toResponse(article domain.Article) articleResponse {
	return articleResponse{
		ID:              article.ID,
		Title:           article.Title,
		Slug:            article.Slug,
		Author:          optional(article.Author),
		SourceURL:       article.SourceURL,
		PublishedAt:     article.PublishedAt,
		Summary:         optional(article.Summary),
		CoverImage:      optional(article.CoverImage),
		OriginalContent: article.OriginalContent,
		UpdatedContent:  optional(article.UpdatedContent),
		References:      article.References,
		AIVersion:       article.AIVersion,
		CreatedAt:       article.CreatedAt,
		UpdatedAt:       article.UpdatedAt,
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

type createRequest struct {
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Author          string     `json:"author"`
	SourceURL       string     `json:"sourceUrl"`
	PublishedAt     *time.Time `json:"publishedAt"`
	Summary         string     `json:"summary"`
	CoverImage      string     `json:"coverImage"`
	OriginalContent string     `json:"originalContent"`
}

func (r createRequest) validate() string {
	var missing []string
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(r.Slug) == "" {
		missing = append(missing, "slug")
	}
	if strings.TrimSpace(r.SourceURL) == "" {
		missing = append(missing, "sourceUrl")
	}
	if strings.TrimSpace(r.OriginalContent) == "" {
		missing = append(missing, "originalContent")
	}
	if len(missing) == 0 {
		return ""
	}
	return "missing required fields: " + strings.Join(missing, ", ")
}

func (r createRequest) toPayload() domain.CreateArticle {
	return domain.CreateArticle{
		Title:           r.Title,
		Slug:            r.Slug,
		Author:          r.Author,
		SourceURL:       r.SourceURL,
		PublishedAt:     r.PublishedAt,
		Summary:         r.Summary,
		CoverImage:      r.CoverImage,
		OriginalContent: r.OriginalContent,
	}
}

type updateRequest struct {
	Title           *string    `json:"title"`
	Slug            *string    `json:"slug"`
	Author          *string    `json:"author"`
	PublishedAt     *time.Time `json:"publishedAt"`
	Summary         *string    `json:"summary"`
	CoverImage      *string    `json:"coverImage"`
	OriginalContent *string    `json:"originalContent"`
}

func (r updateRequest) toPayload() domain.UpdateArticle {
	return domain.UpdateArticle{
		Title:           r.Title,
		Slug:            r.Slug,
		Author:          r.Author,
		PublishedAt:     r.PublishedAt,
		Summary:         r.Summary,
		CoverImage:      r.CoverImage,
		OriginalContent: r.OriginalContent,
	}
}

type aiUpdateRequest struct {
	UpdatedContent string                    `json:"updatedContent"`
	References     []domain.ArticleReference `json:"references"`
}
