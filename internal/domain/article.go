package domain

import "time"

// Article is the persisted entity combining the scraped original and its
// AI-augmented state.
type Article struct {
	ID              string
	Title           string
	Slug            string
	Author          string
	SourceURL       string
	PublishedAt     *time.Time
	Summary         string
	CoverImage      string
	OriginalContent string
	UpdatedContent  string
	References      []ArticleReference
	AIVersion       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Pending reports whether the article still awaits augmentation.
func (a Article) Pending() bool {
	return a.UpdatedContent == ""
}

// ArticleReference is one supporting source attached by augmentation.
// Immutable once recorded for a given rewrite.
type ArticleReference struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Summary      string `json:"summary,omitempty"`
	SourceDomain string `json:"sourceDomain,omitempty"`
}

// ArticleMeta is transient per-listing-entry metadata collected during a
// crawl pass; it is discarded once converted into a CreateArticle.
type ArticleMeta struct {
	Title       string
	URL         string
	Author      string
	Summary     string
	CoverImage  string
	PublishedAt *time.Time
}

// ScrapedDocument is the extractor's view of one fetched page.
type ScrapedDocument struct {
	URL     string
	Title   string
	Content string
}

// CreateArticle carries everything needed to create or upsert an article
// from a crawl pass.
type CreateArticle struct {
	Title           string
	Slug            string
	Author          string
	SourceURL       string
	PublishedAt     *time.Time
	Summary         string
	CoverImage      string
	OriginalContent string
}

// UpdateArticle carries an editorial update; nil fields are left untouched.
// AI state (updatedContent, references, aiVersion) is only ever written by
// the augmentation apply operation.
type UpdateArticle struct {
	Title           *string
	Slug            *string
	Author          *string
	PublishedAt     *time.Time
	Summary         *string
	CoverImage      *string
	OriginalContent *string
}
