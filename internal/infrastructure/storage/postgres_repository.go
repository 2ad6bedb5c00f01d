package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"articleforge/internal/domain"
	"articleforge/internal/ports"
)

const uniqueViolation = "23505"

const articleColumns = `id, title, slug, author, source_url, published_at, summary,
cover_image, original_content, updated_content, reference_list, ai_version,
created_at, updated_at`

const schema = `
CREATE TABLE IF NOT EXISTS articles (
    id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title            TEXT NOT NULL,
    slug             TEXT NOT NULL UNIQUE,
    author           TEXT,
    source_url       TEXT NOT NULL,
    published_at     TIMESTAMPTZ,
    summary          TEXT,
    cover_image      TEXT,
    original_content TEXT NOT NULL,
    updated_content  TEXT,
    reference_list   JSONB,
    ai_version       INTEGER NOT NULL DEFAULT 0,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository persists articles and their augmentation state.
type PostgresRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.ArticleRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the articles table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// List returns all articles ordered ascending by publish date; Postgres
// sorts NULL publish dates last under ASC.
func (r *PostgresRepository) List(ctx context.Context) ([]domain.Article, error) {
	query, args, err := r.sb.Select(articleColumns).
		From("articles").
		OrderBy("published_at ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// Get fetches one article by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (domain.Article, error) {
	query, args, err := r.sb.Select(articleColumns).
		From("articles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build get query: %w", err)
	}
	return r.queryArticle(ctx, query, args)
}

// Create inserts a new article; a slug collision maps to ErrSlugConflict.
func (r *PostgresRepository) Create(ctx context.Context, payload domain.CreateArticle) (domain.Article, error) {
	query, args, err := r.sb.Insert("articles").
		Columns("title", "slug", "author", "source_url", "published_at",
			"summary", "cover_image", "original_content").
		Values(payload.Title, payload.Slug, nullString(payload.Author),
			payload.SourceURL, nullTime(payload.PublishedAt),
			nullString(payload.Summary), nullString(payload.CoverImage),
			payload.OriginalContent).
		Suffix("RETURNING " + articleColumns).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build insert query: %w", err)
	}

	article, err := r.queryArticle(ctx, query, args)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.Article{}, domain.ErrSlugConflict
		}
		return domain.Article{}, err
	}
	return article, nil
}

// Update applies the non-nil fields of payload to an existing article.
// AI state is never touched here.
func (r *PostgresRepository) Update(ctx context.Context, id string, payload domain.UpdateArticle) (domain.Article, error) {
	assignments := map[string]any{}
	if payload.Title != nil {
		assignments["title"] = *payload.Title
	}
	if payload.Slug != nil {
		assignments["slug"] = *payload.Slug
	}
	if payload.Author != nil {
		assignments["author"] = nullString(*payload.Author)
	}
	if payload.PublishedAt != nil {
		assignments["published_at"] = *payload.PublishedAt
	}
	if payload.Summary != nil {
		assignments["summary"] = nullString(*payload.Summary)
	}
	if payload.CoverImage != nil {
		assignments["cover_image"] = nullString(*payload.CoverImage)
	}
	if payload.OriginalContent != nil {
		assignments["original_content"] = *payload.OriginalContent
	}

	if len(assignments) == 0 {
		return r.Get(ctx, id)
	}
	assignments["updated_at"] = sq.Expr("NOW()")

	query, args, err := r.sb.Update("articles").
		SetMap(assignments).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + articleColumns).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build update query: %w", err)
	}

	article, err := r.queryArticle(ctx, query, args)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.Article{}, domain.ErrSlugConflict
		}
		return domain.Article{}, err
	}
	return article, nil
}

// Delete removes an article by id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.sb.Delete("articles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpsertBySlug creates or refreshes an article from a crawl payload. The
// conflict branch only rewrites scraped fields; updated_content,
// reference_list, and ai_version stay untouched.
func (r *PostgresRepository) UpsertBySlug(ctx context.Context, payload domain.CreateArticle) (domain.Article, error) {
	query, args, err := r.sb.Insert("articles").
		Columns("title", "slug", "author", "source_url", "published_at",
			"summary", "cover_image", "original_content").
		Values(payload.Title, payload.Slug, nullString(payload.Author),
			payload.SourceURL, nullTime(payload.PublishedAt),
			nullString(payload.Summary), nullString(payload.CoverImage),
			payload.OriginalContent).
		Suffix(`ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			source_url = EXCLUDED.source_url,
			published_at = EXCLUDED.published_at,
			summary = EXCLUDED.summary,
			cover_image = EXCLUDED.cover_image,
			original_content = EXCLUDED.original_content,
			updated_at = NOW()
			RETURNING ` + articleColumns).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build upsert query: %w", err)
	}
	return r.queryArticle(ctx, query, args)
}

// ApplyAugmentation atomically sets the rewritten content plus references
// and increments the AI version counter in a single statement.
func (r *PostgresRepository) ApplyAugmentation(ctx context.Context, id string, updatedContent string, refs []domain.ArticleReference) (domain.Article, error) {
	encoded, err := json.Marshal(refs)
	if err != nil {
		return domain.Article{}, fmt.Errorf("marshal references: %w", err)
	}

	query, args, err := r.sb.Update("articles").
		Set("updated_content", updatedContent).
		Set("reference_list", encoded).
		Set("ai_version", sq.Expr("ai_version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + articleColumns).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build augmentation query: %w", err)
	}
	return r.queryArticle(ctx, query, args)
}

func (r *PostgresRepository) queryArticle(ctx context.Context, query string, args []any) (domain.Article, error) {
	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, domain.ErrNotFound
	}
	return article, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		article        domain.Article
		author         sql.NullString
		publishedAt    sql.NullTime
		summary        sql.NullString
		coverImage     sql.NullString
		updatedContent sql.NullString
		references     []byte
	)

	err := row.Scan(&article.ID, &article.Title, &article.Slug, &author,
		&article.SourceURL, &publishedAt, &summary, &coverImage,
		&article.OriginalContent, &updatedContent, &references,
		&article.AIVersion, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return domain.Article{}, err
	}

	article.Author = author.String
	article.Summary = summary.String
	article.CoverImage = coverImage.String
	article.UpdatedContent = updatedContent.String
	if publishedAt.Valid {
		published := publishedAt.Time
		article.PublishedAt = &published
	}
	if len(references) > 0 {
		if err := json.Unmarshal(references, &article.References); err != nil {
			return domain.Article{}, fmt.Errorf("decode references: %w", err)
		}
	}
	return article, nil
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}
