package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"newsdesk/internal/article/model"
	"newsdesk/pkg/logger"

	"github.com/google/uuid"
)

const articleColumns = `id, title, summary, content, category, image, date, created_at`

type ArticleRepository struct {
	DB *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (model.Article, error) {
	var a model.Article
	var image sql.NullString
	err := row.Scan(&a.ID, &a.Title, &a.Summary, &a.Content, &a.Category, &image, &a.Date, &a.CreatedAt)
	a.Image = image.String
	return a, err
}

// nullableImage stores an absent image as NULL rather than an empty string.
func nullableImage(image string) any {
	if image == "" {
		return nil
	}
	return image
}

func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// Insert assigns the identifier and, when a.Date is zero, the creation time as date.
func (r *ArticleRepository) Insert(ctx context.Context, a model.Article) (model.Article, error) {
	id := uuid.NewString()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO articles (id, title, summary, content, category, image, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()), NOW())
		RETURNING `+articleColumns,
		id, a.Title, a.Summary, a.Content, a.Category, nullableImage(a.Image), nullableDate(a.Date))
	created, err := scanArticle(row)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert article: %v", err)
		return model.Article{}, err
	}
	return created, nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id string) (model.Article, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, model.ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get article %s: %v", id, err)
		return model.Article{}, err
	}
	return a, nil
}

// List returns articles newest first; rows sharing a date fall back to insertion order.
func (r *ArticleRepository) List(ctx context.Context, filter model.Filter) ([]model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY date DESC, seq DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Sugar.Errorf("Failed to list articles: %v", err)
		return nil, err
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan article: %v", err)
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Failed to iterate articles: %v", err)
		return nil, err
	}
	return articles, nil
}

// Update replaces the mutable fields of an existing article. A zero a.Date keeps the stored date.
func (r *ArticleRepository) Update(ctx context.Context, id string, a model.Article) (model.Article, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE articles
		SET title = $2, summary = $3, content = $4, category = $5, image = $6, date = COALESCE($7, date)
		WHERE id = $1
		RETURNING `+articleColumns,
		id, a.Title, a.Summary, a.Content, a.Category, nullableImage(a.Image), nullableDate(a.Date))
	updated, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, model.ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update article %s: %v", id, err)
		return model.Article{}, err
	}
	return updated, nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete article %s: %v", id, err)
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
