package store

import (
	"context"
	"database/sql"
	"fmt"

	"newsdesk/pkg/logger"
)

// Schema creates the articles collection. seq preserves insertion order so
// articles sharing a date still sort deterministically.
const Schema = `
CREATE TABLE IF NOT EXISTS articles (
	id         TEXT PRIMARY KEY,
	seq        BIGSERIAL NOT NULL,
	title      TEXT NOT NULL,
	summary    TEXT NOT NULL,
	content    TEXT NOT NULL,
	category   TEXT NOT NULL,
	image      TEXT,
	date       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS articles_category_idx ON articles (category);
CREATE INDEX IF NOT EXISTS articles_date_idx ON articles (date DESC, seq DESC);
`

// Migrate applies Schema. It is idempotent and runs on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate articles: %w", err)
	}
	logger.Sugar.Info("Article schema is up to date")
	return nil
}
