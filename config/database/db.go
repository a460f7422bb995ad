package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"newsdesk/pkg/logger"

	_ "github.com/lib/pq"
)

// ErrStoreUnavailable is returned when the article store cannot be reached at startup.
var ErrStoreUnavailable = errors.New("article store unavailable")

// Connect opens the Postgres pool and pings it once. There is no retry loop:
// an unreachable store at startup is fatal for the caller.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrStoreUnavailable, err)
	}
	logger.Sugar.Info("Successfully connected to the database")
	return db, nil
}
