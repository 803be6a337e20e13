package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/prop-evaluator/internal/config"
)

// Schema is the DDL for the evaluation history table.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS evaluation_history (
		id             UUID PRIMARY KEY,
		evaluation_id  UUID NOT NULL,
		subject_id     TEXT NOT NULL DEFAULT '',
		subject        TEXT NOT NULL,
		statistic_line TEXT NOT NULL,
		sport          TEXT NOT NULL,
		confidence     DOUBLE PRECISION NOT NULL,
		decision       TEXT NOT NULL,
		clv            DOUBLE PRECISION,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS evaluation_history_subject_idx
		ON evaluation_history (subject_id, created_at DESC)`,
}

// Initialize creates a connection pool and ensures the history schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	err = db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, stmt := range Schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	return db, nil
}
