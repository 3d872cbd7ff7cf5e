// Package storage implements the Postgres persistence layer on sqlx. Every
// multi-statement write runs through RunInTx so partial application is never
// observable.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/shoperr"
	"log/slog"
)

// Store exposes all repositories over a shared connection pool.
type Store struct {
	db *sqlx.DB
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// RunInTx executes fn inside a transaction, rolling back on error or panic.
func (s *Store) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("begin tx: %w", err))
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.DB.Error("tx rollback failed",
				slog.String("event", "db.tx"),
				slog.String("err", rbErr.Error()),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("commit tx: %w", err))
	}

	logger.DB.Debug("tx committed",
		slog.String("event", "db.tx"),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}
