package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

// UserByTgID returns the user identified by the external Telegram id.
func (s *Store) UserByTgID(ctx context.Context, tgID int64) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, tg_id, first_name, last_name, username FROM users WHERE tg_id = $1`, tgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shoperr.ErrNotFound
	}
	if err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select user: %w", err))
	}
	return &u, nil
}

// InsertUser creates a user row unless one already exists for the tg id.
func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO users (tg_id, first_name, last_name, username)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (tg_id) DO UPDATE SET
		   first_name = EXCLUDED.first_name,
		   last_name  = EXCLUDED.last_name,
		   username   = EXCLUDED.username
		 RETURNING id`,
		u.TgID, u.FirstName, u.LastName, u.Username,
	).Scan(&u.ID)
	if err != nil {
		return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("insert user: %w", err))
	}
	return nil
}

// AllTgIDs enumerates every known Telegram id, for broadcast fan-out.
func (s *Store) AllTgIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT tg_id FROM users ORDER BY id`); err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select tg ids: %w", err))
	}
	return ids, nil
}
