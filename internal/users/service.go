// Package users tracks known shoppers.
package users

import (
	"context"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
	"log/slog"
)

// Store is the persistence surface the service needs.
type Store interface {
	UserByTgID(ctx context.Context, tgID int64) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	AllTgIDs(ctx context.Context) ([]int64, error)
}

// Service provides user registration and directory queries.
type Service struct {
	store Store
}

// NewService wires the user service to its store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Ensure registers the user on first contact. Known users pass through
// untouched; users are never deleted here.
func (s *Service) Ensure(ctx context.Context, u models.User) error {
	if _, err := s.store.UserByTgID(ctx, u.TgID); err == nil {
		return nil
	} else if !shoperr.Is(err, shoperr.ErrNotFound) {
		return err
	}
	if err := s.store.InsertUser(ctx, &u); err != nil {
		return err
	}
	logger.SVCUsers.Info("user registered",
		slog.String("event", "user.register"),
		slog.Int64("user_id", u.TgID),
	)
	return nil
}

// AllTgIDs enumerates every known Telegram id, the broadcast audience.
func (s *Service) AllTgIDs(ctx context.Context) ([]int64, error) {
	return s.store.AllTgIDs(ctx)
}
