// Package cart reconciles drained session selections into persisted cart
// line items.
package cart

import (
	"context"
	"time"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/session"
	"github.com/m3rciful/shopbot/internal/storage"
	"log/slog"
)

// Store is the persistence surface the manager needs.
type Store interface {
	SaveQuantities(ctx context.Context, tgID int64, changes []storage.QuantityChange) error
	CartLines(ctx context.Context, tgID int64) ([]storage.CartLine, error)
}

// Manager owns all cart line item mutations.
type Manager struct {
	store Store
}

// NewManager wires the cart manager to its store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Flush writes drained session entries into the user's cart in one atomic
// transaction. Entries are deduplicated by product with last-write-wins;
// positive quantities upsert, zeroes delete. On failure the cart is left
// untouched.
func (m *Manager) Flush(ctx context.Context, tgID int64, entries []session.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	// Last write wins per product, preserving first-seen order.
	latest := make(map[int64]int, len(entries))
	order := make([]int64, 0, len(entries))
	for _, e := range entries {
		if _, seen := latest[e.ProductID]; !seen {
			order = append(order, e.ProductID)
		}
		latest[e.ProductID] = e.Quantity
	}
	changes := make([]storage.QuantityChange, 0, len(order))
	for _, pid := range order {
		changes = append(changes, storage.QuantityChange{ProductID: pid, Quantity: latest[pid]})
	}

	start := time.Now()
	if err := m.store.SaveQuantities(ctx, tgID, changes); err != nil {
		logger.SVCCarts.Error("cart flush failed",
			slog.String("event", "cart.flush"),
			slog.Int64("user_id", tgID),
			slog.Int("items", len(changes)),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.SVCCarts.Debug("cart flushed",
		slog.String("event", "cart.flush"),
		slog.Int64("user_id", tgID),
		slog.Int("items", len(changes)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// View returns the cart joined with product data; an empty cart yields an
// empty slice, not an error.
func (m *Manager) View(ctx context.Context, tgID int64) ([]storage.CartLine, error) {
	return m.store.CartLines(ctx, tgID)
}
