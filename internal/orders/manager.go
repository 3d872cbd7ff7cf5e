// Package orders converts carts into immutable orders and answers order
// lifecycle queries.
package orders

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
	"github.com/m3rciful/shopbot/internal/storage"
	"log/slog"
)

// Store is the persistence surface the manager needs.
type Store interface {
	CreateOrderFromCart(ctx context.Context, tgID int64, delivery string) (int64, error)
	OrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	OrdersByUser(ctx context.Context, tgID int64) ([]models.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	OrderLines(ctx context.Context, orderID int64) ([]storage.OrderLine, error)
}

// Policy holds order management rules that are configuration, not code.
type Policy struct {
	// AllowPaidDelete permits hard-deleting orders that are already paid
	// or completed. Off by default.
	AllowPaidDelete bool
}

// Manager owns order creation and status-field reads.
type Manager struct {
	store  Store
	policy Policy
}

// NewManager wires the order manager to its store.
func NewManager(store Store, policy Policy) *Manager {
	return &Manager{store: store, policy: policy}
}

// Create snapshots the user's cart into a new not-paid order and drains the
// cart, all-or-nothing. An empty cart yields shoperr.ErrEmptyCart with no
// state change.
func (m *Manager) Create(ctx context.Context, tgID int64, delivery string) (int64, error) {
	orderID, err := m.store.CreateOrderFromCart(ctx, tgID, delivery)
	if err != nil {
		if !shoperr.Is(err, shoperr.ErrEmptyCart) {
			logger.SVCOrders.Error("order create failed",
				slog.String("event", "order.create"),
				slog.Int64("user_id", tgID),
				slog.String("err", err.Error()),
			)
		}
		return 0, err
	}
	logger.SVCOrders.Info("order created",
		slog.String("event", "order.create"),
		slog.Int64("user_id", tgID),
		slog.Int64("order_id", orderID),
		slog.String("delivery", delivery),
	)
	return orderID, nil
}

// Get returns a single order or shoperr.ErrNotFound.
func (m *Manager) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	return m.store.OrderByID(ctx, orderID)
}

// ForUser returns all of the user's orders in any status.
func (m *Manager) ForUser(ctx context.Context, tgID int64) ([]models.Order, error) {
	return m.store.OrdersByUser(ctx, tgID)
}

// Delete hard-deletes an order and its items. Paid and completed orders are
// refused unless the policy allows it.
func (m *Manager) Delete(ctx context.Context, orderID int64) error {
	o, err := m.store.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status.Terminal() && !m.policy.AllowPaidDelete {
		return shoperr.ErrAlreadyPaid
	}
	if err := m.store.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	logger.SVCOrders.Info("order deleted",
		slog.String("event", "order.delete"),
		slog.Int64("order_id", orderID),
		slog.String("status", string(o.Status)),
	)
	return nil
}

// Total computes the order sum from live product prices: each line total is
// rounded half-up to 2 places, then the sum is rounded again. A missing
// order yields shoperr.ErrNotFound and a zero total.
func (m *Manager) Total(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	if _, err := m.store.OrderByID(ctx, orderID); err != nil {
		return decimal.Zero, err
	}
	lines, err := m.store.OrderLines(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, line := range lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		total = total.Add(lineTotal)
	}
	return total.Round(2), nil
}
