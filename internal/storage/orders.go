package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

// OrderLine is an order item joined with the live product price. Totals read
// the current price at query time; order items store quantity only.
type OrderLine struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateOrderFromCart snapshots the user's cart into a new order and drains
// the cart, all inside one transaction. Returns shoperr.ErrEmptyCart when the
// cart has no line items; in that case nothing is written.
func (s *Store) CreateOrderFromCart(ctx context.Context, tgID int64, delivery string) (int64, error) {
	var orderID int64
	err := s.RunInTx(ctx, func(tx *sqlx.Tx) error {
		var cartID int64
		err := tx.QueryRowxContext(ctx,
			`SELECT c.id FROM carts c JOIN users u ON u.id = c.user_id WHERE u.tg_id = $1`, tgID,
		).Scan(&cartID)
		if errors.Is(err, sql.ErrNoRows) {
			return shoperr.ErrEmptyCart
		}
		if err != nil {
			return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select cart: %w", err))
		}

		var items []models.CartItem
		if err := tx.SelectContext(ctx, &items,
			`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id`,
			cartID); err != nil {
			return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select cart items: %w", err))
		}
		if len(items) == 0 {
			return shoperr.ErrEmptyCart
		}

		err = tx.QueryRowxContext(ctx,
			`INSERT INTO orders (user_id, delivery, status)
			 SELECT id, $2, $3 FROM users WHERE tg_id = $1
			 RETURNING id`,
			tgID, delivery, models.StatusNotPaid,
		).Scan(&orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return shoperr.ErrNotFound
		}
		if err != nil {
			return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("insert order: %w", err))
		}

		for _, it := range items {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)`,
				orderID, it.ProductID, it.Quantity); err != nil {
				return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("insert order item: %w", err))
			}
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
			return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("drain cart: %w", err))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// OrderByID returns a single order or shoperr.ErrNotFound.
func (s *Store) OrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var o models.Order
	err := s.db.GetContext(ctx, &o,
		`SELECT id, user_id, delivery, payment_id, status FROM orders WHERE id = $1`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shoperr.ErrNotFound
	}
	if err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select order: %w", err))
	}
	return &o, nil
}

// OrdersByUser returns all orders for a user in any status. Display ordering
// is a presentation concern; id order is used for stable output only.
func (s *Store) OrdersByUser(ctx context.Context, tgID int64) ([]models.Order, error) {
	var out []models.Order
	err := s.db.SelectContext(ctx, &out,
		`SELECT o.id, o.user_id, o.delivery, o.payment_id, o.status
		   FROM orders o JOIN users u ON u.id = o.user_id
		  WHERE u.tg_id = $1
		  ORDER BY o.id`, tgID)
	if err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select orders: %w", err))
	}
	return out, nil
}

// DeleteOrder hard-deletes an order; order items go with it via cascade.
func (s *Store) DeleteOrder(ctx context.Context, orderID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("delete order: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shoperr.ErrNotFound
	}
	return nil
}

// OrderLines returns the order's items joined with live product data.
func (s *Store) OrderLines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT oi.product_id, p.name, oi.quantity, p.price
		   FROM order_items oi
		   JOIN products p ON p.id = oi.product_id
		  WHERE oi.order_id = $1
		  ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select order items: %w", err))
	}
	defer rows.Close()

	var out []OrderLine
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("scan order item: %w", err))
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("rows: %w", err))
	}
	return out, nil
}

// SetOrderPaymentID stores the provider charge reference on the order.
func (s *Store) SetOrderPaymentID(ctx context.Context, orderID int64, paymentID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET payment_id = $2 WHERE id = $1`, orderID, paymentID)
	if err != nil {
		return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("set payment id: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shoperr.ErrNotFound
	}
	return nil
}

// MarkOrderPaid performs the single terminal reconciliation write: it flips a
// not_paid order to paid and clears the charge reference in one statement.
// The status guard in the WHERE clause makes redundant invocations no-ops, so
// the transition can never run twice or move backwards.
func (s *Store) MarkOrderPaid(ctx context.Context, orderID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, payment_id = NULL
		  WHERE id = $1 AND status = $3`,
		orderID, models.StatusPaid, models.StatusNotPaid)
	if err != nil {
		return false, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("mark paid: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("rows affected: %w", err))
	}
	return n > 0, nil
}
