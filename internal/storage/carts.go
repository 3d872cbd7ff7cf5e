package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

// QuantityChange is one reconciled (product, quantity) pair to apply to a
// cart. Quantity zero removes the line item.
type QuantityChange struct {
	ProductID int64
	Quantity  int
}

// CartLine is a cart item joined with its product for display and checkout.
type CartLine struct {
	Product  models.Product
	Quantity int
}

// CartLines returns the user's cart joined with product data. An empty slice
// is a valid result distinct from an error.
func (s *Store) CartLines(ctx context.Context, tgID int64) ([]CartLine, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT p.id, p.category_id, p.subcategory_id, p.name, p.description, p.price, p.image_url,
		        ci.quantity
		   FROM cart_items ci
		   JOIN products p ON p.id = ci.product_id
		   JOIN carts c ON c.id = ci.cart_id
		   JOIN users u ON u.id = c.user_id
		  WHERE u.tg_id = $1
		  ORDER BY ci.id`, tgID)
	if err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select cart: %w", err))
	}
	defer rows.Close()

	var out []CartLine
	for rows.Next() {
		var line CartLine
		if err := rows.Scan(
			&line.Product.ID, &line.Product.CategoryID, &line.Product.SubCategoryID,
			&line.Product.Name, &line.Product.Description, &line.Product.Price, &line.Product.ImageURL,
			&line.Quantity,
		); err != nil {
			return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("scan cart line: %w", err))
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("rows: %w", err))
	}
	return out, nil
}

// SaveQuantities applies all quantity changes for a user atomically: the cart
// row is created on first use, positive quantities are upserted, and zero
// quantities delete the line item. On any failure nothing is applied.
func (s *Store) SaveQuantities(ctx context.Context, tgID int64, changes []QuantityChange) error {
	if len(changes) == 0 {
		return nil
	}
	return s.RunInTx(ctx, func(tx *sqlx.Tx) error {
		cartID, err := ensureCart(ctx, tx, tgID)
		if err != nil {
			return err
		}
		for _, ch := range changes {
			if ch.Quantity > 0 {
				_, err = tx.ExecContext(ctx,
					`INSERT INTO cart_items (cart_id, product_id, quantity)
					 VALUES ($1, $2, $3)
					 ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
					cartID, ch.ProductID, ch.Quantity)
			} else {
				_, err = tx.ExecContext(ctx,
					`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
					cartID, ch.ProductID)
			}
			if err != nil {
				return shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("apply quantity product=%d: %w", ch.ProductID, err))
			}
		}
		return nil
	})
}

func ensureCart(ctx context.Context, tx *sqlx.Tx, tgID int64) (int64, error) {
	var cartID int64
	err := tx.QueryRowxContext(ctx,
		`SELECT c.id FROM carts c JOIN users u ON u.id = c.user_id WHERE u.tg_id = $1`, tgID,
	).Scan(&cartID)
	if err == nil {
		return cartID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select cart: %w", err))
	}

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO carts (user_id)
		 SELECT id FROM users WHERE tg_id = $1
		 RETURNING id`, tgID,
	).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, shoperr.ErrNotFound
	}
	if err != nil {
		return 0, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("insert cart: %w", err))
	}
	return cartID, nil
}
