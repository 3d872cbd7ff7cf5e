package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

// ProductQuantity pairs a product with the quantity already present in the
// viewing user's cart (zero when the product is not in the cart).
type ProductQuantity struct {
	Product  models.Product
	Quantity int
}

// Categories lists all top-level catalog categories.
func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := s.db.SelectContext(ctx, &out, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select categories: %w", err))
	}
	return out, nil
}

// SubCategories lists subcategories for the given category.
func (s *Store) SubCategories(ctx context.Context, categoryID int64) ([]models.SubCategory, error) {
	var out []models.SubCategory
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, category_id, name FROM subcategories WHERE category_id = $1 ORDER BY name`, categoryID)
	if err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select subcategories: %w", err))
	}
	return out, nil
}

// ProductsWithQuantities lists products of a subcategory left-joined with the
// user's current cart quantities.
func (s *Store) ProductsWithQuantities(ctx context.Context, subCategoryID, tgID int64) ([]ProductQuantity, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT p.id, p.category_id, p.subcategory_id, p.name, p.description, p.price, p.image_url,
		        COALESCE(ci.quantity, 0) AS quantity
		   FROM products p
		   LEFT JOIN cart_items ci ON ci.product_id = p.id
		        AND ci.cart_id = (SELECT c.id FROM carts c JOIN users u ON u.id = c.user_id WHERE u.tg_id = $2)
		  WHERE p.subcategory_id = $1
		  ORDER BY p.id`, subCategoryID, tgID)
	if err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select products: %w", err))
	}
	defer rows.Close()

	var out []ProductQuantity
	for rows.Next() {
		var pq ProductQuantity
		if err := rows.Scan(
			&pq.Product.ID, &pq.Product.CategoryID, &pq.Product.SubCategoryID,
			&pq.Product.Name, &pq.Product.Description, &pq.Product.Price, &pq.Product.ImageURL,
			&pq.Quantity,
		); err != nil {
			return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("scan product: %w", err))
		}
		out = append(out, pq)
	}
	if err := rows.Err(); err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("rows: %w", err))
	}
	return out, nil
}

// Product returns a single catalog entry.
func (s *Store) Product(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p,
		`SELECT id, category_id, subcategory_id, name, description, price, image_url
		   FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shoperr.ErrNotFound
	}
	if err != nil {
		return nil, shoperr.Wrap(shoperr.ErrPersistence, fmt.Errorf("select product: %w", err))
	}
	return &p, nil
}
