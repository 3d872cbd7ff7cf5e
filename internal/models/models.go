// Package models declares the persisted storefront entities. Relations are
// unidirectional foreign keys; joins are performed at query time by storage.
package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// User is a Telegram shopper, created on first interaction.
type User struct {
	ID        int64  `db:"id"`
	TgID      int64  `db:"tg_id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Username  string `db:"username"`
}

// Cart is the single mutable pre-checkout container owned 1:1 by a user.
// It may persist empty; existence alone carries no meaning.
type Cart struct {
	ID     int64 `db:"id"`
	UserID int64 `db:"user_id"`
}

// CartItem holds one product selection inside a cart. At most one row exists
// per (cart, product); a quantity of zero is expressed by deleting the row.
type CartItem struct {
	ID        int64 `db:"id"`
	CartID    int64 `db:"cart_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}

// Category groups subcategories in the catalog tree.
type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// SubCategory groups products under a category.
type SubCategory struct {
	ID         int64  `db:"id"`
	CategoryID int64  `db:"category_id"`
	Name       string `db:"name"`
}

// Product is a purchasable catalog entry. Price is the live price; order
// totals read it at query time.
type Product struct {
	ID            int64           `db:"id"`
	CategoryID    int64           `db:"category_id"`
	SubCategoryID int64           `db:"subcategory_id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Price         decimal.Decimal `db:"price"`
	ImageURL      string          `db:"image_url"`
}

// OrderStatus enumerates the order lifecycle. Transitions are monotonic:
// not_paid -> paid -> completed, never backwards.
type OrderStatus string

const (
	StatusNotPaid   OrderStatus = "not_paid"
	StatusPaid      OrderStatus = "paid"
	StatusCompleted OrderStatus = "completed"
)

// Terminal reports whether the status admits no payment anymore.
func (s OrderStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCompleted
}

// DeliveryPickup is the fixed delivery marker for self-pickup orders; any
// other delivery value is a free-text address.
const DeliveryPickup = "Pickup"

// Order is an immutable-after-creation snapshot of a cart plus delivery and
// payment state. PaymentID holds the provider charge reference while a
// payment attempt is outstanding and is cleared on successful reconciliation.
type Order struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Delivery  string         `db:"delivery"`
	PaymentID sql.NullString `db:"payment_id"`
	Status    OrderStatus    `db:"status"`
}

// OrderItem snapshots one cart line at order creation time.
type OrderItem struct {
	ID        int64 `db:"id"`
	OrderID   int64 `db:"order_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}
