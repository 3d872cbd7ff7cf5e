package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSaveQuantitiesUpsertAndDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT c.id FROM carts c JOIN users u ON u.id = c.user_id WHERE u.tg_id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items`)).
		WithArgs(int64(5), int64(1), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`)).
		WithArgs(int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.SaveQuantities(context.Background(), 7, []QuantityChange{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 0},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveQuantitiesCreatesCartOnFirstUse(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT c.id FROM carts c JOIN users u ON u.id = c.user_id WHERE u.tg_id = $1`)).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO carts (user_id)`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items`)).
		WithArgs(int64(9), int64(1), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.SaveQuantities(context.Background(), 7, []QuantityChange{
		{ProductID: 1, Quantity: 2},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveQuantitiesRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT c.id FROM carts c JOIN users u ON u.id = c.user_id WHERE u.tg_id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items`)).
		WithArgs(int64(5), int64(1), 3).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.SaveQuantities(context.Background(), 7, []QuantityChange{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 1},
	})
	require.Error(t, err)
	require.True(t, shoperr.Is(err, shoperr.ErrPersistence))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderFromCartDrainsCart(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT c.id FROM carts c JOIN users u ON u.id = c.user_id WHERE u.tg_id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}).
			AddRow(1, 5, 10, 2).
			AddRow(2, 5, 11, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orders (user_id, delivery, status)`)).
		WithArgs(int64(7), models.DeliveryPickup, models.StatusNotPaid).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(33))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)`)).
		WithArgs(int64(33), int64(10), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)`)).
		WithArgs(int64(33), int64(11), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_items WHERE cart_id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	orderID, err := store.CreateOrderFromCart(context.Background(), 7, models.DeliveryPickup)
	require.NoError(t, err)
	require.Equal(t, int64(33), orderID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderFromCartEmptyCart(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT c.id FROM carts c JOIN users u ON u.id = c.user_id WHERE u.tg_id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}))
	mock.ExpectRollback()

	_, err := store.CreateOrderFromCart(context.Background(), 7, models.DeliveryPickup)
	require.ErrorIs(t, err, shoperr.ErrEmptyCart)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkOrderPaidGuardedByStatus(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET status = $2, payment_id = NULL`)).
		WithArgs(int64(1), models.StatusPaid, models.StatusNotPaid).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET status = $2, payment_id = NULL`)).
		WithArgs(int64(1), models.StatusPaid, models.StatusNotPaid).
		WillReturnResult(sqlmock.NewResult(0, 0))

	flipped, err := store.MarkOrderPaid(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, flipped)

	flipped, err = store.MarkOrderPaid(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, flipped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM orders WHERE id = $1`)).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteOrder(context.Background(), 404)
	require.ErrorIs(t, err, shoperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, user_id, delivery, payment_id, status FROM orders WHERE id = $1`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "delivery", "payment_id", "status"}))

	_, err := store.OrderByID(context.Background(), 404)
	require.ErrorIs(t, err, shoperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
