package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
	"github.com/m3rciful/shopbot/internal/storage"
)

type fakeStore struct {
	orders    map[int64]*models.Order
	lines     map[int64][]storage.OrderLine
	deleted   []int64
	createID  int64
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: make(map[int64]*models.Order),
		lines:  make(map[int64][]storage.OrderLine),
	}
}

func (f *fakeStore) CreateOrderFromCart(_ context.Context, _ int64, _ string) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	return f.createID, nil
}

func (f *fakeStore) OrderByID(_ context.Context, orderID int64) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, shoperr.ErrNotFound
	}
	return o, nil
}

func (f *fakeStore) OrdersByUser(_ context.Context, _ int64) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeStore) DeleteOrder(_ context.Context, orderID int64) error {
	if _, ok := f.orders[orderID]; !ok {
		return shoperr.ErrNotFound
	}
	delete(f.orders, orderID)
	f.deleted = append(f.deleted, orderID)
	return nil
}

func (f *fakeStore) OrderLines(_ context.Context, orderID int64) ([]storage.OrderLine, error) {
	return f.lines[orderID], nil
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestCreatePropagatesEmptyCart(t *testing.T) {
	store := newFakeStore()
	store.createErr = shoperr.ErrEmptyCart
	m := NewManager(store, Policy{})

	_, err := m.Create(context.Background(), 7, models.DeliveryPickup)
	require.ErrorIs(t, err, shoperr.ErrEmptyCart)
}

func TestTotalMultipliesBeforeRounding(t *testing.T) {
	store := newFakeStore()
	store.orders[1] = &models.Order{ID: 1, Status: models.StatusNotPaid}
	store.lines[1] = []storage.OrderLine{
		{ProductID: 10, Name: "a", Quantity: 2, UnitPrice: price("9.995")},
	}
	m := NewManager(store, Policy{})

	total, err := m.Total(context.Background(), 1)
	require.NoError(t, err)
	// 9.995*2 = 19.99 exactly; rounding each unit first would give 20.00.
	require.Equal(t, "19.99", total.StringFixed(2))
}

func TestTotalRoundsHalfUpPerLine(t *testing.T) {
	store := newFakeStore()
	store.orders[1] = &models.Order{ID: 1, Status: models.StatusNotPaid}
	store.lines[1] = []storage.OrderLine{
		{ProductID: 10, Name: "a", Quantity: 1, UnitPrice: price("0.005")},
		{ProductID: 11, Name: "b", Quantity: 3, UnitPrice: price("3.335")},
	}
	m := NewManager(store, Policy{})

	total, err := m.Total(context.Background(), 1)
	require.NoError(t, err)
	// 0.005 -> 0.01 half-up; 3.335*3 = 10.005 -> 10.01 half-up
	require.Equal(t, "10.02", total.StringFixed(2))
}

func TestTotalMissingOrder(t *testing.T) {
	m := NewManager(newFakeStore(), Policy{})
	_, err := m.Total(context.Background(), 404)
	require.ErrorIs(t, err, shoperr.ErrNotFound)
}

func TestTotalEmptyOrderIsZero(t *testing.T) {
	store := newFakeStore()
	store.orders[1] = &models.Order{ID: 1, Status: models.StatusNotPaid}
	m := NewManager(store, Policy{})

	total, err := m.Total(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, total.IsZero())
}

func TestDeleteRefusesPaidByDefault(t *testing.T) {
	store := newFakeStore()
	store.orders[1] = &models.Order{ID: 1, Status: models.StatusPaid}
	m := NewManager(store, Policy{})

	err := m.Delete(context.Background(), 1)
	require.ErrorIs(t, err, shoperr.ErrAlreadyPaid)
	require.Empty(t, store.deleted)
}

func TestDeletePaidAllowedByPolicy(t *testing.T) {
	store := newFakeStore()
	store.orders[1] = &models.Order{ID: 1, Status: models.StatusPaid}
	m := NewManager(store, Policy{AllowPaidDelete: true})

	require.NoError(t, m.Delete(context.Background(), 1))
	require.Equal(t, []int64{1}, store.deleted)
}

func TestDeleteNotPaid(t *testing.T) {
	store := newFakeStore()
	store.orders[1] = &models.Order{ID: 1, Status: models.StatusNotPaid}
	m := NewManager(store, Policy{})

	require.NoError(t, m.Delete(context.Background(), 1))
	require.Equal(t, []int64{1}, store.deleted)
}
