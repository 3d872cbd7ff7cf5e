package payments

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

type fakeStore struct {
	order      *models.Order
	paymentIDs []string
	paidCalls  int
}

func (f *fakeStore) OrderByID(_ context.Context, _ int64) (*models.Order, error) {
	if f.order == nil {
		return nil, shoperr.ErrNotFound
	}
	return f.order, nil
}

func (f *fakeStore) SetOrderPaymentID(_ context.Context, _ int64, paymentID string) error {
	f.paymentIDs = append(f.paymentIDs, paymentID)
	f.order.PaymentID = sql.NullString{String: paymentID, Valid: true}
	return nil
}

func (f *fakeStore) MarkOrderPaid(_ context.Context, _ int64) (bool, error) {
	f.paidCalls++
	if f.order.Status != models.StatusNotPaid {
		return false, nil
	}
	f.order.Status = models.StatusPaid
	f.order.PaymentID = sql.NullString{}
	return true, nil
}

type fakeTotals struct {
	total decimal.Decimal
}

func (f *fakeTotals) Total(_ context.Context, _ int64) (decimal.Decimal, error) {
	return f.total, nil
}

type fakeProvider struct {
	created    []ChargeRequest
	charge     *Charge
	findStatus string
	createErr  error
	findErr    error
}

func (f *fakeProvider) CreateCharge(_ context.Context, req ChargeRequest) (*Charge, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return f.charge, nil
}

func (f *fakeProvider) FindCharge(_ context.Context, chargeID string) (*Charge, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return &Charge{ID: chargeID, Status: f.findStatus}, nil
}

func notPaidOrder() *models.Order {
	return &models.Order{ID: 1, Status: models.StatusNotPaid}
}

func TestRequestRefusesPaidOrder(t *testing.T) {
	store := &fakeStore{order: &models.Order{ID: 1, Status: models.StatusPaid}}
	r := NewReconciler(store, &fakeTotals{}, &fakeProvider{})

	_, err := r.Request(context.Background(), 1)
	require.ErrorIs(t, err, shoperr.ErrAlreadyPaid)
}

func TestRequestRefusesZeroAmount(t *testing.T) {
	store := &fakeStore{order: notPaidOrder()}
	r := NewReconciler(store, &fakeTotals{total: decimal.Zero}, &fakeProvider{})

	_, err := r.Request(context.Background(), 1)
	require.ErrorIs(t, err, shoperr.ErrZeroAmount)
}

func TestRequestCreatesChargeAndStoresID(t *testing.T) {
	store := &fakeStore{order: notPaidOrder()}
	provider := &fakeProvider{charge: &Charge{
		ID:              "ch-1",
		Status:          ChargePending,
		ConfirmationURL: "https://pay.example/ch-1",
	}}
	r := NewReconciler(store, &fakeTotals{total: decimal.NewFromFloat(19.99)}, provider)

	url, err := r.Request(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/ch-1", url)
	require.Equal(t, []string{"ch-1"}, store.paymentIDs)
	require.Len(t, provider.created, 1)
	require.Equal(t, "19.99", provider.created[0].Amount.StringFixed(2))
}

func TestRequestDetectsPaymentFinishedMeanwhile(t *testing.T) {
	order := notPaidOrder()
	order.PaymentID = sql.NullString{String: "ch-old", Valid: true}
	store := &fakeStore{order: order}
	provider := &fakeProvider{findStatus: ChargeSucceeded}
	r := NewReconciler(store, &fakeTotals{total: decimal.NewFromInt(10)}, provider)

	_, err := r.Request(context.Background(), 1)
	require.ErrorIs(t, err, shoperr.ErrAlreadyPaid)
	require.Equal(t, models.StatusPaid, store.order.Status)
}

func TestRequestReplacesStalePendingCharge(t *testing.T) {
	order := notPaidOrder()
	order.PaymentID = sql.NullString{String: "ch-old", Valid: true}
	store := &fakeStore{order: order}
	provider := &fakeProvider{
		findStatus: ChargePending,
		charge:     &Charge{ID: "ch-new", ConfirmationURL: "https://pay.example/ch-new"},
	}
	r := NewReconciler(store, &fakeTotals{total: decimal.NewFromInt(10)}, provider)

	url, err := r.Request(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/ch-new", url)
	require.Equal(t, []string{"ch-new"}, store.paymentIDs)
}

func TestReconcileWithoutChargeKeepsStatus(t *testing.T) {
	store := &fakeStore{order: notPaidOrder()}
	provider := &fakeProvider{}
	r := NewReconciler(store, &fakeTotals{}, provider)

	status, err := r.Reconcile(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, models.StatusNotPaid, status)
	require.Zero(t, store.paidCalls)
}

func TestReconcilePendingChargeKeepsStatus(t *testing.T) {
	order := notPaidOrder()
	order.PaymentID = sql.NullString{String: "ch-1", Valid: true}
	store := &fakeStore{order: order}
	r := NewReconciler(store, &fakeTotals{}, &fakeProvider{findStatus: ChargePending})

	status, err := r.Reconcile(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, models.StatusNotPaid, status)
}

func TestReconcileSucceededChargeMarksPaid(t *testing.T) {
	order := notPaidOrder()
	order.PaymentID = sql.NullString{String: "ch-1", Valid: true}
	store := &fakeStore{order: order}
	r := NewReconciler(store, &fakeTotals{}, &fakeProvider{findStatus: ChargeSucceeded})

	status, err := r.Reconcile(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, models.StatusPaid, status)
	require.Equal(t, 1, store.paidCalls)
	require.False(t, store.order.PaymentID.Valid)
}

func TestReconcileTerminalOrderSkipsProvider(t *testing.T) {
	order := &models.Order{
		ID:        1,
		Status:    models.StatusPaid,
		PaymentID: sql.NullString{String: "ch-1", Valid: true},
	}
	store := &fakeStore{order: order}
	provider := &fakeProvider{findErr: shoperr.ErrProviderUnavailable}
	r := NewReconciler(store, &fakeTotals{}, provider)

	status, err := r.Reconcile(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, models.StatusPaid, status)
}

func TestRequestProviderFailure(t *testing.T) {
	store := &fakeStore{order: notPaidOrder()}
	provider := &fakeProvider{createErr: shoperr.ErrProviderUnavailable}
	r := NewReconciler(store, &fakeTotals{total: decimal.NewFromInt(10)}, provider)

	_, err := r.Request(context.Background(), 1)
	require.ErrorIs(t, err, shoperr.ErrProviderUnavailable)
	require.Empty(t, store.paymentIDs)
}
