package payments

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
	"log/slog"
)

// Store is the persistence surface the reconciler needs.
type Store interface {
	OrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	SetOrderPaymentID(ctx context.Context, orderID int64, paymentID string) error
	MarkOrderPaid(ctx context.Context, orderID int64) (bool, error)
}

// Totals computes the amount an order charges for.
type Totals interface {
	Total(ctx context.Context, orderID int64) (decimal.Decimal, error)
}

// Reconciler drives the order payment lifecycle: issuing charges and folding
// provider state back into order status.
type Reconciler struct {
	store    Store
	totals   Totals
	provider Provider
}

// NewReconciler wires the reconciler to storage, totals and the gateway.
func NewReconciler(store Store, totals Totals, provider Provider) *Reconciler {
	return &Reconciler{store: store, totals: totals, provider: provider}
}

// Request issues a charge for the order and returns the confirmation URL the
// user must visit. Already-paid orders are refused; a pending charge on the
// order is reconciled first and refused only if it turned out paid, otherwise
// a new charge replaces it. Zero-amount orders cannot be charged.
func (r *Reconciler) Request(ctx context.Context, orderID int64) (string, error) {
	o, err := r.store.OrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o.Status.Terminal() {
		return "", shoperr.ErrAlreadyPaid
	}
	if o.PaymentID.Valid && o.PaymentID.String != "" {
		status, err := r.Reconcile(ctx, orderID)
		if err != nil {
			return "", err
		}
		if status.Terminal() {
			return "", shoperr.ErrAlreadyPaid
		}
	}

	amount, err := r.totals.Total(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !amount.IsPositive() {
		return "", shoperr.ErrZeroAmount
	}

	charge, err := r.provider.CreateCharge(ctx, ChargeRequest{
		Amount:      amount,
		Description: fmt.Sprintf("Order #%d", orderID),
	})
	if err != nil {
		logger.SVCPayments.Error("charge create failed",
			slog.String("event", "payment.request"),
			slog.Int64("order_id", orderID),
			slog.String("err", err.Error()),
		)
		return "", err
	}
	if err := r.store.SetOrderPaymentID(ctx, orderID, charge.ID); err != nil {
		return "", err
	}
	logger.SVCPayments.Info("charge created",
		slog.String("event", "payment.request"),
		slog.Int64("order_id", orderID),
		slog.String("payment_id", charge.ID),
		slog.String("amount", amount.StringFixed(2)),
	)
	return charge.ConfirmationURL, nil
}

// Reconcile folds the provider's view of the order's charge into the order
// status. Orders without a charge, and charges still pending, keep their
// current status; a succeeded charge flips not-paid to paid exactly once and
// clears the stored payment id. Safe to call repeatedly from any path.
func (r *Reconciler) Reconcile(ctx context.Context, orderID int64) (models.OrderStatus, error) {
	o, err := r.store.OrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o.Status.Terminal() || !o.PaymentID.Valid || o.PaymentID.String == "" {
		return o.Status, nil
	}

	charge, err := r.provider.FindCharge(ctx, o.PaymentID.String)
	if err != nil {
		return "", err
	}
	if charge.Status != ChargeSucceeded {
		return o.Status, nil
	}

	flipped, err := r.store.MarkOrderPaid(ctx, orderID)
	if err != nil {
		return "", err
	}
	if flipped {
		logger.SVCPayments.Info("order paid",
			slog.String("event", "payment.reconcile"),
			slog.Int64("order_id", orderID),
			slog.String("payment_id", o.PaymentID.String),
		)
	}
	return models.StatusPaid, nil
}
