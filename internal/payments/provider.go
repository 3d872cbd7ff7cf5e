// Package payments charges orders through an external provider and reconciles
// their paid state back into storage.
package payments

import (
	"context"

	"github.com/shopspring/decimal"
)

// Charge statuses as reported by the provider.
const (
	ChargeSucceeded = "succeeded"
	ChargePending   = "pending"
	ChargeCanceled  = "canceled"
)

// Charge is a provider-side payment object.
type Charge struct {
	ID              string
	Status          string
	ConfirmationURL string
}

// ChargeRequest describes a payment to create.
type ChargeRequest struct {
	Amount      decimal.Decimal
	Description string
	ReturnURL   string
}

// Provider abstracts the payment gateway.
type Provider interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	FindCharge(ctx context.Context, chargeID string) (*Charge, error)
}
