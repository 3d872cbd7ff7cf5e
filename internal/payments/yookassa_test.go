package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/shoperr"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*YooKassa, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	yk := NewYooKassa(YooKassaConfig{
		ShopID:    "shop-1",
		SecretKey: "secret",
		BaseURL:   srv.URL,
		ReturnURL: "https://t.me/shop",
	}, srv.Client())
	return yk, srv
}

func TestCreateChargeRequestShape(t *testing.T) {
	var got ykPayment
	var idempotenceKey, user, pass string
	yk, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payments", r.URL.Path)
		idempotenceKey = r.Header.Get("Idempotence-Key")
		user, pass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		resp := ykPayment{
			ID:     "ch-1",
			Status: ChargePending,
			Confirmation: &ykConfirmation{
				Type:            "redirect",
				ConfirmationURL: "https://pay.example/ch-1",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	charge, err := yk.CreateCharge(context.Background(), ChargeRequest{
		Amount:      decimal.RequireFromString("19.99"),
		Description: "Order #1",
	})
	require.NoError(t, err)
	require.Equal(t, "ch-1", charge.ID)
	require.Equal(t, "https://pay.example/ch-1", charge.ConfirmationURL)

	require.NotEmpty(t, idempotenceKey)
	require.Equal(t, "shop-1", user)
	require.Equal(t, "secret", pass)
	require.Equal(t, "19.99", got.Amount.Value)
	require.Equal(t, "RUB", got.Amount.Currency)
	require.True(t, got.Capture)
	require.Equal(t, "https://t.me/shop", got.Confirmation.ReturnURL)
}

func TestFindCharge(t *testing.T) {
	yk, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/payments/ch-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(ykPayment{ID: "ch-1", Status: ChargeSucceeded})
	})

	charge, err := yk.FindCharge(context.Background(), "ch-1")
	require.NoError(t, err)
	require.Equal(t, ChargeSucceeded, charge.Status)
}

func TestServerErrorIsProviderUnavailable(t *testing.T) {
	yk, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := yk.FindCharge(context.Background(), "ch-1")
	require.ErrorIs(t, err, shoperr.ErrProviderUnavailable)
}

func TestClientErrorIsNotRetryable(t *testing.T) {
	yk, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"error","code":"not_found"}`))
	})

	_, err := yk.FindCharge(context.Background(), "ch-missing")
	require.Error(t, err)
	require.NotErrorIs(t, err, shoperr.ErrProviderUnavailable)
}

func TestNetworkErrorIsProviderUnavailable(t *testing.T) {
	yk, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := yk.FindCharge(context.Background(), "ch-1")
	require.ErrorIs(t, err, shoperr.ErrProviderUnavailable)
}
