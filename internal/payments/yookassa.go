package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/shopbot/internal/shoperr"
)

const (
	defaultBaseURL     = "https://api.yookassa.ru/v3"
	defaultDialTimeout = 5 * time.Second
	defaultAPITimeout  = 10 * time.Second
)

// YooKassaConfig carries shop credentials for the YooKassa API.
type YooKassaConfig struct {
	ShopID    string
	SecretKey string
	BaseURL   string
	ReturnURL string
	Currency  string
}

// YooKassa talks to the YooKassa payments API.
type YooKassa struct {
	cfg    YooKassaConfig
	client *http.Client
}

// NewYooKassa builds a provider client. A nil httpClient gets a tuned default.
func NewYooKassa(cfg YooKassaConfig, httpClient *http.Client) *YooKassa {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Currency == "" {
		cfg.Currency = "RUB"
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: defaultAPITimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: defaultDialTimeout}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	return &YooKassa{cfg: cfg, client: httpClient}
}

type ykAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type ykConfirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type ykPayment struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	Amount       ykAmount        `json:"amount"`
	Capture      bool            `json:"capture,omitempty"`
	Description  string          `json:"description,omitempty"`
	Confirmation *ykConfirmation `json:"confirmation,omitempty"`
}

// CreateCharge creates a capture-enabled payment with a redirect confirmation.
// Each call carries a fresh idempotence key, so callers must persist the
// returned charge id themselves.
func (y *YooKassa) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = y.cfg.ReturnURL
	}
	body := ykPayment{
		Amount:      ykAmount{Value: req.Amount.StringFixed(2), Currency: y.cfg.Currency},
		Capture:     true,
		Description: req.Description,
		Confirmation: &ykConfirmation{
			Type:      "redirect",
			ReturnURL: returnURL,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("payments: marshal payment: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, y.cfg.BaseURL+"/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("payments: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotence-Key", uuid.NewString())

	var out ykPayment
	if err := y.do(httpReq, &out); err != nil {
		return nil, err
	}
	return toCharge(&out), nil
}

// FindCharge fetches the current state of a payment.
func (y *YooKassa) FindCharge(ctx context.Context, chargeID string) (*Charge, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, y.cfg.BaseURL+"/payments/"+chargeID, nil)
	if err != nil {
		return nil, fmt.Errorf("payments: build request: %w", err)
	}

	var out ykPayment
	if err := y.do(httpReq, &out); err != nil {
		return nil, err
	}
	return toCharge(&out), nil
}

func (y *YooKassa) do(req *http.Request, out *ykPayment) error {
	req.SetBasicAuth(y.cfg.ShopID, y.cfg.SecretKey)

	resp, err := y.client.Do(req)
	if err != nil {
		return shoperr.Wrap(shoperr.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return shoperr.Wrap(shoperr.ErrProviderUnavailable, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return shoperr.Wrap(shoperr.ErrProviderUnavailable,
			fmt.Errorf("provider returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payments: provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("payments: decode response: %w", err)
	}
	return nil
}

func toCharge(p *ykPayment) *Charge {
	c := &Charge{ID: p.ID, Status: p.Status}
	if p.Confirmation != nil {
		c.ConfirmationURL = p.Confirmation.ConfirmationURL
	}
	return c
}
