package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const stripeBaseURL = "https://api.stripe.com/v1"

// StripeGateway — прямой HTTP-клиент к PaymentIntents API (form-encoded, bearer-ключ).
type StripeGateway struct {
	SecretKey string
	BaseURL   string // для тестов
	DryRun    bool
	client    *http.Client
}

func NewStripeGateway(secretKey string, dryRun bool) *StripeGateway {
	return &StripeGateway{
		SecretKey: secretKey,
		BaseURL:   stripeBaseURL,
		DryRun:    dryRun,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *StripeGateway) Name() string { return "stripe" }

type stripeIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// CreateOrder — amount в центах.
func (g *StripeGateway) CreateOrder(ctx context.Context, amount int64, userID int64) (*Order, error) {
	if g.DryRun {
		fmt.Printf("💳 [stripe][dry-run] intent amount=%d user_id=%d\n", amount, userID)
		return &Order{
			OrderID:      fmt.Sprintf("pi_dryrun_%d", userID),
			ClientSecret: fmt.Sprintf("pi_dryrun_%d_secret", userID),
			Amount:       amount,
			Currency:     "usd",
		}, nil
	}
	if g.SecretKey == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{
		"amount":           {fmt.Sprintf("%d", amount)},
		"currency":         {"usd"},
		"metadata[userId]": {fmt.Sprintf("%d", userID)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	intent, err := g.doIntent(req)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent: %w", err)
	}
	return &Order{
		OrderID:      intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
	}, nil
}

// VerifyPayment — серверный lookup интента: оплачен, только если status == "succeeded".
func (g *StripeGateway) VerifyPayment(ctx context.Context, proof Proof) (Verification, error) {
	if proof.PaymentIntentID == "" {
		return Verification{}, nil
	}
	if g.DryRun {
		return Verification{Valid: true, PaymentID: proof.PaymentIntentID}, nil
	}
	if g.SecretKey == "" {
		return Verification{}, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/payment_intents/"+url.PathEscape(proof.PaymentIntentID), nil)
	if err != nil {
		return Verification{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.SecretKey)

	intent, err := g.doIntent(req)
	if err != nil {
		return Verification{}, fmt.Errorf("stripe retrieve intent: %w", err)
	}
	if intent.Status != "succeeded" {
		return Verification{}, nil
	}
	return Verification{Valid: true, PaymentID: intent.ID}, nil
}

func (g *StripeGateway) doIntent(req *http.Request) (*stripeIntentResponse, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status=%d body=%s", resp.StatusCode, string(respBody))
	}
	var intent stripeIntentResponse
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &intent, nil
}
