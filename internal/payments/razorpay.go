package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayGateway — прямой HTTP-клиент к Orders API (без SDK).
// Подпись оплаты проверяется локально: HMAC_SHA256(secret, orderID+"|"+paymentID).
type RazorpayGateway struct {
	KeyID     string
	KeySecret string
	BaseURL   string // для тестов; по умолчанию боевой API
	DryRun    bool
	client    *http.Client
}

func NewRazorpayGateway(keyID, keySecret string, dryRun bool) *RazorpayGateway {
	return &RazorpayGateway{
		KeyID:     keyID,
		KeySecret: keySecret,
		BaseURL:   razorpayBaseURL,
		DryRun:    dryRun,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateOrder — amount в пайсах.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, userID int64) (*Order, error) {
	if g.DryRun {
		fmt.Printf("💳 [razorpay][dry-run] order amount=%d user_id=%d\n", amount, userID)
		return &Order{OrderID: fmt.Sprintf("order_dryrun_%d", userID), Amount: amount, Currency: "INR"}, nil
	}
	if g.KeyID == "" || g.KeySecret == "" {
		return nil, ErrNotConfigured
	}

	receipt, err := shortReceipt()
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"amount":   amount,
		"currency": "INR",
		"receipt":  receipt,
		"notes": map[string]string{
			"userId": fmt.Sprintf("%d", userID),
		},
	}
	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/orders", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.KeyID, g.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay create order: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var result razorpayOrderResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("razorpay parse response: %w", err)
	}
	return &Order{OrderID: result.ID, Amount: result.Amount, Currency: result.Currency}, nil
}

// VerifyPayment — оффлайн-проверка подписи. Отсутствующее поле — просто
// невалидный вердикт, без ошибки.
func (g *RazorpayGateway) VerifyPayment(_ context.Context, proof Proof) (Verification, error) {
	if proof.RazorpayOrderID == "" || proof.RazorpayPaymentID == "" || proof.RazorpaySignature == "" {
		return Verification{}, nil
	}
	if g.KeySecret == "" {
		return Verification{}, ErrNotConfigured
	}

	mac := hmac.New(sha256.New, []byte(g.KeySecret))
	mac.Write([]byte(proof.RazorpayOrderID + "|" + proof.RazorpayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(proof.RazorpaySignature)) {
		return Verification{}, nil
	}
	return Verification{Valid: true, PaymentID: proof.RazorpayPaymentID}, nil
}

// SignProof — подпись в формате Razorpay; используется dry-run сценариями.
func (g *RazorpayGateway) SignProof(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(g.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func shortReceipt() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "rcpt_" + hex.EncodeToString(b), nil
}
