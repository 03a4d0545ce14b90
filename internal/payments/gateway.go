package payments

import (
	"context"
	"errors"
)

// ErrNotConfigured — у шлюза нет ключей или выбран неизвестный провайдер.
var ErrNotConfigured = errors.New("payment gateway is not configured")

// Order — открытая к оплате транзакция на стороне провайдера.
// ClientSecret заполняется только Stripe-подобными шлюзами.
type Order struct {
	OrderID      string `json:"orderId"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Amount       int64  `json:"amount"` // в минимальных единицах (пайсы/центы)
	Currency     string `json:"currency"`
}

// Proof — провайдер-специфичное доказательство оплаты из фронтенда.
// Razorpay присылает тройку orderID/paymentID/signature, Stripe — intent id.
type Proof struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	PaymentIntentID   string `json:"paymentIntentId"`
}

// Verification — вердикт шлюза. Невалидное доказательство — это не ошибка:
// Valid=false, err=nil.
type Verification struct {
	Valid     bool
	PaymentID string
}

type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, amount int64, userID int64) (*Order, error)
	VerifyPayment(ctx context.Context, proof Proof) (Verification, error)
}
