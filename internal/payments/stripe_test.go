package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripeCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment_intents" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			t.Fatalf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		_ = r.ParseForm()
		if r.PostForm.Get("amount") != "9900" || r.PostForm.Get("currency") != "usd" {
			t.Fatalf("unexpected form: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "pi_test", "client_secret": "pi_test_secret", "amount": 9900, "currency": "usd", "status": "requires_payment_method",
		})
	}))
	defer srv.Close()

	g := NewStripeGateway("sk_test", false)
	g.BaseURL = srv.URL

	order, err := g.CreateOrder(context.Background(), 9900, 7)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.OrderID != "pi_test" || order.ClientSecret != "pi_test_secret" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestStripeVerifyPayment(t *testing.T) {
	status := "succeeded"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment_intents/pi_test" || r.Method != http.MethodGet {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "pi_test", "amount": 9900, "currency": "usd", "status": status,
		})
	}))
	defer srv.Close()

	g := NewStripeGateway("sk_test", false)
	g.BaseURL = srv.URL

	v, err := g.VerifyPayment(context.Background(), Proof{PaymentIntentID: "pi_test"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !v.Valid || v.PaymentID != "pi_test" {
		t.Fatalf("expected succeeded intent to be valid, got %+v", v)
	}

	status = "requires_payment_method"
	v, err = g.VerifyPayment(context.Background(), Proof{PaymentIntentID: "pi_test"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if v.Valid {
		t.Fatal("unpaid intent must be invalid")
	}
}

func TestStripeVerifyMissingIntentID(t *testing.T) {
	g := NewStripeGateway("sk_test", false)
	v, err := g.VerifyPayment(context.Background(), Proof{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Valid {
		t.Fatal("empty proof must be invalid")
	}
}
