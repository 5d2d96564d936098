package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string][]string
	var gotUser string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":  "cs_test_1",
			"url": "https://checkout.stripe.com/pay/cs_test_1",
		})
	}))
	defer srv.Close()

	c := &StripeClient{
		SecretKey:  "sk_test",
		PriceID:    "price_123",
		APIBaseURL: srv.URL,
		HTTPClient: srv.Client(),
	}

	sess, err := c.CreateCheckoutSession(context.Background(), "alice@example.com",
		"https://app.example.com/dashboard?checkout=success",
		"https://app.example.com/subscription?checkout=canceled",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.URL != "https://checkout.stripe.com/pay/cs_test_1" {
		t.Fatalf("unexpected session url %q", sess.URL)
	}
	if gotUser != "sk_test" {
		t.Fatalf("expected secret key as basic auth user, got %q", gotUser)
	}
	if got := gotForm["mode"]; len(got) != 1 || got[0] != "subscription" {
		t.Fatalf("unexpected mode %v", got)
	}
	if got := gotForm["line_items[0][price]"]; len(got) != 1 || got[0] != "price_123" {
		t.Fatalf("unexpected price %v", got)
	}
	if got := gotForm["customer_email"]; len(got) != 1 || got[0] != "alice@example.com" {
		t.Fatalf("unexpected customer email %v", got)
	}
}

func TestCreateCheckoutSessionValidation(t *testing.T) {
	c := &StripeClient{HTTPClient: http.DefaultClient}
	if _, err := c.CreateCheckoutSession(context.Background(), "a@b.com", "s", "c"); err == nil {
		t.Fatalf("expected error without secret key")
	}
	c.SecretKey = "sk_test"
	if _, err := c.CreateCheckoutSession(context.Background(), "a@b.com", "s", "c"); err == nil {
		t.Fatalf("expected error without price id")
	}
	c.PriceID = "price_123"
	if _, err := c.CreateCheckoutSession(context.Background(), "  ", "s", "c"); err == nil {
		t.Fatalf("expected error without customer email")
	}
}

func TestGetSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subscriptions/sub_123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                   "sub_123",
			"customer":             "cus_1",
			"status":               "active",
			"current_period_end":   1750000000,
			"cancel_at_period_end": false,
		})
	}))
	defer srv.Close()

	c := &StripeClient{SecretKey: "sk_test", APIBaseURL: srv.URL, HTTPClient: srv.Client()}
	sub, err := c.GetSubscription(context.Background(), "sub_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Status != StatusActive {
		t.Fatalf("unexpected status %q", sub.Status)
	}
	if end := sub.CurrentPeriodEndTime(); end == nil || end.Unix() != 1750000000 {
		t.Fatalf("unexpected period end %v", end)
	}
}

func TestGetSubscriptionUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"no such subscription"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := &StripeClient{SecretKey: "sk_test", APIBaseURL: srv.URL, HTTPClient: srv.Client()}
	if _, err := c.GetSubscription(context.Background(), "sub_missing"); err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}
