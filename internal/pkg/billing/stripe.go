package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shot2code/shot2code/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

// StripeClient is a thin REST client for the handful of Stripe endpoints the
// app consumes. Stripe's own checkout and billing lifecycle stay on their side;
// we only create checkout sessions and read subscription state back.
type StripeClient struct {
	SecretKey  string
	PriceID    string
	APIBaseURL string

	HTTPClient *http.Client
}

// StripeCheckoutSession is the subset of a Checkout Session the app uses.
type StripeCheckoutSession struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Customer string `json:"customer"`
}

// StripeSubscription is the subset of a Subscription the app mirrors locally.
type StripeSubscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

// CurrentPeriodEndTime converts the unix period end to a *time.Time, nil when unset.
func (s *StripeSubscription) CurrentPeriodEndTime() *time.Time {
	if s.CurrentPeriodEnd <= 0 {
		return nil
	}
	t := time.Unix(s.CurrentPeriodEnd, 0)
	return &t
}

func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		PriceID:    strings.TrimSpace(env.GetEnv("STRIPE_PRICE_ID", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCheckoutSession opens a subscription checkout for the given customer
// email and returns the hosted session the browser should be redirected to.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, customerEmail, successURL, cancelURL string) (*StripeCheckoutSession, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}
	if strings.TrimSpace(c.PriceID) == "" {
		return nil, errors.New("STRIPE_PRICE_ID is not configured")
	}
	if strings.TrimSpace(customerEmail) == "" {
		return nil, errors.New("customer email is required")
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer_email", strings.TrimSpace(customerEmail))
	form.Set("line_items[0][price]", c.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)

	var out StripeCheckoutSession
	if err := c.postForm(ctx, "/checkout/sessions", form, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.URL) == "" {
		return nil, errors.New("stripe checkout session returned empty url")
	}
	return &out, nil
}

// GetSubscription fetches the current state of a subscription.
func (c *StripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*StripeSubscription, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}
	id := strings.TrimSpace(subscriptionID)
	if id == "" {
		return nil, errors.New("subscription id is required")
	}

	var out StripeSubscription
	if err := c.get(ctx, "/subscriptions/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *StripeClient) postForm(ctx context.Context, path string, form url.Values, out any) error {
	endpoint := strings.TrimRight(c.APIBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *StripeClient) get(ctx context.Context, path string, out any) error {
	endpoint := strings.TrimRight(c.APIBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *StripeClient) do(req *http.Request, out any) error {
	req.SetBasicAuth(c.SecretKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stripe request failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
