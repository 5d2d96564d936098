package billing

import (
	"encoding/json"
	"errors"
	"strings"
)

// ParseStripeWebhookEvent decodes the subset of a Stripe event envelope the
// sync path consumes. Checkout sessions and subscriptions share the same
// data.object decoding; fields absent for one object type stay zero.
func ParseStripeWebhookEvent(payload []byte) (*StripeWebhookEvent, error) {
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID              string `json:"id"`
				Customer        string `json:"customer"`
				CustomerEmail   string `json:"customer_email"`
				CustomerDetails struct {
					Email string `json:"email"`
				} `json:"customer_details"`
				Subscription      string `json:"subscription"`
				Status            string `json:"status"`
				CurrentPeriodEnd  int64  `json:"current_period_end"`
				CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.Type) == "" {
		return nil, errors.New("stripe event type is missing")
	}

	email := strings.TrimSpace(raw.Data.Object.CustomerEmail)
	if email == "" {
		email = strings.TrimSpace(raw.Data.Object.CustomerDetails.Email)
	}

	return &StripeWebhookEvent{
		ID:   strings.TrimSpace(raw.ID),
		Type: strings.TrimSpace(raw.Type),
		Object: StripeWebhookObject{
			ID:                strings.TrimSpace(raw.Data.Object.ID),
			Customer:          strings.TrimSpace(raw.Data.Object.Customer),
			CustomerEmail:     email,
			Subscription:      strings.TrimSpace(raw.Data.Object.Subscription),
			Status:            strings.TrimSpace(raw.Data.Object.Status),
			CurrentPeriodEnd:  raw.Data.Object.CurrentPeriodEnd,
			CancelAtPeriodEnd: raw.Data.Object.CancelAtPeriodEnd,
		},
	}, nil
}
