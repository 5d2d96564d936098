package entitlements

import (
	"testing"
	"time"

	"github.com/shot2code/shot2code/app/models"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name     string
		user     *models.User
		hasUsed  bool
		expected Decision
	}{
		{
			name:     "active subscriber passes regardless of trial state",
			user:     &models.User{StripeSubscriptionID: "sub_123", SubscriptionPeriodEnd: &future},
			hasUsed:  true,
			expected: ActiveSubscriber,
		},
		{
			name:     "active subscriber with unused trial still resolves as subscriber",
			user:     &models.User{StripeSubscriptionID: "sub_123", SubscriptionPeriodEnd: &future},
			hasUsed:  false,
			expected: ActiveSubscriber,
		},
		{
			name:     "expired subscription with unused trial grants trial",
			user:     &models.User{StripeSubscriptionID: "sub_123", SubscriptionPeriodEnd: &past},
			hasUsed:  false,
			expected: TrialGranted,
		},
		{
			name:     "expired subscription with used trial requires billing",
			user:     &models.User{StripeSubscriptionID: "sub_123", SubscriptionPeriodEnd: &past},
			hasUsed:  true,
			expected: BillingRequired,
		},
		{
			name:     "subscription id without period end is not active",
			user:     &models.User{StripeSubscriptionID: "sub_123"},
			hasUsed:  true,
			expected: BillingRequired,
		},
		{
			name:     "period end without subscription id is not active",
			user:     &models.User{SubscriptionPeriodEnd: &future},
			hasUsed:  true,
			expected: BillingRequired,
		},
		{
			name:     "period end exactly now is not strictly future",
			user:     &models.User{StripeSubscriptionID: "sub_123", SubscriptionPeriodEnd: &now},
			hasUsed:  false,
			expected: TrialGranted,
		},
		{
			name:     "fresh user gets the trial",
			user:     &models.User{},
			hasUsed:  false,
			expected: TrialGranted,
		},
		{
			name:     "fresh user with spent trial requires billing",
			user:     &models.User{},
			hasUsed:  true,
			expected: BillingRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.user, tt.hasUsed, now); got != tt.expected {
				t.Fatalf("Evaluate() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsActiveSubscriberNilUser(t *testing.T) {
	if IsActiveSubscriber(nil, time.Now()) {
		t.Fatalf("expected nil user to not be an active subscriber")
	}
}
