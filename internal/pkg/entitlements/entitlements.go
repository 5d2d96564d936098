package entitlements

import (
	"time"

	"github.com/shot2code/shot2code/app/models"
)

type Decision string

const (
	// ActiveSubscriber means the user has a paid subscription whose period end
	// is strictly in the future.
	ActiveSubscriber Decision = "active_subscriber"
	// TrialGranted means no active subscription, but the free trial for this
	// (email, origin) pair has not been consumed yet.
	TrialGranted Decision = "trial_granted"
	// BillingRequired means no active subscription and the trial is spent.
	BillingRequired Decision = "billing_required"
)

// Evaluate computes the access level for a request. The subscriber check runs
// first; trial eligibility is independent of subscription history, so an
// expired subscriber with an unused trial lands in the trial branch.
func Evaluate(user *models.User, hasUsedTrial bool, now time.Time) Decision {
	if IsActiveSubscriber(user, now) {
		return ActiveSubscriber
	}
	if !hasUsedTrial {
		return TrialGranted
	}
	return BillingRequired
}

// IsActiveSubscriber reports whether the user has a subscription id and a
// period end strictly after now. No grace period, no lookahead.
func IsActiveSubscriber(user *models.User, now time.Time) bool {
	if user == nil {
		return false
	}
	return user.StripeSubscriptionID != "" &&
		user.SubscriptionPeriodEnd != nil &&
		user.SubscriptionPeriodEnd.After(now)
}
