package billing

import "strings"

// Subscription status values mirrored from Stripe.
const (
	StatusActive     = "active"
	StatusTrialing   = "trialing"
	StatusPastDue    = "past_due"
	StatusCanceled   = "canceled"
	StatusIncomplete = "incomplete"
	StatusUnpaid     = "unpaid"
	StatusPaused     = "paused"
)

func isEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusActive, StatusTrialing, StatusPastDue:
		return true
	default:
		return false
	}
}
