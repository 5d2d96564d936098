package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shot2code/shot2code/app/models"
)

// Service provides provider-neutral billing synchronization: webhook event
// persistence and mirroring of subscription state onto the user row. Stripe's
// own billing state machine stays external.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// ResolveUserForCustomer maps a Stripe customer id, falling back to the
// checkout email, onto a local user. The fallback also links the customer id
// for future webhook deliveries.
func (s *Service) ResolveUserForCustomer(ctx context.Context, customerID, email string) (*models.User, error) {
	_ = ctx
	cID := strings.TrimSpace(customerID)
	if cID != "" {
		user, err := s.repo.GetUserByStripeCustomerID(cID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if strings.TrimSpace(email) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if cID != "" && user.StripeCustomerID == "" {
		if err := s.repo.LinkStripeCustomer(user.ID, cID); err != nil {
			return nil, err
		}
		user.StripeCustomerID = cID
	}
	return user, nil
}

// SyncSubscription mirrors provider subscription state onto the user row.
// A non-entitling status clears the period end so the entitlement check stops
// treating the user as a subscriber; the subscription id is kept for history.
func (s *Service) SyncSubscription(ctx context.Context, in NormalizedSubscription) error {
	_ = ctx
	if in.UserID == 0 || strings.TrimSpace(in.ProviderSubscriptionID) == "" {
		return errors.New("user_id and provider_subscription_id are required")
	}

	periodEnd := in.CurrentPeriodEnd
	if !isEntitlingStatus(in.Status) {
		periodEnd = nil
	}
	return s.repo.UpdateUserSubscription(in.UserID, strings.TrimSpace(in.ProviderSubscriptionID), periodEnd)
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// ParseStripeWebhookEvent extracts the fields the sync path needs from a raw
// Stripe event payload.
type StripeWebhookEvent struct {
	ID     string
	Type   string
	Object StripeWebhookObject
}

// StripeWebhookObject is the data.object subset shared by checkout sessions
// and subscriptions.
type StripeWebhookObject struct {
	ID                string
	Customer          string
	CustomerEmail     string
	Subscription      string
	Status            string
	CurrentPeriodEnd  int64
	CancelAtPeriodEnd bool
}

// CurrentPeriodEndTime converts the unix period end to a *time.Time, nil when unset.
func (o *StripeWebhookObject) CurrentPeriodEndTime() *time.Time {
	if o.CurrentPeriodEnd <= 0 {
		return nil
	}
	t := time.Unix(o.CurrentPeriodEnd, 0)
	return &t
}
