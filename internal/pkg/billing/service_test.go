package billing

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/shot2code/shot2code/app/models"
)

type fakeBillingRepo struct {
	usersByEmail    map[string]*models.User
	usersByCustomer map[string]*models.User

	linkedCustomers map[uint]string
	subUpdates      []subUpdate
	storedEvents    map[string]*models.BillingWebhookEvent
	processed       map[uint]string
}

type subUpdate struct {
	userID    uint
	subID     string
	periodEnd *time.Time
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{
		usersByEmail:    map[string]*models.User{},
		usersByCustomer: map[string]*models.User{},
		linkedCustomers: map[uint]string{},
		storedEvents:    map[string]*models.BillingWebhookEvent{},
		processed:       map[uint]string{},
	}
}

func (f *fakeBillingRepo) GetUserByEmail(email string) (*models.User, error) {
	if u, ok := f.usersByEmail[models.NormalizeEmail(email)]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBillingRepo) GetUserByStripeCustomerID(customerID string) (*models.User, error) {
	if u, ok := f.usersByCustomer[customerID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBillingRepo) LinkStripeCustomer(userID uint, customerID string) error {
	f.linkedCustomers[userID] = customerID
	return nil
}

func (f *fakeBillingRepo) UpdateUserSubscription(userID uint, subscriptionID string, periodEnd *time.Time) error {
	f.subUpdates = append(f.subUpdates, subUpdate{userID: userID, subID: subscriptionID, periodEnd: periodEnd})
	return nil
}

func (f *fakeBillingRepo) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	key := event.Provider + "/" + event.ProviderEventID
	if stored, ok := f.storedEvents[key]; ok {
		return false, stored, nil
	}
	event.ID = uint(len(f.storedEvents) + 1)
	f.storedEvents[key] = event
	return true, event, nil
}

func (f *fakeBillingRepo) MarkWebhookProcessed(id uint, processingError string) error {
	f.processed[id] = processingError
	return nil
}

func TestResolveUserForCustomerByCustomerID(t *testing.T) {
	repo := newFakeBillingRepo()
	user := &models.User{ID: 1, Email: "alice@example.com", StripeCustomerID: "cus_123"}
	repo.usersByCustomer["cus_123"] = user

	svc := NewService(repo)
	got, err := svc.ResolveUserForCustomer(context.Background(), "cus_123", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("unexpected user id %d", got.ID)
	}
}

func TestResolveUserForCustomerEmailFallbackLinks(t *testing.T) {
	repo := newFakeBillingRepo()
	user := &models.User{ID: 2, Email: "bob@example.com"}
	repo.usersByEmail["bob@example.com"] = user

	svc := NewService(repo)
	got, err := svc.ResolveUserForCustomer(context.Background(), "cus_999", "Bob@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 2 {
		t.Fatalf("unexpected user id %d", got.ID)
	}
	if repo.linkedCustomers[2] != "cus_999" {
		t.Fatalf("expected customer id to be linked, got %q", repo.linkedCustomers[2])
	}
	if got.StripeCustomerID != "cus_999" {
		t.Fatalf("expected in-memory user to carry the linked id")
	}
}

func TestResolveUserForCustomerUnknown(t *testing.T) {
	svc := NewService(newFakeBillingRepo())
	if _, err := svc.ResolveUserForCustomer(context.Background(), "cus_x", "nobody@example.com"); err == nil {
		t.Fatalf("expected not-found error")
	}
	if _, err := svc.ResolveUserForCustomer(context.Background(), "", ""); err == nil {
		t.Fatalf("expected not-found error with no identifiers")
	}
}

func TestSyncSubscriptionEntitlingKeepsPeriodEnd(t *testing.T) {
	repo := newFakeBillingRepo()
	svc := NewService(repo)

	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:                 1,
		Provider:               models.BillingProviderStripe,
		ProviderSubscriptionID: "sub_123",
		Status:                 StatusActive,
		CurrentPeriodEnd:       &end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.subUpdates) != 1 {
		t.Fatalf("expected one update, got %d", len(repo.subUpdates))
	}
	up := repo.subUpdates[0]
	if up.subID != "sub_123" || up.periodEnd == nil || !up.periodEnd.Equal(end) {
		t.Fatalf("unexpected update: %+v", up)
	}
}

func TestSyncSubscriptionNonEntitlingClearsPeriodEnd(t *testing.T) {
	repo := newFakeBillingRepo()
	svc := NewService(repo)

	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:                 1,
		ProviderSubscriptionID: "sub_123",
		Status:                 StatusCanceled,
		CurrentPeriodEnd:       &end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	up := repo.subUpdates[0]
	if up.periodEnd != nil {
		t.Fatalf("expected period end to be cleared for canceled status")
	}
	if up.subID != "sub_123" {
		t.Fatalf("expected subscription id to be kept for history, got %q", up.subID)
	}
}

func TestSyncSubscriptionValidation(t *testing.T) {
	svc := NewService(newFakeBillingRepo())
	if err := svc.SyncSubscription(context.Background(), NormalizedSubscription{UserID: 0, ProviderSubscriptionID: "sub_1"}); err == nil {
		t.Fatalf("expected error for missing user id")
	}
	if err := svc.SyncSubscription(context.Background(), NormalizedSubscription{UserID: 1, ProviderSubscriptionID: " "}); err == nil {
		t.Fatalf("expected error for missing subscription id")
	}
}

func TestRecordWebhookEventDeduplicates(t *testing.T) {
	repo := newFakeBillingRepo()
	svc := NewService(repo)

	in := WebhookEventInput{
		Provider:        "Stripe",
		ProviderEventID: "evt_1",
		EventType:       "checkout.session.completed",
		PayloadJSON:     `{"id":"evt_1"}`,
		SignatureValid:  true,
	}

	created, stored, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("expected first delivery to create the event")
	}
	if stored.Provider != models.BillingProviderStripe {
		t.Fatalf("expected provider to be lowercased, got %q", stored.Provider)
	}

	created, stored2, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("expected repeat delivery to be deduplicated")
	}
	if stored2.ID != stored.ID {
		t.Fatalf("expected the stored row to be returned for duplicates")
	}
}

func TestRecordWebhookEventHashesMissingID(t *testing.T) {
	repo := newFakeBillingRepo()
	svc := NewService(repo)

	_, stored, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    models.BillingProviderStripe,
		PayloadJSON: `{"no":"id"}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(stored.ProviderEventID, "hash:") {
		t.Fatalf("expected hashed fallback event id, got %q", stored.ProviderEventID)
	}
}

func TestMarkWebhookProcessed(t *testing.T) {
	repo := newFakeBillingRepo()
	svc := NewService(repo)

	if err := svc.MarkWebhookProcessed(context.Background(), 7, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg, ok := repo.processed[7]; !ok || msg != "" {
		t.Fatalf("expected event 7 marked processed without error, got %q", msg)
	}

	if err := svc.MarkWebhookProcessed(context.Background(), 0, nil); err == nil {
		t.Fatalf("expected error for missing event id")
	}
}
