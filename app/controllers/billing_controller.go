package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shot2code/shot2code/app/models"
	"github.com/shot2code/shot2code/internal/pkg/billing"
	"github.com/shot2code/shot2code/internal/pkg/env"
	"github.com/shot2code/shot2code/internal/pkg/usercontext"
)

var billingService *billing.Service
var stripeClient *billing.StripeClient

// InitializeBillingController wires the billing controller's dependencies.
func InitializeBillingController(svc *billing.Service, client *billing.StripeClient) {
	billingService = svc
	stripeClient = client
}

// HandleCreateCheckout opens a Stripe Checkout Session for the signed-in user
// and returns the hosted URL the frontend should redirect to.
func HandleCreateCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn || userCtx.Email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
	}

	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sess, err := stripeClient.CreateCheckoutSession(ctx, userCtx.Email,
		base+"/dashboard?checkout=success",
		base+"/subscription?checkout=canceled",
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "checkout_session_failed"})
	}

	return c.JSON(fiber.Map{"url": sess.URL})
}

// HandleStripeWebhook receives Stripe events, persists them idempotently and
// mirrors subscription state onto the affected user.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	signatureValid := billing.VerifyStripeWebhookSignature(rawBody, signature, secret, time.Now())

	event, parseErr := billing.ParseStripeWebhookEvent(rawBody)
	eventID := ""
	eventType := ""
	if parseErr == nil {
		eventID = event.ID
		eventType = event.Type
	}

	created, stored, err := billingService.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = billingService.MarkWebhookProcessed(ctx, stored.ID, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}
	if parseErr != nil {
		_ = billingService.MarkWebhookProcessed(ctx, stored.ID, parseErr)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	switch {
	case event.Type == "checkout.session.completed":
		syncErr := applyCheckoutCompleted(ctx, event)
		_ = billingService.MarkWebhookProcessed(ctx, stored.ID, syncErr)
		if syncErr != nil {
			if errors.Is(syncErr, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_sync_failed"})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})

	case strings.HasPrefix(event.Type, "customer.subscription."):
		syncErr := applySubscriptionEvent(ctx, event)
		_ = billingService.MarkWebhookProcessed(ctx, stored.ID, syncErr)
		if syncErr != nil {
			if errors.Is(syncErr, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_sync_failed"})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})

	default:
		_ = billingService.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}
}

// applyCheckoutCompleted links the Stripe customer to the local user and pulls
// the fresh subscription for its period end; the checkout payload itself does
// not carry one.
func applyCheckoutCompleted(ctx context.Context, event *billing.StripeWebhookEvent) error {
	user, err := billingService.ResolveUserForCustomer(ctx, event.Object.Customer, event.Object.CustomerEmail)
	if err != nil {
		return err
	}
	if event.Object.Subscription == "" {
		return errors.New("checkout session carries no subscription")
	}

	sub, err := stripeClient.GetSubscription(ctx, event.Object.Subscription)
	if err != nil {
		return err
	}

	return billingService.SyncSubscription(ctx, billing.NormalizedSubscription{
		UserID:                 user.ID,
		Provider:               models.BillingProviderStripe,
		ProviderSubscriptionID: sub.ID,
		Status:                 sub.Status,
		CurrentPeriodEnd:       sub.CurrentPeriodEndTime(),
		CancelAtPeriodEnd:      sub.CancelAtPeriodEnd,
		RawPayloadJSON:         "",
	})
}

func applySubscriptionEvent(ctx context.Context, event *billing.StripeWebhookEvent) error {
	user, err := billingService.ResolveUserForCustomer(ctx, event.Object.Customer, event.Object.CustomerEmail)
	if err != nil {
		return err
	}

	status := event.Object.Status
	if event.Type == "customer.subscription.deleted" {
		status = billing.StatusCanceled
	}

	return billingService.SyncSubscription(ctx, billing.NormalizedSubscription{
		UserID:                 user.ID,
		Provider:               models.BillingProviderStripe,
		ProviderSubscriptionID: event.Object.ID,
		Status:                 status,
		CurrentPeriodEnd:       event.Object.CurrentPeriodEndTime(),
		CancelAtPeriodEnd:      event.Object.CancelAtPeriodEnd,
	})
}
