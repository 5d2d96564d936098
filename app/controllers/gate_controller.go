package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shot2code/shot2code/app/repository"
	"github.com/shot2code/shot2code/internal/pkg/clientip"
	"github.com/shot2code/shot2code/internal/pkg/constants"
	"github.com/shot2code/shot2code/internal/pkg/entitlements"
	"github.com/shot2code/shot2code/internal/pkg/trial"
	"github.com/shot2code/shot2code/internal/pkg/usercontext"
)

// GateResponse is the routing decision returned to the frontend after login:
// where to send the user and whether this visit consumed the free trial.
type GateResponse struct {
	RedirectTo string `json:"redirectTo"`
	Message    string `json:"message,omitempty"`
	IsTrial    *bool  `json:"isTrial,omitempty"`
}

var gateUsers repository.UserRepository
var gateLedger *trial.Ledger

// InitializeGateController wires the gate endpoint's dependencies.
func InitializeGateController(users repository.UserRepository, ledger *trial.Ledger) {
	gateUsers = users
	gateLedger = ledger
}

// HandleGateCheck decides, for the signed-in user, between dashboard access
// (subscriber or fresh trial) and the subscription page.
func HandleGateCheck(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn || userCtx.Email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
	}

	user, err := gateUsers.GetByEmail(userCtx.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Session is valid but the account row is gone: a server-side
			// consistency fault, not a client error.
			log.Printf("gate: no user row for session email of user %d", userCtx.UserID)
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		log.Printf("gate: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	origin := clientip.FromHeaders(c)
	hasUsed := gateLedger.HasUsed(user.Email, origin)

	switch entitlements.Evaluate(user, hasUsed, time.Now()) {
	case entitlements.ActiveSubscriber:
		return c.JSON(GateResponse{RedirectTo: constants.DashboardRoute})

	case entitlements.TrialGranted:
		// Write before responding: the response must not claim a grant before
		// the record is durable (modulo the ledger's soft-fail policy).
		gateLedger.MarkUsed(user.Email, origin, &user.ID)
		isTrial := true
		return c.JSON(GateResponse{
			RedirectTo: constants.DashboardRoute,
			Message:    "Welcome! Your free trial has started.",
			IsTrial:    &isTrial,
		})

	default:
		isTrial := false
		return c.JSON(GateResponse{
			RedirectTo: constants.SubscriptionRoute,
			Message:    "You have already used your free trial.",
			IsTrial:    &isTrial,
		})
	}
}
