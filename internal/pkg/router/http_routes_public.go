package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shot2code/shot2code/app/controllers"
	"github.com/shot2code/shot2code/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Auth
	app.Post("/login", controllers.HandleAuthLogin)
	app.Post("/register", controllers.HandleAuthRegister)
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Billing provider webhooks (no session, signature-verified in controller)
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
}
