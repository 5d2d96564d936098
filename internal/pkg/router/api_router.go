package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/shot2code/shot2code/app/controllers"
	"github.com/shot2code/shot2code/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Entitlement gate
	api.Post("/gate/check", middleware.RequireAPISessionAuth, controllers.HandleGateCheck)

	// Billing
	api.Post("/checkout", middleware.RequireAPISessionAuth, controllers.HandleCreateCheckout)

	// Generations
	api.Post("/generations", middleware.RequireAPISessionAuth, controllers.HandleCreateGeneration)
	api.Get("/generations", middleware.RequireAPISessionAuth, controllers.HandleListGenerations)
	api.Get("/generations/:uuid", middleware.RequireAPISessionAuth, controllers.HandleGetGeneration)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
