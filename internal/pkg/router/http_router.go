package router

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/shot2code/shot2code/app/controllers"
	"github.com/shot2code/shot2code/app/repository"
	"github.com/shot2code/shot2code/internal/pkg/billing"
	"github.com/shot2code/shot2code/internal/pkg/codegen"
	"github.com/shot2code/shot2code/internal/pkg/database"
	"github.com/shot2code/shot2code/internal/pkg/middleware"
	"github.com/shot2code/shot2code/internal/pkg/session"
	"github.com/shot2code/shot2code/internal/pkg/storage"
	"github.com/shot2code/shot2code/internal/pkg/trial"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	db := database.GetDB()
	repos := repository.GetGlobalRepositories()
	ledger := trial.NewLedgerFromDB(db)

	controllers.InitializeGateController(repos.User, ledger)
	controllers.InitializeBillingController(billing.NewServiceFromDB(db), billing.NewStripeClientFromEnv())
	controllers.InitializeGenerationController(
		repos.Generation,
		repos.User,
		ledger,
		codegen.NewClientFromEnv(),
		newScreenshotStore(),
		mustLoadStorageConfig(),
	)

	h.registerPublicRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func mustLoadStorageConfig() *storage.Config {
	cfg, err := storage.LoadConfig()
	if err != nil {
		log.Fatalf("storage config: %v", err)
	}
	return cfg
}

func newScreenshotStore() controllers.ScreenshotStore {
	cfg := mustLoadStorageConfig()
	if !cfg.IsEnabled() {
		return storage.NewLocalStore()
	}
	client, err := storage.NewClient(cfg)
	if err != nil {
		log.Fatalf("storage client: %v", err)
	}
	return client
}
