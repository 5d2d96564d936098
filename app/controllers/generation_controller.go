package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shot2code/shot2code/app/models"
	"github.com/shot2code/shot2code/app/repository"
	"github.com/shot2code/shot2code/internal/pkg/cache"
	"github.com/shot2code/shot2code/internal/pkg/clientip"
	"github.com/shot2code/shot2code/internal/pkg/constants"
	"github.com/shot2code/shot2code/internal/pkg/entitlements"
	"github.com/shot2code/shot2code/internal/pkg/storage"
	"github.com/shot2code/shot2code/internal/pkg/trial"
	"github.com/shot2code/shot2code/internal/pkg/upload"
	"github.com/shot2code/shot2code/internal/pkg/usercontext"
)

// CodeGenerator produces frontend code from a screenshot.
type CodeGenerator interface {
	GenerateFromScreenshot(ctx context.Context, screenshot []byte, mimeType, stack string) (string, error)
}

// ScreenshotStore persists uploaded screenshots.
type ScreenshotStore interface {
	UploadScreenshot(ctx context.Context, objectKey string, data []byte, contentType string) (*storage.UploadResult, error)
}

var (
	generationRepo    repository.GenerationRepository
	generationUsers   repository.UserRepository
	generationLedger  *trial.Ledger
	codeGenerator     CodeGenerator
	screenshotStore   ScreenshotStore
	screenshotStorage *storage.Config
)

// InitializeGenerationController wires the generation controller's dependencies.
func InitializeGenerationController(
	generations repository.GenerationRepository,
	users repository.UserRepository,
	ledger *trial.Ledger,
	generator CodeGenerator,
	store ScreenshotStore,
	storageCfg *storage.Config,
) {
	generationRepo = generations
	generationUsers = users
	generationLedger = ledger
	codeGenerator = generator
	screenshotStore = store
	screenshotStorage = storageCfg
}

// HandleCreateGeneration accepts a screenshot upload, checks entitlement the
// same way the gate does, stores the screenshot and runs code generation
// synchronously.
func HandleCreateGeneration(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn || userCtx.Email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
	}

	user, err := generationUsers.GetByEmail(userCtx.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		log.Printf("generation: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "screenshot file is required"})
	}

	stack := strings.TrimSpace(c.FormValue("stack"))
	if stack == "" {
		stack = models.StackHTMLTailwind
	}
	if !models.IsValidStack(stack) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported output stack"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read screenshot"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read screenshot"})
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mimeType, err := upload.ValidateScreenshotBySniff(fileHeader.Filename, head)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	// Same entitlement path as the gate: subscribers pass, a fresh trial is
	// consumed, everyone else is pointed at the subscription page.
	origin := clientip.FromHeaders(c)
	hasUsed := generationLedger.HasUsed(user.Email, origin)
	decision := entitlements.Evaluate(user, hasUsed, time.Now())
	if decision == entitlements.BillingRequired {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error":      "subscription required",
			"redirectTo": constants.SubscriptionRoute,
		})
	}
	if decision == entitlements.TrialGranted {
		generationLedger.MarkUsed(user.Email, origin, &user.ID)
	}

	generationUUID := uuid.New().String()
	objectKey := screenshotStorage.GetObjectKey(generationUUID, strings.ToLower(filepath.Ext(fileHeader.Filename)), time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	if _, err := screenshotStore.UploadScreenshot(ctx, objectKey, data, mimeType); err != nil {
		log.Printf("generation: screenshot upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "screenshot upload failed"})
	}

	generation := &models.Generation{
		UUID:          generationUUID,
		UserID:        user.ID,
		Stack:         stack,
		ScreenshotKey: objectKey,
		Status:        models.GenerationStatusPending,
	}
	if err := generationRepo.Create(generation); err != nil {
		log.Printf("generation: create record failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	result, genErr := codeGenerator.GenerateFromScreenshot(ctx, data, mimeType, stack)
	if genErr != nil {
		generation.Status = models.GenerationStatusFailed
		generation.ErrorMessage = genErr.Error()
		if err := generationRepo.Update(generation); err != nil {
			log.Printf("generation: update failed record: %v", err)
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"uuid":   generation.UUID,
			"status": generation.Status,
			"error":  "code generation failed",
		})
	}

	generation.Status = models.GenerationStatusComplete
	generation.ResultHTML = result
	if err := generationRepo.Update(generation); err != nil {
		log.Printf("generation: update complete record: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid":   generation.UUID,
		"status": generation.Status,
		"stack":  generation.Stack,
		"code":   generation.ResultHTML,
	})
}

// HandleGetGeneration returns one of the signed-in user's generations by UUID.
// Completed generations are served from the cache when possible; their rows
// never change again.
func HandleGetGeneration(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
	}

	generationUUID := c.Params("uuid")
	cacheKey := fmt.Sprintf("generation:%d:%s", userCtx.UserID, generationUUID)
	if cached, err := cache.Get(cacheKey); err == nil && cached != "" {
		var generation models.Generation
		if err := json.Unmarshal([]byte(cached), &generation); err == nil {
			return c.JSON(generation)
		}
	}

	generation, err := generationRepo.GetByUUID(generationUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "generation not found"})
		}
		log.Printf("generation: lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	if generation.UserID != userCtx.UserID {
		// Do not leak other users' generation ids
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "generation not found"})
	}

	if generation.Status == models.GenerationStatusComplete {
		if encoded, err := json.Marshal(generation); err == nil {
			if err := cache.Set(cacheKey, string(encoded), time.Hour); err != nil {
				log.Printf("generation: cache write failed: %v", err)
			}
		}
	}

	return c.JSON(generation)
}

// HandleListGenerations returns a page of the signed-in user's generations.
func HandleListGenerations(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	generations, err := generationRepo.GetByUserID(userCtx.UserID, (page-1)*limit, limit)
	if err != nil {
		log.Printf("generation: list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	total, err := generationRepo.CountByUserID(userCtx.UserID)
	if err != nil {
		log.Printf("generation: count failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{
		"generations": generations,
		"page":        page,
		"limit":       limit,
		"total":       total,
	})
}
