package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cabiir/FianlFitnessGym/internal/clientstore"
	"github.com/cabiir/FianlFitnessGym/internal/config"
	"github.com/cabiir/FianlFitnessGym/internal/handlers"
	"github.com/cabiir/FianlFitnessGym/internal/middleware"
	"github.com/cabiir/FianlFitnessGym/internal/repository"
	"github.com/cabiir/FianlFitnessGym/internal/services"
)

type Dependencies struct {
	DB          repository.DBTX
	ClientStore clientstore.Store
	Logger      zerolog.Logger
	Metrics     *middleware.Metrics
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, deps Dependencies) error {
	userRepo := repository.NewUserRepository(deps.DB)
	trailRepo := repository.NewTrailRepository(deps.DB)

	imageStorage, err := services.NewLocalImageStorage(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("init image storage: %w", err)
	}
	trailService := services.NewTrailService(trailRepo, imageStorage)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.JWTExpiry, deps.Logger)
	trailHandler := handlers.NewTrailHandler(trailService, imageStorage, deps.Logger)
	storefrontHandler := handlers.NewStorefrontHandler(deps.ClientStore, deps.Logger)

	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Endpoint())
	}
	if err := registerDocsRoutes(app, cfg); err != nil {
		return err
	}

	api := app.Group("/api")
	api.Get("/health", handlers.Health)

	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Get("/profile", middleware.AuthRequired(cfg.JWTSecret), authHandler.Profile)

	trails := api.Group("/trails")
	trails.Get("/images/:filename", trailHandler.ServeImage)
	trails.Get("", trailHandler.ListTrails)
	trails.Get("/:id", trailHandler.GetTrail)
	trails.Post("", trailHandler.CreateTrail)
	trails.Put("/:id", trailHandler.UpdateTrail)
	trails.Delete("/:id", trailHandler.DeleteTrail)

	storefront := api.Group("/app")
	// per route, so unknown /api/app paths still reach NotFound
	ws := storefrontHandler.LoadWorkspace
	storefront.Get("/session", ws, storefrontHandler.GetSession)
	storefront.Post("/register", ws, storefrontHandler.Register)
	storefront.Post("/login", ws, storefrontHandler.Login)
	storefront.Post("/logout", ws, storefrontHandler.Logout)
	storefront.Put("/membership", ws, storefrontHandler.SetMembership)
	storefront.Get("/users", ws, storefrontHandler.ListUsers)

	storefront.Get("/enrollments", ws, storefrontHandler.ListEnrollments)
	storefront.Post("/enrollments", ws, storefrontHandler.Enroll)
	storefront.Put("/enrollments/:programId", ws, storefrontHandler.UpdateProgress)
	storefront.Delete("/enrollments/:programId", ws, storefrontHandler.Unenroll)

	storefront.Get("/programs", ws, storefrontHandler.ListPrograms)
	storefront.Post("/programs", ws, storefrontHandler.CreateProgram)
	storefront.Put("/programs/:id", ws, storefrontHandler.UpdateProgram)
	storefront.Delete("/programs/:id", ws, storefrontHandler.DeleteProgram)

	storefront.Get("/supplements", ws, storefrontHandler.ListSupplements)
	storefront.Post("/supplements", ws, storefrontHandler.CreateSupplement)
	storefront.Put("/supplements/:id", ws, storefrontHandler.UpdateSupplement)
	storefront.Delete("/supplements/:id", ws, storefrontHandler.DeleteSupplement)

	storefront.Get("/cart", ws, storefrontHandler.GetCart)
	storefront.Post("/cart", ws, storefrontHandler.AddToCart)
	storefront.Delete("/cart/:id", ws, storefrontHandler.RemoveFromCart)
	storefront.Post("/cart/:id/increment", ws, storefrontHandler.IncrementCartItem)
	storefront.Post("/cart/:id/decrement", ws, storefrontHandler.DecrementCartItem)

	app.Use(handlers.NotFound)

	return nil
}
