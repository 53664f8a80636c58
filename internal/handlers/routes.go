package handlers

import (
	"time"

	"github.com/driveclone/backend/internal/middleware"
	"github.com/driveclone/backend/internal/repository"
	"github.com/driveclone/backend/internal/services"
	"github.com/driveclone/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type Dependencies struct {
	Repo     *repository.Repository
	Storage  storage.Store
	Identity IdentityProvider
	Access   *services.AccessService
	Trash    *services.TrashService
	// Now defaults to time.Now.
	Now func() time.Time
}

// RegisterRoutes mounts every endpoint on app. Non-strict routing makes
// "/files" and "/files/" (and the trash equivalents) the same route.
func RegisterRoutes(app fiber.Router, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Repo, deps.Identity)
	filesHandler := NewFilesHandler(deps.Repo, deps.Storage, deps.Access)
	trashHandler := NewTrashHandler(deps.Repo, deps.Trash)
	if deps.Now != nil {
		trashHandler.Now = deps.Now
	}
	sharesHandler := NewSharesHandler(deps.Repo, deps.Access)

	app.Get("/", Home)
	app.Get("/health", Health)

	authRoutes := app.Group("/auth")
	authRoutes.Post("/signup", authHandler.Signup)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/profile", middleware.RequireAuth, authHandler.Profile)
	authRoutes.Get("/google", authHandler.Google)

	fileRoutes := app.Group("/files")
	fileRoutes.Get("/public/:token", sharesHandler.PublicFile)

	fileRoutes.Post("/upload", middleware.RequireAuth, filesHandler.Upload)
	fileRoutes.Get("/", middleware.RequireAuth, filesHandler.List)
	fileRoutes.Get("/file/:id/signed-url", middleware.RequireAuth, filesHandler.SignedURL)
	fileRoutes.Post("/file/:id/rename", middleware.RequireAuth, filesHandler.Rename)

	fileRoutes.Get("/trash", middleware.RequireAuth, trashHandler.List)
	fileRoutes.Post("/trash/purge_older_than_30d", middleware.RequireAuth, trashHandler.PurgeExpired)
	fileRoutes.Post("/trash/:id", middleware.RequireAuth, trashHandler.Move)
	fileRoutes.Post("/trash/:id/restore", middleware.RequireAuth, trashHandler.Restore)
	fileRoutes.Delete("/trash/:id/purge", middleware.RequireAuth, trashHandler.Purge)

	fileRoutes.Post("/share/:id", middleware.RequireAuth, sharesHandler.ShareFile)
	fileRoutes.Post("/permissions/:id", middleware.RequireAuth, sharesHandler.UpdatePermissions)
}
