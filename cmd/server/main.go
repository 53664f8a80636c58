package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driveclone/backend/internal/config"
	"github.com/driveclone/backend/internal/database"
	"github.com/driveclone/backend/internal/handlers"
	"github.com/driveclone/backend/internal/identity"
	"github.com/driveclone/backend/internal/middleware"
	"github.com/driveclone/backend/internal/repository"
	"github.com/driveclone/backend/internal/services"
	"github.com/driveclone/backend/internal/storage"
	"github.com/driveclone/backend/pkg/logger"
	"github.com/driveclone/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	logger.Init()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring storage bucket: %v", err)
	}

	repo := repository.New(db)
	accessService := services.NewAccessService(repo, store)
	trashService := services.NewTrashService(repo, store, cfg.Retention.TrashTTL)

	app := fiber.New(fiber.Config{BodyLimit: cfg.Server.BodyLimit})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	handlers.RegisterRoutes(app, handlers.Dependencies{
		Repo:     repo,
		Storage:  store,
		Identity: identity.New(cfg.Identity),
		Access:   accessService,
		Trash:    trashService,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trashService.StartSweeper(ctx, cfg.Retention.SweepInterval)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":            cfg.Server.Port,
		"address":         listenAddr,
		"body_limit":      cfg.Server.BodyLimit,
		"db_driver":       cfg.DB.Driver,
		"storage_backend": cfg.Storage.Backend,
		"bucket":          cfg.Storage.Bucket,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		cancel()
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
