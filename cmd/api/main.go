package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/travellinq/backend/internal/auth"
	"github.com/travellinq/backend/internal/config"
	"github.com/travellinq/backend/internal/database"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/handler"
	"github.com/travellinq/backend/internal/logger"
	"github.com/travellinq/backend/internal/metrics"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/realtime"
	"github.com/travellinq/backend/internal/repository"
	"github.com/travellinq/backend/internal/service"
	"github.com/travellinq/backend/internal/storage"
	"go.uber.org/zap"
)

const (
	notificationRetention = 90 * 24 * time.Hour
	cleanupInterval       = 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Image uploads are optional; the API still serves text posts without
	// object storage.
	var images handler.ImageStore
	minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
	if err != nil {
		logger.Log.Warn("MinIO unavailable, image uploads disabled", zap.Error(err))
	} else {
		images = minioClient
	}

	jwtService := auth.NewJWTService(cfg)

	hub := realtime.NewHub()
	go hub.Run(ctx)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	buddyRepo := repository.NewBuddyRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Services
	notificationService := service.NewNotificationService(notificationRepo, hub)
	postService := service.NewPostService(postRepo)
	commentService := service.NewCommentService(commentRepo, voteRepo, postRepo, userRepo, notificationService, hub)
	buddyService := service.NewBuddyService(buddyRepo, locationRepo, userRepo, notificationService, hub, cfg.Proximity)
	messageService := service.NewMessageService(messageRepo, buddyRepo, userRepo, notificationService, hub)
	moderationService := service.NewModerationService(reportRepo, commentRepo, postRepo, userRepo, notificationService, hub)

	handlers := &handler.Handlers{
		Post:         handler.NewPostHandler(postService, images),
		Comment:      handler.NewCommentHandler(commentService),
		Buddy:        handler.NewBuddyHandler(buddyService),
		Notification: handler.NewNotificationHandler(notificationService),
		Message:      handler.NewMessageHandler(messageService),
		Upload:       handler.NewUploadHandler(images),
		Admin:        handler.NewAdminHandler(moderationService),
		WebSocket:    handler.NewWebSocketHandler(hub),
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtService, db)
	profileMiddleware := middleware.NewProfileMiddleware(userRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				logger.Log.Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
				return c.Status(code).JSON(dto.ErrorResponse("INTERNAL_ERROR", "Something went wrong"))
			}
			return c.Status(code).JSON(dto.ErrorResponse("REQUEST_ERROR", err.Error()))
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORS.Origins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))
	app.Use(metrics.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	handler.RegisterRoutes(api, handlers, authMiddleware, profileMiddleware)

	go purgeNotifications(ctx, notificationRepo)

	go func() {
		<-ctx.Done()
		logger.Log.Info("Gracefully shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Log.Error("Shutdown failed", zap.Error(err))
		}
	}()

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	logger.Log.Info("Server starting", zap.String("port", port), zap.String("env", cfg.App.Env))
	if err := app.Listen(":" + port); err != nil {
		logger.Log.Fatal("Failed to start server", zap.Error(err))
	}
}

// purgeNotifications deletes old notifications once a day until ctx ends.
func purgeNotifications(ctx context.Context, repo *repository.NotificationRepository) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteOlderThan(ctx, now.Add(-notificationRetention))
			if err != nil {
				logger.Log.Error("Notification cleanup failed", zap.Error(err))
				continue
			}
			logger.Log.Info("Notifications purged", zap.Int64("deleted", n))
		}
	}
}
