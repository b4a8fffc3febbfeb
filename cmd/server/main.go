// Package main runs the event marketplace HTTP server with WebSocket notifications and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventmarket/backend/config"
	"github.com/eventmarket/backend/internal/analysis"
	"github.com/eventmarket/backend/internal/assignments"
	"github.com/eventmarket/backend/internal/auth"
	"github.com/eventmarket/backend/internal/catalog"
	"github.com/eventmarket/backend/internal/events"
	"github.com/eventmarket/backend/internal/invitations"
	"github.com/eventmarket/backend/internal/matching"
	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/internal/needs"
	"github.com/eventmarket/backend/internal/notify"
	"github.com/eventmarket/backend/internal/offers"
	"github.com/eventmarket/backend/internal/providers"
	"github.com/eventmarket/backend/internal/realtime"
	"github.com/eventmarket/backend/internal/templates"
	"github.com/eventmarket/backend/internal/worker"
	"github.com/eventmarket/backend/pkg/database"
	"github.com/eventmarket/backend/pkg/queue"
	"github.com/eventmarket/backend/pkg/redis"
	"github.com/eventmarket/backend/pkg/response"
	"github.com/eventmarket/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Client, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			AttachmentsBucket:    cfg.AWS.AttachmentsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
			s3Client = nil
		}
	}

	weights, err := templates.Load(cfg.Templates.WeightsFile)
	if err != nil {
		logger.Fatal("template weights", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	notifier := notify.NewQueueNotifier(jobQueue, logger)

	// Repositories
	authRepo := auth.NewRepository(pool)
	eventRepo := events.NewRepository(pool)
	needRepo := needs.NewRepository(pool)
	providerRepo := providers.NewRepository(pool)
	invitationRepo := invitations.NewRepository(pool)
	offerRepo := offers.NewRepository(pool)
	assignmentRepo := assignments.NewRepository(pool)
	notificationRepo := notify.NewRepository(pool)

	// Provider directory
	catalogClient := catalog.NewClient(catalog.Config{
		BaseURL:  cfg.Catalog.BaseURL,
		MatchURL: cfg.Catalog.MatchURL,
		Timeout:  time.Duration(cfg.Catalog.TimeoutMS) * time.Millisecond,
		CacheTTL: time.Duration(cfg.Catalog.CacheTTLSeconds) * time.Second,
	}, rdb, logger)

	var matcher matching.NeedMatcher
	switch cfg.Matching.Source {
	case "remote":
		matcher = matching.NewRemoteMatcher(catalogClient, logger)
	default:
		matcher = matching.NewMatcher(providerRepo)
	}
	recommender := matching.NewRecommender(providerRepo)

	// Services
	eventSvc := events.NewService(eventRepo, logger)
	needSvc := needs.NewService(needRepo, eventRepo)
	orchestrator := invitations.NewOrchestrator(eventRepo, needRepo, matcher, invitationRepo, notifier, cfg.Matching.DefaultTopLimit, logger)
	invitationSvc := invitations.NewService(invitationRepo, eventRepo, needRepo, providerRepo, notifier, logger)
	offerSvc := offers.NewService(offerRepo, eventRepo, needRepo, invitationRepo, providerRepo, notifier, logger)
	if s3Client != nil {
		offerSvc = offerSvc.WithAttachments(s3Client)
	}
	assignmentSvc := assignments.NewService(assignmentRepo, eventRepo, offerRepo, logger)
	analysisSvc := analysis.NewService(eventRepo, needRepo, invitationRepo, offerRepo, weights,
		analysis.NewNeedsRecommender(catalogClient, logger))

	// Handlers
	authHandler := auth.NewHandler(authRepo, jwtService, logger)
	eventHandler := events.NewHandler(eventSvc)
	needHandler := needs.NewHandler(needSvc)
	matchHandler := matching.NewHandler(eventRepo, needRepo, matcher, recommender)
	invitationHandler := invitations.NewHandler(invitationSvc, orchestrator)
	offerHandler := offers.NewHandler(offerSvc)
	assignmentHandler := assignments.NewHandler(assignmentSvc)
	analysisHandler := analysis.NewHandler(analysisSvc)
	providerHandler := providers.NewHandler(providerRepo)
	notificationHandler := notify.NewHandler(notificationRepo)

	jwtValidate := func(token string) (uuid.UUID, string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, "", err
		}
		return claims.UserID, claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/users", middleware.RequireRole(models.RoleAdmin), authHandler.List)

		// Events
		api.GET("/events", eventHandler.List)
		api.POST("/events", middleware.RequireRole(models.RoleClient, models.RoleAdmin), eventHandler.Create)
		api.GET("/events/:eventId", eventHandler.Get)
		api.PATCH("/events/:eventId/status", eventHandler.ChangeStatus)
		api.GET("/events/:eventId/brief", eventHandler.GetBrief)
		api.PUT("/events/:eventId/brief", eventHandler.UpdateBrief)

		// Needs and matching
		api.POST("/events/:eventId/needs", needHandler.Create)
		api.GET("/events/:eventId/needs", needHandler.List)
		api.PATCH("/events/:eventId/needs/:needId", needHandler.Update)
		api.DELETE("/events/:eventId/needs/:needId", needHandler.Delete)
		api.GET("/events/:eventId/needs/:needId/matches", matchHandler.List)
		api.POST("/events/:eventId/needs/:needId/auto-invite", invitationHandler.AutoInvite)

		// Invitations
		api.POST("/events/:eventId/invitations", invitationHandler.Create)
		api.GET("/events/:eventId/invitations", invitationHandler.ListByEvent)
		api.POST("/events/:eventId/invitations/:id/cancel", invitationHandler.Cancel)
		api.GET("/invitations/mine", middleware.RequireRole(models.RoleProvider), invitationHandler.ListMine)
		api.POST("/invitations/:id/respond", middleware.RequireRole(models.RoleProvider), invitationHandler.Respond)

		// Offers
		api.POST("/events/:eventId/offers", middleware.RequireRole(models.RoleProvider), offerHandler.Create)
		api.GET("/events/:eventId/offers", offerHandler.List)
		api.PUT("/events/:eventId/offers/:id", middleware.RequireRole(models.RoleProvider), offerHandler.Revise)
		api.PATCH("/events/:eventId/offers/:id", offerHandler.SetStatus)
		api.POST("/events/:eventId/offers/:id/attachments/upload-url", middleware.RequireRole(models.RoleProvider), offerHandler.UploadURL)
		api.POST("/events/:eventId/offers/:id/attachments", middleware.RequireRole(models.RoleProvider), offerHandler.Upload)
		api.GET("/events/:eventId/offers/:id/attachments/download-url", offerHandler.DownloadURL)
		api.DELETE("/events/:eventId/offers/:id/attachments", middleware.RequireRole(models.RoleProvider), offerHandler.DeleteAttachment)
		api.POST("/offers/:id/decision", middleware.RequireRole(models.RoleClient, models.RoleAdmin), offerHandler.Decide)

		// Assignments
		api.POST("/events/:eventId/assignments", assignmentHandler.Create)
		api.GET("/events/:eventId/assignments", assignmentHandler.List)
		api.PATCH("/events/:eventId/assignments/:id", assignmentHandler.Update)

		// Analysis
		api.GET("/events/:eventId/budget-analysis", analysisHandler.Budget)
		api.GET("/events/:eventId/gaps-analysis", analysisHandler.Gaps)
		api.GET("/events/:eventId/recommended-needs", analysisHandler.RecommendedNeeds)

		// Providers
		api.GET("/providers/:id", providerHandler.Get)
		api.POST("/providers/me/unavailable-dates", middleware.RequireRole(models.RoleProvider), providerHandler.AddUnavailableDate)

		// Notifications
		api.GET("/notifications", notificationHandler.List)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, realtime.NewUpgrader(cfg.Server.CORSAllowedOrigins), logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      middleware.CORS(cfg.Server.CORSAllowedOrigins).Handler(router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Expire overdue invitations in-process; cmd/worker runs the same sweeper when deployed separately.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	sweeper := worker.NewInvitationSweeper(invitationRepo, time.Duration(cfg.Worker.InvitationSweepSeconds)*time.Second, logger)
	go sweeper.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
