package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/konverge-api/internal/config"
	"github.com/noah-isme/konverge-api/internal/database"
	"github.com/noah-isme/konverge-api/internal/handler"
	"github.com/noah-isme/konverge-api/internal/middleware"
	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/observability"
	"github.com/noah-isme/konverge-api/internal/repository"
	"github.com/noah-isme/konverge-api/internal/router"
	"github.com/noah-isme/konverge-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis disabled; collaboration status cache and redis fan-out are off")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	ctx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	validate := validator.New(validator.WithRequiredStructEnabled())
	store := repository.NewStore(db, repository.WithIsolation(sql.LevelRepeatableRead))

	policy := service.Policy{
		TopPerSkill:        cfg.TopPerSkill,
		CapacityCeiling:    cfg.CapacityCeiling,
		AcceptPoints:       cfg.AcceptPoints,
		CollaborationBonus: cfg.CollaborationBonus,
		StatusTTL:          cfg.CacheTTL,
		FreezeAfter:        cfg.FreezeAfter,
	}

	broadcaster := service.NewBroadcaster(redisClient, cfg.EventsChannel, natsConn, logger)
	broadcaster.Start(ctx)

	cache := service.NewRedisCache(redisClient)
	feedback := service.NewFeedbackLedger()
	engagement := service.NewEngagementLedger()
	selector := service.NewCandidateSelector(policy.CapacityCeiling)
	synchronizer := service.NewCollaborationSynchronizer(engagement, policy.CollaborationBonus)

	recommendationService := service.NewRecommendationService(store, selector, feedback, broadcaster, policy, logger)
	decisionService := service.NewDecisionService(store, feedback, engagement, synchronizer, broadcaster, cache, policy, logger)
	applicationService := service.NewApplicationService(store, feedback, broadcaster, logger)
	ratingService := service.NewRatingService(store, broadcaster, logger)
	collaborationService := service.NewCollaborationService(store, cache, policy, logger)
	matchService := service.NewMatchService(store)
	engagementService := service.NewEngagementService(store)
	userStatusService := service.NewUserStatusService(store, policy, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AccessLog})
	router.Register(app, cfg, router.Dependencies{
		ProjectHandler:       handler.NewProjectHandler(recommendationService, applicationService, matchService, validate, logger),
		MatchHandler:         handler.NewMatchHandler(decisionService, matchService, validate, logger),
		RatingHandler:        handler.NewRatingHandler(ratingService, validate, logger),
		CollaborationHandler: handler.NewCollaborationHandler(collaborationService, validate, logger),
		EngagementHandler:    handler.NewEngagementHandler(engagementService, logger),
		EventHandler:         handler.NewEventHandler(broadcaster, logger, cfg.StreamKeepAlive),
		UserStatusHandler:    handler.NewUserStatusHandler(userStatusService, logger),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancelBackground)
}

func waitForShutdown(app *fiber.App, stopBackground context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
