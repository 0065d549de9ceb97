package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/cache"
	"github.com/surveyforge/survey-service/internal/config"
	"github.com/surveyforge/survey-service/internal/events"
	"github.com/surveyforge/survey-service/internal/handlers"
	"github.com/surveyforge/survey-service/internal/middleware"
	"github.com/surveyforge/survey-service/internal/repositories/postgres"
	"github.com/surveyforge/survey-service/internal/services"
	"github.com/surveyforge/survey-service/internal/utils"
	"github.com/surveyforge/survey-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := postgres.AutoMigrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slog.Default())
	}

	var publisher events.EventPublisher
	if cfg.EventsEnabled() {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.KafkaTopic,
			Logger:       slog.Default(),
		})
		if err != nil {
			logger.Error("Failed to create event publisher", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	validator := utils.NewValidator()

	serviceManager := services.NewServiceManager(
		postgres.NewRepository(db),
		publisher,
		cacheService,
		logger,
		validator,
		services.SystemClock(),
	)

	var authMiddleware gin.HandlerFunc
	if cfg.AuthEnabled() {
		authenticator := middleware.NewAuthenticator(middleware.AuthConfig{
			Endpoint:     cfg.CasdoorEndpoint,
			ClientID:     cfg.CasdoorClientID,
			ClientSecret: cfg.CasdoorClientSecret,
			Certificate:  cfg.CasdoorCertificate,
			Organization: cfg.CasdoorOrganization,
			Application:  cfg.CasdoorApplication,
		}, logger)
		authMiddleware = authenticator.Middleware()
	} else {
		logger.Warn("Casdoor not configured, using static development identity")
		authMiddleware = middleware.StaticUserMiddleware("dev-user")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger)
	handlerManager.SetupRoutes(router, authMiddleware)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting survey service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down survey service")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
