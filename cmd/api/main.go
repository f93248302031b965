package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/health-analytics-api/internal/config"
	"github.com/jwalitptl/health-analytics-api/internal/handler"
	analyticsHandler "github.com/jwalitptl/health-analytics-api/internal/handler/analytics"
	"github.com/jwalitptl/health-analytics-api/internal/middleware"
	"github.com/jwalitptl/health-analytics-api/internal/repository/postgres"
	"github.com/jwalitptl/health-analytics-api/internal/router"
	"github.com/jwalitptl/health-analytics-api/internal/service/analytics"
	"github.com/jwalitptl/health-analytics-api/pkg/logger"
	"github.com/jwalitptl/health-analytics-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	vitalsRepo := postgres.NewVitalSignsRepository(db)
	userRepo := postgres.NewUserRepository(db)

	reportMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer, "health_analytics")
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			reportMetrics.DatabaseConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()

	analyticsSvc := analytics.NewService(
		appointmentRepo,
		prescriptionRepo,
		vitalsRepo,
		userRepo,
		appLogger,
		reportMetrics,
	)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, redisClient)

	h := handler.NewHandler(db, redisClient)
	analyticsH := analyticsHandler.NewHandler(analyticsSvc)

	r := router.NewRouter(authMiddleware, analyticsH, h, router.RouterConfig{
		RateLimit:     rate.Limit(cfg.RateLimit.RPS),
		RateBurst:     cfg.RateLimit.Burst,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "health_analytics_http",
		Registerer:    prometheus.DefaultRegisterer,
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
