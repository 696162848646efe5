package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/woundtrack/supply-api/internal/config"
	"github.com/woundtrack/supply-api/internal/email"
	"github.com/woundtrack/supply-api/internal/handler"
	authHandler "github.com/woundtrack/supply-api/internal/handler/auth"
	facilityHandler "github.com/woundtrack/supply-api/internal/handler/facility"
	patientHandler "github.com/woundtrack/supply-api/internal/handler/patient"
	reportHandler "github.com/woundtrack/supply-api/internal/handler/report"
	supplyHandler "github.com/woundtrack/supply-api/internal/handler/supply"
	usageHandler "github.com/woundtrack/supply-api/internal/handler/usage"
	"github.com/woundtrack/supply-api/internal/middleware"
	"github.com/woundtrack/supply-api/internal/repository/postgres"
	"github.com/woundtrack/supply-api/internal/router"
	"github.com/woundtrack/supply-api/internal/service/access"
	authService "github.com/woundtrack/supply-api/internal/service/auth"
	facilityService "github.com/woundtrack/supply-api/internal/service/facility"
	patientService "github.com/woundtrack/supply-api/internal/service/patient"
	reportService "github.com/woundtrack/supply-api/internal/service/report"
	supplyService "github.com/woundtrack/supply-api/internal/service/supply"
	usageService "github.com/woundtrack/supply-api/internal/service/usage"
	"github.com/woundtrack/supply-api/pkg/auth"
	"github.com/woundtrack/supply-api/pkg/logger"
	"github.com/woundtrack/supply-api/pkg/metrics"
	"github.com/woundtrack/supply-api/pkg/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(&logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Pretty: !cfg.IsProduction(),
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	facilityRepo := postgres.NewFacilityRepository(db)
	supplyRepo := postgres.NewSupplyRepository(db)
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	usageRepo := postgres.NewUsageRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	// Report result cache is optional: without Redis the reporter hits the
	// store directly.
	var reportCache *reportService.Cache
	if cfg.Redis.URL != "" {
		reportCache, err = reportService.NewCache(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer reportCache.Close()
	}

	m := metrics.New("supplytrack")
	resolver := access.NewResolver(patientRepo)
	tokenTTL := time.Duration(cfg.JWT.ExpiryHours) * time.Hour

	// Services
	tokens := auth.NewJWTService(cfg.JWT.Secret, tokenTTL)
	hasher := security.NewBcryptHasher(12)
	emails := email.NewService(email.SMTPConfig(cfg.SMTP))
	authSvc := authService.NewService(userRepo, tokens, hasher, emails, tokenTTL)
	facilitySvc := facilityService.NewService(facilityRepo)
	supplySvc := supplyService.NewService(supplyRepo)
	patientSvc := patientService.NewService(patientRepo, resolver)
	usageSvc := usageService.NewService(usageRepo, resolver, m, reportCache)
	reportSvc := reportService.NewService(reportRepo, reportCache, m)

	// Handlers
	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc)
	facilityH := facilityHandler.NewHandler(facilitySvc)
	supplyH := supplyHandler.NewHandler(supplySvc)
	patientH := patientHandler.NewHandler(patientSvc)
	usageH := usageHandler.NewHandler(usageSvc)
	reportH := reportHandler.NewHandler(reportSvc)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.New(
		router.Config{
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORS:           middleware.DefaultCORSConfig(),
			MetricsPrefix:  "supplytrack_http",
			ExposeDetails:  !cfg.IsProduction(),
		},
		authMiddleware,
		authH,
		facilityH,
		supplyH,
		patientH,
		usageH,
		reportH,
		h,
	)
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
