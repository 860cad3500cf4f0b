package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "github.com/FACorreiaa/go-trip-planner/app/db"
	appLogger "github.com/FACorreiaa/go-trip-planner/app/logger"
	appMiddleware "github.com/FACorreiaa/go-trip-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/app/tracer"
	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-trip-planner/internal/api/generative"
	"github.com/FACorreiaa/go-trip-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-planner/internal/api/plan"
	"github.com/FACorreiaa/go-trip-planner/internal/api/scoring"
	"github.com/FACorreiaa/go-trip-planner/internal/api/similarity"
	"github.com/FACorreiaa/go-trip-planner/internal/api/tripcontext"
	"github.com/FACorreiaa/go-trip-planner/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	promHandler := tracer.InitTracingAndMetrics()
	metrics.InitAppMetrics()

	// --- Database ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Dependency wiring ---
	appMiddleware.SetJWTSecret(cfg.Auth.JWTSecret)

	catalogRepo := catalog.NewCachedRepository(catalog.NewRepository(pool, logger), cfg.Catalog.CacheTTL, logger)
	if cfg.Catalog.SeedFile != "" {
		if err := seedCatalog(ctx, catalogRepo, cfg.Catalog.SeedFile, logger); err != nil {
			logger.Error("Failed to seed POI catalog", slog.Any("error", err))
			os.Exit(1)
		}
	}

	provider := tripcontext.NewStaticProvider(nil, logger)
	scorer := scoring.NewScorer(nil)
	matcher := similarity.NewMatcher(nil)
	dayBuilder := itinerary.NewDayBuilder(scorer, logger)
	multidayBuilder := itinerary.NewMultiDayBuilder(dayBuilder, provider, logger)

	var narrator plan.Narrator
	geminiKey := cfg.Gemini.APIKey
	if geminiKey == "" {
		geminiKey = os.Getenv("GEMINI_API_KEY")
	}
	if geminiKey != "" {
		n, err := generative.NewNarrator(ctx, geminiKey, cfg.Gemini.Model, logger)
		if err != nil {
			logger.Warn("Narrative generation disabled", slog.Any("error", err))
		} else {
			narrator = n
		}
	}

	planRepo := plan.NewRepository(pool, logger)
	planService := plan.NewService(planRepo, catalogRepo, multidayBuilder, dayBuilder,
		matcher, provider, narrator, metrics.Get(), logger)
	planHandler := plan.NewHandler(planService, logger)
	catalogHandler := catalog.NewHandler(catalogRepo, logger)

	mainRouter := router.SetupRouter(&router.Config{
		PlanHandler:            planHandler,
		CatalogHandler:         catalogHandler,
		AuthenticateMiddleware: appMiddleware.Authenticate,
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(cfg.Server.Timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", mainRouter)

	srv := &http.Server{
		Addr:         cfg.Handlers.ExternalAPI.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	metricsSrv := &http.Server{
		Addr:    cfg.Handlers.Prometheus.Port,
		Handler: promHandler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// seedCatalog loads a CSV file into the POI catalog when the table is still
// empty, so repeated restarts don't duplicate rows.
func seedCatalog(ctx context.Context, repo catalog.Repository, path string, logger *slog.Logger) error {
	existing, err := repo.ListPOIs(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("POI catalog already populated, skipping seed",
			slog.Int("pois", len(existing)))
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pois, err := catalog.LoadCSV(f, logger)
	if err != nil {
		return err
	}
	if err := catalog.SeedRepository(ctx, repo, pois, logger); err != nil {
		return err
	}
	logger.Info("POI catalog seeded", slog.String("file", path), slog.Int("pois", len(pois)))
	return nil
}

func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
	}
	return logger
}
