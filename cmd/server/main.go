package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/AlexTLDR/agencydesk/internal/backend"
	"github.com/AlexTLDR/agencydesk/internal/config"
	"github.com/AlexTLDR/agencydesk/internal/database"
	"github.com/AlexTLDR/agencydesk/internal/duplicates"
	"github.com/AlexTLDR/agencydesk/internal/logger"
	"github.com/AlexTLDR/agencydesk/internal/metrics"
	"github.com/AlexTLDR/agencydesk/internal/server"
	"github.com/AlexTLDR/agencydesk/internal/utils"
)

func main() {
	// Load .env file (ignore error if a file doesn't exist)
	// Use Overload to force to overwrite any existing environment variables
	envErr := godotenv.Overload()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.FilePath = cfg.LogFile
	logCfg.Console = cfg.LogConsole
	log := logger.New(logCfg)

	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file loaded")
	}

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Duplicate lookups go to the agency API when one is configured
	var searcher duplicates.Searcher = db.Candidates()
	if cfg.BackendURL != "" {
		searcher = backend.New(backend.Config{
			BaseURL: cfg.BackendURL,
			Token:   cfg.BackendToken,
			Timeout: cfg.BackendTimeout,
		})
		log.Info().Str("backend_url", cfg.BackendURL).Msg("duplicate checks use the agency API")
	}

	checker := duplicates.NewChecker(searcher,
		duplicates.WithThreshold(cfg.DuplicateThreshold),
		duplicates.WithPageSize(cfg.DuplicatePageSize),
		duplicates.WithLogger(log.With().Str("component", "duplicates").Logger()),
		duplicates.WithMetrics(m),
	)

	srv := server.New(cfg, server.Deps{
		Store:    db,
		Checker:  checker,
		Phones:   utils.NewPhoneNormalizer(cfg.PhoneOptions()),
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}
