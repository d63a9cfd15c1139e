package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coco/coco/internal/config"
	"github.com/coco/coco/internal/domain/analysis"
	"github.com/coco/coco/internal/domain/catalog"
	"github.com/coco/coco/internal/domain/codes"
	"github.com/coco/coco/internal/domain/dataset"
	"github.com/coco/coco/internal/platform/auth"
	"github.com/coco/coco/internal/platform/db"
	"github.com/coco/coco/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coco-server",
		Short: "Clinical code co-occurrence API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(catalogCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the co-occurrence API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage code catalog reference tables",
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a code system's catalog table from a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			systemName, _ := cmd.Flags().GetString("system")
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			system, err := parseSystem(systemName)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.HasDatabase() {
				return fmt.Errorf("DATABASE_URL is required for catalog import")
			}

			entries, err := catalog.ReadCSVFile(file, system)
			if err != nil {
				return fmt.Errorf("read catalog CSV: %w", err)
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := catalog.NewImporter(pool).Replace(ctx, system, entries); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Printf("Imported %d %s catalog entries.\n", len(entries), system)
			return nil
		},
	}
	importCmd.Flags().String("system", "", "Code system (ICD, OPS, LOINC)")
	importCmd.Flags().String("file", "", "Path to catalog CSV file")
	cmd.AddCommand(importCmd)

	return cmd
}

// parseSystem maps the --system flag onto a code system, case-insensitively.
func parseSystem(name string) (codes.ResourceType, error) {
	switch codes.ResourceType(strings.ToUpper(name)) {
	case codes.ICD:
		return codes.ICD, nil
	case codes.OPS:
		return codes.OPS, nil
	case codes.LOINC:
		return codes.LOINC, nil
	}
	return codes.Unknown, fmt.Errorf("--system must be ICD, OPS, or LOINC, got %q", name)
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Catalog store: Postgres when configured, in-memory otherwise. The
	// engine runs either way; without catalogs the hierarchy labels fall
	// back to raw codes.
	ctx := context.Background()
	var catalogRepo catalog.Repository
	var pool *pgxpool.Pool
	if cfg.HasDatabase() {
		p, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer p.Close()
		pool = p
		catalogRepo = catalog.NewRepoPG(p)
		logger.Info().Msg("connected to database")
	} else {
		catalogRepo = catalog.NewMemoryRepository()
		logger.Warn().Msg("DATABASE_URL not set; running with in-memory catalog")
	}

	// Services
	catalogSvc := catalog.NewService(catalogRepo, logger)
	store := dataset.NewMemoryStore()
	datasetSvc := dataset.NewService(catalogSvc, store, logger)
	analysisSvc := analysis.NewService(logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.UploadMaxBytes))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(cfg.JWTSecret))
	}

	// Health check
	e.GET("/health", db.HealthHandler(pool))

	// API group
	apiV1 := e.Group("/api/v1")

	dataset.NewHandler(datasetSvc).RegisterRoutes(apiV1)
	analysis.NewHandler(datasetSvc, analysisSvc, cfg.TopNDefault, cfg.NeighborsDefault).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
