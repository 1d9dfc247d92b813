package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/triage/triage/internal/config"
	"github.com/triage/triage/internal/domain/patient"
	"github.com/triage/triage/internal/domain/pharmacy"
	"github.com/triage/triage/internal/domain/therapy"
	"github.com/triage/triage/internal/domain/triage"
	"github.com/triage/triage/internal/platform/db"
	"github.com/triage/triage/internal/platform/middleware"
	"github.com/triage/triage/internal/refdata"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "triage-server",
		Short: "Clinical triage pipeline API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the triage API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// runCmd executes a single triage run from the command line and prints the
// assembled plan as JSON.
func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one triage run and print the plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			xrayRef, _ := cmd.Flags().GetString("xray")
			docRef, _ := cmd.Flags().GetString("document")
			if xrayRef == "" {
				return fmt.Errorf("--xray is required")
			}

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			deps, _, cleanup, err := buildDeps(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			plan, err := triage.NewService(deps).Run(ctx, triage.Request{
				XrayRef:     xrayRef,
				DocumentRef: docRef,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(plan, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().String("xray", "", "Path to the chest X-ray image")
	cmd.Flags().String("document", "", "Path to the clinical notes document")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load reference data into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.UsePostgres() {
				return fmt.Errorf("DATABASE_URL is not set; seeding requires Postgres")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			pharmacies, err := refdata.Pharmacies(cfg.PharmaciesFile)
			if err != nil {
				return err
			}
			inventory, err := refdata.Inventory(cfg.InventoryFile)
			if err != nil {
				return err
			}
			formulary, err := refdata.Formulary(cfg.FormularyFile)
			if err != nil {
				return err
			}

			if err := refdata.SeedPG(ctx, pool, pharmacies, inventory, formulary); err != nil {
				return err
			}
			fmt.Printf("Seeded %d pharmacies, %d inventory rows, %d formulary entries.\n",
				len(pharmacies), len(inventory), len(formulary))
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// buildDeps assembles the orchestrator dependencies: Postgres-backed
// repositories when DATABASE_URL is set, otherwise in-memory repositories
// seeded from the reference data files. The returned pool is nil for the
// in-memory backend; cleanup closes it when present.
func buildDeps(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (triage.Deps, *pgxpool.Pool, func(), error) {
	deps := triage.Deps{
		DefaultLocation: patient.Location{Lat: cfg.DefaultLat, Lon: cfg.DefaultLon},
		Logger:          logger,
	}

	if cfg.UsePostgres() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return deps, nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		deps.Formulary = therapy.NewFormularyRepoPG(pool)
		deps.Directory = pharmacy.NewDirectoryRepoPG(pool)
		deps.Inventory = pharmacy.NewInventoryRepoPG(pool)
		return deps, pool, pool.Close, nil
	}

	pharmacies, err := refdata.Pharmacies(cfg.PharmaciesFile)
	if err != nil {
		return deps, nil, nil, err
	}
	inventory, err := refdata.Inventory(cfg.InventoryFile)
	if err != nil {
		return deps, nil, nil, err
	}
	formulary, err := refdata.Formulary(cfg.FormularyFile)
	if err != nil {
		return deps, nil, nil, err
	}

	deps.Formulary = therapy.NewFormularyRepoMem(formulary)
	deps.Directory = pharmacy.NewDirectoryRepoMem(pharmacies)
	deps.Inventory = pharmacy.NewInventoryRepoMem(inventory)
	return deps, nil, func() {}, nil
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	deps, pool, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build dependencies")
	}
	defer cleanup()

	if cfg.UsePostgres() {
		logger.Info().Msg("using Postgres repositories")
	} else {
		logger.Info().Msg("using in-memory repositories")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.SanitizeWithLogger(logger))
	e.Use(middleware.BodyLimit("1M", "10M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.Audit(logger))

	// API group
	api := e.Group("/api")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// ETag and conditional requests on the read endpoints. Triage runs are
	// never cacheable.
	cacheCfg := middleware.DefaultCacheConfig()
	cacheCfg.ExcludePaths = []string{"/api/triage/runs"}
	api.Use(middleware.ETagMiddleware(cacheCfg))
	api.Use(middleware.ConditionalRequestMiddleware())

	// Handlers
	triage.NewHandler(triage.NewService(deps)).RegisterRoutes(api)
	therapy.NewHandler(deps.Formulary).RegisterRoutes(api)
	pharmacy.NewHandler(deps.Directory, deps.Inventory).RegisterRoutes(api)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

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
