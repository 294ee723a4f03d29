package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/fajrglobal/clinic-api/internal/config"
	encounterHandler "github.com/fajrglobal/clinic-api/internal/handler/encounter"
	exportHandler "github.com/fajrglobal/clinic-api/internal/handler/export"
	"github.com/fajrglobal/clinic-api/internal/handler/health"
	patientHandler "github.com/fajrglobal/clinic-api/internal/handler/patient"
	promHandler "github.com/fajrglobal/clinic-api/internal/handler/prometheus"
	"github.com/fajrglobal/clinic-api/internal/repository/sqlstore"
	"github.com/fajrglobal/clinic-api/internal/router"
	encounterService "github.com/fajrglobal/clinic-api/internal/service/encounter"
	exportService "github.com/fajrglobal/clinic-api/internal/service/export"
	patientService "github.com/fajrglobal/clinic-api/internal/service/patient"
	"github.com/fajrglobal/clinic-api/pkg/logger"
	"github.com/fajrglobal/clinic-api/pkg/metrics"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinic-api",
		Short:         "Clinical records API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
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
			return withDB(func(db *sqlx.DB) error {
				n, err := sqlstore.MigrateUp(db)
				if err != nil {
					return err
				}
				log.Info().Int("applied", n).Msg("migrations applied")
				return nil
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withDB(func(db *sqlx.DB) error {
				n, err := sqlstore.Migrate(db, migrate.Down, steps)
				if err != nil {
					return err
				}
				log.Info().Int("rolled_back", n).Msg("migrations rolled back")
				return nil
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "number of migrations to roll back (0 for all)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sqlx.DB) error {
				statuses, err := sqlstore.MigrationsStatus(db)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Fprintf(out, "%-50s %s\n", s.ID, state)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(upCmd, downCmd, statusCmd)
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return cfg, nil
}

func withDB(fn func(db *sqlx.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := sqlstore.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := sqlstore.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		n, err := sqlstore.MigrateUp(db)
		if err != nil {
			return err
		}
		log.Info().Int("applied", n).Str("driver", cfg.Database.Driver).Msg("database schema up to date")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics("clinic", registry)

	// Initialize repositories
	base := sqlstore.NewBaseRepository(db, m)
	patientRepo := sqlstore.NewPatientRepository(base)
	encounterRepo := sqlstore.NewEncounterRepository(base)
	itemRepo := sqlstore.NewEncounterItemRepository(base)
	exportRepo := sqlstore.NewExportRepository(base)

	// Initialize services
	patientSvc := patientService.NewService(patientRepo)
	encounterSvc := encounterService.NewService(patientRepo, encounterRepo, itemRepo, m)
	exportSvc := exportService.NewService(exportRepo, m)

	// Initialize handlers
	handlers := router.Handlers{
		Health:    health.NewHandler(db),
		Patient:   patientHandler.NewHandler(patientSvc),
		Encounter: encounterHandler.NewHandler(encounterSvc),
		Export:    exportHandler.NewHandler(exportSvc),
	}
	if cfg.Monitoring.PrometheusEnabled {
		handlers.Metrics = promHandler.New(registry).Handler()
	}

	routerConfig := router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		MetricsPath:    cfg.Monitoring.MetricsPath,
		StaticDir:      cfg.Server.StaticDir,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	r, err := router.NewRouter(handlers, m, routerConfig)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
