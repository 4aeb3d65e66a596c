package main

import (
	"context"
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
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/visitflow/visitflow/internal/config"
	"github.com/visitflow/visitflow/internal/domain/catalog"
	"github.com/visitflow/visitflow/internal/domain/diagnostics"
	"github.com/visitflow/visitflow/internal/domain/ledger"
	"github.com/visitflow/visitflow/internal/domain/registry"
	"github.com/visitflow/visitflow/internal/domain/visit"
	"github.com/visitflow/visitflow/internal/platform/auth"
	"github.com/visitflow/visitflow/internal/platform/db"
	"github.com/visitflow/visitflow/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "visitflow-server",
		Short: "Hospital visit workflow API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
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

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
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
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed demo catalog and patients",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			return seed(ctx, pool)
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.JWTSigningKey),
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	// Repositories
	patientRepo := registry.NewRepoPG(pool)
	serviceRepo := catalog.NewServiceItemRepoPG(pool)
	medicationRepo := catalog.NewMedicationRepoPG(pool)
	ledgerRepo := ledger.NewRepoPG(pool)
	labRepo := diagnostics.NewLabRepoPG(pool)
	radiologyRepo := diagnostics.NewRadiologyRepoPG(pool)
	visitRepo := visit.NewRepoPG(pool)

	// Services and handlers
	registry.NewHandler(registry.NewService(patientRepo)).RegisterRoutes(apiV1)
	catalog.NewHandler(catalog.NewService(serviceRepo, medicationRepo)).RegisterRoutes(apiV1)
	ledger.NewHandler(ledger.NewService(ledgerRepo)).RegisterRoutes(apiV1)
	diagnostics.NewHandler(diagnostics.NewService(labRepo, radiologyRepo)).RegisterRoutes(apiV1)

	visitSvc := visit.NewService(
		visitRepo,
		patientRepo,
		serviceRepo,
		medicationRepo,
		ledgerRepo,
		labRepo,
		radiologyRepo,
		&db.PoolTxRunner{Pool: pool},
	)
	visit.NewHandler(visitSvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
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
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// seed loads a small demo dataset through the domain services so the
// same validation and kind resolution applies as in production writes.
func seed(ctx context.Context, pool *pgxpool.Pool) error {
	patientSvc := registry.NewService(registry.NewRepoPG(pool))
	catalogSvc := catalog.NewService(catalog.NewServiceItemRepoPG(pool), catalog.NewMedicationRepoPG(pool))

	patients := []*registry.Patient{
		{MRN: "PT-0001", FullName: "Nguyễn Văn An"},
		{MRN: "PT-0002", FullName: "Trần Thị Bình"},
		{MRN: "PT-0003", FullName: "Lê Văn Cường"},
	}
	for _, p := range patients {
		if err := patientSvc.CreatePatient(ctx, p); err != nil {
			return fmt.Errorf("seed patient %s: %w", p.MRN, err)
		}
	}

	services := []*catalog.ServiceItem{
		{Code: "SRV001", Name: "Khám nội tổng quát", Category: "Khám bệnh", Price: decimal.NewFromInt(100000)},
		{Code: "SRV002", Name: "Công thức máu", Category: "Xét nghiệm", Price: decimal.NewFromInt(50000)},
		{Code: "SRV003", Name: "Xét nghiệm đường huyết", Category: "Xét nghiệm", Price: decimal.NewFromInt(40000)},
		{Code: "SRV004", Name: "Chụp X-quang ngực", Category: "Chẩn đoán hình ảnh", Price: decimal.NewFromInt(120000)},
		{Code: "SRV005", Name: "Siêu âm ổ bụng", Category: "Chẩn đoán hình ảnh", Price: decimal.NewFromInt(200000)},
		{Code: "SRV006", Name: "Thay băng vết thương", Category: "Thủ thuật", Price: decimal.NewFromInt(30000)},
	}
	for _, s := range services {
		if err := catalogSvc.CreateServiceItem(ctx, s); err != nil {
			return fmt.Errorf("seed service %s: %w", s.Code, err)
		}
	}

	medications := []*catalog.Medication{
		{Code: "MED001", Name: "Paracetamol 500mg", Unit: "viên", Cost: decimal.NewFromInt(2000), Stock: 500},
		{Code: "MED002", Name: "Amoxicillin 500mg", Unit: "viên", Cost: decimal.NewFromInt(3500), Stock: 300},
		{Code: "MED003", Name: "Oresol", Unit: "gói", Cost: decimal.NewFromInt(5000), Stock: 200},
	}
	for _, m := range medications {
		if err := catalogSvc.CreateMedication(ctx, m); err != nil {
			return fmt.Errorf("seed medication %s: %w", m.Code, err)
		}
	}

	fmt.Println("Seed data loaded.")
	return nil
}
