package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/config"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/domain/consultation"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/domain/disease"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/domain/identity"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/domain/reporting"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/auth"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/db"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/i18n"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dronline-server",
		Short: "Telemedicine consultation API server",
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

// starter disease list, seeded once
var seedDiseases = []struct{ en, ar string }{
	{"Influenza", "إنفلونزا"},
	{"Asthma", "الربو"},
	{"Diabetes", "السكري"},
	{"Hypertension", "ارتفاع ضغط الدم"},
	{"Migraine", "الصداع النصفي"},
	{"Allergic Rhinitis", "حساسية الأنف"},
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial admin account and disease list",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("admin-email")
			password, _ := cmd.Flags().GetString("admin-password")
			if email == "" || password == "" {
				return fmt.Errorf("--admin-email and --admin-password are required")
			}

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

			users := identity.NewUserRepoPG(pool)
			if _, err := users.GetByEmail(ctx, email); err == nil {
				fmt.Println("Admin account already exists, skipping.")
			} else {
				hash, err := auth.HashPassword(password)
				if err != nil {
					return err
				}
				admin := &identity.User{
					Email:             email,
					PasswordHash:      hash,
					FullName:          "Administrator",
					Role:              auth.RoleAdmin,
					IsApproved:        true,
					PreferredLanguage: cfg.DefaultLang,
				}
				if err := users.Create(ctx, admin); err != nil {
					return fmt.Errorf("create admin: %w", err)
				}
				fmt.Printf("Created admin account %s\n", email)
			}

			diseases := disease.NewDiseaseRepoPG(pool)
			seeded := 0
			for _, sd := range seedDiseases {
				d := &disease.Disease{NameEN: sd.en, NameAR: sd.ar}
				if err := diseases.Create(ctx, d); err != nil {
					continue // already present
				}
				seeded++
			}
			fmt.Printf("Seeded %d disease(s).\n", seeded)
			return nil
		},
	}
	cmd.Flags().String("admin-email", "", "Email for the initial admin account")
	cmd.Flags().String("admin-password", "", "Password for the initial admin account")
	return cmd
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

	secret := cfg.JWTSecret
	if secret == "" && cfg.IsDev() {
		secret = "dev-secret"
	}
	issuer := auth.NewTokenIssuer([]byte(secret), time.Duration(cfg.JWTTTLHours)*time.Hour)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "Accept-Language"},
	}))

	skipper := auth.Skipper
	if cfg.IsDev() {
		e.Use(auth.DevMiddleware())
		// dev requests without a token already carry the dev admin identity
		skipper = func(c echo.Context) bool {
			return auth.Skipper(c) || c.Request().Header.Get("Authorization") == ""
		}
	}
	e.Use(auth.Middleware(issuer, skipper))
	e.Use(middleware.Audit(logger))

	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	defaultLang := i18n.Parse(cfg.DefaultLang)

	// Repositories
	userRepo := identity.NewUserRepoPG(pool)
	diseaseRepo := disease.NewDiseaseRepoPG(pool)
	consultationRepo := consultation.NewConsultationRepoPG(pool)
	reportRepo := reporting.NewReportRepoPG(pool)

	// Services and handlers
	identitySvc := identity.NewService(userRepo, issuer)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)

	diseaseSvc := disease.NewService(diseaseRepo)
	disease.NewHandler(diseaseSvc, defaultLang).RegisterRoutes(apiV1)

	consultationSvc := consultation.NewService(consultationRepo, userRepo, diseaseRepo)
	consultation.NewHandler(consultationSvc, defaultLang).RegisterRoutes(apiV1)

	reportingSvc := reporting.NewService(reportRepo)
	reporting.NewHandler(reportingSvc).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

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
