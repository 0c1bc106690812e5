package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coreforge/bnetrest/internal/addr"
	"github.com/coreforge/bnetrest/internal/auth"
	"github.com/coreforge/bnetrest/internal/background"
	"github.com/coreforge/bnetrest/internal/config"
	"github.com/coreforge/bnetrest/internal/database"
	"github.com/coreforge/bnetrest/internal/handlers"
	middlewareCustom "github.com/coreforge/bnetrest/internal/middleware"
	"github.com/coreforge/bnetrest/internal/models"
	"github.com/coreforge/bnetrest/internal/repositories"
	"github.com/coreforge/bnetrest/internal/routes"
	"github.com/coreforge/bnetrest/internal/services"
	pkghttp "github.com/coreforge/bnetrest/pkg/http"
	pkglogger "github.com/coreforge/bnetrest/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// A hostname that does not resolve would advertise a dead portal to every
	// client, so it is fatal at startup.
	resolveCtx, resolveCancel := context.WithTimeout(context.Background(), 10*time.Second)
	addrTable, err := addr.NewTable(resolveCtx, cfg.Login.ExternalAddress, cfg.Login.LocalAddress)
	resolveCancel()
	if err != nil {
		logger.Error("failed to resolve advertised addresses", slog.Any("error", err))
		os.Exit(1)
	}

	accountRepo := repositories.NewAccountRepository(db.Pool)
	auditLogger := pkglogger.NewAuditLogger(logger)

	loginService := services.NewLoginService(accountRepo, addrTable, cfg.Login, cfg.WrongPass, logger, auditLogger)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	loginHandler := handlers.NewLoginHandler(loginService, logger, ipConfig)

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureBootstrapAccount(bootstrapCtx, accountRepo, logger); err != nil {
		logger.Error("failed to ensure bootstrap account", slog.Any("error", err))
	}
	bootstrapCancel()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, loginHandler)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			pkghttp.WriteServiceUnavailable(w, "database unreachable")
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweeper := background.NewBanSweeper(accountRepo, logger, cfg.Server.BanSweepInterval)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go sweeper.Start(sweepCtx)

	go func() {
		logger.Info("starting login REST service", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweepCancel()
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureBootstrapAccount creates the first battle.net account when
// BNET_BOOTSTRAP_EMAIL and BNET_BOOTSTRAP_PASSWORD are set, so a fresh
// deployment has something to log in with.
func ensureBootstrapAccount(ctx context.Context, accountRepo *repositories.AccountRepository, logger *slog.Logger) error {
	email := os.Getenv("BNET_BOOTSTRAP_EMAIL")
	password := os.Getenv("BNET_BOOTSTRAP_PASSWORD")

	if email == "" || password == "" {
		logger.Info("no BNET_BOOTSTRAP_EMAIL or BNET_BOOTSTRAP_PASSWORD set, skipping bootstrap account")
		return nil
	}

	login := auth.UpperOnlyLatin(email)

	_, err := accountRepo.GetByEmail(ctx, login)
	if err == nil {
		logger.Info("bootstrap account already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check bootstrap account: %w", err)
	}

	hash := auth.CalculateShaPassHash(login, auth.UpperOnlyLatin(password))

	if _, err := accountRepo.CreateAccount(ctx, login, hash); err != nil {
		return fmt.Errorf("failed to create bootstrap account: %w", err)
	}

	logger.Info("bootstrap account created", slog.String("account", pkglogger.SanitizedEmail(login)))
	return nil
}
