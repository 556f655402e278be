package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "tasklist/docs"
	"tasklist/internal/config"
	"tasklist/internal/handlers"
	"tasklist/internal/logger"
	"tasklist/internal/middleware"
	"tasklist/internal/pdf"
	"tasklist/internal/repositories"
	"tasklist/internal/routes"
	"tasklist/internal/services"
)

// Run loads configuration from configPath, serves HTTP until SIGINT/SIGTERM
// and shuts down gracefully.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Init(cfg.Env, cfg.Email.FallbackLog)
	defer logger.Sync()
	log := logger.GetLogger()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("database close failed", zap.Error(err))
		}
	}()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	// === Metrics ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(registry)

	// === Repos ===
	accountRepo := repositories.NewAccountRepository(db)
	codeRepo := repositories.NewVerificationCodeRepository(db)
	listRepo := repositories.NewTaskListRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	// === Services ===
	tokens, err := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, time.Now)
	if err != nil {
		return err
	}
	codes := services.NewCodeManager(codeRepo, services.VerificationOptions{
		CodeTTL:  cfg.Verification.CodeTTL,
		Throttle: services.NewResendThrottle(cfg.Verification.ResendCooldown),
		Metrics:  metrics,
	})
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Verification.CodeTTL,
	)
	if cfg.Email.SMTPHost == "" || cfg.Email.SMTPUser == "" {
		log.Warn("SMTP not configured, verification codes go to the fallback log only",
			zap.String("fallback_log", cfg.Email.FallbackLog))
	}
	telegram, err := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.OpsChatID)
	if err != nil {
		// alerts are optional; the API still works without them
		log.Warn("telegram alerts disabled", zap.Error(err))
		telegram = nil
	}
	var alerter services.Alerter
	if telegram != nil {
		alerter = telegram
	}
	dispatcher := services.NewNotificationDispatcher(emailService, alerter, metrics, cfg.Email.Timeout)

	authService := services.NewAuthService(
		accountRepo,
		codes,
		services.NewPasswordHasher(cfg.Auth.BcryptCost),
		tokens,
		dispatcher,
		metrics,
	)
	taskListService := services.NewTaskListService(listRepo, taskRepo)
	taskService := services.NewTaskService(listRepo, taskRepo)

	// === Gin ===
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	defer limiter.Close()

	routes.SetupRoutes(router, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		TaskLists: handlers.NewTaskListHandler(taskListService, pdf.NewTaskListExporter(cfg.Files.FontPath)),
		Tasks:     handlers.NewTaskHandler(taskService),
	}, authService, limiter, registry)

	// === Run ===
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
