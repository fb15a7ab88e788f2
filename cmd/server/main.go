package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guptas/lms-backend/internal/config"
	"github.com/guptas/lms-backend/internal/database"
	"github.com/guptas/lms-backend/internal/handler"
	"github.com/guptas/lms-backend/internal/logger"
	"github.com/guptas/lms-backend/internal/mail"
	"github.com/guptas/lms-backend/internal/repository"
	"github.com/guptas/lms-backend/internal/router"
	"github.com/guptas/lms-backend/internal/service"
	"github.com/guptas/lms-backend/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Guptas LMS Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Mail Service ───────────────────────────────────────
	var mailer mail.Service
	if cfg.SendgridAPIKey != "" {
		mailer = mail.NewSendgridService(cfg.SendgridAPIKey, cfg.EmailFromName, cfg.EmailFrom, log)
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, email delivery disabled")
		mailer = mail.NewConsoleService(log)
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	codeRepo := repository.NewAccessCodeRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	certificateRepo := repository.NewCertificateRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, courseRepo, assignmentRepo, log)
	verificationService := service.NewVerificationService(
		userRepo, codeRepo, mailer, service.NewCodeGenerator(), rdb, cfg, log)
	courseService := service.NewCourseService(courseRepo, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, log)
	certificateService := service.NewCertificateService(certificateRepo, courseRepo, userRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService, userService),
		Admin:       handler.NewAdminHandler(userService, verificationService),
		Teacher:     handler.NewTeacherHandler(verificationService),
		User:        handler.NewUserHandler(userService, courseService, certificateService),
		Course:      handler.NewCourseHandler(courseService),
		Assignment:  handler.NewAssignmentHandler(assignmentService),
		Certificate: handler.NewCertificateHandler(certificateService),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, userService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
