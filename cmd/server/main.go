package main

import (
	"context"
	"crypto"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	auditpkg "medquiz-platform/backend/internal/audit"
	auditrepo "medquiz-platform/backend/internal/audit/repository"
	"medquiz-platform/backend/internal/config"
	courserepo "medquiz-platform/backend/internal/course/repository"
	"medquiz-platform/backend/internal/db"
	"medquiz-platform/backend/internal/deviceident"
	identityhandler "medquiz-platform/backend/internal/identity/handler"
	identityservice "medquiz-platform/backend/internal/identity/service"
	"medquiz-platform/backend/internal/lockout"
	"medquiz-platform/backend/internal/logging"
	"medquiz-platform/backend/internal/security"
	"medquiz-platform/backend/internal/server"
	"medquiz-platform/backend/internal/server/middleware"
	sessionrepo "medquiz-platform/backend/internal/session/repository"
	sessionservice "medquiz-platform/backend/internal/session/service"
	"medquiz-platform/backend/internal/telemetry"
	telemetryotel "medquiz-platform/backend/internal/telemetry/otel"
	"medquiz-platform/backend/internal/telemetry/producer"
	userrepo "medquiz-platform/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Env)
	defer func() { _ = logger.Sync() }()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer database.Close()

	tokens, err := buildTokenProvider(cfg, logger)
	if err != nil {
		logger.Fatal("jwt keys", zap.Error(err))
	}

	ctx := context.Background()
	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "medquiz-backend", cfg.OTLPInsecure)
	if err != nil {
		logger.Fatal("otel", zap.Error(err))
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	emitter := buildEmitter(cfg, providers, logger)
	defer func() { _ = emitter.Close() }()

	throttle := lockout.NewStore(cfg.RedisAddr, cfg.LoginMaxAttempts, cfg.LockoutWindow(), logger)
	defer func() { _ = throttle.Close() }()

	auditLogger := auditpkg.NewLogger(
		auditrepo.NewPostgresRepository(database),
		middleware.GetClientIP,
		logger,
	)

	registry := sessionservice.NewRegistry(
		sessionrepo.NewPostgresRepository(database),
		cfg.MaxDevicesPerUser,
		cfg.StaleAfter(),
		auditLogger,
		emitter,
		logger,
	)

	authService := identityservice.NewAuthService(
		userrepo.NewPostgresRepository(database),
		registry,
		throttle,
		security.NewHasher(cfg.BcryptCost),
		tokens,
	)

	router := server.NewRouter(server.Deps{
		Auth:         identityhandler.NewHandler(authService, deviceident.NewCookieProvider(cfg.Env == "production")),
		Sessions:     registry,
		CatalogRepo:  courserepo.NewPostgresRepository(database),
		Tokens:       tokens,
		HealthPinger: database,
		Log:          logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
}

// buildTokenProvider loads the configured JWT keypair, or generates an
// ephemeral dev key when none is configured outside production.
func buildTokenProvider(cfg *config.Config, logger *zap.Logger) (*security.TokenProvider, error) {
	var (
		priv crypto.Signer
		pub  crypto.PublicKey
		err  error
	)
	if cfg.JWTPrivateKey != "" {
		priv, err = security.ParsePrivateKey(cfg.JWTPrivateKey)
		if err != nil {
			return nil, err
		}
		pub = priv.Public()
		if cfg.JWTPublicKey != "" {
			pub, err = security.ParsePublicKey(cfg.JWTPublicKey)
			if err != nil {
				return nil, err
			}
		}
	} else {
		priv, err = security.GenerateDevKey()
		if err != nil {
			return nil, err
		}
		pub = priv.Public()
		logger.Warn("using ephemeral dev JWT key; tokens will not survive restarts",
			zap.String("alg", security.KeyAlg(pub)))
	}
	return security.NewTokenProvider(priv, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL()), nil
}

// buildEmitter prefers Kafka when brokers are configured and falls back to
// OTel log records, so events reach whichever pipeline the deployment runs.
func buildEmitter(cfg *config.Config, providers *telemetryotel.Providers, logger *zap.Logger) telemetry.EventEmitter {
	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) > 0 {
		kafkaProducer, err := producer.NewKafkaProducer(brokers, cfg.TelemetryKafkaTopic, logger)
		if err == nil && kafkaProducer != nil {
			logger.Info("telemetry: emitting to kafka",
				zap.Strings("brokers", brokers), zap.String("topic", cfg.TelemetryKafkaTopic))
			return kafkaProducer
		}
		if err != nil {
			logger.Warn("telemetry: kafka producer init failed, falling back to otel", zap.Error(err))
		}
	}
	return telemetryotel.NewEventEmitter(providers.LoggerProvider)
}
