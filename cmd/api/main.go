package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-auth-onboarding/internal/config"
	"github.com/go-auth-onboarding/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-auth-onboarding/internal/infrastructure/jwt"
	"github.com/go-auth-onboarding/internal/infrastructure/postgres"
	s3infra "github.com/go-auth-onboarding/internal/infrastructure/s3"
	"github.com/go-auth-onboarding/internal/infrastructure/smtp"
	"github.com/go-auth-onboarding/internal/infrastructure/sns"
	"github.com/go-auth-onboarding/internal/pkg/logger"
	transporthttp "github.com/go-auth-onboarding/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	if envErr != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}
	ctx := log.WithContext(context.Background())

	deps := &transporthttp.Deps{Logger: log}
	closeStores, err := openStores(ctx, cfg, deps)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open stores")
	}
	defer closeStores()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt provider")
	}
	deps.JWTProvider = jwtProvider

	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("s3 client")
	}
	deps.ObjectStore = s3infra.NewStore(s3Client, cfg.S3BucketName)
	deps.Mailer = smtp.NewMailer(cfg)

	// SMS is optional; a missing sender only drops the text copy of the OTP.
	if cfg.SMSEnabled {
		if sender, err := sns.NewSender(ctx, cfg); err == nil {
			deps.SMSSender = sender
		} else {
			log.Warn().Err(err).Msg("sns sender not available")
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Str("driver", cfg.StoreDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		return
	}
	log.Info().Msg("server stopped")
}

// openStores fills the repository fields of deps for the configured driver
// and returns a func releasing the backing connections.
func openStores(ctx context.Context, cfg *config.Config, deps *transporthttp.Deps) (func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		t := cfg.DynamoTables
		deps.CustomerRepo = dynamo.NewCustomerRepo(client, t.Customers, t.Emails)
		deps.AdminRepo = dynamo.NewAdminRepo(client, t.Admins, t.Emails)
		deps.ServiceRepo = dynamo.NewServiceRepo(client, t.Services)
		deps.DocumentRepo = dynamo.NewDocumentRepo(client, t.Documents)
		return func() {}, nil
	default:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		zerolog.Ctx(ctx).Info().Msg("postgres schema ready")
		deps.CustomerRepo = postgres.NewCustomerRepository(pool)
		deps.AdminRepo = postgres.NewAdminRepository(pool)
		deps.ServiceRepo = postgres.NewServiceRepository(pool)
		deps.DocumentRepo = postgres.NewDocumentRepository(pool)
		return pool.Close, nil
	}
}
