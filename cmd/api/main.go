package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/vidtube-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/vidtube-api/internal/account"
	"github.com/redmonkez12/vidtube-api/internal/auth"
	"github.com/redmonkez12/vidtube-api/internal/config"
	"github.com/redmonkez12/vidtube-api/internal/database"
	httpServer "github.com/redmonkez12/vidtube-api/internal/http"
	"github.com/redmonkez12/vidtube-api/internal/logging"
	"github.com/redmonkez12/vidtube-api/internal/media"
	"github.com/redmonkez12/vidtube-api/internal/profile"
	"github.com/redmonkez12/vidtube-api/internal/ratelimit"
	"github.com/redmonkez12/vidtube-api/internal/user"
	"github.com/redmonkez12/vidtube-api/internal/validation"
)

// @title           VidTube API
// @version         1.0
// @description     User accounts, sessions and channel profiles for the VidTube video platform.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
	)

	ctx := context.Background()

	db, err := database.Open(cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.CreateSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	uploader, err := media.NewS3Uploader(ctx, cfg.Media)
	if err != nil {
		return fmt.Errorf("failed to initialize media uploader: %w", err)
	}
	if err := os.MkdirAll(cfg.Media.TempDir, 0o750); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	accessTokens, refreshTokens, err := auth.NewTokenServices(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token services: %w", err)
	}

	validator := validation.New()
	userRepo := user.NewRepository(db)
	profileRepo := profile.NewRepository(db)
	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimit)

	authService := auth.NewService(
		userRepo,
		uploader,
		validator,
		accessTokens,
		refreshTokens,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	accountService := account.NewService(userRepo, uploader, validator)
	profileService := profile.NewService(profileRepo)

	handlers := httpServer.Handlers{
		Auth:    auth.NewHandler(authService, rateLimiter, cfg.Media.TempDir, cfg.Media.MaxUploadSize),
		Account: account.NewHandler(accountService, cfg.Media.TempDir, cfg.Media.MaxUploadSize),
		Profile: profile.NewHandler(profileService),
	}
	authMiddleware := auth.NewMiddleware(accessTokens)

	router := httpServer.NewRouter(cfg, handlers, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis connects to Redis and verifies the connection
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
