package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	echoapi "github.com/botforge/botforge/api/echo"
	"github.com/botforge/botforge/cache"
	rediscache "github.com/botforge/botforge/cache/redis"
	"github.com/botforge/botforge/config"
	"github.com/botforge/botforge/internal/auth"
	"github.com/botforge/botforge/mongodb"
	"github.com/botforge/botforge/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)
	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("mongo_db_name", cfg.MongoDBName).
		Str("log_level", cfg.LogLevel).
		Msg("Starting botforge server")

	ctx := context.Background()
	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize MongoDB connection")
	}
	db := mongodb.GetDB()

	// Repositories
	accountRepo, err := mongodb.NewAccountRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AccountRepository")
	}
	profileRepo := mongodb.NewProfileRepository(db)
	botRepo, err := mongodb.NewBotRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BotRepository")
	}

	blacklist := newBlacklist(ctx, cfg)
	defer func() {
		if err := blacklist.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing token blacklist")
		}
	}()

	// Services
	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	tokenService := services.NewTokenService(
		cfg.JWTSecretKey,
		cfg.JWTIssuer,
		blacklist,
		time.Duration(cfg.AccessTokenTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLHour)*time.Hour,
	)
	accountService := services.NewAccountService(accountRepo, hasher)
	authService := services.NewAuthService(accountService, profileRepo, botRepo, tokenService, hasher)
	botService := services.NewBotService(botRepo, accountRepo)

	e := echo.New()
	e.HideBanner = true
	echoapi.NewAPI(authService, accountService, botService, tokenService).RegisterRoutes(e)

	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for termination, then drain with a deadline.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during HTTP server shutdown")
	}
	mongodb.CloseMongoDB(shutdownCtx)
	log.Info().Msg("Server stopped")
}

func setupLogger(cfg *config.ServerConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
		log.Warn().Str("configured_log_level", cfg.LogLevel).Msg("Invalid LOG_LEVEL configured, defaulting to 'info'")
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// newBlacklist picks the Redis-backed blacklist when Redis is configured and
// falls back to the in-process one otherwise. The fallback does not survive
// restarts or replicas, so it is only for single-instance dev deployments.
func newBlacklist(ctx context.Context, cfg *config.ServerConfig) cache.TokenBlacklist {
	if cfg.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is empty, using in-memory token blacklist")
		return cache.NewMemoryBlacklist()
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping Redis")
	}
	log.Info().Str("redis_addr", cfg.RedisAddr).Msg("Redis token blacklist initialized")

	return rediscache.NewBlacklist(client, "botforge")
}
