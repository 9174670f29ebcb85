package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/vionex/auth-service/internal/api"
	"github.com/vionex/auth-service/internal/controller"
	"github.com/vionex/auth-service/internal/migrations"
	"github.com/vionex/auth-service/internal/service"
	"github.com/vionex/auth-service/internal/storage"
	"github.com/vionex/auth-service/internal/storage/memory"
	"github.com/vionex/auth-service/internal/storage/postgres"
	redisstorage "github.com/vionex/auth-service/internal/storage/redis"
	"github.com/vionex/auth-service/internal/util"

	_ "github.com/lib/pq"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()

	db, dbCleanup, err := util.NewDBConnection(logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	if err := migrations.RunMigrations(db, logger, "./internal/migrations"); err != nil {
		logger.Fatal(zap.Error(err))
	}

	redisClient, redisCleanup, err := util.NewRedisClient(logger, util.NewRedisConfig())
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	cleanupFuncs := []func(){dbCleanup, redisCleanup}

	sharedWindow := redisstorage.NewWindowCounter(redisClient)

	// Login-attempt history and sessions always live on the shared store;
	// only the generic limiter may fall back to the per-process window.
	var limiterWindow storage.EventWindow = sharedWindow
	if util.UseMemoryRateLimiter() {
		logger.Warn("Using in-memory rate limiter; counts are per process, not authoritative across workers")
		limiterWindow = memory.NewWindowCounter()
	}

	accounts := postgres.NewAccountRepository(db)
	sessions := redisstorage.NewSessionStore(redisClient)

	tokenService := service.NewTokenService(util.NewTokenConfig())
	hasher := service.NewPasswordHasher(util.NewHasherConfig())
	attempts := service.NewLoginAttemptTracker(sharedWindow, util.NewLoginAttemptConfig())
	rateLimiter := service.NewRateLimiter(limiterWindow, util.NewRateLimitConfig())
	twoFactor := service.NewTwoFactorService()

	authService := service.NewAuthService(accounts, sessions, tokenService, hasher, attempts, logger)

	c := controller.NewController(logger, authService, twoFactor)

	apiServer := api.NewAPI(c, authService, rateLimiter, util.NewServerConfig(), logger, cleanupFuncs)
	apiServer.Run(ctx)
}
