package util

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	defaultServerAddr      = "localhost:8080"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultAccessTTL  = 24 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour

	defaultBcryptCost = 12

	defaultRateLimit       = 100
	defaultRateLimitWindow = 1 * time.Minute

	defaultMaxLoginAttempts   = 5
	defaultLoginAttemptWindow = 15 * time.Minute
)

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

func NewServerConfig() *ServerConfig {
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = defaultServerAddr
	}

	return &ServerConfig{
		ServerAddr:      addr,
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
	}
}

type TokenConfig struct {
	JwtSecretKey []byte
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

func NewTokenConfig() *TokenConfig {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	return &TokenConfig{
		JwtSecretKey: []byte(secret),
		AccessTTL:    parseDurationOrDefault("ACCESS_TOKEN_TTL", defaultAccessTTL),
		RefreshTTL:   parseDurationOrDefault("REFRESH_TOKEN_TTL", defaultRefreshTTL),
	}
}

type HasherConfig struct {
	Cost int
}

func NewHasherConfig() *HasherConfig {
	cost := parseIntOrDefault("BCRYPT_COST", defaultBcryptCost)
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		log.Printf("BCRYPT_COST %d out of range, using default %d", cost, defaultBcryptCost)
		cost = defaultBcryptCost
	}
	return &HasherConfig{Cost: cost}
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

func NewRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Limit:  parseIntOrDefault("RATE_LIMIT_MAX", defaultRateLimit),
		Window: parseDurationOrDefault("RATE_LIMIT_WINDOW", defaultRateLimitWindow),
	}
}

type LoginAttemptConfig struct {
	MaxAttempts int
	Window      time.Duration
}

func NewLoginAttemptConfig() *LoginAttemptConfig {
	return &LoginAttemptConfig{
		MaxAttempts: parseIntOrDefault("LOGIN_MAX_ATTEMPTS", defaultMaxLoginAttempts),
		Window:      parseDurationOrDefault("LOGIN_ATTEMPT_WINDOW", defaultLoginAttemptWindow),
	}
}

// UseMemoryRateLimiter selects the single-process in-memory window for the
// generic rate limiter. Login attempts and sessions always stay on the shared
// store.
func UseMemoryRateLimiter() bool {
	return os.Getenv("RATE_LIMIT_BACKEND") == "memory"
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}

func parseIntOrDefault(varName string, def int) int {
	if v := os.Getenv(varName); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid integer in %s: %s, using default %d", varName, v, def)
	}
	return def
}
