package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisstorage "github.com/vionex/auth-service/internal/storage/redis"
	"github.com/vionex/auth-service/internal/util"
)

func newTestWindow(t *testing.T) (*redisstorage.WindowCounter, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return redisstorage.NewWindowCounter(client), mr, func() {
		_ = client.Close()
		mr.Close()
	}
}

func newTestTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return NewTokenService(&util.TokenConfig{
		JwtSecretKey: []byte(secret),
		AccessTTL:    accessTTL,
		RefreshTTL:   refreshTTL,
	})
}
