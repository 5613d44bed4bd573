package main

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/agri-advisor/internal/config"
	"github.com/i474232898/agri-advisor/internal/store"
	"github.com/i474232898/agri-advisor/internal/weather"
)

func TestServeCancelsContextWhenListenFails(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	done := make(chan struct{})
	go func() {
		serve(app, taken.Addr().String(), zap.NewNop().Sugar(), stop)
		close(done)
	}()

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled after listen failed")
	}
	<-done
}

func TestBuildCacheWithoutRedis(t *testing.T) {
	cfg := &config.AppConfig{CacheMaxEntries: 4}
	cache, closeCache := buildCache(context.Background(), cfg, zap.NewNop().Sugar())
	defer closeCache()

	assert.IsType(t, &store.MemoryStore{}, cache)
}

func TestBuildCacheFallsBackWhenRedisIsDown(t *testing.T) {
	cfg := &config.AppConfig{CacheMaxEntries: 4, RedisAddr: "127.0.0.1:1"}
	cache, closeCache := buildCache(context.Background(), cfg, zap.NewNop().Sugar())
	defer closeCache()

	assert.IsType(t, &store.MemoryStore{}, cache)
}

// Runs only against a real server, e.g. REDIS_ADDR=localhost:6379.
func TestBuildCacheClosesRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	cfg := &config.AppConfig{CacheMaxEntries: 4, RedisAddr: addr, RedisPassword: os.Getenv("REDIS_PASSWORD")}
	cache, closeCache := buildCache(context.Background(), cfg, zap.NewNop().Sugar())
	require.IsType(t, &store.RedisStore{}, cache)

	closeCache()
	_, _, err := cache.Get(context.Background(), weather.Location{City: "closed"})
	assert.Error(t, err)
}
