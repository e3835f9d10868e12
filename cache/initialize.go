// Package cache connects to the optional Redis instance that backs the
// logout denylist.
package cache

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/gengocodes/gensupply-backend/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitializeCache returns a connected Redis client, or nil when no
// REDIS_ADDR is configured.
func InitializeCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		log.Info("Redis not configured, logout will only clear the cookie")
		return nil, nil
	}

	options := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Managed Redis with a password is reached over TLS outside development.
	if cfg.RedisPassword != "" && !cfg.IsDevelopment() {
		options.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Info("Redis initialized successfully", zap.String("addr", cfg.RedisAddr))
	return client, nil
}
