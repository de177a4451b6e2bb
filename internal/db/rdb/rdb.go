// Package rdb manages the Redis client used as a read-through cache in
// front of rarely-changing Store queries (internal/store/cache.go).
package rdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/turahe/kuha-go/config"
	"github.com/turahe/kuha-go/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var rdb redis.Cmdable
var m sync.Mutex
var prefix string

type RedisCredentials struct {
	Password string
	Database int
}

func InitRedisClient(redisConfigs []config.Redis) error {
	m.Lock()
	defer m.Unlock()

	var addrs []string
	creds := make(map[string]RedisCredentials)
	for _, redisConfig := range redisConfigs {
		addr := fmt.Sprintf("%s:%d", redisConfig.Host, redisConfig.Port)
		addrs = append(addrs, addr)
		creds[addr] = RedisCredentials{
			Password: redisConfig.Password,
			Database: redisConfig.Database,
		}
	}

	if len(addrs) == 0 {
		return fmt.Errorf("no redis addresses configured")
	}

	if len(addrs) == 1 {
		rdb = redis.NewClient(&redis.Options{
			Addr:         addrs[0],
			Password:     creds[addrs[0]].Password,
			DB:           creds[addrs[0]].Database,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
	} else {
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs: addrs,
			NewClient: func(opt *redis.Options) *redis.Client {
				cred := creds[opt.Addr]
				opt.Password = cred.Password
				opt.DB = cred.Database
				opt.DialTimeout = 5 * time.Second
				opt.ReadTimeout = 3 * time.Second
				opt.WriteTimeout = 3 * time.Second

				return redis.NewClient(opt)
			},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix = config.GetConfig().App.NameSlug
	return nil
}

// GetRedisClient returns the shared client, lazily initializing it from
// config on first use. Returns nil if redis is not configured or
// initialization fails/times out -- callers must treat a nil client as
// "cache disabled" rather than an error.
func GetRedisClient() redis.Cmdable {
	if rdb != nil {
		return rdb
	}

	m.Lock()
	defer m.Unlock()
	if rdb != nil {
		return rdb
	}

	cfg := config.GetConfig()
	if cfg == nil || len(cfg.Redis) == 0 || cfg.Redis[0].Host == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- InitRedisClient(cfg.Redis) }()

	select {
	case err := <-done:
		if err != nil {
			if logger.Log != nil {
				logger.Log.Error("Failed to initialize redis client", zap.Error(err))
			}
			return nil
		}
	case <-ctx.Done():
		if logger.Log != nil {
			logger.Log.Error("Redis initialization timed out")
		}
		return nil
	}

	return rdb
}

func AddPrefix(key string) string {
	if prefix == "" {
		m.Lock()
		defer m.Unlock()
		prefix = config.GetConfig().App.NameSlug
	}
	return fmt.Sprintf("%s_%s", prefix, key)
}

func GetPrefix() string {
	return prefix
}
