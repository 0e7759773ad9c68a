package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/speedial/speedial/internal/config"
	"github.com/speedial/speedial/internal/logger"
)

// Connect dials Redis with retry and exponential backoff. It keeps
// retrying until RedisConnectTimeout is reached; each failed ping is
// logged (warnings first, errors once RedisWarnThreshold is passed).
// The thumbnail cache is optional, so callers may treat a returned
// error as "run without cache".
func Connect(cfg *config.Config, log logger.Logger) (*redis.Client, error) {
	if cfg.RedisConnectTimeout <= 0 || cfg.RedisRetryInterval <= 0 ||
		cfg.RedisMaxWait <= 0 || cfg.RedisPingTimeout <= 0 {
		return nil, fmt.Errorf("redis retry settings must all be > 0")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Username:     cfg.RedisUser,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisReadTimeout,
		WriteTimeout: cfg.RedisWriteTimeout,
		PoolSize:     cfg.RedisPoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RedisConnectTimeout)
	defer cancel()

	log.Info("connecting to redis",
		logger.String("addr", cfg.RedisAddr),
		logger.Duration("timeout", cfg.RedisConnectTimeout))

	attempt := 0
	wait := cfg.RedisRetryInterval
	start := time.Now()

	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, cfg.RedisPingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			if attempt > 1 {
				log.Warn("connected to redis after retry",
					logger.String("addr", cfg.RedisAddr),
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(start)))
			} else {
				log.Info("connected to redis", logger.String("addr", cfg.RedisAddr))
			}
			return client, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Error("redis unavailable - failed to connect after timeout",
				logger.String("addr", cfg.RedisAddr),
				logger.Int("attempts", attempt),
				logger.Duration("timeout", cfg.RedisConnectTimeout),
				logger.Error(err))
			return nil, fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
				cfg.RedisAddr, attempt, cfg.RedisConnectTimeout, err)

		case <-timer.C:
			if attempt <= cfg.RedisWarnThreshold {
				log.Warn("redis connection failed, retrying",
					logger.String("addr", cfg.RedisAddr),
					logger.Int("attempt", attempt),
					logger.Duration("next_retry_in", wait),
					logger.Error(err))
			} else {
				log.Error("redis still unavailable - connection attempts failing",
					logger.String("addr", cfg.RedisAddr),
					logger.Int("attempt", attempt),
					logger.Duration("next_retry_in", wait),
					logger.Error(err))
			}
			wait *= 2
			if wait > cfg.RedisMaxWait {
				wait = cfg.RedisMaxWait
			}
		}
	}
}
