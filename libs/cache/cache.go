package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(key string) (string, error)
	SetKeepTtl(key string, value string) error
	SetWithTtl(key string, value string, ttl time.Duration) error
}

type redisCache struct {
	client *redis.Client
	ctx    context.Context
}

// NewCache connects to the redis server at url. Both redis:// urls and plain
// host:port addresses are accepted.
func NewCache(url string) Cache {
	return &redisCache{
		client: redis.NewClient(parseOptions(url)),
		ctx:    context.Background(),
	}
}

func parseOptions(url string) *redis.Options {
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		opts, err := redis.ParseURL(url)
		if err == nil {
			return opts
		}
		log.WithField("event", "cache_parse_url").Warn(err)
	}
	return &redis.Options{Addr: url}
}

func (c *redisCache) Get(key string) (string, error) {
	val, err := c.client.Get(c.ctx, key).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	return val, err
}

// SetKeepTtl sets the value and keeps the key's existing ttl, if any.
func (c *redisCache) SetKeepTtl(key string, value string) error {
	return c.client.Set(c.ctx, key, value, redis.KeepTTL).Err()
}

func (c *redisCache) SetWithTtl(key string, value string, ttl time.Duration) error {
	return c.client.Set(c.ctx, key, value, ttl).Err()
}
