package storage

import (
	"fmt"

	r "gopkg.in/redis.v5"
)

// namespace keeps dashboard keys apart from other users of a shared redis
const namespace = "_JUNITDASH_"

// RedisStore shares dashboard state through a redis server
type RedisStore struct {
	client *r.Client
}

// NewRedisStore connects to the redis instance at url
func NewRedisStore(url string) (*RedisStore, error) {
	if url == "" {
		return nil, fmt.Errorf("redis storage requires a URL")
	}

	opts, err := r.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisStore{
		client: r.NewClient(opts),
	}, nil
}

func (c *RedisStore) Get(key string) (string, bool, error) {
	v, err := c.client.Get(namespace + key).Result()
	if err == r.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisStore) Set(key, value string) error {
	return c.client.Set(namespace+key, value, 0).Err()
}

func (c *RedisStore) ClearPrefix(prefix string) error {
	keys, err := c.client.Keys(namespace + prefix + "*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(keys...).Err()
}

// Close releases the underlying connection pool
func (c *RedisStore) Close() error {
	return c.client.Close()
}
