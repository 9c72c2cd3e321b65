package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps each collection under one string key; batches go through MULTI/EXEC.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(c)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (r *RedisBackend) Write(ctx context.Context, writes []Write) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			pipe.Set(ctx, r.key(w.Collection), w.Data, 0)
		}
		return nil
	})
	return err
}

func (r *RedisBackend) key(c Collection) string {
	if r.prefix == "" {
		return fmt.Sprintf("collection:%s", c)
	}
	return fmt.Sprintf("%s:collection:%s", r.prefix, c)
}

var _ Backend = (*RedisBackend)(nil)
