// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package resources provides capabilities backed by external services.
// Each constructor returns a scoped layer: the client is created when the
// runtime builds and closed when it is disposed.
package resources

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"code.hybscloud.com/kontrt"
)

// Redis returns a layer providing a go-redis client under tag.
// The client connects lazily on first command.
func Redis(tag *kontrt.Tag[*redis.Client], opts *redis.Options) kontrt.Layer {
	return kontrt.Scoped(tag,
		func(context.Context, kontrt.Context) (*redis.Client, error) {
			return redis.NewClient(opts), nil
		},
		func(c *redis.Client) error { return c.Close() },
	)
}

// RedisGet reads key. A missing key fails with redis.Nil.
func RedisGet(tag *kontrt.Tag[*redis.Client], key string) kontrt.Effect[string] {
	return kontrt.Use(tag, func(c *redis.Client) kontrt.Effect[string] {
		return kontrt.Async(func(ctx context.Context) (string, error) {
			return c.Get(ctx, key).Result()
		})
	})
}

// RedisSet writes key with an optional expiration; zero keeps it forever.
func RedisSet(tag *kontrt.Tag[*redis.Client], key string, value any, ttl time.Duration) kontrt.Effect[struct{}] {
	return kontrt.Use(tag, func(c *redis.Client) kontrt.Effect[struct{}] {
		return kontrt.Async(func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.Set(ctx, key, value, ttl).Err()
		})
	})
}

// RedisPing checks the connection.
func RedisPing(tag *kontrt.Tag[*redis.Client]) kontrt.Effect[struct{}] {
	return kontrt.Use(tag, func(c *redis.Client) kontrt.Effect[struct{}] {
		return kontrt.Async(func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.Ping(ctx).Err()
		})
	})
}
