// Package store persists per-device client state: saved searches, recent
// searches, and preferences. It is the server-side home of what the web
// client used to keep in browser local storage, with the same
// read-modify-write, last-writer-wins semantics.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/rueidis"
)

// ErrKeyNotFound is returned when a key has no value.
var ErrKeyNotFound = errors.New("key not found")

// KV is the consumer interface for the underlying key-value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// RedisKV implements KV on rueidis.
type RedisKV struct {
	client rueidis.Client
}

// NewRedisKV connects to Redis.
func NewRedisKV(address, password string) (*RedisKV, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{address},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisKV{client: client}, nil
}

// Close releases the connection.
func (r *RedisKV) Close() {
	r.client.Close()
}

// Get returns the value at key, or ErrKeyNotFound.
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Do(ctx, r.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// Set writes the value at key.
func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	err := r.client.Do(ctx, r.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Build()).Error()
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Del removes the key.
func (r *RedisKV) Del(ctx context.Context, key string) error {
	if err := r.client.Do(ctx, r.client.B().Del().Key(key).Build()).Error(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Scan returns all keys matching the pattern.
func (r *RedisKV) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	cursor := uint64(0)
	for {
		entry, err := r.client.Do(ctx, r.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", pattern, err)
		}
		keys = append(keys, entry.Elements...)
		cursor = entry.Cursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
