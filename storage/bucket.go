// Package storage keeps per-client state in Redis. Each browser is named by an
// opaque client id; its persistent keys live under "local:<id>:" and its
// transient keys under "session:<id>:".
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	localPrefix   = "local:"
	sessionPrefix = "session:"
	scanBatch     = 100
)

// ErrNoClient is returned when a bucket is requested for an empty client id.
var ErrNoClient = errors.New("client id is required")

// Bucket is a namespaced view over Redis for one client.
type Bucket struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// Buckets hands out the local and session buckets of a client.
type Buckets struct {
	rdb        *redis.Client
	sessionTTL time.Duration
}

// NewBuckets creates a bucket factory. sessionTTL bounds transient keys; zero keeps them forever.
func NewBuckets(rdb *redis.Client, sessionTTL time.Duration) *Buckets {
	return &Buckets{rdb: rdb, sessionTTL: sessionTTL}
}

// Local returns the persistent bucket of a client.
func (b *Buckets) Local(clientID string) (*Bucket, error) {
	if clientID == "" {
		return nil, ErrNoClient
	}
	return &Bucket{rdb: b.rdb, prefix: localPrefix + clientID + ":"}, nil
}

// Session returns the transient bucket of a client.
func (b *Buckets) Session(clientID string) (*Bucket, error) {
	if clientID == "" {
		return nil, ErrNoClient
	}
	return &Bucket{rdb: b.rdb, prefix: sessionPrefix + clientID + ":", ttl: b.sessionTTL}, nil
}

// ClientsWithLocalKey lists the client ids whose local bucket holds key.
func (b *Buckets) ClientsWithLocalKey(ctx context.Context, key string) ([]string, error) {
	pattern := localPrefix + "*:" + key
	var ids []string
	iter := b.rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		id := full[len(localPrefix) : len(full)-len(key)-1]
		if id != "" {
			ids = append(ids, id)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	return ids, nil
}

// GetJSON decodes key into v. found is false when the key is absent.
func (b *Bucket) GetJSON(ctx context.Context, key string, v interface{}) (found bool, err error) {
	data, err := b.rdb.Get(ctx, b.prefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v under key.
func (b *Bucket) SetJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.rdb.Set(ctx, b.prefix+key, data, b.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys.
func (b *Bucket) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = b.prefix + k
	}
	if err := b.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Clear removes every key of the bucket.
func (b *Bucket) Clear(ctx context.Context) error {
	var keys []string
	iter := b.rdb.Scan(ctx, 0, b.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan bucket: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := b.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear bucket: %w", err)
	}
	return nil
}
