package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/estate-marketplace/pkg/helpers"
)

// RedisStorage keeps records under "<namespace>:<key>" with a Redis TTL that
// matches the session expiry, so abandoned sessions are swept by Redis itself.
type RedisStorage struct {
	rdb       redis.Cmdable
	namespace string
}

func NewRedisStorage(rdb redis.Cmdable, namespace string) *RedisStorage {
	return &RedisStorage{rdb: rdb, namespace: namespace}
}

func (r *RedisStorage) key(k string) string {
	if r.namespace == "" {
		return k
	}
	return r.namespace + ":" + k
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *RedisStorage) Save(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.rdb.Set(ctx, r.key(key), data, ttl).Err()
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	return helpers.RedisDel(ctx, r.rdb, r.key(key))
}

// DeviceStores hands out one Store per device id, all sharing a Redis client.
type DeviceStores struct {
	rdb  redis.Cmdable
	opts []Option
}

func NewDeviceStores(rdb redis.Cmdable, opts ...Option) *DeviceStores {
	return &DeviceStores{rdb: rdb, opts: opts}
}

// For returns the session store scoped to deviceID.
func (d *DeviceStores) For(deviceID string) *Store {
	return NewStore(NewRedisStorage(d.rdb, "session:device:"+deviceID), d.opts...)
}
