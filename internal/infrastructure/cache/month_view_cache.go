package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when the cache holds no entry for a key
var ErrMiss = errors.New("cache miss")

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// MonthViewStore caches rendered monthly attendance views. The store is
// an optional read-side optimization; read failures degrade to a
// database rebuild, never to an error.
type MonthViewStore interface {
	Get(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, dest any) error
	Set(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, view any) error
	Invalidate(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) error
}

// RedisMonthViewStore implements MonthViewStore on Redis
type RedisMonthViewStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMonthViewStore creates a Redis-backed month view store
func NewRedisMonthViewStore(cfg RedisConfig, ttl time.Duration) (*RedisMonthViewStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisMonthViewStoreWithClient(client, ttl), nil
}

// NewRedisMonthViewStoreWithClient wraps an existing Redis client
func NewRedisMonthViewStoreWithClient(client *redis.Client, ttl time.Duration) *RedisMonthViewStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisMonthViewStore{client: client, ttl: ttl}
}

func monthKey(tenantID uuid.UUID, year int, month time.Month) string {
	return fmt.Sprintf("attendance:month:%s:%04d-%02d", tenantID, year, month)
}

// Get loads a cached view into dest
func (s *RedisMonthViewStore) Get(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, dest any) error {
	raw, err := s.client.Get(ctx, monthKey(tenantID, year, month)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Set stores a rendered view with the configured TTL
func (s *RedisMonthViewStore) Set(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, view any) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, monthKey(tenantID, year, month), raw, s.ttl).Err()
}

// Invalidate drops the cached view for one month
func (s *RedisMonthViewStore) Invalidate(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) error {
	return s.client.Del(ctx, monthKey(tenantID, year, month)).Err()
}

// Close closes the Redis client
func (s *RedisMonthViewStore) Close() error {
	return s.client.Close()
}

var _ MonthViewStore = (*RedisMonthViewStore)(nil)
