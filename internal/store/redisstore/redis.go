// Package redisstore stores the tracker snapshot under a single Redis key.
// Calls go through a circuit breaker so an unreachable server fails fast
// instead of stalling every request.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/sony/gobreaker"
)

// Config holds Redis connection configuration
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Backend implements store.Backend on Redis
type Backend struct {
	client *redis.Client
	key    string
	cb     *gobreaker.CircuitBreaker
}

// New connects to Redis and verifies the connection
func New(cfg Config) (*Backend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, cfg.Key), nil
}

// NewWithClient creates a backend with an existing Redis client
func NewWithClient(client *redis.Client, key string) *Backend {
	if key == "" {
		key = "aishcalc:snapshot"
	}
	return &Backend{
		client: client,
		key:    key,
		cb:     newCircuitBreaker("redis:" + key),
	}
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// a missing key is an answer, not a failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
	})
}

// Read returns the stored snapshot bytes
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		data, err := b.client.Get(ctx, b.key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get snapshot: %w", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

// Write replaces the stored snapshot bytes
func (b *Backend) Write(ctx context.Context, data []byte) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
			return nil, fmt.Errorf("failed to set snapshot: %w", err)
		}
		return nil, nil
	})
	return err
}

// State reports the circuit breaker state
func (b *Backend) State() gobreaker.State {
	return b.cb.State()
}

// Close closes the Redis client
func (b *Backend) Close() error {
	return b.client.Close()
}
