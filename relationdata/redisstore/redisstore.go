// Package redisstore provides a Redis-backed implementation of the
// relationdata.Store interface, letting the two relation endpoints run in
// separate processes against a shared Redis.
package redisstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/ajkavanagh/charm-interface-manila-plugin/relationdata"
	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

// Config for the Redis-backed store. Defaults can be loaded via envdecode.
type Config struct {
	// RedisAddr like "localhost:6379". ENV: REDIS_ADDR
	RedisAddr string `env:"REDIS_ADDR,default=localhost:6379"`
	// KeyPrefix for all keys. ENV: RELATION_KEY_PREFIX
	KeyPrefix string `env:"RELATION_KEY_PREFIX,default=manila:relation:"`
}

// Store implements relationdata.Store on Redis. Each bag is a Redis hash;
// the active scope set is a Redis set.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

// New creates a Redis-backed store, dialing cfg.RedisAddr.
func New(cfg Config) (*Store, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	cl := redis.NewClient(&redis.Options{Addr: addr})
	if err := cl.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewWithClient(cl, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing Redis client. The store takes ownership
// and closes it.
func NewWithClient(client *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = "manila:relation:"
	}
	return &Store{client: client, keyPrefix: keyPrefix}
}

// NewFromEnv builds a Store using envdecode to populate Config.
func NewFromEnv() (*Store, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config from env: %w", err)
	}
	return New(cfg)
}

// Close closes the Redis client.
func (s *Store) Close() error { return s.client.Close() }

// --- Key helpers ---

func (s *Store) bagKey(side relationdata.Side, kind relationdata.BagKind, scope string) string {
	return fmt.Sprintf("%sbag:%s:%s:%s", s.keyPrefix, side, kind, scope)
}

func (s *Store) scopesKey() string { return s.keyPrefix + "scopes" }

// --- Store implementation ---

func (s *Store) Put(ctx context.Context, side relationdata.Side, kind relationdata.BagKind, scope, key, value string) error {
	if err := s.client.HSet(ctx, s.bagKey(side, kind, scope), key, value).Err(); err != nil {
		return fmt.Errorf("failed to put %s/%s key %s: %w", side, kind, key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, side relationdata.Side, kind relationdata.BagKind, scope, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.bagKey(side, kind, scope), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s/%s key %s: %w", side, kind, key, err)
	}
	return value, true, nil
}

func (s *Store) Join(ctx context.Context, scope string) error {
	if err := s.client.SAdd(ctx, s.scopesKey(), scope).Err(); err != nil {
		return fmt.Errorf("failed to join scope %s: %w", scope, err)
	}
	return nil
}

func (s *Store) Depart(ctx context.Context, scope string) error {
	if err := s.client.SRem(ctx, s.scopesKey(), scope).Err(); err != nil {
		return fmt.Errorf("failed to depart scope %s: %w", scope, err)
	}
	keys := make([]string, 0, 4)
	for _, side := range []relationdata.Side{relationdata.ProviderSide, relationdata.RequirerSide} {
		for _, kind := range []relationdata.BagKind{relationdata.BagLocal, relationdata.BagPublic} {
			keys = append(keys, s.bagKey(side, kind, scope))
		}
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to drop bags for scope %s: %w", scope, err)
	}
	return nil
}

func (s *Store) Scopes(ctx context.Context) ([]string, error) {
	scopes, err := s.client.SMembers(ctx, s.scopesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list scopes: %w", err)
	}
	sort.Strings(scopes)
	return scopes, nil
}

var _ relationdata.Store = (*Store)(nil)
