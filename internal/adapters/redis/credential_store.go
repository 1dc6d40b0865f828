package redis

// Package redis provides Redis-based adapters for the session engine.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

var _ ports.CredentialStore = (*CredentialStore)(nil)

// CredentialStore keeps the bearer token under a single Redis key.
// It lets several processes (CLI, workers) share one signed-in session.
type CredentialStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// CredentialStoreOptions configures a CredentialStore.
type CredentialStoreOptions struct {
	Prefix string        // Optional: key prefix, defaults to "retail:credential:"
	Key    string        // Optional: slot name, defaults to "token"
	TTL    time.Duration // Optional: expiry applied on Set; zero keeps the key forever
}

// NewCredentialStore creates a Redis-backed credential store.
func NewCredentialStore(client redis.UniversalClient, opts CredentialStoreOptions) *CredentialStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "retail:credential:"
	}
	key := opts.Key
	if key == "" {
		key = "token"
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &CredentialStore{client: client, key: prefix + key, ttl: ttl}
}

func (s *CredentialStore) Get(ctx context.Context) (string, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	tok, ok := domainauth.NormalizeToken(raw)
	return tok, ok, nil
}

func (s *CredentialStore) Set(ctx context.Context, token string) error {
	tok, ok := domainauth.NormalizeToken(token)
	if !ok {
		return s.Clear(ctx)
	}
	if err := s.client.Set(ctx, s.key, tok, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
