// Package cache holds the idempotency stores backing the Idempotency middleware.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

const (
	stateInFlight = "in_flight"
	stateDone     = "done"
)

type record struct {
	State       string                    `json:"state"`
	Fingerprint string                    `json:"fingerprint"`
	Response    *portsrepo.StoredResponse `json:"response,omitempty"`
}

// resolve maps an existing record to the Reserve result for fingerprint.
func (r record) resolve(fingerprint string) (*portsrepo.StoredResponse, error) {
	if r.Fingerprint != fingerprint {
		return nil, portsrepo.ErrIdempotencyKeyReused
	}
	if r.State != stateDone || r.Response == nil {
		return nil, portsrepo.ErrIdempotencyInFlight
	}
	resp := *r.Response
	return &resp, nil
}

// RedisIdempotencyStore keeps reservations and stored responses in Redis under a key prefix.
type RedisIdempotencyStore struct {
	client *redis.Client
	prefix string
}

var _ portsrepo.IdempotencyStore = (*RedisIdempotencyStore)(nil)

func NewRedisIdempotencyStore(client *redis.Client, prefix string) *RedisIdempotencyStore {
	if prefix == "" {
		prefix = "payflow:idem:"
	}
	return &RedisIdempotencyStore{client: client, prefix: prefix}
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*portsrepo.StoredResponse, error) {
	marker, _ := json.Marshal(record{State: stateInFlight, Fingerprint: fingerprint})
	// One retry covers a key that expired between SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, s.prefix+key, marker, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return nil, nil
		}

		raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode idempotency record: %w", err)
		}
		return rec.resolve(fingerprint)
	}
	return nil, portsrepo.ErrIdempotencyInFlight
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, resp portsrepo.StoredResponse, ttl time.Duration) error {
	raw, err := json.Marshal(record{State: stateDone, Fingerprint: resp.Fingerprint, Response: &resp})
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
