package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// CooldownStore implements ports.CooldownStore using Redis SET NX. Keys
// expire on their own, so the structure stays bounded regardless of how
// many identities send bursts.
type CooldownStore struct {
	client *goredis.Client
	prefix string
}

// NewCooldownStore creates a new Redis-backed cooldown store.
func NewCooldownStore(client *goredis.Client) *CooldownStore {
	return &CooldownStore{
		client: client,
		prefix: "cooldown:",
	}
}

// Touch records a hit for the identity. Returns true if this is the first
// hit inside the window, false if the identity is cooling down.
func (s *CooldownStore) Touch(ctx context.Context, identity string, window time.Duration) (bool, error) {
	key := s.prefix + identity
	result, err := s.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  window,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — identity is cooling down
			return false, nil
		}
		return false, fmt.Errorf("redis cooldown touch: %w", err)
	}
	return result == "OK", nil
}
