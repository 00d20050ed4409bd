package store

import (
	"context"
	"time"

	"brgygo/internal"
	"brgygo/pkg/types"
)

type profileSource interface {
	Profile(ctx context.Context, profileID string) (*types.Profile, error)
}

type profileCacheBackend interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ProfileCache is a read-through cache in front of the profile table. The session
// guard hits it on every request.
type ProfileCache struct {
	source profileSource
	cache  profileCacheBackend
	ttl    time.Duration
}

func NewProfileCache(source profileSource, cache profileCacheBackend, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{source: source, cache: cache, ttl: ttl}
}

func (c *ProfileCache) Profile(ctx context.Context, profileID string) (*types.Profile, error) {
	key := internal.REDIS_PROFILE_PREFIX + profileID

	var cached types.Profile
	if c.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	profile, err := c.source.Profile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	_ = c.cache.SetJSON(ctx, key, profile, c.ttl)

	return profile, nil
}

func (c *ProfileCache) Invalidate(ctx context.Context, profileID string) {
	_ = c.cache.Delete(ctx, internal.REDIS_PROFILE_PREFIX+profileID)
}
