package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"this-or-that/internal/domain"
)

// GameLoader fetches a game from the backing store (e.g. Postgres).
type GameLoader interface {
	GameBySlug(ctx context.Context, slug string) (domain.Game, error)
}

// GameCache caches games in Redis and falls back to a loader on cache miss.
// Games are stored as JSON: SET game:slug:{slug} {json} EX ttl
type GameCache struct {
	client *redis.Client
	loader GameLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewGameCache(client *redis.Client, loader GameLoader, ttl time.Duration) *GameCache {
	return &GameCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *GameCache) GameBySlug(ctx context.Context, slug string) (domain.Game, error) {
	if game, ok := c.cached(ctx, slug); ok {
		return game, nil
	}

	result, err, _ := c.sf.Do(slug, func() (interface{}, error) {
		if game, ok := c.cached(ctx, slug); ok {
			return game, nil
		}

		game, err := c.loader.GameBySlug(ctx, slug)
		if err != nil {
			return domain.Game{}, err
		}

		if ttl := c.ttlWithJitter(); ttl > 0 {
			if raw, err := json.Marshal(game); err == nil {
				// best effort, the loader stays authoritative
				_ = c.client.Set(ctx, c.key(slug), raw, ttl).Err()
			}
		}
		return game, nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return result.(domain.Game), nil
}

// Invalidate removes the cached entry so the next read reloads it.
func (c *GameCache) Invalidate(ctx context.Context, slug string) {
	_ = c.client.Del(ctx, c.key(slug)).Err()
}

func (c *GameCache) cached(ctx context.Context, slug string) (domain.Game, bool) {
	raw, err := c.client.Get(ctx, c.key(slug)).Bytes()
	if err != nil {
		return domain.Game{}, false
	}
	var game domain.Game
	if err := json.Unmarshal(raw, &game); err != nil {
		return domain.Game{}, false
	}
	return game, true
}

func (c *GameCache) key(slug string) string {
	return "game:slug:" + slug
}

func (c *GameCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
