package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"this-or-that/internal/domain"
)

// GameLoader fetches a game from the backing store.
type GameLoader interface {
	GameBySlug(ctx context.Context, slug string) (domain.Game, error)
}

// GameCache caches games by slug with a TTL to avoid repeated backend reads.
type GameCache struct {
	loader GameLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedGame
}

type cachedGame struct {
	game      domain.Game
	expiresAt time.Time
}

func NewGameCache(loader GameLoader, ttl time.Duration) *GameCache {
	return &GameCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedGame),
	}
}

func (c *GameCache) GameBySlug(ctx context.Context, slug string) (domain.Game, error) {
	if game, ok := c.lookup(slug); ok {
		return game, nil
	}

	result, err, _ := c.sf.Do(slug, func() (interface{}, error) {
		if game, ok := c.lookup(slug); ok {
			return game, nil
		}

		game, err := c.loader.GameBySlug(ctx, slug)
		if err != nil {
			return domain.Game{}, err
		}

		if ttl := c.ttlWithJitter(); ttl > 0 {
			c.mu.Lock()
			c.cache[slug] = cachedGame{game: game, expiresAt: c.clock().Add(ttl)}
			c.mu.Unlock()
		}
		return game, nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return result.(domain.Game), nil
}

// Invalidate drops the cached entry so the next read goes to the loader.
func (c *GameCache) Invalidate(_ context.Context, slug string) {
	c.mu.Lock()
	delete(c.cache, slug)
	c.mu.Unlock()
}

func (c *GameCache) lookup(slug string) (domain.Game, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[slug]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Game{}, false
	}
	return entry.game, true
}

func (c *GameCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
