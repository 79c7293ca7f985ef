package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"this-or-that/internal/domain"
	"this-or-that/internal/infra/memory"
)

func TestGameCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	repo := memory.NewGameRepository()
	answer := 42.0
	if _, err := repo.InsertGame(context.Background(), domain.Game{
		Slug:              "shower",
		Title:             "Baby Shower",
		IsOpen:            true,
		OptionALabel:      "Mom",
		OptionBLabel:      "Dad",
		TiebreakerEnabled: true,
		TiebreakerPrompt:  "How many jelly beans?",
		TiebreakerAnswer:  &answer,
	}); err != nil {
		t.Fatalf("insert game: %v", err)
	}
	loader := &countingLoader{GameLoader: repo}
	cache := NewGameCache(client, loader, time.Minute)

	game, err := cache.GameBySlug(context.Background(), "shower")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("game:slug:shower") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := cache.GameBySlug(context.Background(), "shower")
	if err != nil {
		t.Fatalf("get game 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.ID != game.ID || cached.TiebreakerAnswer == nil || *cached.TiebreakerAnswer != 42 {
		t.Fatalf("cached game mismatch: %+v", cached)
	}

	cache.Invalidate(context.Background(), "shower")
	if mr.Exists("game:slug:shower") {
		t.Fatalf("expected redis key to be removed")
	}
	_, _ = cache.GameBySlug(context.Background(), "shower")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestGameCacheFallsBackOnCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := memory.NewGameRepository()
	_, _ = repo.InsertGame(context.Background(), domain.Game{Slug: "shower", Title: "Baby Shower"})
	loader := &countingLoader{GameLoader: repo}
	cache := NewGameCache(newClient(mr), loader, time.Minute)

	_ = mr.Set("game:slug:shower", "{not json")
	game, err := cache.GameBySlug(context.Background(), "shower")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if game.Title != "Baby Shower" || loader.calls != 1 {
		t.Fatalf("expected loader fallback, got %+v calls=%d", game, loader.calls)
	}
}

type countingLoader struct {
	GameLoader
	calls int
}

func (l *countingLoader) GameBySlug(ctx context.Context, slug string) (domain.Game, error) {
	l.calls++
	return l.GameLoader.GameBySlug(ctx, slug)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
