package memory

import (
	"context"
	"testing"

	"this-or-that/internal/domain"
)

func TestIdentityStoreScopesByGame(t *testing.T) {
	store := NewIdentityStore()
	ctx := context.Background()

	if err := store.Remember(ctx, "client-1", "game-1", "player-1"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if id, ok, _ := store.Recall(ctx, "client-1", "game-1"); !ok || id != "player-1" {
		t.Fatalf("expected player-1, got %q ok=%v", id, ok)
	}
	if _, ok, _ := store.Recall(ctx, "client-1", "game-2"); ok {
		t.Fatalf("expected no identity for other game")
	}
}

func TestDraftStoreLifecycle(t *testing.T) {
	store := NewDraftStore()
	ctx := context.Background()

	_ = store.SaveDraft(ctx, "game-1", "player-1", "q1", domain.Draft{Value: domain.OptionA, Unsaved: true})
	_ = store.SaveDraft(ctx, "game-1", "player-1", "q2", domain.Draft{Value: domain.OptionB})

	drafts, err := store.LoadDrafts(ctx, "game-1", "player-1")
	if err != nil {
		t.Fatalf("load drafts: %v", err)
	}
	if len(drafts) != 2 || !drafts["q1"].Unsaved || drafts["q2"].Unsaved {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}

	drafts["q3"] = domain.Draft{Value: "x"}
	again, _ := store.LoadDrafts(ctx, "game-1", "player-1")
	if _, leaked := again["q3"]; leaked {
		t.Fatalf("expected loaded drafts to be a copy")
	}

	if err := store.ClearDrafts(ctx, "game-1", "player-1"); err != nil {
		t.Fatalf("clear drafts: %v", err)
	}
	if drafts, _ := store.LoadDrafts(ctx, "game-1", "player-1"); len(drafts) != 0 {
		t.Fatalf("expected drafts cleared, got %+v", drafts)
	}
}
