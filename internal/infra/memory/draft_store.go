package memory

import (
	"context"
	"sync"

	"this-or-that/internal/domain"
)

// DraftStore is an in-memory implementation of app.DraftStore.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]map[string]domain.Draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[string]map[string]domain.Draft),
	}
}

func (s *DraftStore) LoadDrafts(_ context.Context, gameID, playerID string) (map[string]domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.drafts[draftsKey(gameID, playerID)]
	out := make(map[string]domain.Draft, len(stored))
	for key, d := range stored {
		out[key] = d
	}
	return out, nil
}

func (s *DraftStore) SaveDraft(_ context.Context, gameID, playerID, key string, draft domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := draftsKey(gameID, playerID)
	if s.drafts[k] == nil {
		s.drafts[k] = make(map[string]domain.Draft)
	}
	s.drafts[k][key] = draft
	return nil
}

func (s *DraftStore) ClearDrafts(_ context.Context, gameID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftsKey(gameID, playerID))
	return nil
}

func draftsKey(gameID, playerID string) string {
	return gameID + ":" + playerID
}
