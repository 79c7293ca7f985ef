package memory

import (
	"context"
	"sync"
)

// IdentityStore is an in-memory implementation of app.IdentityStore.
type IdentityStore struct {
	mu      sync.RWMutex
	players map[string]string
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		players: make(map[string]string),
	}
}

func (s *IdentityStore) Remember(_ context.Context, clientID, gameID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[identityKey(clientID, gameID)] = playerID
	return nil
}

func (s *IdentityStore) Recall(_ context.Context, clientID, gameID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.players[identityKey(clientID, gameID)]
	return playerID, ok, nil
}

func identityKey(clientID, gameID string) string {
	return clientID + ":" + gameID
}
