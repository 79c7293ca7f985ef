package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdentityStore remembers which player a browser client joined each game as.
// SET identity:{clientID}:{gameID} {playerID} EX ttl
type IdentityStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdentityStore(client *redis.Client, ttl time.Duration) *IdentityStore {
	return &IdentityStore{client: client, ttl: ttl}
}

func (s *IdentityStore) Remember(ctx context.Context, clientID, gameID, playerID string) error {
	if err := s.client.Set(ctx, s.key(clientID, gameID), playerID, s.ttl).Err(); err != nil {
		return fmt.Errorf("remember player: %w", err)
	}
	return nil
}

func (s *IdentityStore) Recall(ctx context.Context, clientID, gameID string) (string, bool, error) {
	playerID, err := s.client.Get(ctx, s.key(clientID, gameID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("recall player: %w", err)
	}
	return playerID, true, nil
}

func (s *IdentityStore) key(clientID, gameID string) string {
	return "identity:" + clientID + ":" + gameID
}
