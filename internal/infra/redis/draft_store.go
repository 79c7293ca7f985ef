package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"this-or-that/internal/domain"
)

// DraftStore keeps answer drafts in one hash per player:
// HSET drafts:{gameID}:{playerID} {key} {json draft}
// The hash expires after ttl of inactivity.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func (s *DraftStore) LoadDrafts(ctx context.Context, gameID, playerID string) (map[string]domain.Draft, error) {
	fields, err := s.client.HGetAll(ctx, s.key(gameID, playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load drafts: %w", err)
	}
	drafts := make(map[string]domain.Draft, len(fields))
	for key, raw := range fields {
		var d domain.Draft
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			// unreadable entries are dropped
			continue
		}
		drafts[key] = d
	}
	return drafts, nil
}

func (s *DraftStore) SaveDraft(ctx context.Context, gameID, playerID, key string, draft domain.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	hash := s.key(gameID, playerID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, hash, key, raw)
	if s.ttl > 0 {
		pipe.Expire(ctx, hash, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *DraftStore) ClearDrafts(ctx context.Context, gameID, playerID string) error {
	if err := s.client.Del(ctx, s.key(gameID, playerID)).Err(); err != nil {
		return fmt.Errorf("clear drafts: %w", err)
	}
	return nil
}

func (s *DraftStore) key(gameID, playerID string) string {
	return "drafts:" + gameID + ":" + playerID
}
