package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
)

// ContextCache keeps each user's journal entries warm in Redis so reply
// generation does not re-read the full journal on every turn. Entry writes
// mark the key dirty; readers treat a dirty key as a miss.
type ContextCache struct {
	client         *redisv9.Client
	contextTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

func NewContextCache(client *redisv9.Client, contextTTL, dirtyMarkerTTL time.Duration) *ContextCache {
	if contextTTL <= 0 {
		contextTTL = 5 * time.Minute
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &ContextCache{
		client:         client,
		contextTTL:     contextTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *ContextCache) GetEntries(ctx context.Context, userID uint) ([]model.Entry, bool, error) {
	dirty, err := c.isDirty(ctx, userID)
	if err != nil || dirty {
		return nil, false, err
	}

	raw, err := c.client.Get(ctx, c.entriesKey(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get entries failed: %w", err)
	}

	var entries []model.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached entries failed: %w", err)
	}
	return entries, true, nil
}

func (c *ContextCache) SetEntries(ctx context.Context, userID uint, entries []model.Entry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal entries cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.entriesKey(userID), payload, c.contextTTL).Err(); err != nil {
		return fmt.Errorf("redis set entries failed: %w", err)
	}
	return nil
}

// Invalidate is called on every entry mutation: drop the cached set and
// leave a short-lived dirty marker to cover readers racing the delete.
func (c *ContextCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Set(ctx, c.dirtyKey(userID), "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	if err := c.client.Del(ctx, c.entriesKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete entries failed: %w", err)
	}
	return nil
}

func (c *ContextCache) isDirty(ctx context.Context, userID uint) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *ContextCache) entriesKey(userID uint) string {
	return fmt.Sprintf("journal:entries:%d", userID)
}

func (c *ContextCache) dirtyKey(userID uint) string {
	return fmt.Sprintf("journal:entries:dirty:%d", userID)
}
