package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// SearchCache keeps recent search responses briefly so repeated queries skip
// the embedding call and corpus scan. Entries expire by TTL; ingestion does
// not invalidate them.
type SearchCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewSearchCache(client *redisv9.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &SearchCache{client: client, ttl: ttl}
}

func (c *SearchCache) Get(ctx context.Context, query, department string, limit int, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.key(query, department, limit)).Result()
	if err == redisv9.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get search cache failed: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("unmarshal cached search results failed: %w", err)
	}
	return true, nil
}

func (c *SearchCache) Set(ctx context.Context, query, department string, limit int, results interface{}) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal search cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(query, department, limit), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set search cache failed: %w", err)
	}
	return nil
}

func (c *SearchCache) key(query, department string, limit int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("search:result:%s:%s:%d", hex.EncodeToString(sum[:16]), department, limit)
}
