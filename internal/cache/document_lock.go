package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

// DocumentLock is a cross-process advisory lock around a document's
// delete-then-insert reprocessing sequence. The TTL guards against a crashed
// holder keeping a document locked forever.
type DocumentLock struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewDocumentLock(client *redisv9.Client, ttl time.Duration) *DocumentLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &DocumentLock{client: client, ttl: ttl}
}

// Acquire takes the lock for documentID and returns an owner token, or
// ok=false when another run holds it.
func (l *DocumentLock) Acquire(ctx context.Context, documentID string) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = l.client.SetNX(ctx, l.key(documentID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis acquire document lock failed: %w", err)
	}
	return token, ok, nil
}

// Release frees the lock only when the caller still owns it.
func (l *DocumentLock) Release(ctx context.Context, documentID, token string) error {
	const script = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`
	if err := l.client.Eval(ctx, script, []string{l.key(documentID)}, token).Err(); err != nil {
		return fmt.Errorf("redis release document lock failed: %w", err)
	}
	return nil
}

func (l *DocumentLock) key(documentID string) string {
	return "ingest:lock:" + documentID
}
