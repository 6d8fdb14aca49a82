package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps feedback records as JSON values in Redis, one value per
// composite key. This mirrors how the browser client stored them in local
// key-value storage.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed feedback store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, key Key) (Record, bool, error) {
	data, err := s.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load feedback: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode feedback: %w", err)
	}
	return rec, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key Key, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}
	if err := s.client.Set(ctx, key.String(), data, 0).Err(); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}
