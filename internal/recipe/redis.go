package recipe

import (
	"context"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/redis"
)

// RedisStore keeps each record as a JSON string under prefix+id.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Recipe, error) {
	val, err := s.client.Get(ctx, s.prefix+id)
	if redis.IsNilError(err) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching recipe %s: %w", id, err)
	}
	return Decode([]byte(val))
}

// GetMany issues a single MGET for all ids.
func (s *RedisStore) GetMany(ctx context.Context, ids []string) (map[string]*Recipe, error) {
	ids = dedupe(ids)
	out := make(map[string]*Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + id
	}
	values, found, err := s.client.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("fetching recipes: %w", err)
	}
	for i, id := range ids {
		if !found[i] {
			continue
		}
		r, err := Decode([]byte(values[i]))
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", id, err)
		}
		out[id] = r
	}
	return out, nil
}

func (s *RedisStore) Put(ctx context.Context, recipes []*Recipe) error {
	kv := make(map[string][]byte, len(recipes))
	for _, r := range recipes {
		data, err := Encode(r)
		if err != nil {
			return err
		}
		kv[s.prefix+r.ID()] = data
	}
	if err := s.client.SetMany(ctx, kv); err != nil {
		return fmt.Errorf("storing recipes: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *RedisStore) Close() error { return s.client.Close() }
