package cart

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the persistence contract for carts: a quantity map per user plus
// a last-modified timestamp.
type Store interface {
	Items(ctx context.Context, uid string) (map[string]int, time.Time, error)
	AddDelta(ctx context.Context, uid, productID string, delta int, now time.Time) error
	SetQuantity(ctx context.Context, uid, productID string, qty int, now time.Time) error
	Remove(ctx context.Context, uid, productID string, now time.Time) error
	Clear(ctx context.Context, uid string) error
}

// RedisStore keeps each cart in a hash keyed by uid. Quantities live in
// cart:{uid}; the last write time lives in cart:{uid}:ts. HINCRBY makes
// concurrent deltas from the same user commute without a lock.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func itemsKey(uid string) string { return "cart:" + uid }
func tsKey(uid string) string    { return "cart:" + uid + ":ts" }

func (s *RedisStore) Items(ctx context.Context, uid string) (map[string]int, time.Time, error) {
	raw, err := s.rdb.HGetAll(ctx, itemsKey(uid)).Result()
	if err != nil {
		return nil, time.Time{}, err
	}

	items := make(map[string]int, len(raw))
	for pid, v := range raw {
		qty, err := strconv.Atoi(v)
		if err != nil || qty <= 0 {
			continue
		}
		items[pid] = qty
	}

	var updatedAt time.Time
	if ts, err := s.rdb.Get(ctx, tsKey(uid)).Result(); err == nil {
		if t, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			updatedAt = t
		}
	} else if err != redis.Nil {
		return nil, time.Time{}, err
	}
	return items, updatedAt, nil
}

func (s *RedisStore) AddDelta(ctx context.Context, uid, productID string, delta int, now time.Time) error {
	qty, err := s.rdb.HIncrBy(ctx, itemsKey(uid), productID, int64(delta)).Result()
	if err != nil {
		return err
	}
	if qty <= 0 {
		if err := s.rdb.HDel(ctx, itemsKey(uid), productID).Err(); err != nil {
			return err
		}
	}
	return s.touch(ctx, uid, now)
}

func (s *RedisStore) SetQuantity(ctx context.Context, uid, productID string, qty int, now time.Time) error {
	if qty <= 0 {
		return s.Remove(ctx, uid, productID, now)
	}
	if err := s.rdb.HSet(ctx, itemsKey(uid), productID, qty).Err(); err != nil {
		return err
	}
	return s.touch(ctx, uid, now)
}

func (s *RedisStore) Remove(ctx context.Context, uid, productID string, now time.Time) error {
	if err := s.rdb.HDel(ctx, itemsKey(uid), productID).Err(); err != nil {
		return err
	}
	return s.touch(ctx, uid, now)
}

func (s *RedisStore) Clear(ctx context.Context, uid string) error {
	return s.rdb.Del(ctx, itemsKey(uid), tsKey(uid)).Err()
}

func (s *RedisStore) touch(ctx context.Context, uid string, now time.Time) error {
	return s.rdb.Set(ctx, tsKey(uid), now.UTC().Format(time.RFC3339Nano), 0).Err()
}
