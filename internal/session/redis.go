package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	fieldCreatedAt = "created_at"
	fieldUserID    = "user_id"
	fieldIsAdmin   = "is_admin"
	fieldFlash     = "flash"
)

// RedisStore хранит каждую сессию в отдельном hash "session:<id>"
// с TTL, который продлевается при каждой записи.
type RedisStore struct {
	db *redis.Client
}

// NewRedisStore создаёт хранилище поверх готового клиента Redis.
func NewRedisStore(db *redis.Client) *RedisStore {
	return &RedisStore{db: db}
}

// updateScript пишет поля только в существующую сессию и продлевает TTL.
// ARGV[1] задаёт TTL в миллисекундах, дальше идут пары поле/значение.
var updateScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
if #ARGV > 1 then
	redis.call("HSET", KEYS[1], unpack(ARGV, 2))
end
redis.call("PEXPIRE", KEYS[1], ARGV[1])
return 1
`)

func redisKey(id string) string {
	return "session:" + id
}

func (s *RedisStore) Create(ctx context.Context, ttl time.Duration) (string, error) {
	const op = "session.RedisStore.Create"
	id := uuid.NewString()
	key := redisKey(id)
	_, err := s.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fieldCreatedAt, time.Now().UnixMilli())
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (State, error) {
	const op = "session.RedisStore.Load"
	vals, err := s.db.HGetAll(ctx, redisKey(id)).Result()
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(vals) == 0 {
		return State{}, ErrNotFound
	}

	var st State
	if v, ok := vals[fieldUserID]; ok {
		st.UserID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return State{}, fmt.Errorf("%s: bad user_id: %w", op, err)
		}
	}
	st.IsAdmin = vals[fieldIsAdmin] == "1"
	if v, ok := vals[fieldFlash]; ok && v != "" {
		var f Flash
		if err := json.Unmarshal([]byte(v), &f); err != nil {
			return State{}, fmt.Errorf("%s: bad flash: %w", op, err)
		}
		st.Flash = &f
	}
	return st, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, patch Patch, ttl time.Duration) error {
	const op = "session.RedisStore.Update"
	key := redisKey(id)

	fields := make([]any, 0, 7)
	fields = append(fields, ttl.Milliseconds())
	if patch.UserID != nil {
		fields = append(fields, fieldUserID, strconv.FormatInt(*patch.UserID, 10))
	}
	if patch.IsAdmin != nil {
		v := "0"
		if *patch.IsAdmin {
			v = "1"
		}
		fields = append(fields, fieldIsAdmin, v)
	}
	if patch.Flash != nil {
		raw, err := json.Marshal(patch.Flash)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		fields = append(fields, fieldFlash, string(raw))
	}

	n, err := updateScript.Run(ctx, s.db, []string{key}, fields...).Int()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) TakeFlash(ctx context.Context, id string) (*Flash, error) {
	const op = "session.RedisStore.TakeFlash"
	key := redisKey(id)

	var get *redis.StringCmd
	_, err := s.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		get = p.HGet(ctx, key, fieldFlash)
		p.HDel(ctx, key, fieldFlash)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := get.Result()
	if errors.Is(err, redis.Nil) || raw == "" {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var f Flash
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &f, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	const op = "session.RedisStore.Delete"
	if err := s.db.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
