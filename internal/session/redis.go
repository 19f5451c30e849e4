package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ Repository = (*RedisRepository)(nil)

const (
	keyPrefix = "ows:session:"

	// maxUpdateAttempts bounds the optimistic WATCH/MULTI retries of Update.
	maxUpdateAttempts = 100
)

var ErrUpdateConflict = errors.New("session update kept conflicting")

// RedisRepository stores each session as a JSON string under ows:session:<uid>.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisRepository wraps client. A zero ttl keeps sessions forever.
func NewRedisRepository(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisRepository {
	return &RedisRepository{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session-redis").Logger(),
	}
}

func (r *RedisRepository) Load(ctx context.Context, uid string) (*Session, error) {
	raw, err := r.client.Get(ctx, keyPrefix+uid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", uid, err)
	}
	return r.decode(uid, raw), nil
}

// decode returns nil for a corrupt value; it is overwritten on the next save.
func (r *RedisRepository) decode(uid string, raw []byte) *Session {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		r.logger.Warn().Err(err).Str("uid", uid).Msg("discarding corrupt session")
		return nil
	}
	return &s
}

func (r *RedisRepository) Save(ctx context.Context, s Session) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.UID, err)
	}
	if err := r.client.Set(ctx, keyPrefix+s.UID, body, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", s.UID, err)
	}
	r.logger.Debug().Str("uid", s.UID).Msg("session saved")
	return nil
}

// Update runs a WATCH/MULTI transaction on the session key and retries when
// another writer touched it in between.
func (r *RedisRepository) Update(ctx context.Context, uid string, fn func(*Session)) (Session, error) {
	key := keyPrefix + uid
	var out Session
	txf := func(tx *redis.Tx) error {
		var s Session
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if cur := r.decode(uid, raw); cur != nil {
				s = *cur
			}
		}
		apply(&s, uid, fn)
		body, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", uid, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, body, r.ttl)
			return nil
		})
		if err == nil {
			out = s
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			r.logger.Debug().Str("uid", uid).Int("attempt", attempt).Msg("session updated")
			return out, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return Session{}, fmt.Errorf("update session %s: %w", uid, err)
		}
		if err := ctx.Err(); err != nil {
			return Session{}, fmt.Errorf("update session %s: %w", uid, err)
		}
	}
	return Session{}, fmt.Errorf("update session %s: %w", uid, ErrUpdateConflict)
}

func (r *RedisRepository) Clear(ctx context.Context, uid string) error {
	if err := r.client.Del(ctx, keyPrefix+uid).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", uid, err)
	}
	return nil
}
