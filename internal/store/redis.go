package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"raiap/internal/domain"
	"raiap/internal/protocol/wire"
)

const (
	redisKeyPrefix = "raiap:stream:"
	redisIndexKey  = "raiap:streams"
)

// RedisStreams stores each stream as a Redis list of wire-encoded anchors
// plus a head key. Appends WATCH the head key so a racing writer aborts the
// transaction instead of forking the list.
type RedisStreams struct {
	client *redis.Client
	log    *logrus.Logger
}

var (
	_ domain.StreamStore   = (*RedisStreams)(nil)
	_ domain.StreamCatalog = (*RedisStreams)(nil)
)

// NewRedisClient parses url, connects and pings.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisStreams wraps an existing client. The client's lifecycle stays
// with the caller.
func NewRedisStreams(client *redis.Client, log *logrus.Logger) *RedisStreams {
	if log == nil {
		log = logrus.New()
	}
	return &RedisStreams{client: client, log: log}
}

func redisListKey(id domain.StreamID) string { return redisKeyPrefix + string(id) + ":anchors" }
func redisHeadKey(id domain.StreamID) string { return redisKeyPrefix + string(id) + ":head" }

// LoadStream reads the whole list in order.
func (r *RedisStreams) LoadStream(ctx context.Context, id domain.StreamID) ([]domain.Anchor, error) {
	if err := validStreamID(id); err != nil {
		return nil, err
	}
	raw, err := r.client.LRange(ctx, redisListKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load stream %s: %w", id, err)
	}
	out := make([]domain.Anchor, 0, len(raw))
	for i, s := range raw {
		a, err := wire.UnmarshalAnchor([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("stream %s position %d: %w", id, i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// PersistAnchor appends a under optimistic locking on the head key.
func (r *RedisStreams) PersistAnchor(ctx context.Context, id domain.StreamID, a domain.Anchor) error {
	if err := validStreamID(id); err != nil {
		return err
	}
	listKey, headKey := redisListKey(id), redisHeadKey(id)

	txf := func(tx *redis.Tx) error {
		head := headOf(id, nil)
		cur, err := tx.Get(ctx, headKey).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		case len(cur) != len(head):
			return fmt.Errorf("stream %s head of %d bytes: %w", id, len(cur), wire.ErrMalformed)
		default:
			copy(head[:], cur)
		}
		n, err := tx.LLen(ctx, listKey).Result()
		if err != nil {
			return err
		}
		if err := checkExtends(id, head, int(n), a); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, listKey, wire.MarshalAnchor(a))
			pipe.Set(ctx, headKey, a.Hash[:], 0)
			pipe.SAdd(ctx, redisIndexKey, string(id))
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, headKey)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("stream %s: concurrent append: %w", id, domain.ErrConflict)
	}
	if err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{"stream_id": id, "anchor": a.Hash.String()}).Debug("anchor persisted")
	return nil
}

// ListStreams returns the indexed stream IDs in sorted order.
func (r *RedisStreams) ListStreams(ctx context.Context) ([]domain.StreamID, error) {
	members, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]domain.StreamID, len(members))
	for i, m := range members {
		ids[i] = domain.StreamID(m)
	}
	slices.Sort(ids)
	return ids, nil
}
