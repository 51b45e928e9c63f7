// Package cache keeps the latest status band per equipment and record kind in
// redis so dashboards can show it without recomputing history.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/status"
)

const ttl = 30 * 24 * time.Hour

// Entry is the cached state of one record kind for one piece of equipment.
type Entry struct {
	Band     status.Band `json:"band"`
	RecordID int64       `json:"record_id"`
	Date     time.Time   `json:"date"`
}

type StatusBoard struct {
	rdb *redis.Client
}

func NewStatusBoard(rdb *redis.Client) *StatusBoard { return &StatusBoard{rdb: rdb} }

// Connect dials addr and verifies it with PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}
	return rdb, nil
}

func key(tag string) string { return "equipment:status:" + tag }

// Set stores the band for kind under tag, keeping other kinds.
func (s *StatusBoard) Set(ctx context.Context, tag string, kind domain.RecordKind, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key(tag), string(kind), b)
	pipe.Expire(ctx, key(tag), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update status board: %w", err)
	}
	return nil
}

// Get returns the cached entries for tag keyed by record kind. A tag with no
// entries yields an empty map.
func (s *StatusBoard) Get(ctx context.Context, tag string) (map[domain.RecordKind]Entry, error) {
	raw, err := s.rdb.HGetAll(ctx, key(tag)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read status board: %w", err)
	}
	out := make(map[domain.RecordKind]Entry, len(raw))
	for kind, v := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue
		}
		out[domain.RecordKind(kind)] = e
	}
	return out, nil
}

// Forget drops everything cached for tag.
func (s *StatusBoard) Forget(ctx context.Context, tag string) error {
	return s.rdb.Del(ctx, key(tag)).Err()
}
