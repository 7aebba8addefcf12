package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"finbot/internal/application/port"
	"finbot/internal/domain"
)

type Repo struct {
	rdb            *redis.Client
	prefix         string
	ttl            time.Duration
	dispatchStream string
	dispatchChan   string
}

type dispatchMsg struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Payload string `json:"payload"`
	Ts      int64  `json:"ts_ms"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, dispatchStream, dispatchChan string) *Repo {
	if strings.TrimSpace(dispatchStream) == "" {
		dispatchStream = prefix + ":dispatches"
	}
	if strings.TrimSpace(dispatchChan) == "" {
		dispatchChan = prefix + ":dispatches:pub"
	}
	return &Repo{
		rdb:            rdb,
		prefix:         prefix,
		ttl:            ttl,
		dispatchStream: dispatchStream,
		dispatchChan:   dispatchChan,
	}
}

func (r *Repo) seenKey(feed string) string { return r.prefix + ":seen:" + feed }

func (r *Repo) LoadSeen(ctx context.Context, feed string) ([]string, error) {
	return r.rdb.LRange(ctx, r.seenKey(feed), 0, -1).Result()
}

// SaveSeen LIST 整体替换：DEL + RPUSH + LTRIM，放在一个 MULTI 里
func (r *Repo) SaveSeen(ctx context.Context, feed string, ids []string) error {
	key := r.seenKey(feed)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(ids) == 0 {
			return nil
		}
		vals := make([]any, len(ids))
		for i, id := range ids {
			vals[i] = id
		}
		pipe.RPush(ctx, key, vals...)
		pipe.LTrim(ctx, key, int64(-len(ids)), -1)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	return err
}

func (r *Repo) RecordDispatch(ctx context.Context, rec domain.DispatchRecord) error {
	ts := rec.At.UnixMilli()

	// 1) Stream: XADD <stream> * id kind ok payload
	_, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.dispatchStream,
		Values: map[string]any{
			"id":      rec.ID,
			"kind":    string(rec.Kind),
			"ok":      rec.OK,
			"error":   rec.Error,
			"payload": rec.Payload,
			"ts_ms":   ts,
		},
	}).Result()
	if err != nil {
		return err
	}

	// 2) PubSub: PUBLISH <channel> json
	b, _ := json.Marshal(dispatchMsg{
		ID: rec.ID, Kind: string(rec.Kind), OK: rec.OK, Error: rec.Error, Payload: rec.Payload, Ts: ts,
	})
	return r.rdb.Publish(ctx, r.dispatchChan, string(b)).Err()
}

func (r *Repo) Close() error { return r.rdb.Close() }

var _ port.Repository = (*Repo)(nil)
