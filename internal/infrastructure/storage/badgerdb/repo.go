package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"finbot/internal/application/port"
	"finbot/internal/domain"
)

// Repo 嵌入式 KV：seen/<feed> -> JSON 数组，dispatch/<ts>/<id> -> JSON
type Repo struct {
	db *badger.DB
}

// New path 为空时使用内存模式
func New(path string) (*Repo, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func seenKey(feed string) []byte { return []byte("seen/" + feed) }

func (r *Repo) LoadSeen(ctx context.Context, feed string) ([]string, error) {
	var ids []string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(seenKey(feed))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ids)
		})
	})
	return ids, err
}

func (r *Repo) SaveSeen(ctx context.Context, feed string, ids []string) error {
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(seenKey(feed), b)
	})
}

func (r *Repo) RecordDispatch(ctx context.Context, rec domain.DispatchRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("dispatch/%013d/%s", rec.At.UnixMilli(), rec.ID)
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), b)
	})
}

// Dispatches 按时间顺序读出全部发送日志
func (r *Repo) Dispatches(ctx context.Context) ([]domain.DispatchRecord, error) {
	var out []domain.DispatchRecord
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte("dispatch/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec domain.DispatchRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

var _ port.Repository = (*Repo)(nil)
