package storage

import (
	"context"
	"sync"

	"finbot/internal/application/port"
	"finbot/internal/domain"
)

// InMemoryRepo 未启用任何持久化后端时使用，进程重启后已读窗口丢失
type InMemoryRepo struct {
	mu         sync.Mutex
	seen       map[string][]string
	dispatches []domain.DispatchRecord
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{seen: make(map[string][]string)}
}

func (r *InMemoryRepo) LoadSeen(ctx context.Context, feed string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen[feed]...), nil
}

func (r *InMemoryRepo) SaveSeen(ctx context.Context, feed string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[feed] = append([]string(nil), ids...)
	return nil
}

func (r *InMemoryRepo) RecordDispatch(ctx context.Context, rec domain.DispatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatches = append(r.dispatches, rec)
	return nil
}

// Dispatches 返回副本
func (r *InMemoryRepo) Dispatches() []domain.DispatchRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.DispatchRecord(nil), r.dispatches...)
}

func (r *InMemoryRepo) Close() error { return nil }

var _ port.Repository = (*InMemoryRepo)(nil)
