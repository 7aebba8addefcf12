package composite

import (
	"context"

	"finbot/internal/application/port"
	"finbot/internal/domain"
)

// Repo 写入所有后端，读取取第一个有数据的
type Repo struct {
	repos []port.Repository
}

func New(repos ...port.Repository) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.Repository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) Len() int { return len(r.repos) }

// LoadSeen 只有全部后端都读失败才返回错误
func (r *Repo) LoadSeen(ctx context.Context, feed string) ([]string, error) {
	var firstErr error
	readable := false
	for _, repo := range r.repos {
		ids, err := repo.LoadSeen(ctx, feed)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		readable = true
		if len(ids) > 0 {
			return ids, nil
		}
	}
	if readable {
		return nil, nil
	}
	return nil, firstErr
}

func (r *Repo) SaveSeen(ctx context.Context, feed string, ids []string) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveSeen(ctx, feed, ids); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) RecordDispatch(ctx context.Context, rec domain.DispatchRecord) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.RecordDispatch(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) Close() error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.Repository = (*Repo)(nil)
