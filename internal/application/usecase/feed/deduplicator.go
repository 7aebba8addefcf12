package feed

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"finbot/internal/application/port"
	"finbot/internal/application/service"
	"finbot/internal/domain"
)

const defaultMirrorTimeout = 15 * time.Second

// Deduplicator 拉取一个社交 feed，过滤掉窗口内已发送的条目
// 每个 feed 只有一个 poller，一个写者
type Deduplicator struct {
	name    string
	limit   int
	sources []port.FeedSource
	store   port.SeenStore
	timeout time.Duration

	seen *domain.SeenSet
}

func New(name string, limit int, sources []port.FeedSource, store port.SeenStore) *Deduplicator {
	return &Deduplicator{
		name:    name,
		limit:   limit,
		sources: sources,
		store:   store,
		timeout: defaultMirrorTimeout,
	}
}

func (d *Deduplicator) WithMirrorTimeout(t time.Duration) *Deduplicator {
	if t > 0 {
		d.timeout = t
	}
	return d
}

func (d *Deduplicator) Name() string { return d.name }

// Load 从 SeenStore 读入窗口；首次 Poll 时自动调用
func (d *Deduplicator) Load(ctx context.Context) error {
	ids, err := d.store.LoadSeen(ctx, d.name)
	if err != nil {
		return fmt.Errorf("load seen ids for %s: %w", d.name, err)
	}
	d.seen = domain.NewSeenSet(d.limit, ids)
	log.Info().Str("feed", d.name).Int("seen", d.seen.Len()).Msg("seen ids loaded")
	return nil
}

// PollAndFilter 镜像按序回退；返回未见过的条目，最旧的在前
func (d *Deduplicator) PollAndFilter(ctx context.Context) ([]domain.FeedItem, error) {
	if d.seen == nil {
		if err := d.Load(ctx); err != nil {
			return nil, err
		}
	}

	opts := service.FallbackOptions[port.FeedSource]{
		Kind:    "feed:" + d.name,
		Name:    func(s port.FeedSource) string { return s.Name() },
		Timeout: func(port.FeedSource) time.Duration { return d.timeout },
	}
	items, idx, err := service.FirstOK(ctx, d.sources, opts, func(ctx context.Context, s port.FeedSource) ([]domain.FeedItem, error) {
		items, err := s.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, port.ErrEmptyFeed
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("poll %s: %w", d.name, err)
	}

	fresh := make([]domain.FeedItem, 0, len(items))
	batch := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ID == "" || d.seen.Contains(it.ID) {
			continue
		}
		if _, dup := batch[it.ID]; dup {
			continue
		}
		batch[it.ID] = struct{}{}
		fresh = append(fresh, it)
	}
	SortOldestFirst(fresh)

	log.Debug().
		Str("feed", d.name).
		Str("mirror", d.sources[idx].Name()).
		Int("fetched", len(items)).
		Int("new", len(fresh)).
		Msg("feed polled")
	return fresh, nil
}

// MarkSeen 加入窗口并整体持久化
func (d *Deduplicator) MarkSeen(ctx context.Context, id string) error {
	if d.seen == nil {
		if err := d.Load(ctx); err != nil {
			return err
		}
	}
	if evicted := d.seen.Add(id); len(evicted) > 0 {
		log.Debug().Str("feed", d.name).Strs("evicted", evicted).Msg("seen window full")
	}
	if err := d.store.SaveSeen(ctx, d.name, d.seen.IDs()); err != nil {
		return fmt.Errorf("save seen ids for %s: %w", d.name, err)
	}
	return nil
}

// Seen 当前窗口的副本
func (d *Deduplicator) Seen() []string {
	if d.seen == nil {
		return nil
	}
	return d.seen.IDs()
}

// SortOldestFirst 全部条目都有发布时间时按时间升序，时间相同再比 ID；
// 只要有一条缺时间，整批按数字 ID 排（推文 ID 单调递增）。非数字 ID 排在最后并保持原顺序
func SortOldestFirst(items []domain.FeedItem) {
	timed := true
	for _, it := range items {
		if it.PublishedAt.IsZero() {
			timed = false
			break
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if timed && !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		return idLess(a.ID, b.ID)
	})
}

func idLess(a, b string) bool {
	ai, errA := strconv.ParseUint(a, 10, 64)
	bi, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return ai < bi
	case errA == nil:
		return true
	default:
		return false
	}
}
