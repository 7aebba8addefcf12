package domain

import "time"

// DefaultSeenLimit 已读集合默认窗口大小
const DefaultSeenLimit = 100

// FeedItem 一条社交动态
type FeedItem struct {
	ID          string
	Text        string
	PublishedAt time.Time
	Permalink   string
}

// SeenSet 有序、有界的已读 ID 集合，超出窗口时先淘汰最旧的
// 只有一个 poller 写入，不加锁
type SeenSet struct {
	limit int
	ids   []string
	index map[string]struct{}
}

func NewSeenSet(limit int, ids []string) *SeenSet {
	if limit <= 0 {
		limit = DefaultSeenLimit
	}
	s := &SeenSet{limit: limit, index: make(map[string]struct{}, limit)}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *SeenSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Add 追加 id，返回被淘汰的 id
func (s *SeenSet) Add(id string) []string {
	if id == "" || s.Contains(id) {
		return nil
	}
	s.ids = append(s.ids, id)
	s.index[id] = struct{}{}

	var evicted []string
	for len(s.ids) > s.limit {
		old := s.ids[0]
		s.ids = s.ids[1:]
		delete(s.index, old)
		evicted = append(evicted, old)
	}
	return evicted
}

// IDs 按插入顺序返回副本
func (s *SeenSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *SeenSet) Len() int   { return len(s.ids) }
func (s *SeenSet) Limit() int { return s.limit }
