package container

import (
	"time"

	"finbot/internal/application/port"
	"finbot/internal/application/service"
	"finbot/internal/application/usecase/feed"
)

// Container 应用层服务，依赖一个仓储
type Container struct {
	repo port.Repository
	now  func() time.Time

	journalService *service.JournalService
	feeds          map[string]*feed.Deduplicator
}

func New(repo port.Repository) *Container {
	return &Container{
		repo:  repo,
		now:   time.Now,
		feeds: make(map[string]*feed.Deduplicator),
	}
}

func (c *Container) Repository() port.Repository {
	return c.repo
}

func (c *Container) JournalService() *service.JournalService {
	if c.journalService == nil {
		c.journalService = service.NewJournalService(c.repo, c.now)
	}
	return c.journalService
}

// Feed 同名 feed 只创建一次，保证一个 feed 只有一个写者
func (c *Container) Feed(name string, limit int, sources []port.FeedSource) *feed.Deduplicator {
	if d, ok := c.feeds[name]; ok {
		return d
	}
	d := feed.New(name, limit, sources, c.repo)
	c.feeds[name] = d
	return d
}

func (c *Container) Close() error {
	return c.repo.Close()
}
