package port

import (
	"context"
	"time"

	"finbot/internal/domain"
)

// FeedSource 一个社交动态镜像
type FeedSource interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.FeedItem, error)
}

// CalendarSource 财经日历来源
type CalendarSource interface {
	Name() string
	Events(ctx context.Context, day time.Time) ([]domain.CalendarEvent, error)
}

// NewsSource 快讯标题来源
type NewsSource interface {
	Name() string
	Headlines(ctx context.Context) ([]string, error)
}
