package port

import (
	"context"

	"finbot/internal/domain"
)

// SeenStore 持久化已读 ID 窗口，每次变更整体重写
type SeenStore interface {
	LoadSeen(ctx context.Context, feed string) ([]string, error)
	SaveSeen(ctx context.Context, feed string, ids []string) error
}

// Journal 发送日志，只追加
type Journal interface {
	RecordDispatch(ctx context.Context, rec domain.DispatchRecord) error
}

type Repository interface {
	SeenStore
	Journal

	// Connection management
	Close() error
}
