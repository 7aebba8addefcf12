package port

//go:generate mockgen -source=gateway.go -destination=mocks/gateway.go -package=mocks

import (
	"context"

	"finbot/internal/domain"
)

// Gateway 消息网关（Telegram 或控制台）
type Gateway interface {
	// Send 返回消息 ID；永久失败时 errors.Is(err, ErrPermanent)
	Send(ctx context.Context, msg domain.OutMessage) (int, error)
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// Inbound 接收频道消息
type Inbound interface {
	BotName() string
	Updates(ctx context.Context) (<-chan domain.InboundMessage, error)
}
