package port

import "errors"

// ErrPermanent 网关永久拒绝（chat 不存在、无权限等），重试无意义
var ErrPermanent = errors.New("permanent delivery failure")

// ErrEmptyFeed 镜像返回了空列表，按失败处理
var ErrEmptyFeed = errors.New("feed returned no items")

// ErrAIDisabled 未配置 AI
var ErrAIDisabled = errors.New("ai disabled")
