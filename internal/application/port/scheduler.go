package port

import "context"

// Scheduler 定时触发
type Scheduler interface {
	// Add 注册任务；singleton 为 true 时上一次未结束则跳过本次
	Add(ctx context.Context, name, spec string, job func(context.Context), singleton bool) error
	Start()
	Stop()
}
