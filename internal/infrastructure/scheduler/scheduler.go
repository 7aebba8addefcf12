package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"finbot/internal/application/port"
)

// Scheduler robfig/cron 封装：标准 5 段表达式，按配置时区触发
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	logger  cron.Logger
	entries map[string][]cron.EntryID
	running bool
}

var _ port.Scheduler = (*Scheduler)(nil)

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	l := cronLogger{l: log.Logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l)),
		),
		logger:  l,
		entries: map[string][]cron.EntryID{},
	}
}

// Add 同名任务可以注册多个表达式（价格推送一天多次）
func (s *Scheduler) Add(ctx context.Context, name, spec string, job func(context.Context), singleton bool) error {
	var j cron.Job = cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		log.Debug().Str("job", name).Msg("job start")
		job(ctx)
		log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("job done")
	})
	if singleton {
		j = cron.NewChain(cron.SkipIfStillRunning(s.logger)).Then(j)
	}

	id, err := s.cron.AddJob(spec, j)
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}

	s.mu.Lock()
	s.entries[name] = append(s.entries[name], id)
	s.mu.Unlock()
	log.Info().Str("job", name).Str("spec", spec).Msg("job scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
}

// Stop 等待正在执行的任务结束
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// Next 某个任务最近一次触发时间，没有则返回零值
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	ids := s.entries[name]
	s.mu.Unlock()

	var next time.Time
	for _, id := range ids {
		e := s.cron.Entry(id)
		if e.Next.IsZero() {
			continue
		}
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

// Jobs 已注册的任务名及表达式数量
func (s *Scheduler) Jobs() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.entries))
	for k, v := range s.entries {
		out[k] = len(v)
	}
	return out
}

// cronLogger 把 cron 内部日志转到 zerolog
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
