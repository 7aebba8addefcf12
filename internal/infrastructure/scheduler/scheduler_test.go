package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(time.UTC)
	err := s.Add(context.Background(), "bad", "every five minutes", func(context.Context) {}, false)
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestMultipleSpecsPerJob(t *testing.T) {
	s := New(time.UTC)
	ctx := context.Background()
	for _, spec := range []string{"30 7 * * *", "0 15 * * *"} {
		require.NoError(t, s.Add(ctx, "price_update", spec, func(context.Context) {}, false))
	}
	assert.Equal(t, map[string]int{"price_update": 2}, s.Jobs())

	s.Start()
	defer s.Stop()
	next := s.Next("price_update")
	require.False(t, next.IsZero())
	assert.True(t, next.After(time.Now()))
	assert.True(t, s.Next("missing").IsZero())
}

func TestSingletonSkipsOverlap(t *testing.T) {
	s := New(time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs, running, overlap atomic.Int32
	release := make(chan struct{})
	require.NoError(t, s.Add(ctx, "feed_check", "@every 1s", func(context.Context) {
		if running.Add(1) > 1 {
			overlap.Add(1)
		}
		runs.Add(1)
		<-release
		running.Add(-1)
	}, true))

	s.Start()
	// 第一次执行阻塞期间，后续触发都被跳过
	time.Sleep(3500 * time.Millisecond)
	close(release)
	s.Stop()

	assert.Equal(t, int32(1), runs.Load())
	assert.Zero(t, overlap.Load())
}

func TestJobSeesCancelledContext(t *testing.T) {
	s := New(time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var runs atomic.Int32
	require.NoError(t, s.Add(ctx, "digest", "@every 1s", func(context.Context) { runs.Add(1) }, false))
	s.Start()
	time.Sleep(1500 * time.Millisecond)
	s.Stop()
	assert.Zero(t, runs.Load())
}
