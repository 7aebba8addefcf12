package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/domain"
)

// 需要真实 postgres：FINBOT_TEST_POSTGRES=postgres://...
func newTestRepo(t *testing.T) *Repo {
	dsn := os.Getenv("FINBOT_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("FINBOT_TEST_POSTGRES not set")
	}
	repo, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestPostgresSeenRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	feed := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = repo.db.ExecContext(context.Background(), `DELETE FROM seen_ids WHERE feed=$1`, feed)
	})

	ids, err := repo.LoadSeen(ctx, feed)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.SaveSeen(ctx, feed, []string{"3", "1", "2"}))
	require.NoError(t, repo.SaveSeen(ctx, feed, []string{"1", "2", "4"}))

	ids, err = repo.LoadSeen(ctx, feed)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "4"}, ids)
}

func TestPostgresRecordDispatch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	rec := domain.DispatchRecord{
		ID:      uuid.NewString(),
		Kind:    domain.DispatchFeed,
		At:      time.Now(),
		OK:      false,
		Error:   "rejected",
		Payload: "hello",
	}
	t.Cleanup(func() {
		_, _ = repo.db.ExecContext(context.Background(), `DELETE FROM dispatches WHERE id=$1`, rec.ID)
	})
	require.NoError(t, repo.RecordDispatch(ctx, rec))

	var ok bool
	var errText string
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT ok, error FROM dispatches WHERE id=$1`, rec.ID).Scan(&ok, &errText))
	assert.False(t, ok)
	assert.Equal(t, "rejected", errText)
}
