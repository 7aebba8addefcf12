package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"finbot/internal/domain"
)

func newTestRepo(t *testing.T) (*Repo, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "data", "finbot.db")
	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	return repo, dbPath
}

func TestSQLiteRepoSeenRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	defer repo.Close()

	ctx := context.Background()
	ids, err := repo.LoadSeen(ctx, "trump")
	if err != nil {
		t.Fatalf("LoadSeen failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty set, got %v", ids)
	}

	if err := repo.SaveSeen(ctx, "trump", []string{"3", "1", "2"}); err != nil {
		t.Fatalf("SaveSeen failed: %v", err)
	}
	if err := repo.SaveSeen(ctx, "other", []string{"x"}); err != nil {
		t.Fatalf("SaveSeen failed: %v", err)
	}

	ids, err = repo.LoadSeen(ctx, "trump")
	if err != nil {
		t.Fatalf("LoadSeen failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"3", "1", "2"}) {
		t.Errorf("order not preserved: %v", ids)
	}

	// 整体重写，不是追加
	if err := repo.SaveSeen(ctx, "trump", []string{"2"}); err != nil {
		t.Fatalf("SaveSeen failed: %v", err)
	}
	ids, _ = repo.LoadSeen(ctx, "trump")
	if !reflect.DeepEqual(ids, []string{"2"}) {
		t.Errorf("expected rewrite, got %v", ids)
	}
}

func TestSQLiteRepoSeenSurvivesReopen(t *testing.T) {
	repo, dbPath := newTestRepo(t)
	ctx := context.Background()
	if err := repo.SaveSeen(ctx, "trump", []string{"100", "101"}); err != nil {
		t.Fatalf("SaveSeen failed: %v", err)
	}
	repo.Close()

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	ids, err := reopened.LoadSeen(ctx, "trump")
	if err != nil {
		t.Fatalf("LoadSeen failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"100", "101"}) {
		t.Errorf("expected persisted ids, got %v", ids)
	}
}

func TestSQLiteRepoRecordDispatch(t *testing.T) {
	repo, _ := newTestRepo(t)
	defer repo.Close()

	ctx := context.Background()
	at := time.Date(2026, 10, 19, 7, 30, 0, 0, time.UTC)
	recs := []domain.DispatchRecord{
		{ID: "a", Kind: domain.DispatchDigest, At: at, OK: true, Payload: "digest"},
		{ID: "b", Kind: domain.DispatchFeed, At: at, OK: false, Error: "chat not found", Payload: "post"},
	}
	for _, rec := range recs {
		if err := repo.RecordDispatch(ctx, rec); err != nil {
			t.Fatalf("RecordDispatch failed: %v", err)
		}
	}

	n, err := repo.CountDispatches(ctx, "")
	if err != nil {
		t.Fatalf("CountDispatches failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 dispatches, got %d", n)
	}
	n, _ = repo.CountDispatches(ctx, domain.DispatchFeed)
	if n != 1 {
		t.Errorf("expected 1 feed dispatch, got %d", n)
	}

	if err := repo.RecordDispatch(ctx, recs[0]); err == nil {
		t.Errorf("expected duplicate id to fail")
	}
}
