package container

import (
	"context"
	"path/filepath"
	"testing"

	"finbot/internal/application/port"
	"finbot/internal/domain"
	"finbot/internal/infrastructure/config"
	infracontainer "finbot/internal/infrastructure/container"
)

type staticSource struct {
	items []domain.FeedItem
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) Fetch(ctx context.Context) ([]domain.FeedItem, error) {
	return s.items, nil
}

func sqliteConfig(path string) *config.Config {
	cfg := &config.Config{}
	cfg.Storage.SQLite.Enabled = true
	cfg.Storage.SQLite.Path = path
	return cfg
}

func TestContainerJournalWithSQLite(t *testing.T) {
	cfg := sqliteConfig(filepath.Join(t.TempDir(), "journal.db"))

	infra, err := infracontainer.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to create container: %v", err)
	}
	defer infra.Close()

	c := New(infra.Repository())
	ctx := context.Background()

	c.JournalService().Record(ctx, domain.DispatchDigest, "digest", nil)
	c.JournalService().Record(ctx, domain.DispatchFeed, "feed", nil)
	c.JournalService().Record(ctx, domain.DispatchDigest, "digest 2", nil)

	n, err := infra.SQLiteRepo().CountDispatches(ctx, domain.DispatchDigest)
	if err != nil {
		t.Fatalf("CountDispatches failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 digest records, got %d", n)
	}
}

func TestContainerSeenSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")
	items := []domain.FeedItem{{ID: "10", Text: "a"}, {ID: "11", Text: "b"}}
	sources := []port.FeedSource{staticSource{items: items}}
	ctx := context.Background()

	infra, err := infracontainer.New(ctx, sqliteConfig(path))
	if err != nil {
		t.Fatalf("failed to create container: %v", err)
	}
	c := New(infra.Repository())
	d := c.Feed("twitter", 100, sources)
	if c.Feed("twitter", 100, sources) != d {
		t.Fatalf("feed should be created once per name")
	}

	fresh, err := d.PollAndFilter(ctx)
	if err != nil {
		t.Fatalf("PollAndFilter failed: %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected 2 fresh items, got %d", len(fresh))
	}
	if err := d.MarkSeen(ctx, "10"); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if err := infra.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// 重启
	infra, err = infracontainer.New(ctx, sqliteConfig(path))
	if err != nil {
		t.Fatalf("failed to reopen container: %v", err)
	}
	defer infra.Close()

	d = New(infra.Repository()).Feed("twitter", 100, sources)
	fresh, err = d.PollAndFilter(ctx)
	if err != nil {
		t.Fatalf("PollAndFilter after restart failed: %v", err)
	}
	if len(fresh) != 1 || fresh[0].ID != "11" {
		t.Fatalf("expected only item 11 after restart, got %+v", fresh)
	}
}
