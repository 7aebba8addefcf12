package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"finbot/internal/application/port"
	"finbot/internal/domain"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS seen_ids (
  feed TEXT NOT NULL,
  pos INTEGER NOT NULL,
  item_id TEXT NOT NULL,
  PRIMARY KEY(feed, pos)
);

CREATE TABLE IF NOT EXISTS dispatches (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  ok INTEGER NOT NULL,
  error TEXT NOT NULL DEFAULT '',
  payload TEXT NOT NULL,
  ts_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dispatches_ts ON dispatches(ts_ms);
CREATE INDEX IF NOT EXISTS idx_dispatches_kind ON dispatches(kind);
`)
	return err
}

func (r *Repo) LoadSeen(ctx context.Context, feed string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT item_id FROM seen_ids WHERE feed=? ORDER BY pos`, feed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveSeen 事务内整体替换
func (r *Repo) SaveSeen(ctx context.Context, feed string, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_ids WHERE feed=?`, feed); err != nil {
		return fmt.Errorf("clear seen ids: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO seen_ids(feed, pos, item_id) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, feed, i, id); err != nil {
			return fmt.Errorf("insert seen id: %w", err)
		}
	}
	return tx.Commit()
}

func (r *Repo) RecordDispatch(ctx context.Context, rec domain.DispatchRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dispatches(id, kind, ok, error, payload, ts_ms)
		VALUES(?, ?, ?, ?, ?, ?)
	`, rec.ID, string(rec.Kind), rec.OK, rec.Error, rec.Payload, rec.At.UnixMilli())
	return err
}

// CountDispatches 按类型统计，kind 为空时统计全部
func (r *Repo) CountDispatches(ctx context.Context, kind domain.DispatchKind) (int, error) {
	var n int
	var err error
	if kind == "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dispatches`).Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dispatches WHERE kind=?`, string(kind)).Scan(&n)
	}
	return n, err
}

var _ port.Repository = (*Repo)(nil)
