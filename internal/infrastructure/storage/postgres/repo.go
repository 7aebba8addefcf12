package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"finbot/internal/application/port"
	"finbot/internal/domain"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

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
  ok BOOLEAN NOT NULL,
  error TEXT NOT NULL DEFAULT '',
  payload TEXT NOT NULL,
  ts_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dispatches_ts ON dispatches(ts_ms);
`)
	return err
}

func (r *Repo) LoadSeen(ctx context.Context, feed string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT item_id FROM seen_ids WHERE feed=$1 ORDER BY pos`, feed)
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

func (r *Repo) SaveSeen(ctx context.Context, feed string, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_ids WHERE feed=$1`, feed); err != nil {
		return fmt.Errorf("clear seen ids: %w", err)
	}
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `INSERT INTO seen_ids(feed, pos, item_id) VALUES($1, $2, $3)`, feed, i, id); err != nil {
			return fmt.Errorf("insert seen id: %w", err)
		}
	}
	return tx.Commit()
}

func (r *Repo) RecordDispatch(ctx context.Context, rec domain.DispatchRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dispatches(id, kind, ok, error, payload, ts_ms) VALUES($1, $2, $3, $4, $5, $6)`,
		rec.ID, string(rec.Kind), rec.OK, rec.Error, rec.Payload, rec.At.UnixMilli())
	return err
}

var _ port.Repository = (*Repo)(nil)
