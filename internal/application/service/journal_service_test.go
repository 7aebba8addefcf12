package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finbot/internal/domain"
)

type mockJournal struct {
	recs []domain.DispatchRecord
	err  error
}

func (m *mockJournal) RecordDispatch(ctx context.Context, rec domain.DispatchRecord) error {
	m.recs = append(m.recs, rec)
	return m.err
}

func TestJournalServiceRecord(t *testing.T) {
	now := time.Date(2026, 10, 19, 7, 30, 0, 0, time.UTC)
	j := &mockJournal{}
	svc := NewJournalService(j, func() time.Time { return now })

	rec := svc.Record(context.Background(), domain.DispatchDigest, "hello", nil)
	if !rec.OK || rec.ID == "" || !rec.At.Equal(now) {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(j.recs) != 1 || j.recs[0].Payload != "hello" {
		t.Fatalf("expected one journal entry, got %+v", j.recs)
	}

	rec = svc.Record(context.Background(), domain.DispatchFeed, "x", errors.New("chat not found"))
	if rec.OK || rec.Error != "chat not found" {
		t.Errorf("expected failed record, got %+v", rec)
	}
}

func TestJournalServiceWriteErrorIsSwallowed(t *testing.T) {
	j := &mockJournal{err: errors.New("disk full")}
	svc := NewJournalService(j, nil)
	rec := svc.Record(context.Background(), domain.DispatchAnswer, "a", nil)
	if !rec.OK {
		t.Errorf("journal failure must not flip send status")
	}
}

func TestJournalServiceNilJournal(t *testing.T) {
	svc := NewJournalService(nil, nil)
	rec := svc.Record(context.Background(), domain.DispatchBrief, "b", nil)
	if rec.ID == "" {
		t.Errorf("expected id even without journal")
	}
}
