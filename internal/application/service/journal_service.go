package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"finbot/internal/application/port"
	"finbot/internal/domain"
)

// JournalService 记录每一次发送，journal 为空时什么也不做
type JournalService struct {
	journal port.Journal
	now     func() time.Time
}

func NewJournalService(journal port.Journal, now func() time.Time) *JournalService {
	if now == nil {
		now = time.Now
	}
	return &JournalService{journal: journal, now: now}
}

// Record 写日志失败只记 warn，不影响发送流程
func (s *JournalService) Record(ctx context.Context, kind domain.DispatchKind, payload string, sendErr error) domain.DispatchRecord {
	rec := domain.DispatchRecord{
		ID:      uuid.NewString(),
		Kind:    kind,
		At:      s.now(),
		OK:      sendErr == nil,
		Payload: payload,
	}
	if sendErr != nil {
		rec.Error = sendErr.Error()
	}
	if s.journal == nil {
		return rec
	}
	if err := s.journal.RecordDispatch(ctx, rec); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Str("id", rec.ID).Msg("journal write failed")
	}
	return rec
}
