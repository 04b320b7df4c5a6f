package service

import (
	"context"
	"sync"

	"examslots/internal/audit/repository"
	"examslots/pkg/config"
	apperrors "examslots/pkg/errors"
	"examslots/pkg/kafka"
	"examslots/pkg/model"
)

// EventPublisher is the Kafka fan-out behind the audit trail. It is nil-able
// by construction: pass nil to run without a broker.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type AuditService interface {
	// Record durably stores the entry, then fans it out as an event. The
	// store write is mandatory; the event publish is best-effort.
	Record(ctx context.Context, entry *model.AuditEntry) error
	// Append stores the entry without publishing, for callers that write it
	// inside a transaction and publish after commit.
	Append(ctx context.Context, entry *model.AuditEntry) error
	Publish(ctx context.Context, entry *model.AuditEntry)
	List(ctx context.Context, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditEntry, int64, error)
	RecentByStudent(ctx context.Context, studentID string, limit int) ([]*model.AuditEntry, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type auditService struct {
	repo      repository.AuditRepository
	publisher EventPublisher
	cfg       *config.Config
}

func NewAuditService(repo repository.AuditRepository, publisher EventPublisher, cfg *config.Config) AuditService {
	return &auditService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *auditService) Record(ctx context.Context, entry *model.AuditEntry) error {
	if err := s.Append(ctx, entry); err != nil {
		return err
	}
	s.Publish(ctx, entry)
	return nil
}

func (s *auditService) Append(ctx context.Context, entry *model.AuditEntry) error {
	if err := s.repo.Append(ctx, entry); err != nil {
		s.cfg.Log.Error("Failed to append audit entry",
			"status", entry.Status,
			"request_id", entry.RequestID,
			"error", err,
		)
		return apperrors.Internal("Failed to record audit entry", err)
	}
	return nil
}

func (s *auditService) Publish(ctx context.Context, entry *model.AuditEntry) {
	if s.publisher == nil {
		return
	}

	key := entry.RequestID
	if key == "" {
		key = entry.ID
	}

	msg, err := kafka.NewMessage(key, kafka.EventTypeAuditRecorded, "examslots", entry)
	if err != nil {
		s.cfg.Log.Error("Failed to encode audit event", "request_id", entry.RequestID, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish audit event",
			"request_id", entry.RequestID,
			"status", entry.Status,
			"error", err,
		)
	}
}

func (s *auditService) List(ctx context.Context, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditEntry, int64, error) {
	var count int64
	var entries []*model.AuditEntry
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count audit entries", "error", errCount)
			errCount = apperrors.Internal("Failed to count audit entries", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		entries, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list audit entries", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve audit entries", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return entries, count, nil
}

func (s *auditService) CountByStatus(ctx context.Context, status string) (int64, error) {
	count, err := s.repo.CountByStatus(ctx, status)
	if err != nil {
		s.cfg.Log.Error("Failed to count audit entries by status", "status", status, "error", err)
		return 0, apperrors.Internal("Failed to count audit entries", err)
	}
	return count, nil
}

func (s *auditService) RecentByStudent(ctx context.Context, studentID string, limit int) ([]*model.AuditEntry, error) {
	if studentID == "" {
		return nil, apperrors.InvalidInput("Student ID cannot be empty")
	}

	entries, err := s.repo.FindRecentByStudent(ctx, studentID, limit)
	if err != nil {
		s.cfg.Log.Error("Failed to load student activity", "student_id", studentID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve activity", err)
	}
	return entries, nil
}
