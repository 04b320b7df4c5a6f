package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"examslots/pkg/config"
	"examslots/pkg/kafka"
	"examslots/pkg/logger"
	"examslots/pkg/model"
)

type stubAuditRepo struct {
	appended []*model.AuditEntry
	appendFn func(ctx context.Context, entry *model.AuditEntry) error
	entries  []*model.AuditEntry
	count    int64
}

func (s *stubAuditRepo) Append(ctx context.Context, entry *model.AuditEntry) error {
	if s.appendFn != nil {
		return s.appendFn(ctx, entry)
	}
	s.appended = append(s.appended, entry)
	return nil
}

func (s *stubAuditRepo) Find(ctx context.Context, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditEntry, error) {
	return s.entries, nil
}

func (s *stubAuditRepo) Count(ctx context.Context, filter model.AuditFilter) (int64, error) {
	return s.count, nil
}

func (s *stubAuditRepo) FindRecentByStudent(ctx context.Context, studentID string, limit int) ([]*model.AuditEntry, error) {
	return s.entries, nil
}

func (s *stubAuditRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.count, nil
}

type stubPublisher struct {
	messages []kafka.Message
	err      error
}

func (s *stubPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Output: io.Discard}),
	}
}

func TestRecordStoresAndPublishes(t *testing.T) {
	repo := &stubAuditRepo{}
	pub := &stubPublisher{}
	svc := NewAuditService(repo, pub, testConfig())

	entry := &model.AuditEntry{Status: model.AuditSuccess, RequestID: "req-1"}
	if err := svc.Record(context.Background(), entry); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(repo.appended) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(repo.appended))
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(pub.messages))
	}
	if pub.messages[0].Key != "req-1" {
		t.Errorf("expected message keyed by request ID, got %q", pub.messages[0].Key)
	}
}

func TestRecordFailsWhenStoreFails(t *testing.T) {
	repo := &stubAuditRepo{
		appendFn: func(ctx context.Context, entry *model.AuditEntry) error {
			return errors.New("disk full")
		},
	}
	pub := &stubPublisher{}
	svc := NewAuditService(repo, pub, testConfig())

	err := svc.Record(context.Background(), &model.AuditEntry{Status: model.AuditFailed})
	if err == nil {
		t.Fatal("expected error when the store write fails")
	}
	if len(pub.messages) != 0 {
		t.Errorf("expected no publish after a failed store write, got %d", len(pub.messages))
	}
}

func TestRecordSurvivesPublishFailure(t *testing.T) {
	repo := &stubAuditRepo{}
	pub := &stubPublisher{err: errors.New("broker down")}
	svc := NewAuditService(repo, pub, testConfig())

	if err := svc.Record(context.Background(), &model.AuditEntry{Status: model.AuditSuccess}); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got %v", err)
	}
	if len(repo.appended) != 1 {
		t.Errorf("expected entry to be stored regardless, got %d", len(repo.appended))
	}
}

func TestRecordWithoutPublisher(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, nil, testConfig())

	if err := svc.Record(context.Background(), &model.AuditEntry{Status: model.AuditSuccess}); err != nil {
		t.Fatalf("expected success without a publisher, got %v", err)
	}
}

func TestListReturnsEntriesAndCount(t *testing.T) {
	repo := &stubAuditRepo{
		entries: []*model.AuditEntry{{Status: model.AuditSuccess}, {Status: model.AuditFailed}},
		count:   42,
	}
	svc := NewAuditService(repo, nil, testConfig())

	entries, count, err := svc.List(context.Background(), model.AuditFilter{}, 10, 0)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
	if count != 42 {
		t.Errorf("expected total count 42, got %d", count)
	}
}
