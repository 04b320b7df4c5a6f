package service

import (
	"context"
	"io"
	"testing"

	"examslots/pkg/config"
	mongotx "examslots/pkg/db/mongo"
	"examslots/pkg/logger"
	"examslots/pkg/model"
)

type stubSlotRepo struct {
	enabled int64
	open    int64
}

func (s *stubSlotRepo) CreateBatch(ctx context.Context, slots []*model.Slot) error { return nil }
func (s *stubSlotRepo) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	return nil, nil
}
func (s *stubSlotRepo) FindAvailable(ctx context.Context) ([]*model.Slot, error) { return nil, nil }
func (s *stubSlotRepo) FindByOwner(ctx context.Context, adminID string) ([]*model.Slot, error) {
	return nil, nil
}
func (s *stubSlotRepo) Update(ctx context.Context, id string, slot *model.Slot) error { return nil }
func (s *stubSlotRepo) SetEnabled(ctx context.Context, id string, enabled bool) error { return nil }
func (s *stubSlotRepo) Delete(ctx context.Context, id string) error                   { return nil }
func (s *stubSlotRepo) ClaimSeat(ctx context.Context, id string) (*model.Slot, error) {
	return nil, nil
}
func (s *stubSlotRepo) ReleaseSeat(ctx context.Context, id string) error { return nil }
func (s *stubSlotRepo) CountEnabled(ctx context.Context) (int64, error)  { return s.enabled, nil }
func (s *stubSlotRepo) CountOpen(ctx context.Context) (int64, error)     { return s.open, nil }
func (s *stubSlotRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

type stubBookingRepo struct {
	total     int64
	byStudent int64
	students  []string
}

func (s *stubBookingRepo) Create(ctx context.Context, booking *model.Booking) error { return nil }
func (s *stubBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) FindByStudentAndExam(ctx context.Context, studentID, examID string) (*model.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) FindByStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) FindBySlot(ctx context.Context, slotID string) ([]*model.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) FindBySlotIDs(ctx context.Context, slotIDs []string) ([]*model.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) CountBySlot(ctx context.Context, slotID string) (int64, error) {
	return 0, nil
}
func (s *stubBookingRepo) CountByStudent(ctx context.Context, studentID string) (int64, error) {
	return s.byStudent, nil
}
func (s *stubBookingRepo) Count(ctx context.Context) (int64, error) { return s.total, nil }
func (s *stubBookingRepo) DistinctStudents(ctx context.Context) ([]string, error) {
	return s.students, nil
}
func (s *stubBookingRepo) Delete(ctx context.Context, id string) error { return nil }
func (s *stubBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

type stubAuditService struct {
	failed int64
	recent []*model.AuditEntry
}

func (s *stubAuditService) Record(ctx context.Context, entry *model.AuditEntry) error { return nil }
func (s *stubAuditService) Append(ctx context.Context, entry *model.AuditEntry) error { return nil }
func (s *stubAuditService) Publish(ctx context.Context, entry *model.AuditEntry)      {}
func (s *stubAuditService) List(ctx context.Context, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditEntry, int64, error) {
	return nil, 0, nil
}
func (s *stubAuditService) RecentByStudent(ctx context.Context, studentID string, limit int) ([]*model.AuditEntry, error) {
	if len(s.recent) > limit {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}
func (s *stubAuditService) CountByStatus(ctx context.Context, status string) (int64, error) {
	if status == model.AuditFailed {
		return s.failed, nil
	}
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Output: io.Discard}),
	}
}

func TestAdminStats(t *testing.T) {
	svc := NewDashboardService(
		&stubSlotRepo{enabled: 12, open: 4},
		&stubBookingRepo{total: 57, students: []string{"a", "b", "c"}},
		&stubAuditService{failed: 9},
		testConfig(),
	)

	stats, err := svc.AdminStats(context.Background())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if stats.EnabledSlots != 12 {
		t.Errorf("expected 12 enabled slots, got %d", stats.EnabledSlots)
	}
	if stats.TotalBookings != 57 {
		t.Errorf("expected 57 bookings, got %d", stats.TotalBookings)
	}
	if stats.FailedAttempts != 9 {
		t.Errorf("expected 9 failed attempts, got %d", stats.FailedAttempts)
	}
	if stats.DistinctStudents != 3 {
		t.Errorf("expected 3 distinct students, got %d", stats.DistinctStudents)
	}
}

func TestStudentStats(t *testing.T) {
	svc := NewDashboardService(
		&stubSlotRepo{open: 6},
		&stubBookingRepo{byStudent: 2},
		&stubAuditService{},
		testConfig(),
	)

	stats, err := svc.StudentStats(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if stats.MyBookings != 2 {
		t.Errorf("expected 2 bookings, got %d", stats.MyBookings)
	}
	if stats.OpenSlots != 6 {
		t.Errorf("expected 6 open slots, got %d", stats.OpenSlots)
	}
}

func TestStudentStatsRequiresID(t *testing.T) {
	svc := NewDashboardService(&stubSlotRepo{}, &stubBookingRepo{}, &stubAuditService{}, testConfig())

	if _, err := svc.StudentStats(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty student ID")
	}
}

func TestStudentActivityCapped(t *testing.T) {
	recent := make([]*model.AuditEntry, 25)
	for i := range recent {
		recent[i] = &model.AuditEntry{Status: model.AuditSuccess}
	}
	svc := NewDashboardService(&stubSlotRepo{}, &stubBookingRepo{}, &stubAuditService{recent: recent}, testConfig())

	entries, err := svc.StudentActivity(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(entries) != activityLimit {
		t.Errorf("expected %d entries, got %d", activityLimit, len(entries))
	}
}
