package service

import (
	"context"
	"sync"

	auditservice "examslots/internal/audit/service"
	bookingrepo "examslots/internal/bookings/repository"
	slotrepo "examslots/internal/slots/repository"
	"examslots/pkg/config"
	apperrors "examslots/pkg/errors"
	"examslots/pkg/model"
)

const activityLimit = 10

type AdminStats struct {
	EnabledSlots     int64 `json:"enabled_slots"`
	TotalBookings    int64 `json:"total_bookings"`
	FailedAttempts   int64 `json:"failed_attempts"`
	DistinctStudents int64 `json:"distinct_students"`
}

type StudentStats struct {
	MyBookings int64 `json:"my_bookings"`
	OpenSlots  int64 `json:"open_slots"`
}

type DashboardService interface {
	AdminStats(ctx context.Context) (*AdminStats, error)
	StudentStats(ctx context.Context, studentID string) (*StudentStats, error)
	StudentActivity(ctx context.Context, studentID string) ([]*model.AuditEntry, error)
}

type dashboardService struct {
	slotRepo    slotrepo.SlotRepository
	bookingRepo bookingrepo.BookingRepository
	audit       auditservice.AuditService
	cfg         *config.Config
}

func NewDashboardService(
	slotRepo slotrepo.SlotRepository,
	bookingRepo bookingrepo.BookingRepository,
	audit auditservice.AuditService,
	cfg *config.Config,
) DashboardService {
	return &dashboardService{
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		audit:       audit,
		cfg:         cfg,
	}
}

// AdminStats gathers the four counters in parallel; each is an independent
// read so a consistent snapshot is not required.
func (s *dashboardService) AdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	errs := make([]error, 4)
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		stats.EnabledSlots, errs[0] = s.slotRepo.CountEnabled(ctx)
	}()
	go func() {
		defer wg.Done()
		stats.TotalBookings, errs[1] = s.bookingRepo.Count(ctx)
	}()
	go func() {
		defer wg.Done()
		stats.FailedAttempts, errs[2] = s.audit.CountByStatus(ctx, model.AuditFailed)
	}()
	go func() {
		defer wg.Done()
		var students []string
		students, errs[3] = s.bookingRepo.DistinctStudents(ctx)
		stats.DistinctStudents = int64(len(students))
	}()

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			s.cfg.Log.Error("Failed to load admin dashboard", "error", err)
			return nil, apperrors.Internal("Failed to load dashboard statistics", err)
		}
	}
	return stats, nil
}

func (s *dashboardService) StudentStats(ctx context.Context, studentID string) (*StudentStats, error) {
	if studentID == "" {
		return nil, apperrors.InvalidInput("Student ID cannot be empty")
	}

	stats := &StudentStats{}
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		stats.MyBookings, errs[0] = s.bookingRepo.CountByStudent(ctx, studentID)
	}()
	go func() {
		defer wg.Done()
		stats.OpenSlots, errs[1] = s.slotRepo.CountOpen(ctx)
	}()

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			s.cfg.Log.Error("Failed to load student dashboard", "student_id", studentID, "error", err)
			return nil, apperrors.Internal("Failed to load dashboard statistics", err)
		}
	}
	return stats, nil
}

func (s *dashboardService) StudentActivity(ctx context.Context, studentID string) ([]*model.AuditEntry, error) {
	return s.audit.RecentByStudent(ctx, studentID, activityLimit)
}
