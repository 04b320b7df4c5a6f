package service

import (
	"context"
	"errors"

	auditservice "examslots/internal/audit/service"
	bookingserrors "examslots/internal/bookings/errors"
	"examslots/internal/bookings/repository"
	"examslots/internal/bookings/validator"
	slotserrors "examslots/internal/slots/errors"
	slotrepo "examslots/internal/slots/repository"
	"examslots/pkg/config"
	apperrors "examslots/pkg/errors"
	"examslots/pkg/model"
	"examslots/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	reasonDuplicateExam = "duplicate exam booking"
	reasonSlotFull      = "slot full or disabled"
	reasonLedgerFailure = "ledger write failed"
	reasonSelfService   = "self-service"
	reasonAdminRemoval  = "removed by administrator"
)

type BookingService interface {
	Reserve(ctx context.Context, studentID string, req *model.ReserveRequest) (*model.Booking, error)
	Cancel(ctx context.Context, bookingID string, actor model.Principal) error
	ListMine(ctx context.Context, studentID string) ([]*model.BookingWithSlot, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	slotRepo  slotrepo.SlotRepository
	audit     auditservice.AuditService
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	slotRepo slotrepo.SlotRepository,
	audit auditservice.AuditService,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		slotRepo:  slotRepo,
		audit:     audit,
		validator: validator,
		cfg:       cfg,
	}
}

// Reserve runs the admission protocol:
//
//  1. reject if the student already holds a booking for this exam
//  2. claim one seat with a single conditional decrement
//  3. insert the ledger row and its audit record in one transaction; a
//     unique-index race or a failed audit write releases the claimed seat
//
// Every attempt, successful or not, is written to the audit trail before
// the result is returned. Steps 2 and 3 are the only serialization points;
// there is no in-process locking.
func (s *bookingService) Reserve(ctx context.Context, studentID string, req *model.ReserveRequest) (*model.Booking, error) {
	req.ExamID = sanitizer.NormalizeExamID(req.ExamID)
	if err := s.validator.ValidateReserveRequest(req); err != nil {
		// Nothing was touched yet, so no audit entry for malformed input.
		s.cfg.Log.Warn("Reserve validation failed", "student_id", studentID, "error", err)
		return nil, apperrors.Validation("Invalid reservation input", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindByStudentAndExam(ctx, studentID, req.ExamID)
	if err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}
	if existing != nil {
		s.auditFailure(ctx, studentID, req, reasonDuplicateExam)
		return nil, apperrors.DuplicateExamBooking("You already hold a booking for this exam")
	}

	if _, err := s.slotRepo.ClaimSeat(ctx, req.SlotID); err != nil {
		if errors.Is(err, slotserrors.ErrSeatUnavailable) || errors.Is(err, slotserrors.ErrInvalidID) {
			s.auditFailure(ctx, studentID, req, reasonSlotFull)
			return nil, apperrors.SlotUnavailable("Slot is full or disabled")
		}
		return nil, apperrors.Internal("Failed to claim seat", err)
	}

	booking := &model.Booking{
		StudentID: studentID,
		ExamID:    req.ExamID,
		SlotID:    req.SlotID,
		RequestID: req.RequestID,
	}

	entry := &model.AuditEntry{
		StudentID: studentID,
		ExamID:    req.ExamID,
		SlotID:    req.SlotID,
		Status:    model.AuditSuccess,
		RequestID: req.RequestID,
	}

	// Ledger row and audit record commit together: a confirmed booking
	// without its audit entry must never exist.
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return err
		}
		return s.audit.Append(sessCtx, entry)
	})
	if err != nil {
		// The seat was already claimed in step 2; it must be handed back
		// before the failure surfaces, or the slot leaks a phantom hold.
		s.releaseClaimedSeat(ctx, req.SlotID)

		if errors.Is(err, bookingserrors.ErrDuplicate) {
			s.auditFailure(ctx, studentID, req, reasonDuplicateExam)
			return nil, apperrors.DuplicateExamBooking("You already hold a booking for this exam")
		}
		s.auditFailure(ctx, studentID, req, reasonLedgerFailure)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.audit.Publish(ctx, entry)

	s.cfg.Log.Info("Booking confirmed",
		"booking_id", booking.ID,
		"student_id", studentID,
		"exam_id", req.ExamID,
		"slot_id", req.SlotID,
		"request_id", req.RequestID,
	)
	return booking, nil
}

// Cancel restores one seat, removes the ledger row, and records the
// cancellation as a single transaction. Students may cancel their own
// bookings; admins may remove bookings from slots they own.
func (s *bookingService) Cancel(ctx context.Context, bookingID string, actor model.Principal) error {
	if bookingID == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to retrieve booking", err)
	}

	reason, err := s.authorizeCancellation(ctx, booking, actor)
	if err != nil {
		return err
	}

	entry := &model.AuditEntry{
		StudentID: booking.StudentID,
		ExamID:    booking.ExamID,
		SlotID:    booking.SlotID,
		Status:    model.AuditCancelled,
		Reason:    reason,
		RequestID: booking.RequestID,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.slotRepo.ReleaseSeat(sessCtx, booking.SlotID); err != nil {
			// The slot may have been deleted after its bookings; a missing
			// slot must not strand the booking row.
			if !errors.Is(err, slotserrors.ErrNoSeatToRelease) {
				return apperrors.Internal("Failed to restore slot capacity", err)
			}
			s.cfg.Log.Warn("No seat to release on cancellation", "slot_id", booking.SlotID, "booking_id", bookingID)
		}
		if err := s.repo.Delete(sessCtx, bookingID); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", bookingID)
			}
			return apperrors.Internal("Failed to delete booking", err)
		}
		return s.audit.Append(sessCtx, entry)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "booking_id", bookingID, "error", err)
		return err
	}

	s.audit.Publish(ctx, entry)

	s.cfg.Log.Info("Booking cancelled",
		"booking_id", bookingID,
		"slot_id", booking.SlotID,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"reason", reason,
	)
	return nil
}

func (s *bookingService) ListMine(ctx context.Context, studentID string) ([]*model.BookingWithSlot, error) {
	bookings, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "student_id", studentID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	out := make([]*model.BookingWithSlot, 0, len(bookings))
	for _, booking := range bookings {
		item := &model.BookingWithSlot{Booking: booking}
		slot, err := s.slotRepo.FindByID(ctx, booking.SlotID)
		if err == nil {
			item.Slot = slot
		} else if !errors.Is(err, slotserrors.ErrNotFound) && !errors.Is(err, slotserrors.ErrInvalidID) {
			return nil, apperrors.Internal("Failed to retrieve slot", err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *bookingService) authorizeCancellation(ctx context.Context, booking *model.Booking, actor model.Principal) (string, error) {
	switch actor.Role {
	case model.RoleStudent:
		if booking.StudentID != actor.ID {
			// Not-found rather than forbidden: don't confirm the booking
			// exists to a student who doesn't own it.
			return "", apperrors.NotFoundWithID("Booking", booking.ID)
		}
		return reasonSelfService, nil

	case model.RoleAdmin:
		slot, err := s.slotRepo.FindByID(ctx, booking.SlotID)
		if err != nil {
			if errors.Is(err, slotserrors.ErrNotFound) {
				return "", apperrors.NotFoundWithID("Slot", booking.SlotID)
			}
			return "", apperrors.Internal("Failed to retrieve slot", err)
		}
		if slot.CreatedBy != actor.ID {
			return "", apperrors.Forbidden("Slot belongs to another administrator")
		}
		return reasonAdminRemoval, nil

	default:
		return "", apperrors.Forbidden("Unknown actor role")
	}
}

func (s *bookingService) auditFailure(ctx context.Context, studentID string, req *model.ReserveRequest, reason string) {
	if err := s.audit.Record(ctx, &model.AuditEntry{
		StudentID: studentID,
		ExamID:    req.ExamID,
		SlotID:    req.SlotID,
		Status:    model.AuditFailed,
		Reason:    reason,
		RequestID: req.RequestID,
	}); err != nil {
		s.cfg.Log.Error("Failed to audit rejected booking",
			"student_id", studentID,
			"request_id", req.RequestID,
			"reason", reason,
			"error", err,
		)
	}
}

func (s *bookingService) releaseClaimedSeat(ctx context.Context, slotID string) {
	if err := s.slotRepo.ReleaseSeat(ctx, slotID); err != nil {
		// A failed compensation leaks one seat until an operator intervenes.
		s.cfg.Log.Error("Failed to release claimed seat, capacity may leak",
			"slot_id", slotID,
			"error", err,
		)
	}
}
