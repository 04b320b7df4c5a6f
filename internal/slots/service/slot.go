package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingrepo "examslots/internal/bookings/repository"
	slotserrors "examslots/internal/slots/errors"
	"examslots/internal/slots/repository"
	"examslots/internal/slots/validator"
	"examslots/pkg/config"
	apperrors "examslots/pkg/errors"
	"examslots/pkg/model"
	"examslots/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type SlotService interface {
	Generate(ctx context.Context, adminID string, req *model.GenerateSlotsRequest) ([]*model.Slot, error)
	ListAvailable(ctx context.Context) ([]*model.Slot, error)
	ListOwned(ctx context.Context, adminID string) ([]*model.SlotWithBookings, error)
	Toggle(ctx context.Context, adminID, slotID string) (*model.Slot, error)
	Edit(ctx context.Context, adminID, slotID string, updates *model.SlotUpdate) (*model.Slot, error)
	Delete(ctx context.Context, adminID, slotID string) error
	SlotBookings(ctx context.Context, adminID, slotID string) ([]*model.Booking, error)
}

type slotService struct {
	repo        repository.SlotRepository
	bookingRepo bookingrepo.BookingRepository
	validator   *validator.SlotValidator
	cfg         *config.Config
}

func NewSlotService(
	repo repository.SlotRepository,
	bookingRepo bookingrepo.BookingRepository,
	validator *validator.SlotValidator,
	cfg *config.Config,
) SlotService {
	return &slotService{
		repo:        repo,
		bookingRepo: bookingRepo,
		validator:   validator,
		cfg:         cfg,
	}
}

// Generate expands an admin-specified window into contiguous slots of the
// requested duration. A duration of zero, or one longer than the window,
// yields a single slot spanning the whole window. The batch insert runs in
// one transaction so a partial failure persists nothing.
func (s *slotService) Generate(ctx context.Context, adminID string, req *model.GenerateSlotsRequest) ([]*model.Slot, error) {
	req.ExamName = sanitizer.NormalizeExamName(req.ExamName)
	if err := s.validator.ValidateGenerateRequest(req); err != nil {
		s.cfg.Log.Warn("Slot generation validation failed", "error", err)
		return nil, apperrors.Validation("Invalid slot generation input", map[string]any{"error": err.Error()})
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date, must be YYYY-MM-DD")
	}

	start := toMinutes(req.StartTime)
	end := toMinutes(req.EndTime)
	if start >= end {
		return nil, apperrors.Validation("Start time must be before end time", map[string]any{
			"start_time": req.StartTime,
			"end_time":   req.EndTime,
		})
	}

	duration := req.SlotDurationMin
	if duration <= 0 {
		duration = end - start
	}

	var slots []*model.Slot
	for current := start; current+duration <= end; current += duration {
		slots = append(slots, s.newSlot(adminID, req, date, current, current+duration))
	}
	if len(slots) == 0 {
		// Duration longer than the window: one slot covering all of it.
		slots = append(slots, s.newSlot(adminID, req, date, start, end))
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.CreateBatch(sessCtx, slots); err != nil {
			return apperrors.Internal("Failed to create slots", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to generate slots", "exam_name", req.ExamName, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Slots generated",
		"exam_name", req.ExamName,
		"date", req.Date,
		"count", len(slots),
		"created_by", adminID,
	)
	return slots, nil
}

func (s *slotService) newSlot(adminID string, req *model.GenerateSlotsRequest, date time.Time, startMin, endMin int) *model.Slot {
	return &model.Slot{
		ExamName:          req.ExamName,
		Date:              date,
		StartTime:         toTimeStr(startMin),
		EndTime:           toTimeStr(endMin),
		MaxCapacity:       req.MaxCapacity,
		RemainingCapacity: req.MaxCapacity,
		Enabled:           true,
		CreatedBy:         adminID,
	}
}

func (s *slotService) ListAvailable(ctx context.Context) ([]*model.Slot, error) {
	slots, err := s.repo.FindAvailable(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list available slots", "error", err)
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}
	return slots, nil
}

func (s *slotService) ListOwned(ctx context.Context, adminID string) ([]*model.SlotWithBookings, error) {
	slots, err := s.repo.FindByOwner(ctx, adminID)
	if err != nil {
		s.cfg.Log.Error("Failed to list owned slots", "admin_id", adminID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	slotIDs := make([]string, 0, len(slots))
	for _, slot := range slots {
		slotIDs = append(slotIDs, slot.ID)
	}

	bookings, err := s.bookingRepo.FindBySlotIDs(ctx, slotIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for slots", "admin_id", adminID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve slot bookings", err)
	}

	bySlot := make(map[string][]*model.Booking, len(slots))
	for _, booking := range bookings {
		bySlot[booking.SlotID] = append(bySlot[booking.SlotID], booking)
	}

	enriched := make([]*model.SlotWithBookings, 0, len(slots))
	for _, slot := range slots {
		enriched = append(enriched, &model.SlotWithBookings{
			Slot:     slot,
			Bookings: bySlot[slot.ID],
		})
	}
	return enriched, nil
}

// Toggle flips the enabled flag with a targeted update. Writing the full
// document here would overwrite concurrent seat claims with the stale
// remaining_capacity from the ownership read.
func (s *slotService) Toggle(ctx context.Context, adminID, slotID string) (*model.Slot, error) {
	slot, err := s.findOwned(ctx, adminID, slotID)
	if err != nil {
		return nil, err
	}

	slot.Enabled = !slot.Enabled
	if err := s.repo.SetEnabled(ctx, slotID, slot.Enabled); err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Slot", slotID)
		}
		s.cfg.Log.Error("Failed to toggle slot", "slot_id", slotID, "error", err)
		return nil, apperrors.Internal("Failed to update slot", err)
	}

	s.cfg.Log.Info("Slot toggled", "slot_id", slotID, "enabled", slot.Enabled)
	return slot, nil
}

// Edit applies partial admin changes. Reducing max capacity below the
// current booked count is rejected; otherwise remaining capacity is
// recomputed so the booked count stays unchanged.
func (s *slotService) Edit(ctx context.Context, adminID, slotID string, updates *model.SlotUpdate) (*model.Slot, error) {
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Slot update validation failed", "slot_id", slotID, "error", err)
		return nil, apperrors.Validation("Invalid slot update input", map[string]any{"error": err.Error()})
	}

	var updated *model.Slot
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		slot, err := s.findOwned(sessCtx, adminID, slotID)
		if err != nil {
			return err
		}

		if updates.ExamName != "" {
			slot.ExamName = sanitizer.NormalizeExamName(updates.ExamName)
		}
		if updates.Date != nil {
			date, err := time.ParseInLocation("2006-01-02", *updates.Date, time.UTC)
			if err != nil {
				return apperrors.InvalidInput("invalid date, must be YYYY-MM-DD")
			}
			slot.Date = date
		}
		if updates.StartTime != "" {
			slot.StartTime = updates.StartTime
		}
		if updates.EndTime != "" {
			slot.EndTime = updates.EndTime
		}
		if updates.MaxCapacity != nil {
			booked := slot.BookedCount()
			if *updates.MaxCapacity < booked {
				return apperrors.CapacityBelowBooked(
					fmt.Sprintf("Cannot reduce capacity below current bookings count (%d)", booked),
					map[string]any{"booked": booked, "requested": *updates.MaxCapacity},
				)
			}
			slot.MaxCapacity = *updates.MaxCapacity
			slot.RemainingCapacity = *updates.MaxCapacity - booked
		}

		if toMinutes(slot.StartTime) >= toMinutes(slot.EndTime) {
			return apperrors.Validation("Start time must be before end time", nil)
		}
		if err := s.validator.Validate(slot); err != nil {
			return apperrors.Validation("Slot validation failed", map[string]any{"error": err.Error()})
		}

		if err := s.repo.Update(sessCtx, slotID, slot); err != nil {
			return apperrors.Internal("Failed to update slot", err)
		}
		updated = slot
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to edit slot", "slot_id", slotID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Slot updated", "slot_id", slotID)
	return updated, nil
}

// Delete removes a slot only when nothing references it; slots with
// bookings must be emptied through cancellation first.
func (s *slotService) Delete(ctx context.Context, adminID, slotID string) error {
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.findOwned(sessCtx, adminID, slotID); err != nil {
			return err
		}

		count, err := s.bookingRepo.CountBySlot(sessCtx, slotID)
		if err != nil {
			return apperrors.Internal("Failed to count slot bookings", err)
		}
		if count > 0 {
			return apperrors.SlotHasBookings("Cannot delete slot with existing bookings. Cancel bookings first.")
		}

		if err := s.repo.Delete(sessCtx, slotID); err != nil {
			if errors.Is(err, slotserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Slot", slotID)
			}
			return apperrors.Internal("Failed to delete slot", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Slot deleted", "slot_id", slotID, "deleted_by", adminID)
	return nil
}

func (s *slotService) SlotBookings(ctx context.Context, adminID, slotID string) ([]*model.Booking, error) {
	if _, err := s.findOwned(ctx, adminID, slotID); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.FindBySlot(ctx, slotID)
	if err != nil {
		s.cfg.Log.Error("Failed to list slot bookings", "slot_id", slotID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve slot bookings", err)
	}
	return bookings, nil
}

func (s *slotService) findOwned(ctx context.Context, adminID, slotID string) (*model.Slot, error) {
	if slotID == "" {
		return nil, apperrors.InvalidInput("Slot ID cannot be empty")
	}

	slot, err := s.repo.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Slot", slotID)
		}
		if errors.Is(err, slotserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid slot ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve slot", err)
	}

	if slot.CreatedBy != adminID {
		return nil, apperrors.Forbidden("Slot belongs to another administrator")
	}

	return slot, nil
}

func toMinutes(hhmm string) int {
	var h, m int
	fmt.Sscanf(hhmm, "%d:%d", &h, &m)
	return h*60 + m
}

func toTimeStr(totalMin int) string {
	return fmt.Sprintf("%02d:%02d", totalMin/60, totalMin%60)
}
