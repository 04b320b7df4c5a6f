package model

import "time"

// Booking links one student to one slot. A unique index on
// (student_id, exam_id) enforces at most one booking per student per exam,
// regardless of which slot within the exam was reserved.
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StudentID string    `json:"student_id" bson:"student_id" validate:"required,mongodb"`
	ExamID    string    `json:"exam_id" bson:"exam_id" validate:"required,min=1,max=100"`
	SlotID    string    `json:"slot_id" bson:"slot_id" validate:"required,mongodb"`
	RequestID string    `json:"request_id" bson:"request_id" validate:"required,min=1,max=100"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// ReserveRequest is the student-facing admission input. RequestID is the
// client-supplied idempotency token; it correlates the attempt with its
// audit entry but does not itself deduplicate bookings.
type ReserveRequest struct {
	SlotID    string `json:"slot_id" validate:"required,mongodb"`
	ExamID    string `json:"exam_id" validate:"required,min=1,max=100"`
	RequestID string `json:"request_id" validate:"required,min=1,max=100"`
}

// BookingWithSlot is the student-facing listing projection. Slot is nil when
// the referenced slot no longer exists.
type BookingWithSlot struct {
	Booking *Booking `json:"booking"`
	Slot    *Slot    `json:"slot,omitempty"`
}
