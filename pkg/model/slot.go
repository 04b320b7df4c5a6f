package model

import "time"

// Slot is a single bookable time window with finite seats under one exam.
// RemainingCapacity is mutated exclusively through the slot repository's
// atomic ClaimSeat/ReleaseSeat operations and always stays within
// [0, MaxCapacity].
type Slot struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ExamName          string    `json:"exam_name" bson:"exam_name" validate:"required,min=2,max=100"`
	Date              time.Time `json:"date" bson:"date" validate:"required"`
	StartTime         string    `json:"start_time" bson:"start_time" validate:"required,hhmm"`
	EndTime           string    `json:"end_time" bson:"end_time" validate:"required,hhmm"`
	MaxCapacity       int       `json:"max_capacity" bson:"max_capacity" validate:"required,min=1,max=500"`
	RemainingCapacity int       `json:"remaining_capacity" bson:"remaining_capacity" validate:"min=0"`
	Enabled           bool      `json:"enabled" bson:"enabled"`
	CreatedBy         string    `json:"created_by" bson:"created_by" validate:"required,mongodb"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// BookedCount is the number of confirmed bookings currently holding a seat.
func (s *Slot) BookedCount() int {
	return s.MaxCapacity - s.RemainingCapacity
}

// GenerateSlotsRequest is the admin input expanded into one or more slots.
// SlotDurationMin of zero (or negative) means a single slot spanning the
// whole window.
type GenerateSlotsRequest struct {
	ExamName        string `json:"exam_name" validate:"required,min=2,max=100"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required,hhmm"`
	EndTime         string `json:"end_time" validate:"required,hhmm"`
	MaxCapacity     int    `json:"max_capacity" validate:"required,min=1,max=500"`
	SlotDurationMin int    `json:"slot_duration_min" validate:"omitempty,max=1440"`
}

// SlotUpdate carries partial admin edits. A nil/zero field is left unchanged.
type SlotUpdate struct {
	ExamName    string  `json:"exam_name,omitempty" validate:"omitempty,min=2,max=100"`
	Date        *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartTime   string  `json:"start_time,omitempty" validate:"omitempty,hhmm"`
	EndTime     string  `json:"end_time,omitempty" validate:"omitempty,hhmm"`
	MaxCapacity *int    `json:"max_capacity,omitempty" validate:"omitempty,min=1,max=500"`
}

// SlotWithBookings is the admin-side listing projection: the slot plus the
// bookings currently referencing it.
type SlotWithBookings struct {
	Slot     *Slot      `json:"slot"`
	Bookings []*Booking `json:"bookings"`
}
