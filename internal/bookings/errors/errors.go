package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrDuplicate is the unique (student_id, exam_id) index rejecting a
	// second booking for the same exam.
	ErrDuplicate = errors.New("student already booked this exam")
)
