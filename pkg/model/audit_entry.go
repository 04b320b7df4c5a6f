package model

import "time"

const (
	AuditSuccess   = "SUCCESS"
	AuditFailed    = "FAILED"
	AuditCancelled = "CANCELLED"
)

// AuditEntry is one append-only record per admission attempt or
// cancellation. Student and slot references are optional: an entry may
// outlive the user or slot it points at, and readers must tolerate absence.
type AuditEntry struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	StudentID string    `json:"student_id,omitempty" bson:"student_id,omitempty"`
	ExamID    string    `json:"exam_id,omitempty" bson:"exam_id,omitempty"`
	SlotID    string    `json:"slot_id,omitempty" bson:"slot_id,omitempty"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=SUCCESS FAILED CANCELLED"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty" bson:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// AuditFilter narrows audit-trail reads. Zero-valued fields match everything.
type AuditFilter struct {
	StudentID string
	SlotID    string
	Status    string
}
