package models

import "time"

// Audit actions recorded for administrative and booking changes.
const (
	AuditServiceCreate = "SERVICE_CREATE"
	AuditServiceDelete = "SERVICE_DELETE"
	AuditSlotCreate    = "SLOT_CREATE"
	AuditSlotDelete    = "SLOT_DELETE"
	AuditBookingCreate = "BOOKING_CREATE"
	AuditBookingCancel = "BOOKING_CANCEL"
	AuditUserSignup    = "USER_SIGNUP"
)

// Audit target types.
const (
	TargetService = "SERVICE"
	TargetSlot    = "SLOT"
	TargetBooking = "BOOKING"
	TargetUser    = "USER"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId" firestore:"userId"` // Who performed the action
	Action     string                 `json:"action" firestore:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"`
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
