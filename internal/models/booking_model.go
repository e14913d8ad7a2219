package models

import "time"

// Booking is a resident's reservation of a slot. It is created and deleted,
// never updated in place.
type Booking struct {
	ID           string    `json:"id" firestore:"-"`
	UserID       string    `json:"userId" firestore:"user_id"`
	ServiceID    string    `json:"serviceId" firestore:"service_id"`
	ServiceName  string    `json:"serviceName,omitempty" firestore:"-"` // Joined from services/{service_id} on read
	Date         string    `json:"date" firestore:"date"`
	Slot         string    `json:"slot" firestore:"slot"`
	CustomerName string    `json:"customerName" firestore:"customerName"`
	Email        string    `json:"email" firestore:"email"`
	Phone        string    `json:"phone" firestore:"phone"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// Booking event types published to the message queue.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is the message body published when a booking changes.
type BookingEvent struct {
	Type         string    `json:"type"`
	BookingID    string    `json:"bookingId"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	CustomerName string    `json:"customerName"`
	ServiceName  string    `json:"serviceName"`
	Date         string    `json:"date"`
	Slot         string    `json:"slot"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// NewBookingEvent builds an event of the given type from a booking.
func NewBookingEvent(eventType string, b *Booking, at time.Time) BookingEvent {
	name := b.ServiceName
	if name == "" {
		name = b.ServiceID
	}
	return BookingEvent{
		Type:         eventType,
		BookingID:    b.ID,
		UserID:       b.UserID,
		Email:        b.Email,
		CustomerName: b.CustomerName,
		ServiceName:  name,
		Date:         b.Date,
		Slot:         b.Slot,
		OccurredAt:   at.UTC(),
	}
}
