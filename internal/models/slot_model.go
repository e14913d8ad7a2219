package models

// Slot is a bookable time window for one service on one calendar date.
// IsBooked flips from false to true when a booking consumes the slot.
type Slot struct {
	ID        string `json:"id" firestore:"-"`
	ServiceID string `json:"serviceId" firestore:"service_id"`
	Date      string `json:"date" firestore:"date"` // YYYY-MM-DD
	Slot      string `json:"slot" firestore:"slot"` // e.g. "9:00 AM - 10:00 AM"
	IsBooked  bool   `json:"isBooked" firestore:"isBooked"`
}

// GenerateSlotsResult reports which default labels were inserted for a day.
type GenerateSlotsResult struct {
	ServiceID string   `json:"serviceId"`
	Date      string   `json:"date"`
	Created   []*Slot  `json:"created"`
	Skipped   []string `json:"skipped"`
}
