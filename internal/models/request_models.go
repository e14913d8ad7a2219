package models

// SignupRequest represents the request body for creating an account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=Admin Resident"`
}

// LoginRequest represents the request body for a password sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateServiceRequest represents the request body for adding a service.
type CreateServiceRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CreateSlotRequest represents the request body for adding a slot.
// Either Slot (a full label) or both StartTime and EndTime (HH:MM) must be set.
type CreateSlotRequest struct {
	ServiceID string `json:"serviceId" validate:"required"`
	Date      string `json:"date" validate:"required,isodate"`
	Slot      string `json:"slot,omitempty"`
	StartTime string `json:"startTime,omitempty" validate:"omitempty,clock"`
	EndTime   string `json:"endTime,omitempty" validate:"omitempty,clock"`
}

// GenerateSlotsRequest asks for every default slot of a day to be created.
type GenerateSlotsRequest struct {
	ServiceID string `json:"serviceId" validate:"required"`
	Date      string `json:"date" validate:"required,isodate"`
}

// AvailabilityQuery identifies a service day.
type AvailabilityQuery struct {
	ServiceID string `form:"serviceId" json:"serviceId" validate:"required"`
	Date      string `form:"date" json:"date" validate:"required,isodate"`
}

// CreateBookingRequest represents the request body for booking a slot.
type CreateBookingRequest struct {
	ServiceID    string `json:"serviceId" validate:"required"`
	Date         string `json:"date" validate:"required,isodate"`
	Slot         string `json:"slot" validate:"required"`
	CustomerName string `json:"customerName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,phone10"`
}
