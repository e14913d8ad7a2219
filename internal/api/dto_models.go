package api

import "residentbook-backend-go/internal/models"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string            `json:"error"`             // A high-level error message
	Details string            `json:"details,omitempty"` // More specific details, if any
	Fields  map[string]string `json:"fields,omitempty"`  // Per-field validation messages
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CandidatesResponse lists the generated slot labels of a day.
type CandidatesResponse struct {
	Slots []string `json:"slots"`
}

// AvailableSlotsResponse is the free slots of one service day.
type AvailableSlotsResponse struct {
	ServiceID string         `json:"serviceId"`
	Date      string         `json:"date"`
	Slots     []*models.Slot `json:"slots"`
}

// ServiceListResponse wraps the service catalog.
type ServiceListResponse struct {
	Services []*models.Service `json:"services"`
}
