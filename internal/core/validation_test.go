package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residentbook-backend-go/internal/models"
)

func validBooking() models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ServiceID:    "svc-1",
		Date:         "2025-06-01",
		Slot:         "9:00 AM - 10:00 AM",
		CustomerName: "Dana",
		Email:        "dana@example.com",
		Phone:        "5551234567",
	}
}

func TestValidate_BookingRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CreateBookingRequest)
		field  string
	}{
		{"missing name", func(r *models.CreateBookingRequest) { r.CustomerName = "" }, "customerName"},
		{"bad email", func(r *models.CreateBookingRequest) { r.Email = "not-an-email" }, "email"},
		{"short phone", func(r *models.CreateBookingRequest) { r.Phone = "12345" }, "phone"},
		{"phone with letters", func(r *models.CreateBookingRequest) { r.Phone = "55512345ab" }, "phone"},
		{"phone with unicode digits", func(r *models.CreateBookingRequest) { r.Phone = "５５５１２３４５６７" }, "phone"},
		{"bad date", func(r *models.CreateBookingRequest) { r.Date = "06/01/2025" }, "date"},
		{"missing slot", func(r *models.CreateBookingRequest) { r.Slot = "" }, "slot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBooking()
			tt.mutate(&req)

			err := Validate(req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, vErr.Fields, tt.field)
		})
	}

	assert.NoError(t, Validate(validBooking()))
}

func TestValidate_SignupRequest(t *testing.T) {
	err := Validate(models.SignupRequest{Email: "a@b.co", Password: "12345", Role: "Guest"})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "must be at least 6 characters", vErr.Fields["password"])
	assert.Equal(t, "must be one of: Admin Resident", vErr.Fields["role"])

	assert.NoError(t, Validate(models.SignupRequest{Email: "a@b.co", Password: "123456", Role: models.RoleResident}))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"phone": "must be exactly 10 digits", "email": "is required"}}
	assert.Equal(t, "validation error: email is required; phone must be exactly 10 digits", err.Error())
}
