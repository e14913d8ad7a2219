package db

import (
	"context"
	"errors"

	"residentbook-backend-go/internal/models"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when a create would duplicate a document.
	ErrAlreadyExists = errors.New("document already exists")
	// ErrNoFreeSlot is returned when no unbooked slot matches a booking at commit time.
	ErrNoFreeSlot = errors.New("no unbooked slot matches")
)

// ServiceRepository defines storage operations for the services collection.
type ServiceRepository interface {
	Create(ctx context.Context, svc *models.Service) (string, error)
	GetByID(ctx context.Context, serviceID string) (*models.Service, error)
	List(ctx context.Context) ([]*models.Service, error)
	Delete(ctx context.Context, serviceID string) error
}

// SlotRepository defines storage operations for the time_slots collection.
type SlotRepository interface {
	// CreateUnique inserts slot unless a slot with the same service, date and
	// label exists, in which case it returns ErrAlreadyExists.
	CreateUnique(ctx context.Context, slot *models.Slot) (string, error)
	GetByID(ctx context.Context, slotID string) (*models.Slot, error)
	// ListAvailable returns unbooked slots of a service day, in no particular order.
	ListAvailable(ctx context.Context, serviceID, date string) ([]*models.Slot, error)
	ListByServiceDate(ctx context.Context, serviceID, date string) ([]*models.Slot, error)
	Delete(ctx context.Context, slotID string) error
}

// BookingRepository defines storage operations for the bookings collection.
type BookingRepository interface {
	// CreateWithSlot marks a matching unbooked slot as booked and inserts the
	// booking in one transaction. It returns ErrNoFreeSlot when none matches.
	CreateWithSlot(ctx context.Context, booking *models.Booking) (string, error)
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Booking, error)
	ListAll(ctx context.Context) ([]*models.Booking, error)
	// Delete removes a booking. With releaseSlot the matching booked slot is
	// reset to unbooked in the same transaction.
	Delete(ctx context.Context, bookingID string, releaseSlot bool) error
}

// UserRepository defines storage operations for the users collection.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}
