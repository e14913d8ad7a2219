package core

import (
	"context"

	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/models"
)

// CatalogService defines operations on the service catalog.
type CatalogService interface {
	List(ctx context.Context) ([]*models.Service, error)
	Get(ctx context.Context, serviceID string) (*models.Service, error)
	Create(ctx context.Context, actorID string, req models.CreateServiceRequest) (*models.Service, error)
	Delete(ctx context.Context, actorID, serviceID string) error
}

// SlotService defines slot generation, availability and admin slot management.
type SlotService interface {
	// Candidates returns the default labels an admin picks from.
	Candidates() []string
	// Available returns the unbooked slots of a service day, earliest first.
	Available(ctx context.Context, q models.AvailabilityQuery) ([]*models.Slot, error)
	// ListForDay returns every slot of a service day as a derived page.
	ListForDay(ctx context.Context, q models.AvailabilityQuery, view listview.View) (listview.Result[*models.Slot], error)
	Create(ctx context.Context, actorID string, req models.CreateSlotRequest) (*models.Slot, error)
	GenerateDay(ctx context.Context, actorID string, req models.GenerateSlotsRequest) (*models.GenerateSlotsResult, error)
	Delete(ctx context.Context, actorID, slotID string) error
}

// BookingService defines booking, lookup, listing and cancellation.
type BookingService interface {
	Book(ctx context.Context, userID string, req models.CreateBookingRequest) (*models.Booking, error)
	Get(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	ListMine(ctx context.Context, userID string, view listview.View) (listview.Result[*models.Booking], error)
	ListAll(ctx context.Context, view listview.View) (listview.Result[*models.Booking], error)
	Cancel(ctx context.Context, actor models.Actor, bookingID string) error
}

// UserService defines account and role operations.
type UserService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	Logout(ctx context.Context, userID string) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// Role returns the user's role, served from cache when possible.
	Role(ctx context.Context, userID string) (string, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// IdentityProvider is the external account system.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (*models.AuthTokens, error)
	SignOut(ctx context.Context, userID string) error
	VerifyToken(ctx context.Context, idToken string) (*models.TokenClaims, error)
}

// BookingNotifier is told about booking changes after they are committed.
type BookingNotifier interface {
	NotifyBookingCreated(ctx context.Context, booking *models.Booking)
	NotifyBookingCancelled(ctx context.Context, booking *models.Booking)
}
