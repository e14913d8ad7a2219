package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"residentbook-backend-go/internal/db"
	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/models"
)

// BookingSettings tunes booking behaviour.
type BookingSettings struct {
	PageSize int
	// ReleaseSlotOnCancel resets the slot to unbooked when its booking is
	// cancelled. Off by default: a cancelled slot stays unavailable.
	ReleaseSlotOnCancel bool
}

// bookingService implements the BookingService interface.
type bookingService struct {
	bookingRepo   db.BookingRepository
	serviceRepo   db.ServiceRepository
	names         *ServiceNames
	notifier      BookingNotifier
	audit         AuditService
	logger        *zap.Logger
	settings      BookingSettings
	adminTable    *listview.Table[*models.Booking]
	residentTable *listview.Table[*models.Booking]
}

// NewBookingService creates a new BookingService instance. A nil notifier
// disables notifications.
func NewBookingService(
	br db.BookingRepository,
	sr db.ServiceRepository,
	names *ServiceNames,
	notifier BookingNotifier,
	as AuditService,
	logger *zap.Logger,
	settings BookingSettings,
) BookingService {
	return &bookingService{
		bookingRepo:   br,
		serviceRepo:   sr,
		names:         names,
		notifier:      notifier,
		audit:         as,
		logger:        logger,
		settings:      settings,
		adminTable:    AdminBookingTable(settings.PageSize),
		residentTable: ResidentBookingTable(settings.PageSize),
	}
}

func normalizeBooking(req models.CreateBookingRequest) models.CreateBookingRequest {
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.Date = strings.TrimSpace(req.Date)
	req.Slot = strings.TrimSpace(req.Slot)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	return req
}

// Book validates the request, then consumes the matching slot and stores the
// booking in one atomic write.
func (s *bookingService) Book(ctx context.Context, userID string, req models.CreateBookingRequest) (*models.Booking, error) {
	req = normalizeBooking(req)
	if err := Validate(req); err != nil {
		return nil, err
	}

	svc, err := s.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, req.ServiceID)
		}
		return nil, fmt.Errorf("failed to look up service '%s': %w", req.ServiceID, err)
	}

	booking := &models.Booking{
		UserID:       userID,
		ServiceID:    req.ServiceID,
		Date:         req.Date,
		Slot:         req.Slot,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
	}
	if _, err := s.bookingRepo.CreateWithSlot(ctx, booking); err != nil {
		if errors.Is(err, db.ErrNoFreeSlot) {
			return nil, fmt.Errorf("%w: %s on %s", ErrSlotUnavailable, req.Slot, req.Date)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ServiceName = svc.Name

	s.logger.Info("Booking created",
		zap.String("bookingId", booking.ID), zap.String("userId", userID),
		zap.String("serviceId", booking.ServiceID), zap.String("date", booking.Date), zap.String("slot", booking.Slot))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID: userID, Action: models.AuditBookingCreate,
		TargetType: models.TargetBooking, TargetID: booking.ID,
		Details: map[string]interface{}{"serviceId": booking.ServiceID, "date": booking.Date, "slot": booking.Slot},
	})
	if s.notifier != nil {
		snapshot := *booking
		go s.notifier.NotifyBookingCreated(context.WithoutCancel(ctx), &snapshot)
	}
	return booking, nil
}

func (s *bookingService) load(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return nil, fmt.Errorf("failed to get booking '%s': %w", bookingID, err)
	}
	if !actor.IsAdmin() && booking.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return booking, nil
}

// Get returns one booking with its service name. Residents may only read
// their own bookings.
func (s *bookingService) Get(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	booking, err := s.load(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	booking.ServiceName = s.names.Name(ctx, booking.ServiceID)
	return booking, nil
}

func (s *bookingService) ListMine(ctx context.Context, userID string, view listview.View) (listview.Result[*models.Booking], error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return listview.Result[*models.Booking]{}, fmt.Errorf("failed to list bookings for user '%s': %w", userID, err)
	}
	return s.derive(ctx, s.residentTable, bookings, view)
}

func (s *bookingService) ListAll(ctx context.Context, view listview.View) (listview.Result[*models.Booking], error) {
	bookings, err := s.bookingRepo.ListAll(ctx)
	if err != nil {
		return listview.Result[*models.Booking]{}, fmt.Errorf("failed to list bookings: %w", err)
	}
	return s.derive(ctx, s.adminTable, bookings, view)
}

func (s *bookingService) derive(ctx context.Context, table *listview.Table[*models.Booking], bookings []*models.Booking, view listview.View) (listview.Result[*models.Booking], error) {
	s.names.Fill(ctx, bookings)
	res, err := table.Derive(bookings, view)
	if err != nil {
		return listview.Result[*models.Booking]{}, viewError(err)
	}
	return res, nil
}

// Cancel deletes a booking. Residents may cancel their own bookings, admins
// any booking.
func (s *bookingService) Cancel(ctx context.Context, actor models.Actor, bookingID string) error {
	booking, err := s.load(ctx, actor, bookingID)
	if err != nil {
		return err
	}
	if err := s.bookingRepo.Delete(ctx, bookingID, s.settings.ReleaseSlotOnCancel); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return fmt.Errorf("failed to cancel booking '%s': %w", bookingID, err)
	}

	s.logger.Info("Booking cancelled",
		zap.String("bookingId", bookingID), zap.String("actorId", actor.UserID),
		zap.Bool("slotReleased", s.settings.ReleaseSlotOnCancel))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID: actor.UserID, Action: models.AuditBookingCancel,
		TargetType: models.TargetBooking, TargetID: bookingID,
		Details: map[string]interface{}{"slotReleased": s.settings.ReleaseSlotOnCancel},
	})
	if s.notifier != nil {
		booking.ServiceName = s.names.Name(ctx, booking.ServiceID)
		go s.notifier.NotifyBookingCancelled(context.WithoutCancel(ctx), booking)
	}
	return nil
}
