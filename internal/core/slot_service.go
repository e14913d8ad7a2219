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

// slotService implements the SlotService interface.
type slotService struct {
	slotRepo    db.SlotRepository
	serviceRepo db.ServiceRepository
	audit       AuditService
	logger      *zap.Logger
	window      SlotWindow
	table       *listview.Table[*models.Slot]
}

// NewSlotService creates a new SlotService instance.
func NewSlotService(sr db.SlotRepository, svcRepo db.ServiceRepository, as AuditService, logger *zap.Logger, pageSize int) SlotService {
	return &slotService{
		slotRepo:    sr,
		serviceRepo: svcRepo,
		audit:       as,
		logger:      logger,
		window:      DefaultWindow,
		table:       AdminSlotTable(pageSize),
	}
}

func (s *slotService) Candidates() []string {
	return GenerateSlots(s.window)
}

// Available runs a fresh query on every call; the result replaces whatever
// the caller held before.
func (s *slotService) Available(ctx context.Context, q models.AvailabilityQuery) ([]*models.Slot, error) {
	if err := Validate(q); err != nil {
		return nil, err
	}
	slots, err := s.slotRepo.ListAvailable(ctx, q.ServiceID, q.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to query available slots: %w", err)
	}
	SortSlots(slots)
	return slots, nil
}

func (s *slotService) ListForDay(ctx context.Context, q models.AvailabilityQuery, view listview.View) (listview.Result[*models.Slot], error) {
	if err := Validate(q); err != nil {
		return listview.Result[*models.Slot]{}, err
	}
	slots, err := s.slotRepo.ListByServiceDate(ctx, q.ServiceID, q.Date)
	if err != nil {
		return listview.Result[*models.Slot]{}, fmt.Errorf("failed to list slots: %w", err)
	}
	res, err := s.table.Derive(slots, view)
	if err != nil {
		return listview.Result[*models.Slot]{}, viewError(err)
	}
	return res, nil
}

// resolveLabel returns the slot label of req, building it from the start and
// end times when no label was given.
func resolveLabel(req models.CreateSlotRequest) (string, error) {
	if label := strings.TrimSpace(req.Slot); label != "" {
		return label, nil
	}
	if req.StartTime == "" || req.EndTime == "" {
		return "", NewValidationError("slot", "is required unless startTime and endTime are given")
	}
	return LabelFromTimes(req.StartTime, req.EndTime)
}

func (s *slotService) requireService(ctx context.Context, serviceID string) error {
	if _, err := s.serviceRepo.GetByID(ctx, serviceID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
		}
		return fmt.Errorf("failed to look up service '%s': %w", serviceID, err)
	}
	return nil
}

func (s *slotService) Create(ctx context.Context, actorID string, req models.CreateSlotRequest) (*models.Slot, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	label, err := resolveLabel(req)
	if err != nil {
		return nil, err
	}
	if err := s.requireService(ctx, req.ServiceID); err != nil {
		return nil, err
	}

	slot := &models.Slot{ServiceID: req.ServiceID, Date: req.Date, Slot: label, IsBooked: false}
	if _, err := s.slotRepo.CreateUnique(ctx, slot); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s on %s", ErrSlotAlreadyExists, label, req.Date)
		}
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}

	s.logger.Info("Slot created",
		zap.String("slotId", slot.ID), zap.String("serviceId", slot.ServiceID),
		zap.String("date", slot.Date), zap.String("slot", slot.Slot))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID: actorID, Action: models.AuditSlotCreate,
		TargetType: models.TargetSlot, TargetID: slot.ID,
		Details: map[string]interface{}{"serviceId": slot.ServiceID, "date": slot.Date, "slot": slot.Slot},
	})
	return slot, nil
}

// GenerateDay inserts every default candidate for a service day, skipping
// labels that already exist.
func (s *slotService) GenerateDay(ctx context.Context, actorID string, req models.GenerateSlotsRequest) (*models.GenerateSlotsResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireService(ctx, req.ServiceID); err != nil {
		return nil, err
	}

	result := &models.GenerateSlotsResult{
		ServiceID: req.ServiceID,
		Date:      req.Date,
		Created:   []*models.Slot{},
		Skipped:   []string{},
	}
	for _, label := range s.Candidates() {
		slot := &models.Slot{ServiceID: req.ServiceID, Date: req.Date, Slot: label}
		if _, err := s.slotRepo.CreateUnique(ctx, slot); err != nil {
			if errors.Is(err, db.ErrAlreadyExists) {
				result.Skipped = append(result.Skipped, label)
				continue
			}
			return nil, fmt.Errorf("failed to create slot %q: %w", label, err)
		}
		result.Created = append(result.Created, slot)
	}

	s.logger.Info("Slots generated",
		zap.String("serviceId", req.ServiceID), zap.String("date", req.Date),
		zap.Int("created", len(result.Created)), zap.Int("skipped", len(result.Skipped)))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID: actorID, Action: models.AuditSlotCreate,
		TargetType: models.TargetService, TargetID: req.ServiceID,
		Details: map[string]interface{}{"date": req.Date, "created": len(result.Created)},
	})
	return result, nil
}

// Delete removes a slot even when booked. Bookings referencing it remain.
func (s *slotService) Delete(ctx context.Context, actorID, slotID string) error {
	if err := s.slotRepo.Delete(ctx, slotID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
		}
		return fmt.Errorf("failed to delete slot '%s': %w", slotID, err)
	}
	s.logger.Info("Slot deleted", zap.String("slotId", slotID))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID: actorID, Action: models.AuditSlotDelete,
		TargetType: models.TargetSlot, TargetID: slotID,
	})
	return nil
}

// viewError turns a bad list view parameter into a validation error.
func viewError(err error) error {
	switch {
	case errors.Is(err, listview.ErrUnknownColumn):
		return NewValidationError("sort", err.Error())
	case errors.Is(err, listview.ErrInvalidOrder):
		return NewValidationError("order", err.Error())
	default:
		return err
	}
}
