package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"residentbook-backend-go/internal/db"
	"residentbook-backend-go/internal/models"
	"residentbook-backend-go/pkg/cache"
)

// ServiceNames resolves service IDs to display names for booking lists,
// caching each lookup.
type ServiceNames struct {
	repo   db.ServiceRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewServiceNames creates a resolver. A nil cache disables caching.
func NewServiceNames(repo db.ServiceRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *ServiceNames {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &ServiceNames{repo: repo, cache: c, ttl: ttl, logger: logger}
}

func serviceNameKey(serviceID string) string { return "service:name:" + serviceID }

// Name returns the service's name, or the ID itself when the service is gone
// or cannot be read.
func (n *ServiceNames) Name(ctx context.Context, serviceID string) string {
	if name, err := n.cache.Get(ctx, serviceNameKey(serviceID)); err == nil {
		return name
	}
	svc, err := n.repo.GetByID(ctx, serviceID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			n.logger.Warn("Failed to resolve service name", zap.String("serviceId", serviceID), zap.Error(err))
		}
		return serviceID
	}
	n.remember(ctx, svc)
	return svc.Name
}

// Fill sets ServiceName on every booking, looking each service up once.
func (n *ServiceNames) Fill(ctx context.Context, bookings []*models.Booking) {
	seen := make(map[string]string)
	for _, b := range bookings {
		name, ok := seen[b.ServiceID]
		if !ok {
			name = n.Name(ctx, b.ServiceID)
			seen[b.ServiceID] = name
		}
		b.ServiceName = name
	}
}

func (n *ServiceNames) remember(ctx context.Context, svc *models.Service) {
	if err := n.cache.Set(ctx, serviceNameKey(svc.ID), svc.Name, n.ttl); err != nil {
		n.logger.Debug("Failed to cache service name", zap.String("serviceId", svc.ID), zap.Error(err))
	}
}

func (n *ServiceNames) forget(ctx context.Context, serviceID string) {
	if err := n.cache.Delete(ctx, serviceNameKey(serviceID)); err != nil {
		n.logger.Debug("Failed to evict service name", zap.String("serviceId", serviceID), zap.Error(err))
	}
}

// catalogService implements the CatalogService interface.
type catalogService struct {
	serviceRepo db.ServiceRepository
	names       *ServiceNames
	audit       AuditService
	logger      *zap.Logger
}

// NewCatalogService creates a new CatalogService instance.
func NewCatalogService(sr db.ServiceRepository, names *ServiceNames, as AuditService, logger *zap.Logger) CatalogService {
	return &catalogService{serviceRepo: sr, names: names, audit: as, logger: logger}
}

// List returns all services ordered by name.
func (s *catalogService) List(ctx context.Context) ([]*models.Service, error) {
	services, err := s.serviceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	slices.SortStableFunc(services, func(a, b *models.Service) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return services, nil
}

func (s *catalogService) Get(ctx context.Context, serviceID string) (*models.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
		}
		return nil, fmt.Errorf("failed to get service '%s': %w", serviceID, err)
	}
	return svc, nil
}

func (s *catalogService) Create(ctx context.Context, actorID string, req models.CreateServiceRequest) (*models.Service, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := Validate(req); err != nil {
		return nil, err
	}

	svc := &models.Service{Name: req.Name, Description: req.Description}
	if _, err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	s.names.remember(ctx, svc)

	s.logger.Info("Service created", zap.String("serviceId", svc.ID), zap.String("name", svc.Name))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID: actorID, Action: models.AuditServiceCreate,
		TargetType: models.TargetService, TargetID: svc.ID,
		Details: map[string]interface{}{"name": svc.Name},
	})
	return svc, nil
}

// Delete removes a service. Its slots and bookings stay; bookings then show
// the service ID in place of a name.
func (s *catalogService) Delete(ctx context.Context, actorID, serviceID string) error {
	if err := s.serviceRepo.Delete(ctx, serviceID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
		}
		return fmt.Errorf("failed to delete service '%s': %w", serviceID, err)
	}
	s.names.forget(ctx, serviceID)

	s.logger.Info("Service deleted", zap.String("serviceId", serviceID))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID: actorID, Action: models.AuditServiceDelete,
		TargetType: models.TargetService, TargetID: serviceID,
	})
	return nil
}
