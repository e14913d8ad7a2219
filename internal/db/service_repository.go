package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"residentbook-backend-go/internal/models"
)

const servicesCollection = "services"

type firestoreServiceRepository struct {
	client *firestore.Client
}

// NewFirestoreServiceRepository creates a ServiceRepository backed by Firestore.
func NewFirestoreServiceRepository(client *firestore.Client) ServiceRepository {
	return &firestoreServiceRepository{client: client}
}

// Create adds a service with an auto-generated ID and sets svc.ID.
func (r *firestoreServiceRepository) Create(ctx context.Context, svc *models.Service) (string, error) {
	docRef := r.client.Collection(servicesCollection).NewDoc()
	svc.ID = docRef.ID
	if _, err := docRef.Create(ctx, svc); err != nil {
		return "", fmt.Errorf("failed to create service: %w", err)
	}
	return docRef.ID, nil
}

func (r *firestoreServiceRepository) GetByID(ctx context.Context, serviceID string) (*models.Service, error) {
	if serviceID == "" {
		return nil, errors.New("serviceID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(servicesCollection).Doc(serviceID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("service with ID '%s' not found: %w", serviceID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get service with ID '%s': %w", serviceID, err)
	}
	var svc models.Service
	if err := docSnap.DataTo(&svc); err != nil {
		return nil, fmt.Errorf("failed to decode service data for ID '%s': %w", serviceID, err)
	}
	svc.ID = docSnap.Ref.ID
	return &svc, nil
}

// List returns every service. Ordering is left to the caller.
func (r *firestoreServiceRepository) List(ctx context.Context) ([]*models.Service, error) {
	iter := r.client.Collection(servicesCollection).Documents(ctx)
	defer iter.Stop()

	services := []*models.Service{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate services: %w", err)
		}
		var svc models.Service
		if err := doc.DataTo(&svc); err != nil {
			return nil, fmt.Errorf("failed to decode service data (ID: %s): %w", doc.Ref.ID, err)
		}
		svc.ID = doc.Ref.ID
		services = append(services, &svc)
	}
	return services, nil
}

// Delete removes a service. Slots and bookings that reference it are kept.
func (r *firestoreServiceRepository) Delete(ctx context.Context, serviceID string) error {
	if serviceID == "" {
		return errors.New("serviceID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(servicesCollection).Doc(serviceID).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("service with ID '%s' not found for deletion: %w", serviceID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete service with ID '%s': %w", serviceID, err)
	}
	return nil
}
