package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"residentbook-backend-go/internal/models"
)

const slotsCollection = "time_slots"

type firestoreSlotRepository struct {
	client *firestore.Client
}

// NewFirestoreSlotRepository creates a SlotRepository backed by Firestore.
func NewFirestoreSlotRepository(client *firestore.Client) SlotRepository {
	return &firestoreSlotRepository{client: client}
}

// SlotDocID derives the document ID of a slot from its service, date and
// label, so two creators of the same slot collide on one document.
func SlotDocID(serviceID, date, label string) string {
	sum := sha256.Sum256([]byte(serviceID + "|" + date + "|" + label))
	return hex.EncodeToString(sum[:16])
}

// slotQuery matches slots by service, date and label.
func slotQuery(client *firestore.Client, serviceID, date, label string) firestore.Query {
	return client.Collection(slotsCollection).
		Where("service_id", "==", serviceID).
		Where("date", "==", date).
		Where("slot", "==", label)
}

// CreateUnique checks for an existing slot and writes the new one in a single
// transaction. The query catches slots stored under random IDs; the Create on
// the derived ID catches a concurrent creator.
func (r *firestoreSlotRepository) CreateUnique(ctx context.Context, slot *models.Slot) (string, error) {
	docRef := r.client.Collection(slotsCollection).Doc(SlotDocID(slot.ServiceID, slot.Date, slot.Slot))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(slotQuery(r.client, slot.ServiceID, slot.Date, slot.Slot).Limit(1)).GetAll()
		if err != nil {
			return fmt.Errorf("failed to query existing slots: %w", err)
		}
		if len(existing) > 0 {
			return ErrAlreadyExists
		}
		return tx.Create(docRef, slot)
	}, firestore.MaxAttempts(txMaxAttempts))
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) || status.Code(err) == codes.AlreadyExists {
			return "", fmt.Errorf("slot %q on %s for service '%s': %w", slot.Slot, slot.Date, slot.ServiceID, ErrAlreadyExists)
		}
		return "", fmt.Errorf("failed to create slot: %w", err)
	}
	slot.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreSlotRepository) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	if slotID == "" {
		return nil, errors.New("slotID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(slotsCollection).Doc(slotID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("slot with ID '%s' not found: %w", slotID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get slot with ID '%s': %w", slotID, err)
	}
	var slot models.Slot
	if err := docSnap.DataTo(&slot); err != nil {
		return nil, fmt.Errorf("failed to decode slot data for ID '%s': %w", slotID, err)
	}
	slot.ID = docSnap.Ref.ID
	return &slot, nil
}

func (r *firestoreSlotRepository) ListAvailable(ctx context.Context, serviceID, date string) ([]*models.Slot, error) {
	query := r.client.Collection(slotsCollection).
		Where("service_id", "==", serviceID).
		Where("date", "==", date).
		Where("isBooked", "==", false)
	return collectSlots(query.Documents(ctx))
}

func (r *firestoreSlotRepository) ListByServiceDate(ctx context.Context, serviceID, date string) ([]*models.Slot, error) {
	query := r.client.Collection(slotsCollection).
		Where("service_id", "==", serviceID).
		Where("date", "==", date)
	return collectSlots(query.Documents(ctx))
}

func collectSlots(iter *firestore.DocumentIterator) ([]*models.Slot, error) {
	defer iter.Stop()

	slots := []*models.Slot{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate slots: %w", err)
		}
		var slot models.Slot
		if err := doc.DataTo(&slot); err != nil {
			return nil, fmt.Errorf("failed to decode slot data (ID: %s): %w", doc.Ref.ID, err)
		}
		slot.ID = doc.Ref.ID
		slots = append(slots, &slot)
	}
	return slots, nil
}

// Delete removes a slot whether or not it is booked. Bookings are untouched.
func (r *firestoreSlotRepository) Delete(ctx context.Context, slotID string) error {
	if slotID == "" {
		return errors.New("slotID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(slotsCollection).Doc(slotID).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("slot with ID '%s' not found for deletion: %w", slotID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete slot with ID '%s': %w", slotID, err)
	}
	return nil
}
