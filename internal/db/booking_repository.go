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

const bookingsCollection = "bookings"

type firestoreBookingRepository struct {
	client *firestore.Client
}

// NewFirestoreBookingRepository creates a BookingRepository backed by Firestore.
func NewFirestoreBookingRepository(client *firestore.Client) BookingRepository {
	return &firestoreBookingRepository{client: client}
}

// CreateWithSlot re-reads the requested slot inside the transaction, so a
// slot booked by someone else since the caller listed it is never taken
// twice. Firestore retries the transaction on contention; the loser sees no
// free slot on retry and gets ErrNoFreeSlot.
func (r *firestoreBookingRepository) CreateWithSlot(ctx context.Context, booking *models.Booking) (string, error) {
	bookingRef := r.client.Collection(bookingsCollection).NewDoc()
	free := slotQuery(r.client, booking.ServiceID, booking.Date, booking.Slot).
		Where("isBooked", "==", false).
		Limit(1)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(free).GetAll()
		if err != nil {
			return fmt.Errorf("failed to query free slot: %w", err)
		}
		if len(docs) == 0 {
			return ErrNoFreeSlot
		}
		if err := tx.Update(docs[0].Ref, []firestore.Update{{Path: "isBooked", Value: true}}); err != nil {
			return err
		}
		return tx.Create(bookingRef, booking)
	}, firestore.MaxAttempts(txMaxAttempts))
	if err != nil {
		if errors.Is(err, ErrNoFreeSlot) {
			return "", fmt.Errorf("slot %q on %s for service '%s': %w", booking.Slot, booking.Date, booking.ServiceID, ErrNoFreeSlot)
		}
		return "", fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ID = bookingRef.ID
	return bookingRef.ID, nil
}

func (r *firestoreBookingRepository) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	if bookingID == "" {
		return nil, errors.New("bookingID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(bookingsCollection).Doc(bookingID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("booking with ID '%s' not found: %w", bookingID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking with ID '%s': %w", bookingID, err)
	}
	return decodeBooking(docSnap)
}

func (r *firestoreBookingRepository) ListByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser operation")
	}
	query := r.client.Collection(bookingsCollection).Where("user_id", "==", userID)
	return collectBookings(query.Documents(ctx))
}

func (r *firestoreBookingRepository) ListAll(ctx context.Context) ([]*models.Booking, error) {
	return collectBookings(r.client.Collection(bookingsCollection).Documents(ctx))
}

// Delete removes a booking. Without releaseSlot the slot keeps isBooked=true.
func (r *firestoreBookingRepository) Delete(ctx context.Context, bookingID string, releaseSlot bool) error {
	if bookingID == "" {
		return errors.New("bookingID cannot be empty for Delete operation")
	}
	ref := r.client.Collection(bookingsCollection).Doc(bookingID)

	if !releaseSlot {
		if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("booking with ID '%s' not found for deletion: %w", bookingID, ErrNotFound)
			}
			return fmt.Errorf("failed to delete booking with ID '%s': %w", bookingID, err)
		}
		return nil
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		booking, err := decodeBooking(snap)
		if err != nil {
			return err
		}
		booked := slotQuery(r.client, booking.ServiceID, booking.Date, booking.Slot).
			Where("isBooked", "==", true).
			Limit(1)
		docs, err := tx.Documents(booked).GetAll()
		if err != nil {
			return fmt.Errorf("failed to query booked slot: %w", err)
		}
		if len(docs) > 0 {
			if err := tx.Update(docs[0].Ref, []firestore.Update{{Path: "isBooked", Value: false}}); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	}, firestore.MaxAttempts(txMaxAttempts))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("booking with ID '%s' not found for deletion: %w", bookingID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete booking with ID '%s': %w", bookingID, err)
	}
	return nil
}

func decodeBooking(snap *firestore.DocumentSnapshot) (*models.Booking, error) {
	var booking models.Booking
	if err := snap.DataTo(&booking); err != nil {
		return nil, fmt.Errorf("failed to decode booking data for ID '%s': %w", snap.Ref.ID, err)
	}
	booking.ID = snap.Ref.ID
	return &booking, nil
}

func collectBookings(iter *firestore.DocumentIterator) ([]*models.Booking, error) {
	defer iter.Stop()

	bookings := []*models.Booking{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate bookings: %w", err)
		}
		booking, err := decodeBooking(doc)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}
