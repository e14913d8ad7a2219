package client

import (
	"slices"

	"residentbook-backend-go/internal/models"
)

// State is a snapshot of everything the client knows. Treat it as
// immutable: Reduce always returns fresh slices.
type State struct {
	Session  *models.Session
	Services []*models.Service
	Slots    []*models.Slot
	Bookings []*models.Booking
	Booking  *models.Booking // last created or opened booking
	Loading  bool
	Err      error
}

// LoggedIn reports whether a session is present.
func (s State) LoggedIn() bool { return s.Session != nil }

// Action is a state change request handled by Reduce.
type Action interface {
	action()
}

type (
	FetchStarted     struct{}
	ServicesLoaded   struct{ Services []*models.Service }
	ServiceAdded     struct{ Service *models.Service }
	ServiceDeleted   struct{ ID string }
	SlotsLoaded      struct{ Slots []*models.Slot }
	SlotsAdded       struct{ Slots []*models.Slot }
	SlotDeleted      struct{ ID string }
	BookingsLoaded   struct{ Bookings []*models.Booking }
	BookingCreated   struct{ Booking *models.Booking }
	BookingLoaded    struct{ Booking *models.Booking }
	BookingCancelled struct{ ID string }
	LoggedIn         struct{ Session *models.Session }
	LoggedOut        struct{}
	Failed           struct{ Err error }
)

func (FetchStarted) action() {}
func (ServicesLoaded) action() {}
func (ServiceAdded) action() {}
func (ServiceDeleted) action() {}
func (SlotsLoaded) action() {}
func (SlotsAdded) action() {}
func (SlotDeleted) action() {}
func (BookingsLoaded) action() {}
func (BookingCreated) action() {}
func (BookingLoaded) action() {}
func (BookingCancelled) action() {}
func (LoggedIn) action() {}
func (LoggedOut) action() {}
func (Failed) action() {}

// Reduce returns the state that results from applying a to s. It never
// mutates s or any slice reachable from it.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FetchStarted:
		s.Loading = true
		s.Err = nil
		return s
	case Failed:
		s.Loading = false
		s.Err = a.Err
		return s
	case LoggedOut:
		return State{}
	}

	s.Loading = false
	s.Err = nil

	switch a := a.(type) {
	case LoggedIn:
		s.Session = a.Session
	case ServicesLoaded:
		s.Services = slices.Clone(a.Services)
	case ServiceAdded:
		s.Services = append(slices.Clone(s.Services), a.Service)
	case ServiceDeleted:
		s.Services = without(s.Services, func(svc *models.Service) bool { return svc.ID == a.ID })
	case SlotsLoaded:
		s.Slots = slices.Clone(a.Slots)
	case SlotsAdded:
		s.Slots = append(slices.Clone(s.Slots), a.Slots...)
	case SlotDeleted:
		s.Slots = without(s.Slots, func(slot *models.Slot) bool { return slot.ID == a.ID })
	case BookingsLoaded:
		s.Bookings = slices.Clone(a.Bookings)
	case BookingCreated:
		s.Booking = a.Booking
		s.Bookings = append(slices.Clone(s.Bookings), a.Booking)
		s.Slots = markBooked(s.Slots, a.Booking)
	case BookingLoaded:
		s.Booking = a.Booking
	case BookingCancelled:
		s.Bookings = without(s.Bookings, func(b *models.Booking) bool { return b.ID == a.ID })
		if s.Booking != nil && s.Booking.ID == a.ID {
			s.Booking = nil
		}
	}
	return s
}

func without[T any](items []T, drop func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !drop(item) {
			out = append(out, item)
		}
	}
	return out
}

// markBooked copies slots, replacing the slot the booking consumed with a
// booked copy.
func markBooked(slots []*models.Slot, b *models.Booking) []*models.Slot {
	out := make([]*models.Slot, len(slots))
	for i, slot := range slots {
		if slot.ServiceID == b.ServiceID && slot.Date == b.Date && slot.Slot == b.Slot {
			booked := *slot
			booked.IsBooked = true
			slot = &booked
		}
		out[i] = slot
	}
	return out
}
