package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/models"
)

const (
	tennisDay   = "2025-06-01"
	morningSlot = "9:00 AM - 10:00 AM"
)

type bookingFixture struct {
	store    *memStore
	audit    *fakeAudit
	notifier *fakeNotifier
	svc      BookingService
	tennis   string
}

func newBookingFixture(t *testing.T, release bool) *bookingFixture {
	t.Helper()
	store := newMemStore()
	audit := &fakeAudit{}
	notifier := newFakeNotifier()
	names := NewServiceNames(fakeServiceRepo{store}, newMemCache(), time.Minute, testLogger())
	svc := NewBookingService(fakeBookingRepo{store}, fakeServiceRepo{store}, names, notifier, audit, testLogger(),
		BookingSettings{PageSize: 5, ReleaseSlotOnCancel: release})
	return &bookingFixture{store: store, audit: audit, notifier: notifier, svc: svc, tennis: store.addService("Tennis")}
}

func (f *bookingFixture) request() models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ServiceID:    f.tennis,
		Date:         tennisDay,
		Slot:         morningSlot,
		CustomerName: "Ann Lee",
		Email:        "ann@example.com",
		Phone:        "5551234567",
	}
}

func resident(id string) models.Actor { return models.Actor{UserID: id, Role: models.RoleResident} }

func admin() models.Actor { return models.Actor{UserID: "admin-1", Role: models.RoleAdmin} }

func TestBookingService_Book_Success(t *testing.T) {
	f := newBookingFixture(t, false)
	slotID := f.store.addSlot(f.tennis, tennisDay, morningSlot, false)

	booking, err := f.svc.Book(context.Background(), "u1", f.request())

	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, "u1", booking.UserID)
	assert.Equal(t, "Tennis", booking.ServiceName)

	slot, _ := f.store.slot(slotID)
	assert.True(t, slot.IsBooked)

	notified := receive(t, f.notifier.created)
	assert.Equal(t, booking.ID, notified.ID)
	assert.Equal(t, []string{models.AuditBookingCreate}, f.audit.actions())
}

func TestBookingService_Book_TrimsInput(t *testing.T) {
	f := newBookingFixture(t, false)
	f.store.addSlot(f.tennis, tennisDay, morningSlot, false)
	req := f.request()
	req.CustomerName = "  Ann Lee "
	req.Slot = " " + morningSlot

	booking, err := f.svc.Book(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", booking.CustomerName)
}

func TestBookingService_Book_ValidationLeavesStoreUntouched(t *testing.T) {
	f := newBookingFixture(t, false)
	slotID := f.store.addSlot(f.tennis, tennisDay, morningSlot, false)

	tests := []struct {
		name   string
		mutate func(*models.CreateBookingRequest)
		field  string
	}{
		{"short phone", func(r *models.CreateBookingRequest) { r.Phone = "555123" }, "phone"},
		{"letters in phone", func(r *models.CreateBookingRequest) { r.Phone = "555123456x" }, "phone"},
		{"bad email", func(r *models.CreateBookingRequest) { r.Email = "ann-at-example" }, "email"},
		{"blank name", func(r *models.CreateBookingRequest) { r.CustomerName = "   " }, "customerName"},
		{"no slot", func(r *models.CreateBookingRequest) { r.Slot = "" }, "slot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request()
			tt.mutate(&req)

			_, err := f.svc.Book(context.Background(), "u1", req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.field)
		})
	}
	slot, _ := f.store.slot(slotID)
	assert.False(t, slot.IsBooked)
	assert.Zero(t, f.store.bookingCount())
}

func TestBookingService_Book_SlotUnavailable(t *testing.T) {
	f := newBookingFixture(t, false)
	f.store.addSlot(f.tennis, tennisDay, morningSlot, true)

	_, err := f.svc.Book(context.Background(), "u1", f.request())
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = f.svc.Book(context.Background(), "u1", models.CreateBookingRequest{
		ServiceID: f.tennis, Date: tennisDay, Slot: "1:00 PM - 2:00 PM",
		CustomerName: "Ann", Email: "ann@example.com", Phone: "5551234567",
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable, "a slot that was never created is unavailable")
	assert.Zero(t, f.store.bookingCount())
}

func TestBookingService_Book_UnknownService(t *testing.T) {
	f := newBookingFixture(t, false)
	req := f.request()
	req.ServiceID = "gone"

	_, err := f.svc.Book(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestBookingService_Book_ConcurrentSingleWinner(t *testing.T) {
	f := newBookingFixture(t, false)
	f.store.addSlot(f.tennis, tennisDay, morningSlot, false)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Book(context.Background(), "u1", f.request())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, ErrSlotUnavailable) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, f.store.bookingCount())
}

func TestBookingService_Get_Ownership(t *testing.T) {
	f := newBookingFixture(t, false)
	id := f.store.addBooking(models.Booking{UserID: "u1", ServiceID: f.tennis, Date: tennisDay, Slot: morningSlot})

	got, err := f.svc.Get(context.Background(), resident("u1"), id)
	require.NoError(t, err)
	assert.Equal(t, "Tennis", got.ServiceName)

	_, err = f.svc.Get(context.Background(), resident("u2"), id)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Get(context.Background(), admin(), id)
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), admin(), "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingService_ListMine_OnlyOwnWithNames(t *testing.T) {
	f := newBookingFixture(t, false)
	f.store.addBooking(models.Booking{UserID: "u1", ServiceID: f.tennis, Date: "2025-06-03", Slot: morningSlot})
	f.store.addBooking(models.Booking{UserID: "u1", ServiceID: "deleted-svc", Date: "2025-06-01", Slot: morningSlot})
	f.store.addBooking(models.Booking{UserID: "u2", ServiceID: f.tennis, Date: "2025-06-02", Slot: morningSlot})

	res, err := f.svc.ListMine(context.Background(), "u1", listview.View{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "2025-06-01", res.Items[0].Date, "default sort is date ascending")
	assert.Equal(t, "deleted-svc", res.Items[0].ServiceName, "missing service falls back to its ID")
	assert.Equal(t, "Tennis", res.Items[1].ServiceName)

	tennisOnly, err := f.svc.ListMine(context.Background(), "u1", listview.View{Search: "TENNIS"})
	require.NoError(t, err)
	assert.Equal(t, 1, tennisOnly.Total)
}

func TestBookingService_ListAll_SearchEmailAndPaginate(t *testing.T) {
	f := newBookingFixture(t, false)
	for i, email := range []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io", "f@y.io", "g@y.io"} {
		f.store.addBooking(models.Booking{
			UserID: "u1", ServiceID: f.tennis, Date: tennisDay, Slot: DefaultSlots()[i],
			CustomerName: "Resident", Email: email,
		})
	}

	page2, err := f.svc.ListAll(context.Background(), listview.View{Sort: "slot", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 7, page2.Total)
	assert.Equal(t, 2, page2.TotalPages)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, DefaultSlots()[5], page2.Items[0].Slot)

	yOnly, err := f.svc.ListAll(context.Background(), listview.View{Search: "@y.io", Page: 9})
	require.NoError(t, err)
	assert.Equal(t, 2, yOnly.Total)
	assert.Equal(t, 1, yOnly.Page, "page is clamped")

	_, err = f.svc.ListAll(context.Background(), listview.View{Order: "sideways"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookingService_Cancel_KeepsSlotBookedByDefault(t *testing.T) {
	f := newBookingFixture(t, false)
	slotID := f.store.addSlot(f.tennis, tennisDay, morningSlot, false)
	booking, err := f.svc.Book(context.Background(), "u1", f.request())
	require.NoError(t, err)
	receive(t, f.notifier.created)

	require.NoError(t, f.svc.Cancel(context.Background(), resident("u1"), booking.ID))

	assert.Zero(t, f.store.bookingCount())
	slot, _ := f.store.slot(slotID)
	assert.True(t, slot.IsBooked)
	assert.Equal(t, booking.ID, receive(t, f.notifier.cancelled).ID)
	assert.Equal(t, []string{models.AuditBookingCreate, models.AuditBookingCancel}, f.audit.actions())
}

func TestBookingService_Cancel_ReleasesSlotWhenEnabled(t *testing.T) {
	f := newBookingFixture(t, true)
	slotID := f.store.addSlot(f.tennis, tennisDay, morningSlot, false)
	booking, err := f.svc.Book(context.Background(), "u1", f.request())
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), admin(), booking.ID))

	slot, _ := f.store.slot(slotID)
	assert.False(t, slot.IsBooked)
	_, err = f.svc.Book(context.Background(), "u2", f.request())
	assert.NoError(t, err, "released slot can be booked again")
}

func TestBookingService_Cancel_OtherResidentForbidden(t *testing.T) {
	f := newBookingFixture(t, false)
	id := f.store.addBooking(models.Booking{UserID: "u1", ServiceID: f.tennis, Date: tennisDay, Slot: morningSlot})

	err := f.svc.Cancel(context.Background(), resident("u2"), id)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 1, f.store.bookingCount())
}

func TestBookingService_Cancel_Missing(t *testing.T) {
	f := newBookingFixture(t, false)
	assert.ErrorIs(t, f.svc.Cancel(context.Background(), admin(), "nope"), ErrBookingNotFound)
}
