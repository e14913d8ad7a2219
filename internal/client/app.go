package client

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/models"
)

// ErrNotLoggedIn is returned by operations that need a session when none is held.
var ErrNotLoggedIn = errors.New("not logged in")

// App runs SDK operations: each issues the API call and dispatches the result
// to the store, or Failed when the call fails. Failures leave data untouched.
type App struct {
	api      *Client
	store    *Store
	sessions *SessionStore
	logger   *zap.Logger
}

func NewApp(api *Client, store *Store, sessions *SessionStore, logger *zap.Logger) *App {
	return &App{api: api, store: store, sessions: sessions, logger: logger}
}

func (a *App) Store() *Store { return a.store }

// Restore rehydrates a saved session. It reports whether one was found.
func (a *App) Restore() bool {
	session := a.sessions.Restore()
	if session == nil {
		return false
	}
	a.api.SetToken(session.IDToken)
	a.store.Dispatch(LoggedIn{Session: session})
	return true
}

// finish dispatches ok, or Failed for err. A 401 means the server no longer
// accepts the token, so the local session is dropped first.
func (a *App) finish(err error, ok Action) error {
	if err == nil {
		a.store.Dispatch(ok)
		return nil
	}
	if IsStatus(err, http.StatusUnauthorized) && a.store.State().LoggedIn() {
		a.logger.Info("Session rejected by server, signing out locally")
		a.dropSession()
	}
	a.store.Dispatch(Failed{Err: err})
	return err
}

func (a *App) dropSession() {
	a.api.SetToken("")
	if err := a.sessions.Clear(); err != nil {
		a.logger.Warn("Failed to remove saved session", zap.Error(err))
	}
	a.store.Dispatch(LoggedOut{})
}

func (a *App) requireSession() error {
	if a.store.State().LoggedIn() {
		return nil
	}
	a.store.Dispatch(Failed{Err: ErrNotLoggedIn})
	return ErrNotLoggedIn
}

// Signup creates an account and signs straight into it.
func (a *App) Signup(ctx context.Context, req models.SignupRequest) error {
	a.store.Dispatch(FetchStarted{})
	if _, err := a.api.Signup(ctx, req); err != nil {
		return a.finish(err, nil)
	}
	return a.Login(ctx, req.Email, req.Password)
}

func (a *App) Login(ctx context.Context, email, password string) error {
	a.store.Dispatch(FetchStarted{})
	session, err := a.api.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return a.finish(err, nil)
	}
	a.api.SetToken(session.IDToken)
	if err := a.sessions.Save(session); err != nil {
		a.logger.Warn("Session not persisted", zap.String("path", a.sessions.Path()), zap.Error(err))
	}
	return a.finish(nil, LoggedIn{Session: session})
}

// Logout always ends the local session, even when the server call fails.
func (a *App) Logout(ctx context.Context) error {
	if !a.store.State().LoggedIn() {
		return nil
	}
	err := a.api.Logout(ctx)
	if err != nil {
		a.logger.Warn("Remote sign-out failed", zap.Error(err))
	}
	a.dropSession()
	return nil
}

func (a *App) LoadServices(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.store.Dispatch(FetchStarted{})
	services, err := a.api.ListServices(ctx)
	return a.finish(err, ServicesLoaded{Services: services})
}

func (a *App) AddService(ctx context.Context, req models.CreateServiceRequest) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.store.Dispatch(FetchStarted{})
	svc, err := a.api.CreateService(ctx, req)
	return a.finish(err, ServiceAdded{Service: svc})
}

func (a *App) DeleteService(ctx context.Context, serviceID string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.store.Dispatch(FetchStarted{})
	err := a.api.DeleteService(ctx, serviceID)
	return a.finish(err, ServiceDeleted{ID: serviceID})
}

// Candidates returns the default slot labels of a day. The store is untouched.
func (a *App) Candidates(ctx context.Context) ([]string, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}
	return a.api.Candidates(ctx)
}

// LoadAvailable fills Slots with the free slots of one service day.
func (a *App) LoadAvailable(ctx context.Context, q models.AvailabilityQuery) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.store.Dispatch(FetchStarted{})
	slots, err := a.api.AvailableSlots(ctx, q)
	return a.finish(err, SlotsLoaded{Slots: slots})
}

// LoadSlots fills Slots with one page of a service day's slots and returns
// the page metadata. Admin only.
func (a *App) LoadSlots(ctx context.Context, q models.AvailabilityQuery, view listview.View) (listview.Result[*models.Slot], error) {
	if err := a.requireSession(); err != nil {
		return listview.Result[*models.Slot]{}, err
	}
	a.store.Dispatch(FetchStarted{})
	res, err := a.api.ListSlots(ctx, q, view)
	return res, a.finish(err, SlotsLoaded{Slots: res.Items})
}

func (a *App) CreateSlot(ctx context.Context, req models.CreateSlotRequest) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.store.Dispatch(FetchStarted{})
	slot, err := a.api.CreateSlot(ctx, req)
	return a.finish(err, SlotsAdded{Slots: []*models.Slot{slot}})
}

func (a *App) GenerateSlots(ctx context.Context, req models.GenerateSlotsRequest) (*models.GenerateSlotsResult, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}
	a.store.Dispatch(FetchStarted{})
	res, err := a.api.GenerateSlots(ctx, req)
	if err != nil {
		return nil, a.finish(err, nil)
	}
	return res, a.finish(nil, SlotsAdded{Slots: res.Created})
}

func (a *App) DeleteSlot(ctx context.Context, slotID string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.store.Dispatch(FetchStarted{})
	err := a.api.DeleteSlot(ctx, slotID)
	return a.finish(err, SlotDeleted{ID: slotID})
}

func (a *App) Book(ctx context.Context, req models.CreateBookingRequest) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.store.Dispatch(FetchStarted{})
	booking, err := a.api.Book(ctx, req)
	return a.finish(err, BookingCreated{Booking: booking})
}

// LoadBookings fills Bookings with one page: the caller's own bookings, or
// every booking when all is set (admin only).
func (a *App) LoadBookings(ctx context.Context, view listview.View, all bool) (listview.Result[*models.Booking], error) {
	if err := a.requireSession(); err != nil {
		return listview.Result[*models.Booking]{}, err
	}
	a.store.Dispatch(FetchStarted{})
	var (
		res listview.Result[*models.Booking]
		err error
	)
	if all {
		res, err = a.api.AllBookings(ctx, view)
	} else {
		res, err = a.api.MyBookings(ctx, view)
	}
	return res, a.finish(err, BookingsLoaded{Bookings: res.Items})
}

func (a *App) LoadBooking(ctx context.Context, bookingID string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.store.Dispatch(FetchStarted{})
	booking, err := a.api.GetBooking(ctx, bookingID)
	return a.finish(err, BookingLoaded{Booking: booking})
}

func (a *App) CancelBooking(ctx context.Context, bookingID string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.store.Dispatch(FetchStarted{})
	err := a.api.CancelBooking(ctx, bookingID)
	return a.finish(err, BookingCancelled{ID: bookingID})
}
