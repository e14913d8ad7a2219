package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/models"
)

const (
	testToken    = "tok-u1"
	testPassword = "secret1"
)

// fakeAPI serves the subset of the API the App uses, backed by a map.
type fakeAPI struct {
	mu         sync.Mutex
	bookings   map[string]*models.Booking
	nextID     int
	logouts    int
	lastSearch string
	revoked    bool
}

func (f *fakeAPI) counters() (logouts int, lastSearch string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logouts, f.lastSearch
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		revoked := f.revoked
		f.mu.Unlock()
		if revoked || r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var req models.SignupRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email == "taken@example.com" {
			writeJSON(w, http.StatusConflict, errorBody{Error: "Email already registered"})
			return
		}
		writeJSON(w, http.StatusCreated, models.User{ID: "u1", Email: req.Email, Role: req.Role})
	})
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != testPassword {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, models.Session{
			UserID: "u1", Email: req.Email, Role: models.RoleResident,
			IDToken: testToken, RefreshToken: "refresh", ExpiresIn: 3600,
		})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", f.authed(func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.logouts++
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/v1/services", f.authed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"services": []*models.Service{{ID: "s1", Name: "Tennis"}}})
	}))
	mux.HandleFunc("GET /api/v1/slots/available", f.authed(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		writeJSON(w, http.StatusOK, map[string]any{"slots": []*models.Slot{
			{ID: "x1", ServiceID: q.Get("serviceId"), Date: q.Get("date"), Slot: "9:00 AM - 10:00 AM"},
		}})
	}))
	mux.HandleFunc("POST /api/v1/bookings", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateBookingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch {
		case len(req.Phone) != 10:
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation failed", Fields: map[string]string{"phone": "must be exactly 10 digits"}})
			return
		case req.Slot == "taken":
			writeJSON(w, http.StatusConflict, errorBody{Error: "Slot is not available", Details: "already booked"})
			return
		}
		f.mu.Lock()
		f.nextID++
		booking := &models.Booking{
			ID: fmt.Sprintf("b%d", f.nextID), UserID: "u1", ServiceID: req.ServiceID, ServiceName: "Tennis",
			Date: req.Date, Slot: req.Slot, CustomerName: req.CustomerName, Email: req.Email, Phone: req.Phone,
		}
		f.bookings[booking.ID] = booking
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, booking)
	}))
	mux.HandleFunc("GET /api/v1/bookings", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastSearch = r.URL.Query().Get("search")
		items := make([]*models.Booking, 0, len(f.bookings))
		for _, b := range f.bookings {
			items = append(items, b)
		}
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, listview.Result[*models.Booking]{Items: items, Page: 1, PageSize: 5, TotalPages: 1, Total: len(items)})
	}))
	mux.HandleFunc("GET /api/v1/bookings/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		b, ok := f.bookings[r.PathValue("id")]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Booking not found"})
			return
		}
		writeJSON(w, http.StatusOK, b)
	}))
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.bookings[r.PathValue("id")]; !ok {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Booking not found"})
			return
		}
		delete(f.bookings, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	}))
	return mux
}

type appFixture struct {
	api      *fakeAPI
	app      *App
	sessions *SessionStore
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	api := &fakeAPI{bookings: make(map[string]*models.Booking)}
	srv := httptest.NewServer(api.routes())
	t.Cleanup(srv.Close)

	sessions := NewSessionStore(filepath.Join(t.TempDir(), sessionFileName))
	app := NewApp(New(srv.URL+"/", srv.Client()), NewStore(State{}), sessions, zap.NewNop())
	return &appFixture{api: api, app: app, sessions: sessions}
}

func (f *appFixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.app.Login(context.Background(), "ann@example.com", testPassword))
}

func bookingRequest(slot string) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ServiceID: "s1", Date: "2025-06-01", Slot: slot,
		CustomerName: "Ann Lee", Email: "ann@example.com", Phone: "5551234567",
	}
}

func TestApp_LoginPersistsSession(t *testing.T) {
	f := newAppFixture(t)

	f.login(t)

	state := f.app.Store().State()
	require.True(t, state.LoggedIn())
	assert.Equal(t, models.RoleResident, state.Session.Role)
	assert.Equal(t, testToken, f.sessions.Restore().IDToken)

	// A fresh App over the same session file starts signed in.
	restored := NewApp(f.app.api, NewStore(State{}), f.sessions, zap.NewNop())
	assert.True(t, restored.Restore())
	assert.Equal(t, "u1", restored.Store().State().Session.UserID)
}

func TestApp_LoginFailure(t *testing.T) {
	f := newAppFixture(t)

	err := f.app.Login(context.Background(), "ann@example.com", "wrong")

	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	state := f.app.Store().State()
	assert.False(t, state.LoggedIn())
	assert.False(t, state.Loading)
	assert.ErrorContains(t, state.Err, "Invalid email or password")
	assert.Nil(t, f.sessions.Restore())
}

func TestApp_SignupSignsIn(t *testing.T) {
	f := newAppFixture(t)

	err := f.app.Signup(context.Background(), models.SignupRequest{Email: "new@example.com", Password: testPassword, Role: models.RoleResident})
	require.NoError(t, err)
	assert.True(t, f.app.Store().State().LoggedIn())

	err = f.app.Signup(context.Background(), models.SignupRequest{Email: "taken@example.com", Password: testPassword, Role: models.RoleResident})
	assert.True(t, IsStatus(err, http.StatusConflict))
}

func TestApp_RequiresSession(t *testing.T) {
	f := newAppFixture(t)

	assert.ErrorIs(t, f.app.LoadServices(context.Background()), ErrNotLoggedIn)
	assert.ErrorIs(t, f.app.Store().State().Err, ErrNotLoggedIn)
}

func TestApp_BookListCancel(t *testing.T) {
	f := newAppFixture(t)
	f.login(t)
	ctx := context.Background()

	require.NoError(t, f.app.LoadServices(ctx))
	assert.Equal(t, "Tennis", f.app.Store().State().Services[0].Name)

	require.NoError(t, f.app.LoadAvailable(ctx, models.AvailabilityQuery{ServiceID: "s1", Date: "2025-06-01"}))
	require.Len(t, f.app.Store().State().Slots, 1)

	require.NoError(t, f.app.Book(ctx, bookingRequest("9:00 AM - 10:00 AM")))
	state := f.app.Store().State()
	require.NotNil(t, state.Booking)
	bookingID := state.Booking.ID
	assert.True(t, state.Slots[0].IsBooked)

	res, err := f.app.LoadBookings(ctx, listview.View{Search: "tennis"}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	_, search := f.api.counters()
	assert.Equal(t, "tennis", search)

	require.NoError(t, f.app.LoadBooking(ctx, bookingID))
	assert.Equal(t, "Ann Lee", f.app.Store().State().Booking.CustomerName)

	require.NoError(t, f.app.CancelBooking(ctx, bookingID))
	state = f.app.Store().State()
	assert.Empty(t, state.Bookings)
	assert.Nil(t, state.Booking)

	err = f.app.CancelBooking(ctx, bookingID)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestApp_BookFailuresLeaveDataUnchanged(t *testing.T) {
	f := newAppFixture(t)
	f.login(t)
	ctx := context.Background()
	require.NoError(t, f.app.Book(ctx, bookingRequest("9:00 AM - 10:00 AM")))
	before := f.app.Store().State().Bookings

	err := f.app.Book(ctx, bookingRequest("taken"))
	require.True(t, IsStatus(err, http.StatusConflict))
	assert.Equal(t, before, f.app.Store().State().Bookings)

	bad := bookingRequest("10:00 AM - 11:00 AM")
	bad.Phone = "123"
	err = f.app.Book(ctx, bad)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "must be exactly 10 digits", apiErr.Fields["phone"])
	assert.Contains(t, apiErr.Error(), "phone must be exactly 10 digits")
	assert.Equal(t, before, f.app.Store().State().Bookings)
}

func TestApp_RejectedTokenSignsOut(t *testing.T) {
	f := newAppFixture(t)
	f.login(t)
	f.api.mu.Lock()
	f.api.revoked = true
	f.api.mu.Unlock()

	err := f.app.LoadServices(context.Background())

	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	state := f.app.Store().State()
	assert.False(t, state.LoggedIn())
	assert.Error(t, state.Err)
	assert.Nil(t, f.sessions.Restore())
}

func TestApp_Logout(t *testing.T) {
	f := newAppFixture(t)
	f.login(t)

	require.NoError(t, f.app.Logout(context.Background()))

	logouts, _ := f.api.counters()
	assert.Equal(t, 1, logouts)
	assert.False(t, f.app.Store().State().LoggedIn())
	assert.Nil(t, f.sessions.Restore())
	assert.NoError(t, f.app.Logout(context.Background()), "logging out twice is a no-op")
	logouts, _ = f.api.counters()
	assert.Equal(t, 1, logouts)
}
