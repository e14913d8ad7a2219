package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"residentbook-backend-go/internal/db"
	"residentbook-backend-go/internal/models"
	"residentbook-backend-go/pkg/cache"
)

// memStore backs the fake repositories. One mutex serializes every write,
// which gives the same all-or-nothing outcome as a Firestore transaction.
type memStore struct {
	mu       sync.Mutex
	seq      int
	services map[string]models.Service
	slots    map[string]models.Slot
	bookings map[string]models.Booking
	users    map[string]models.User
	reads    int
}

func newMemStore() *memStore {
	return &memStore{
		services: map[string]models.Service{},
		slots:    map[string]models.Slot{},
		bookings: map[string]models.Booking{},
		users:    map[string]models.User{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) addService(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID("svc")
	m.services[id] = models.Service{ID: id, Name: name}
	return id
}

func (m *memStore) addSlot(serviceID, date, label string, booked bool) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := db.SlotDocID(serviceID, date, label)
	m.slots[id] = models.Slot{ID: id, ServiceID: serviceID, Date: date, Slot: label, IsBooked: booked}
	return id
}

func (m *memStore) addBooking(b models.Booking) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.nextID("bk")
	m.bookings[b.ID] = b
	return b.ID
}

func (m *memStore) slot(id string) (models.Slot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	return s, ok
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memStore) findSlot(serviceID, date, label string, booked bool) (string, bool) {
	for id, s := range m.slots {
		if s.ServiceID == serviceID && s.Date == date && s.Slot == label && s.IsBooked == booked {
			return id, true
		}
	}
	return "", false
}

type fakeServiceRepo struct{ *memStore }

func (r fakeServiceRepo) Create(_ context.Context, svc *models.Service) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc.ID = r.nextID("svc")
	r.services[svc.ID] = *svc
	return svc.ID, nil
}

func (r fakeServiceRepo) GetByID(_ context.Context, id string) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	svc, ok := r.services[id]
	if !ok {
		return nil, fmt.Errorf("service %s: %w", id, db.ErrNotFound)
	}
	return &svc, nil
}

func (r fakeServiceRepo) List(context.Context) ([]*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Service{}
	for _, svc := range r.services {
		svc := svc
		out = append(out, &svc)
	}
	return out, nil
}

func (r fakeServiceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[id]; !ok {
		return fmt.Errorf("service %s: %w", id, db.ErrNotFound)
	}
	delete(r.services, id)
	return nil
}

type fakeSlotRepo struct{ *memStore }

func (r fakeSlotRepo) CreateUnique(_ context.Context, slot *models.Slot) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.ServiceID == slot.ServiceID && s.Date == slot.Date && s.Slot == slot.Slot {
			return "", fmt.Errorf("slot %s: %w", slot.Slot, db.ErrAlreadyExists)
		}
	}
	slot.ID = db.SlotDocID(slot.ServiceID, slot.Date, slot.Slot)
	r.slots[slot.ID] = *slot
	return slot.ID, nil
}

func (r fakeSlotRepo) GetByID(_ context.Context, id string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, fmt.Errorf("slot %s: %w", id, db.ErrNotFound)
	}
	return &s, nil
}

func (r fakeSlotRepo) list(serviceID, date string, onlyFree bool) []*models.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Slot{}
	for _, s := range r.slots {
		if s.ServiceID != serviceID || s.Date != date || (onlyFree && s.IsBooked) {
			continue
		}
		s := s
		out = append(out, &s)
	}
	return out
}

func (r fakeSlotRepo) ListAvailable(_ context.Context, serviceID, date string) ([]*models.Slot, error) {
	return r.list(serviceID, date, true), nil
}

func (r fakeSlotRepo) ListByServiceDate(_ context.Context, serviceID, date string) ([]*models.Slot, error) {
	return r.list(serviceID, date, false), nil
}

func (r fakeSlotRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[id]; !ok {
		return fmt.Errorf("slot %s: %w", id, db.ErrNotFound)
	}
	delete(r.slots, id)
	return nil
}

type fakeBookingRepo struct{ *memStore }

func (r fakeBookingRepo) CreateWithSlot(_ context.Context, b *models.Booking) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slotID, ok := r.findSlot(b.ServiceID, b.Date, b.Slot, false)
	if !ok {
		return "", fmt.Errorf("slot %s: %w", b.Slot, db.ErrNoFreeSlot)
	}
	s := r.slots[slotID]
	s.IsBooked = true
	r.slots[slotID] = s

	b.ID = r.nextID("bk")
	stored := *b
	stored.ServiceName = ""
	r.bookings[b.ID] = stored
	return b.ID, nil
}

func (r fakeBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, db.ErrNotFound)
	}
	return &b, nil
}

func (r fakeBookingRepo) collect(keep func(models.Booking) bool) []*models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Booking{}
	for _, b := range r.bookings {
		if keep(b) {
			b := b
			out = append(out, &b)
		}
	}
	return out
}

func (r fakeBookingRepo) ListByUser(_ context.Context, userID string) ([]*models.Booking, error) {
	return r.collect(func(b models.Booking) bool { return b.UserID == userID }), nil
}

func (r fakeBookingRepo) ListAll(context.Context) ([]*models.Booking, error) {
	return r.collect(func(models.Booking) bool { return true }), nil
}

func (r fakeBookingRepo) Delete(_ context.Context, id string, releaseSlot bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s: %w", id, db.ErrNotFound)
	}
	if releaseSlot {
		if slotID, ok := r.findSlot(b.ServiceID, b.Date, b.Slot, true); ok {
			s := r.slots[slotID]
			s.IsBooked = false
			r.slots[slotID] = s
		}
	}
	delete(r.bookings, id)
	return nil
}

type fakeUserRepo struct {
	*memStore
	createErr error
}

func (r fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, db.ErrNotFound)
	}
	return &u, nil
}

func (r fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID, db.ErrAlreadyExists)
	}
	r.users[u.ID] = *u
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (a *fakeAudit) CreateAuditLog(_ context.Context, e models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type account struct {
	uid      string
	password string
}

type fakeIdentity struct {
	mu        sync.Mutex
	accounts  map[string]account
	signedOut []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]account{}}
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(email)
	if _, ok := f.accounts[key]; ok {
		return "", ErrEmailTaken
	}
	uid := fmt.Sprintf("uid-%d", len(f.accounts)+1)
	f.accounts[key] = account{uid: uid, password: password}
	return uid, nil
}

func (f *fakeIdentity) Authenticate(_ context.Context, email, password string) (*models.AuthTokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[strings.ToLower(email)]
	if !ok || acc.password != password {
		return nil, ErrInvalidCredentials
	}
	return &models.AuthTokens{UserID: acc.uid, Email: email, IDToken: "tok-" + acc.uid, RefreshToken: "ref-" + acc.uid, ExpiresIn: 3600}, nil
}

func (f *fakeIdentity) SignOut(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, uid)
	return nil
}

func (f *fakeIdentity) VerifyToken(_ context.Context, token string) (*models.TokenClaims, error) {
	uid, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return &models.TokenClaims{UserID: uid}, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type fakeNotifier struct {
	created   chan *models.Booking
	cancelled chan *models.Booking
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{created: make(chan *models.Booking, 8), cancelled: make(chan *models.Booking, 8)}
}

func (n *fakeNotifier) NotifyBookingCreated(_ context.Context, b *models.Booking) { n.created <- b }

func (n *fakeNotifier) NotifyBookingCancelled(_ context.Context, b *models.Booking) { n.cancelled <- b }

func receive(t *testing.T, ch <-chan *models.Booking) *models.Booking {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
		return nil
	}
}

func testLogger() *zap.Logger { return zap.NewNop() }
