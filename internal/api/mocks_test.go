package api

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"residentbook-backend-go/internal/core"
	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/models"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	args := m.Called(ctx, req)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockUserService) Logout(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserService) Role(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context) ([]*models.Service, error) {
	args := m.Called(ctx)
	services, _ := args.Get(0).([]*models.Service)
	return services, args.Error(1)
}

func (m *MockCatalogService) Get(ctx context.Context, serviceID string) (*models.Service, error) {
	args := m.Called(ctx, serviceID)
	svc, _ := args.Get(0).(*models.Service)
	return svc, args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, actorID string, req models.CreateServiceRequest) (*models.Service, error) {
	args := m.Called(ctx, actorID, req)
	svc, _ := args.Get(0).(*models.Service)
	return svc, args.Error(1)
}

func (m *MockCatalogService) Delete(ctx context.Context, actorID, serviceID string) error {
	return m.Called(ctx, actorID, serviceID).Error(0)
}

type MockSlotService struct {
	mock.Mock
}

func (m *MockSlotService) Candidates() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockSlotService) Available(ctx context.Context, q models.AvailabilityQuery) ([]*models.Slot, error) {
	args := m.Called(ctx, q)
	slots, _ := args.Get(0).([]*models.Slot)
	return slots, args.Error(1)
}

func (m *MockSlotService) ListForDay(ctx context.Context, q models.AvailabilityQuery, view listview.View) (listview.Result[*models.Slot], error) {
	args := m.Called(ctx, q, view)
	res, _ := args.Get(0).(listview.Result[*models.Slot])
	return res, args.Error(1)
}

func (m *MockSlotService) Create(ctx context.Context, actorID string, req models.CreateSlotRequest) (*models.Slot, error) {
	args := m.Called(ctx, actorID, req)
	slot, _ := args.Get(0).(*models.Slot)
	return slot, args.Error(1)
}

func (m *MockSlotService) GenerateDay(ctx context.Context, actorID string, req models.GenerateSlotsRequest) (*models.GenerateSlotsResult, error) {
	args := m.Called(ctx, actorID, req)
	res, _ := args.Get(0).(*models.GenerateSlotsResult)
	return res, args.Error(1)
}

func (m *MockSlotService) Delete(ctx context.Context, actorID, slotID string) error {
	return m.Called(ctx, actorID, slotID).Error(0)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Book(ctx context.Context, userID string, req models.CreateBookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, userID, req)
	booking, _ := args.Get(0).(*models.Booking)
	return booking, args.Error(1)
}

func (m *MockBookingService) Get(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	booking, _ := args.Get(0).(*models.Booking)
	return booking, args.Error(1)
}

func (m *MockBookingService) ListMine(ctx context.Context, userID string, view listview.View) (listview.Result[*models.Booking], error) {
	args := m.Called(ctx, userID, view)
	res, _ := args.Get(0).(listview.Result[*models.Booking])
	return res, args.Error(1)
}

func (m *MockBookingService) ListAll(ctx context.Context, view listview.View) (listview.Result[*models.Booking], error) {
	args := m.Called(ctx, view)
	res, _ := args.Get(0).(listview.Result[*models.Booking])
	return res, args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, actor models.Actor, bookingID string) error {
	return m.Called(ctx, actor, bookingID).Error(0)
}

// stubAuth accepts tokens of the form "tok-<uid>". Users whose ID starts with
// "admin" are admins, with "res" residents; anyone else has no role.
type stubAuth struct{}

func (stubAuth) VerifyToken(_ context.Context, idToken string) (*models.TokenClaims, error) {
	uid, ok := strings.CutPrefix(idToken, "tok-")
	if !ok {
		return nil, core.ErrInvalidCredentials
	}
	return &models.TokenClaims{UserID: uid, Email: uid + "@example.com"}, nil
}

func (stubAuth) Role(_ context.Context, userID string) (string, error) {
	switch {
	case strings.HasPrefix(userID, "admin"):
		return models.RoleAdmin, nil
	case strings.HasPrefix(userID, "res"):
		return models.RoleResident, nil
	default:
		return "", core.ErrNoRole
	}
}
