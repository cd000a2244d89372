package handlers_test

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/nazotronic/Tourify/internal/analytics"
	"github.com/nazotronic/Tourify/internal/api/middleware"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/services"
	"github.com/nazotronic/Tourify/internal/session"
	"github.com/nazotronic/Tourify/internal/utils"
)

// withSession injects a fixed caller session, standing in for AuthMiddleware.
func withSession(sess session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeySession, sess)
		c.Next()
	}
}

// --- MockTourService ---

type MockTourService struct {
	mock.Mock
}

func (m *MockTourService) List(ctx context.Context) ([]models.Tour, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tour), args.Error(1)
}

func (m *MockTourService) FindByID(ctx context.Context, tourID utils.SixID) (*models.Tour, error) {
	args := m.Called(ctx, tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tour), args.Error(1)
}

func (m *MockTourService) Create(ctx context.Context, sess session.Session, tour *models.Tour) (*models.Tour, error) {
	args := m.Called(ctx, sess, tour)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tour), args.Error(1)
}

func (m *MockTourService) Update(ctx context.Context, sess session.Session, tourID utils.SixID, updates map[string]interface{}) (*models.Tour, error) {
	args := m.Called(ctx, sess, tourID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tour), args.Error(1)
}

func (m *MockTourService) Delete(ctx context.Context, sess session.Session, tourID utils.SixID) error {
	args := m.Called(ctx, sess, tourID)
	return args.Error(0)
}

func (m *MockTourService) Seed(ctx context.Context, sess session.Session, tours []models.Tour) (int, error) {
	args := m.Called(ctx, sess, tours)
	return args.Int(0), args.Error(1)
}

func (m *MockTourService) SetImage(ctx context.Context, tourID utils.SixID, imageKey string) error {
	args := m.Called(ctx, tourID, imageKey)
	return args.Error(0)
}

// --- MockBookingService ---

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Create(ctx context.Context, sess session.Session, input services.CreateBookingInput) (*models.Booking, error) {
	args := m.Called(ctx, sess, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) List(ctx context.Context, sess session.Session) ([]models.Booking, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingService) FindByID(ctx context.Context, sess session.Session, bookingID utils.SixID) (*models.Booking, error) {
	args := m.Called(ctx, sess, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, sess session.Session, bookingID utils.SixID, status models.BookingStatus) (*models.Booking, error) {
	args := m.Called(ctx, sess, bookingID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

// --- MockUserService ---

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindByID(ctx context.Context, sess session.Session, userID utils.SixID) (*models.User, error) {
	args := m.Called(ctx, sess, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, sess session.Session, userID utils.SixID, profile *models.Profile) (*models.User, error) {
	args := m.Called(ctx, sess, userID, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ToggleFavourite(ctx context.Context, sess session.Session, tourID utils.SixID) ([]utils.SixID, error) {
	args := m.Called(ctx, sess, tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]utils.SixID), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, sess session.Session) ([]models.User, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, sess session.Session, userID utils.SixID) error {
	args := m.Called(ctx, sess, userID)
	return args.Error(0)
}

// --- MockAuthService ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password, fullName string) (*models.User, string, error) {
	args := m.Called(ctx, email, password, fullName)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) AdminLogin(ctx context.Context, password string) (*models.User, string, error) {
	args := m.Called(ctx, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, sess session.Session, userID utils.SixID, newPassword string) error {
	args := m.Called(ctx, sess, userID, newPassword)
	return args.Error(0)
}

func (m *MockAuthService) EnsureAdminAccount(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockSupportService ---

type MockSupportService struct {
	mock.Mock
}

func (m *MockSupportService) Send(ctx context.Context, sess session.Session, message string) (*models.SupportMessage, error) {
	args := m.Called(ctx, sess, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportMessage), args.Error(1)
}

func (m *MockSupportService) List(ctx context.Context, sess session.Session) ([]models.SupportMessage, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SupportMessage), args.Error(1)
}

func (m *MockSupportService) Update(ctx context.Context, sess session.Session, messageID utils.SixID, read bool, answer *string) (*models.SupportMessage, error) {
	args := m.Called(ctx, sess, messageID, read, answer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportMessage), args.Error(1)
}

// --- MockDashboardService ---

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context, sess session.Session) (analytics.Summary, error) {
	args := m.Called(ctx, sess)
	return args.Get(0).(analytics.Summary), args.Error(1)
}
