package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nazotronic/Tourify/internal/api/handlers"
	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/services"
	"github.com/nazotronic/Tourify/internal/session"
	"github.com/nazotronic/Tourify/internal/utils"
)

func setupAuthRouter(mockSvc *MockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewAuthHandler(mockSvc)
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/admin-login", handler.AdminLogin)
	r.POST("/auth/logout", handler.Logout)
	return r
}

func postJSON(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := setupAuthRouter(mockSvc)

	user := &models.User{Email: "alice@example.com", FullName: "Alice", Role: models.RoleUser}
	user.ID = utils.NewSixID()
	mockSvc.On("Register", mock.Anything, "alice@example.com", "password123", "Alice").
		Return(user, "a.jwt.token", nil)

	w := postJSON(r, "/auth/register", map[string]string{
		"email": "alice@example.com", "password": "password123", "fullName": "Alice",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "a.jwt.token", resp.Token)
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := setupAuthRouter(mockSvc)

	mockSvc.On("Register", mock.Anything, "alice@example.com", "password123", "Alice").
		Return(nil, "", db.AlreadyExists("email is already registered"))

	w := postJSON(r, "/auth/register", map[string]string{
		"email": "alice@example.com", "password": "password123", "fullName": "Alice",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := setupAuthRouter(mockSvc)

	w := postJSON(r, "/auth/register", map[string]string{"email": "alice@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Register")
}

func TestAuthHandler_Login(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := setupAuthRouter(mockSvc)

	user := &models.User{Email: "alice@example.com", Role: models.RoleUser}
	user.ID = utils.NewSixID()
	mockSvc.On("Login", mock.Anything, "alice@example.com", "password123").
		Return(user, "a.jwt.token", nil)

	w := postJSON(r, "/auth/login", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "a.jwt.token", resp.Token)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := setupAuthRouter(mockSvc)

	mockSvc.On("Login", mock.Anything, "alice@example.com", "wrong").
		Return(nil, "", services.ErrInvalidCredentials)

	w := postJSON(r, "/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_AdminLogin(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := setupAuthRouter(mockSvc)

	admin := &models.User{Email: "admin@tourify.example.com", Role: models.RoleAdmin}
	admin.ID = utils.NewSixID()
	mockSvc.On("AdminLogin", mock.Anything, "admin-password").
		Return(admin, "an.admin.token", nil)

	w := postJSON(r, "/auth/admin-login", map[string]string{"password": "admin-password"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_AdminLogin_NotAnAdmin(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := setupAuthRouter(mockSvc)

	mockSvc.On("AdminLogin", mock.Anything, "admin-password").
		Return(nil, "", services.ErrNotAnAdmin)

	w := postJSON(r, "/auth/admin-login", map[string]string{"password": "admin-password"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := setupAuthRouter(mockSvc)

	w := postJSON(r, "/auth/logout", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockAuthService)
	handler := handlers.NewAuthHandler(mockSvc)

	userID := utils.NewSixID()
	sess := session.ForUser(userID, models.RoleUser)
	r := gin.New()
	r.PUT("/users/:id/password", withSession(sess), handler.ChangePassword)

	mockSvc.On("ChangePassword", mock.Anything, sess, userID, "newpassword1").Return(nil)

	body, _ := json.Marshal(map[string]string{"password": "newpassword1"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/users/"+userID.String()+"/password", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_ChangePassword_OtherUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockAuthService)
	handler := handlers.NewAuthHandler(mockSvc)

	sess := session.ForUser(utils.NewSixID(), models.RoleUser)
	otherID := utils.NewSixID()
	r := gin.New()
	r.PUT("/users/:id/password", withSession(sess), handler.ChangePassword)

	mockSvc.On("ChangePassword", mock.Anything, sess, otherID, "newpassword1").
		Return(db.PermissionDenied("cannot change another user's password"))

	body, _ := json.Marshal(map[string]string{"password": "newpassword1"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/users/"+otherID.String()+"/password", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
