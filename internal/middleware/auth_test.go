package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"publicpulse/internal/domain"
	"publicpulse/internal/middleware"
	"publicpulse/internal/service"
	"publicpulse/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authTestRouter(authSvc service.AuthService, roles ...domain.UserRole) *gin.Engine {
	r := gin.New()
	group := r.Group("/", middleware.AuthMiddleware(authSvc))
	if len(roles) > 0 {
		group.Use(middleware.RequireRole(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID.String(), "role": middleware.GetRole(c)})
	})
	return r
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := authTestRouter(new(mocks.MockAuthService))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	r := authTestRouter(new(mocks.MockAuthService))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	authSvc.On("ValidateToken", "bad-token").
		Return(nil, errors.New("token is malformed")).Once()

	r := authTestRouter(authSvc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	authSvc.AssertExpectations(t)
}

func TestAuthMiddleware_ValidTokenInjectsContext(t *testing.T) {
	userID := uuid.New()
	authSvc := new(mocks.MockAuthService)
	authSvc.On("ValidateToken", "good-token").
		Return(&service.Claims{UserID: userID, Email: "amina@example.com", Role: domain.RoleCitizen}, nil).Once()

	r := authTestRouter(authSvc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), "citizen")
}

func TestRequireRole_Allowed(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	authSvc.On("ValidateToken", "official-token").
		Return(&service.Claims{UserID: uuid.New(), Role: domain.RoleOfficial}, nil).Once()

	r := authTestRouter(authSvc, domain.RoleOfficial, domain.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer official-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	authSvc.On("ValidateToken", "citizen-token").
		Return(&service.Claims{UserID: uuid.New(), Role: domain.RoleCitizen}, nil).Once()

	r := authTestRouter(authSvc, domain.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer citizen-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}
