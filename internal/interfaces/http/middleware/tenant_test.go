package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type capturedIdentity struct {
	tenant uuid.UUID
	user   uuid.UUID
	called bool
}

func newTenantRouter(cfg TenantMiddlewareConfig, captured *capturedIdentity) *gin.Engine {
	router := gin.New()
	router.Use(TenantMiddlewareWithConfig(cfg))
	handler := func(c *gin.Context) {
		captured.called = true
		captured.tenant = GetTenantID(c)
		captured.user = GetUserID(c)
		c.Status(http.StatusOK)
	}
	router.GET("/test", handler)
	router.GET("/health", handler)
	return router
}

func TestTenantMiddleware_HeaderExtraction(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name           string
		tenantHeader   string
		userHeader     string
		expectedStatus int
		expectedTenant uuid.UUID
		expectedUser   uuid.UUID
		expectedCode   string
	}{
		{
			name:           "tenant and user headers",
			tenantHeader:   tenantID.String(),
			userHeader:     userID.String(),
			expectedStatus: http.StatusOK,
			expectedTenant: tenantID,
			expectedUser:   userID,
		},
		{
			name:           "missing tenant falls back to dev tenant",
			expectedStatus: http.StatusOK,
			expectedTenant: DevTenantID,
		},
		{
			name:           "invalid tenant ID format",
			tenantHeader:   "invalid-uuid",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidTenant,
		},
		{
			name:           "invalid user ID format",
			userHeader:     "42",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured capturedIdentity
			router := newTenantRouter(DefaultTenantConfig(), &captured)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.tenantHeader != "" {
				req.Header.Set(TenantHeaderKey, tt.tenantHeader)
			}
			if tt.userHeader != "" {
				req.Header.Set(UserHeaderKey, tt.userHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedTenant, captured.tenant)
				assert.Equal(t, tt.expectedUser, captured.user)
			} else {
				assert.False(t, captured.called)
				assert.Contains(t, w.Body.String(), tt.expectedCode)
			}
		})
	}
}

func TestTenantMiddleware_RequiredTenant(t *testing.T) {
	var captured capturedIdentity
	router := newTenantRouter(TenantMiddlewareConfig{}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Tenant identification required")
}

func TestTenantMiddleware_SkipPaths(t *testing.T) {
	var captured capturedIdentity
	router := newTenantRouter(DefaultTenantConfig(), &captured)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(TenantHeaderKey, "not-a-uuid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uuid.Nil, captured.tenant)
}

func TestTenantMiddleware_ContextPropagation(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	router := gin.New()
	router.Use(TenantMiddleware())
	router.GET("/test", func(c *gin.Context) {
		ctx := c.Request.Context()
		assert.Equal(t, tenantID.String(), logger.GetTenantID(ctx))
		assert.Equal(t, userID.String(), logger.GetUserID(ctx))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TenantHeaderKey, tenantID.String())
	req.Header.Set(UserHeaderKey, userID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetTenantID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uuid.Nil, GetTenantID(c))
	assert.Equal(t, uuid.Nil, GetUserID(c))

	c.Set(TenantIDKey, "not-a-uuid-value")
	assert.Equal(t, uuid.Nil, GetTenantID(c))
}
