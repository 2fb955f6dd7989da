package middleware

import (
	"net/http"
	"strings"

	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Keys used to store caller identity in gin.Context
const (
	TenantIDKey     = "tenant_id"
	UserIDKey       = "user_id"
	TenantHeaderKey = "X-Tenant-ID"
	UserHeaderKey   = "X-User-ID"
)

// DevTenantID is used when a request carries no X-Tenant-ID
var DevTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// DefaultTenantID applies when the header is absent. uuid.Nil makes the
	// header mandatory.
	DefaultTenantID uuid.UUID
	// SkipPaths are paths that don't need a tenant (e.g., health check)
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		DefaultTenantID: DevTenantID,
		SkipPaths:       []string{"/health", "/healthz", "/ready", "/api/v1/health"},
	}
}

// TenantMiddleware identifies the caller from X-Tenant-ID and X-User-ID
func TenantMiddleware() gin.HandlerFunc {
	return TenantMiddlewareWithConfig(DefaultTenantConfig())
}

// TenantMiddlewareWithConfig returns tenant middleware with custom
// configuration. Both IDs must be UUIDs when present; X-User-ID is optional.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		tenantID := cfg.DefaultTenantID
		if header := c.GetHeader(TenantHeaderKey); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil {
				respondBadIdentity(c, dto.ErrCodeInvalidTenant, "Invalid tenant ID format")
				return
			}
			tenantID = parsed
		}
		if tenantID == uuid.Nil {
			respondBadIdentity(c, dto.ErrCodeInvalidTenant, "Tenant identification required")
			return
		}

		var userID uuid.UUID
		if header := c.GetHeader(UserHeaderKey); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil {
				respondBadIdentity(c, dto.ErrCodeInvalidInput, "Invalid user ID format")
				return
			}
			userID = parsed
		}

		c.Set(TenantIDKey, tenantID)
		ctx := logger.WithTenantID(c.Request.Context(), tenantID.String())
		if userID != uuid.Nil {
			c.Set(UserIDKey, userID)
			ctx = logger.WithUserID(ctx, userID.String())
		}
		c.Request = c.Request.WithContext(ctx)

		log.Debug("Caller identified",
			zap.String("tenant_id", tenantID.String()),
			zap.Bool("has_user", userID != uuid.Nil),
		)
		c.Next()
	}
}

func respondBadIdentity(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// GetTenantID retrieves the tenant ID from gin.Context, or uuid.Nil
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetUserID retrieves the user ID from gin.Context, or uuid.Nil when the
// caller sent none
func GetUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
