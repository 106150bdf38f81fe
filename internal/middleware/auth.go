package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/pkg/auth"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

const ContextUserID = "user_id"

type AuthMiddleware struct {
	jwt      auth.JWTService
	userRepo repository.UserRepository
	status   *cache.Cache
}

// NewAuthMiddleware caches user status lookups for statusTTL so a deactivated
// account loses access within that window.
func NewAuthMiddleware(jwt auth.JWTService, userRepo repository.UserRepository, statusTTL time.Duration) *AuthMiddleware {
	return &AuthMiddleware{
		jwt:      jwt,
		userRepo: userRepo,
		status:   cache.New(statusTTL, 2*statusTTL),
	}
}

// Authenticate verifies the bearer token and stores the claims on the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handler.RespondError(c, apperrors.Unauthorized("missing authorization header", nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			handler.RespondError(c, apperrors.Unauthorized("invalid authorization format", nil))
			return
		}

		claims, err := m.jwt.ValidateAccessToken(parts[1])
		if err != nil {
			handler.RespondError(c, apperrors.Unauthorized("invalid or expired token", err))
			return
		}

		active, err := m.isActive(c, claims)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		if !active {
			handler.RespondError(c, apperrors.Unauthorized("account is not active", nil))
			return
		}

		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Set(ContextUserID, claims.UserID.String())
		c.Next()
	}
}

// RequirePermission rejects callers whose role lacks perm.
func (m *AuthMiddleware) RequirePermission(perm model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.FromContext(c.Request.Context())
		if !ok {
			handler.RespondError(c, apperrors.Unauthorized("authentication required", nil))
			return
		}
		if !model.HasPermission(claims.Role, perm) {
			handler.RespondError(c, apperrors.Forbidden("permission denied"))
			return
		}
		c.Next()
	}
}

// Forget drops the cached status of a user.
func (m *AuthMiddleware) Forget(userID string) {
	m.status.Delete(userID)
}

func (m *AuthMiddleware) isActive(c *gin.Context, claims *auth.Claims) (bool, error) {
	key := claims.UserID.String()
	if v, found := m.status.Get(key); found {
		return v.(bool), nil
	}

	user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.Internal(err)
	}
	active := user.IsActive()
	m.status.SetDefault(key, active)
	return active, nil
}
