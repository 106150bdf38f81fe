package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/repository/mocks"
	"github.com/careconnect/careconnect-api/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2, IdleTTL: time.Minute})
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", ok)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// other clients have their own bucket
	assert.True(t, rl.Allow("10.0.0.9"))

	now = now.Add(2 * time.Minute)
	rl.Cleanup()
	assert.Empty(t, rl.visitors)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig()))
	r.GET("/", ok)

	w := serve(r, http.MethodGet, "/", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	w = serve(r, http.MethodGet, "/", http.Header{"Origin": {"https://evil.example"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	w := serve(r, http.MethodGet, "/", http.Header{HeaderXRequestID: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Body.String())

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	w = serve(r, http.MethodGet, "/", http.Header{HeaderXRequestID: {string(long)}})
	assert.NotEqual(t, string(long), w.Body.String())
	assert.NotEmpty(t, w.Body.String())
}

func TestAuthenticate(t *testing.T) {
	jwt := auth.NewJWTService(auth.Config{Secret: "access", RefreshSecret: "refresh"})
	users := &mocks.UserRepository{}
	m := NewAuthMiddleware(jwt, users, time.Minute)

	r := gin.New()
	r.GET("/me", m.Authenticate(), func(c *gin.Context) {
		claims, _ := auth.FromContext(c.Request.Context())
		c.String(http.StatusOK, claims.UserID.String())
	})
	r.GET("/admin", m.Authenticate(), m.RequirePermission(model.PermUserManage), ok)

	issue := func(role string) (uuid.UUID, http.Header) {
		id := uuid.New()
		tok, err := jwt.GenerateAccessToken(auth.Subject{ID: id, Role: role})
		require.NoError(t, err)
		return id, http.Header{"Authorization": {"Bearer " + tok.Token}}
	}

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", nil).Code)
	})

	t.Run("refresh token is rejected", func(t *testing.T) {
		tok, err := jwt.GenerateRefreshToken(auth.Subject{ID: uuid.New(), Role: model.RoleNurse})
		require.NoError(t, err)
		w := serve(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer " + tok.Token}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("active user with cached status", func(t *testing.T) {
		id, header := issue(model.RoleNurse)
		users.On("GetByID", mock.Anything, id).
			Return(&model.User{Base: model.Base{ID: id}, Status: model.UserStatusActive}, nil).Once()

		w := serve(r, http.MethodGet, "/me", header)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.String(), w.Body.String())

		// second request is served from the status cache
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/me", header).Code)
		users.AssertNumberOfCalls(t, "GetByID", 1)
	})

	t.Run("deleted user", func(t *testing.T) {
		id, header := issue(model.RoleNurse)
		users.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", header).Code)
	})

	t.Run("permission", func(t *testing.T) {
		id, header := issue(model.RoleCaregiver)
		users.On("GetByID", mock.Anything, id).
			Return(&model.User{Base: model.Base{ID: id}, Status: model.UserStatusActive}, nil).Once()
		assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/admin", header).Code)

		id, header = issue(model.RoleAdmin)
		users.On("GetByID", mock.Anything, id).
			Return(&model.User{Base: model.Base{ID: id}, Status: model.UserStatusActive}, nil).Once()
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin", header).Code)
	})
}

type recorder struct {
	entries []*model.AuditLog
	err     error
}

func (r *recorder) Record(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, entry)
	return r.err
}

func TestAuditLog(t *testing.T) {
	rec := &recorder{}
	m := NewAuditMiddleware(rec)
	actor := uuid.New()

	r := gin.New()
	r.Use(RequestID(), func(c *gin.Context) {
		ctx := auth.WithClaims(c.Request.Context(), &auth.Claims{UserID: actor, Role: model.RoleAdmin})
		c.Request = c.Request.WithContext(ctx)
	})
	r.GET("/residents/:id", m.AuditLog("resident"), ok)
	r.PUT("/residents/:id", m.AuditLog("resident"), ok)
	r.DELETE("/residents/:id", m.AuditLog("resident"), func(c *gin.Context) { c.Status(http.StatusNotFound) })

	id := uuid.NewString()
	serve(r, http.MethodGet, "/residents/"+id, nil)
	assert.Empty(t, rec.entries, "reads are not audited")

	serve(r, http.MethodPut, "/residents/"+id, http.Header{"User-Agent": {"tablet"}})
	require.Len(t, rec.entries, 1)
	e := rec.entries[0]
	assert.Equal(t, model.AuditActionUpdate, e.Action)
	assert.Equal(t, "resident", e.EntityType)
	assert.Equal(t, id, e.EntityID)
	assert.Equal(t, "/residents/:id", e.Path)
	assert.Equal(t, http.StatusOK, e.StatusCode)
	assert.Equal(t, "tablet", e.UserAgent)
	assert.NotEmpty(t, e.RequestID)
	require.NotNil(t, e.UserID)
	assert.Equal(t, actor, *e.UserID)

	// a failing recorder never changes the response
	rec.err = errors.New("db down")
	w := serve(r, http.MethodDelete, "/residents/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.Len(t, rec.entries, 2)
	assert.Equal(t, model.AuditActionDelete, rec.entries[1].Action)
}

func TestAuditLog_CreateRecordsNewID(t *testing.T) {
	rec := &recorder{}
	m := NewAuditMiddleware(rec)
	created := uuid.New()

	r := gin.New()
	r.POST("/residents", m.AuditLog("resident"), func(c *gin.Context) {
		handler.RespondCreated(c, &model.Resident{Base: model.Base{ID: created}})
	})

	w := serve(r, http.MethodPost, "/residents", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, model.AuditActionCreate, rec.entries[0].Action)
	assert.Equal(t, created.String(), rec.entries[0].EntityID)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "tablet", truncate("  tablet ", 10))
	assert.Equal(t, "abc", truncate("abcdef", 3))
	// "é" is two bytes; cutting inside it drops the whole rune
	assert.Equal(t, "ab", truncate("abé", 3))
	assert.Equal(t, "abé", truncate("abé", 4))
}
