package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/careconnect-api/internal/config"
	grouph "github.com/careconnect/careconnect-api/internal/handler/group"
	"github.com/careconnect/careconnect-api/internal/handler/health"
	"github.com/careconnect/careconnect-api/internal/middleware"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/repository/mocks"
	"github.com/careconnect/careconnect-api/internal/service/audit"
	"github.com/careconnect/careconnect-api/internal/service/group"
	"github.com/careconnect/careconnect-api/pkg/auth"
	"github.com/careconnect/careconnect-api/pkg/metrics"
)

type fixture struct {
	router  *Router
	jwt     auth.JWTService
	users   *mocks.UserRepository
	groups  *mocks.GroupRepository
	audits  *mocks.AuditRepository
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	f := &fixture{
		jwt:     auth.NewJWTService(auth.Config{Secret: "access", RefreshSecret: "refresh"}),
		users:   &mocks.UserRepository{},
		groups:  &mocks.GroupRepository{},
		audits:  &mocks.AuditRepository{},
		metrics: metrics.New("test", reg),
	}

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode

	f.router = NewRouter(cfg, Deps{
		Auth:    middleware.NewAuthMiddleware(f.jwt, f.users, time.Minute),
		Audit:   middleware.NewAuditMiddleware(audit.NewService(f.audits)),
		Health:  health.NewHandler(reg, nil),
		Metrics: f.metrics,
	}, nil, grouph.NewHandler(group.NewService(f.groups, f.users)))
	f.router.Setup()
	return f
}

func (f *fixture) token(t *testing.T, role string) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	issued, err := f.jwt.GenerateAccessToken(auth.Subject{ID: id, Email: role + "@example.com", Role: role})
	require.NoError(t, err)
	f.users.On("GetByID", mock.Anything, id).
		Return(&model.User{Base: model.Base{ID: id}, Role: role, Status: model.UserStatusActive}, nil)
	return id, issued.Token
}

func (f *fixture) do(method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.Engine().ServeHTTP(w, req)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/v1/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
}

func TestProtectedRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("missing token", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/groups", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("role without permission", func(t *testing.T) {
		_, token := f.token(t, model.RoleCaregiver)
		w := f.do(http.MethodPost, "/api/v1/groups", token, []byte(`{"name":"East Wing"}`))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("validation errors use json names", func(t *testing.T) {
		_, token := f.token(t, model.RoleAdmin)
		f.audits.On("Create", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
			return l.StatusCode == http.StatusUnprocessableEntity
		})).Return(nil).Once()

		w := f.do(http.MethodPost, "/api/v1/groups", token, []byte(`{"name":" "}`))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "name is required")
	})

	t.Run("admin create is audited", func(t *testing.T) {
		adminID, token := f.token(t, model.RoleAdmin)
		groupID := uuid.New()
		f.groups.On("GetByName", mock.Anything, "East Wing").Return(nil, repository.ErrNotFound).Once()
		f.groups.On("Create", mock.Anything, mock.AnythingOfType("*model.Group")).Run(func(args mock.Arguments) {
			args.Get(1).(*model.Group).ID = groupID
		}).Return(nil).Once()
		f.audits.On("Create", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
			return l.Action == model.AuditActionCreate &&
				l.EntityID == groupID.String() &&
				l.EntityType == "group" &&
				l.StatusCode == http.StatusCreated &&
				l.Path == "/api/v1/groups" &&
				l.UserID != nil && *l.UserID == adminID
		})).Return(nil).Once()

		w := f.do(http.MethodPost, "/api/v1/groups", token, []byte(`{"name":"East Wing"}`))
		assert.Equal(t, http.StatusCreated, w.Code)
		f.audits.AssertExpectations(t)
	})
}

func TestMetricsRecordRoutes(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/api/v1/health/live", "", nil)
	f.do(http.MethodGet, "/api/v1/nope", "", nil)

	var m dto.Metric
	require.NoError(t, f.metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/health/live", "200").Write(&m))
	assert.Equal(t, float64(1), m.GetCounter().GetValue())

	require.NoError(t, f.metrics.HTTPErrors.WithLabelValues(http.MethodGet, "unmatched", "404").Write(&m))
	assert.Equal(t, float64(1), m.GetCounter().GetValue())
}
