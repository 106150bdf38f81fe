package router

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/careconnect/careconnect-api/internal/config"
	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/handler/health"
	"github.com/careconnect/careconnect-api/internal/middleware"
	"github.com/careconnect/careconnect-api/pkg/metrics"
	pkgvalidator "github.com/careconnect/careconnect-api/pkg/validator"
)

// Handler is implemented by every protected domain handler.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup, handler.Guards)
}

// PublicHandler also exposes endpoints that need no token.
type PublicHandler interface {
	Handler
	RegisterPublicRoutes(*gin.RouterGroup, handler.Guards)
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	audit    *middleware.AuditMiddleware
	health   *health.Handler
	public   []PublicHandler
	handlers []Handler
	metrics  *metrics.Metrics
	limiters []*middleware.RateLimiter
	throttle gin.HandlerFunc
}

type Deps struct {
	Auth *middleware.AuthMiddleware
	// Audit is nil when audit logging is disabled.
	Audit   *middleware.AuditMiddleware
	Health  *health.Handler
	Metrics *metrics.Metrics
}

func NewRouter(cfg *config.Config, deps Deps, public []PublicHandler, handlers ...Handler) *Router {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		pkgvalidator.Register(v)
	}

	engine := gin.New()
	r := &Router{
		engine:   engine,
		auth:     deps.Auth,
		audit:    deps.Audit,
		health:   deps.Health,
		public:   public,
		handlers: handlers,
		metrics:  deps.Metrics,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(corsConfig(cfg.CORS)),
		middleware.SizeLimit(sizeLimitConfig(cfg.Server.MaxBodyBytes)),
		middleware.Timeout(middleware.DefaultTimeoutConfig()),
	)

	if cfg.RateLimit.Enabled {
		global := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
		engine.Use(global.RateLimit())
		r.limiters = append(r.limiters, global)

		if cfg.RateLimit.LoginPerMinute > 0 {
			login := middleware.NewRateLimiter(middleware.PerMinute(cfg.RateLimit.LoginPerMinute))
			r.throttle = login.RateLimit()
			r.limiters = append(r.limiters, login)
		}
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	if r.health != nil {
		r.health.RegisterRoutes(api)
	}

	guards := handler.Guards{
		Require:  r.auth.RequirePermission,
		Throttle: r.throttle,
	}
	if r.audit != nil {
		guards.Audit = r.audit.AuditLog
	}

	public := api.Group("")
	public.Use(middleware.NoStore())
	for _, h := range r.public {
		h.RegisterPublicRoutes(public, guards)
	}

	protected := api.Group("")
	protected.Use(middleware.NoStore(), r.auth.Authenticate())
	for _, h := range r.public {
		h.RegisterRoutes(protected, guards)
	}
	for _, h := range r.handlers {
		h.RegisterRoutes(protected, guards)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// RunJanitor drops idle rate limiter buckets until ctx is done.
func (r *Router) RunJanitor(ctx context.Context, every time.Duration) {
	if len(r.limiters) == 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, l := range r.limiters {
				l.Cleanup()
			}
		}
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.metrics == nil {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		r.metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		r.metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		if c.Writer.Status() >= 400 {
			r.metrics.HTTPErrors.WithLabelValues(c.Request.Method, route, status).Inc()
		}
	}
}

func corsConfig(cfg config.CORSConfig) middleware.CORSConfig {
	out := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		out.AllowOrigins = cfg.AllowedOrigins
	}
	if len(cfg.AllowedMethods) > 0 {
		out.AllowMethods = cfg.AllowedMethods
	}
	if len(cfg.AllowedHeaders) > 0 {
		out.AllowHeaders = cfg.AllowedHeaders
	}
	return out
}

func sizeLimitConfig(maxBody int64) middleware.SizeLimitConfig {
	out := middleware.DefaultSizeLimitConfig()
	if maxBody > 0 {
		out.MaxBodySize = maxBody
	}
	return out
}
