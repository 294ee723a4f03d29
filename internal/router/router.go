package router

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/fajrglobal/clinic-api/internal/middleware"
	"github.com/fajrglobal/clinic-api/pkg/httputil"
	"github.com/fajrglobal/clinic-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Handlers struct {
	Health    Handler
	Patient   Handler
	Encounter Handler
	Export    Handler
	// Metrics serves the Prometheus scrape endpoint. Nil disables it.
	Metrics gin.HandlerFunc
}

type RouterConfig struct {
	Mode           string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CORSOrigins    []string
	RateLimit      rate.Limit
	RateBurst      int
	MetricsPath    string
	StaticDir      string
}

type Router struct {
	engine   *gin.Engine
	config   RouterConfig
	handlers Handlers
}

func NewRouter(
	handlers Handlers,
	m *metrics.Metrics,
	config RouterConfig,
) (*Router, error) {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if err := middleware.SetupValidation(); err != nil {
		return nil, err
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		config:   config,
		handlers: handlers,
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(m),
		middleware.CORS(middleware.DefaultCORSConfig(config.CORSOrigins)),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(sizeLimit),
	)
	if config.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(config.RequestTimeout))
	}
	if config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}
	engine.Use(middleware.ErrorHandler())

	r.setup()
	return r, nil
}

func (r *Router) setup() {
	api := r.engine.Group("/api")
	api.Use(middleware.NoStore())

	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}
	if r.handlers.Metrics != nil && r.config.MetricsPath != "" {
		api.GET(r.config.MetricsPath, r.handlers.Metrics)
	}

	r.handlers.Patient.RegisterRoutes(api)
	r.handlers.Encounter.RegisterRoutes(api)
	r.handlers.Export.RegisterRoutes(api)

	if r.config.StaticDir != "" {
		r.setupStatic(r.config.StaticDir)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, httputil.ErrorBody{Detail: "Not Found", Code: http.StatusNotFound})
	})
}

// setupStatic serves the bundled web client.
func (r *Router) setupStatic(dir string) {
	r.engine.Static("/static", dir)
	index := filepath.Join(dir, "index.html")
	r.engine.GET("/", func(c *gin.Context) {
		c.File(index)
	})
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
