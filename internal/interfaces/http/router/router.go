// Package router 提供 HTTP 路由配置
package router

import (
	"cine-rag-api/internal/config"
	"cine-rag-api/internal/infrastructure/persistence/redis"
	"cine-rag-api/internal/interfaces/http/handler"
	"cine-rag-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// Handlers 路由所需的全部处理器
type Handlers struct {
	Health *handler.HealthHandler
	Movie  *handler.MovieHandler
	Show   *handler.ShowHandler
	Chat   *handler.ChatHandler
}

// New 创建新的路由器
func New(cfg *config.Config, handlers *Handlers, limiter *redis.RateLimiter) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine: engine,
		cfg:    cfg,
	}

	r.setupMiddleware(limiter)
	r.setupRoutes(handlers)

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware(limiter *redis.RateLimiter) {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	// 限流中间件（按客户端 IP 滑动窗口）
	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             r.cfg.Security.RateLimit.Burst,
	}, limiter))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes(h *Handlers) {
	// 系统端点
	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API v1 路由组
	v1 := r.engine.Group("/v1")
	{
		// 影片问答
		chat := v1.Group("/chat")
		{
			chat.POST("/movies", h.Chat.ChatMovies)
		}

		// 影片目录
		movies := v1.Group("/movies")
		{
			movies.GET("", h.Movie.ListMovies)
			movies.POST("", h.Movie.CreateMovie)
			movies.POST("/reembed-all", h.Movie.ReembedAllMovies)
			movies.POST("/import/now-playing", h.Movie.ImportNowPlaying)
			movies.GET("/:mid", h.Movie.GetMovie)
			movies.PATCH("/:mid", h.Movie.UpdateMovie)
			movies.DELETE("/:mid", h.Movie.DeleteMovie)
			movies.POST("/:mid/reembed", h.Movie.ReembedMovie)
			movies.GET("/:mid/shows", h.Show.ListUpcomingShows)
		}

		// 场次
		shows := v1.Group("/shows")
		{
			shows.POST("", h.Show.CreateShows)
		}
	}
}
