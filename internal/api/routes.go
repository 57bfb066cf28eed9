package api

import (
	"github.com/darkstoreops/approval-api/internal/auth"
	"github.com/darkstoreops/approval-api/internal/cache"
	"github.com/darkstoreops/approval-api/internal/config"
	"github.com/darkstoreops/approval-api/internal/events"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	DB                *gorm.DB
	SummaryCache      *cache.Cache
	Hub               *events.Hub
	Validator         *auth.TokenValidator // 为 nil 时使用开发模式认证
	TaskController    *TaskController
	SummaryController *SummaryController
	Tracing           bool
}

// SetupRoutes 配置路由
func SetupRoutes(deps *RouterDeps, cfg *config.Config) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(ErrorHandlerMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	if deps.Tracing {
		router.Use(TracingMiddleware())
	}

	// 健康检查
	healthController := NewHealthController(deps.DB, deps.SummaryCache)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 裁决事件订阅
	if deps.Hub != nil {
		router.GET("/ws/events", events.WebSocketHandler(deps.Hub, deps.Validator))
	}

	// 认证中间件
	var authMiddleware gin.HandlerFunc
	if deps.Validator != nil {
		authMiddleware = auth.Middleware(deps.Validator)
	} else {
		authMiddleware = auth.DevMiddleware()
	}

	// API v1 路由组,按业务域参数化
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(100, 200))
	v1.Use(authMiddleware)
	{
		domain := v1.Group("/:domain")
		{
			domain.GET("/summary", deps.SummaryController.Summarize)

			tasks := domain.Group("/tasks")
			{
				tasks.GET("", deps.TaskController.List)
				tasks.GET("/:id", deps.TaskController.Get)
				tasks.POST("/:id/decision", deps.TaskController.Decide)
			}
		}
	}

	// 未匹配的路由返回 JSON 格式的 404
	router.NoRoute(func(c *gin.Context) {
		Error(c, 404, "route not found", "the requested route does not exist")
	})

	return router
}
