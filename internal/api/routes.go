package api

import (
	"net/http"

	"github.com/Franklyn101/sagbama-land-authentication/internal/auth"
	"github.com/Franklyn101/sagbama-land-authentication/internal/config"
	"github.com/Franklyn101/sagbama-land-authentication/internal/events"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Controllers 路由所需的控制器集合
type Controllers struct {
	Auth        *AuthController
	Document    *DocumentController
	Certificate *CertificateController
	Statistics  *StatisticsController
}

// SetupRoutes 配置路由
func SetupRoutes(cfg *config.Config, ctrl *Controllers, hub *events.Hub, db *gorm.DB) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(ActorMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// 健康检查
	healthController := NewHealthController(db, hub)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 路由: 文档状态变更推送
	if hub != nil {
		router.GET("/ws/documents", events.Handler(hub))
	}

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		// 认证路由
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", ctrl.Auth.Login)
			authGroup.GET("/users", RequireRole(auth.RoleAdmin), ctrl.Auth.ListUsers)
		}

		// 文档生命周期路由
		documents := v1.Group("/documents")
		{
			documents.POST("", RequireRole(auth.RoleAdmin, auth.RoleHandler), ctrl.Document.Create)
			documents.GET("", ctrl.Document.List)
			documents.GET("/stats", ctrl.Document.Stats)
			documents.GET("/:id", ctrl.Document.Get)
			documents.POST("/:id/verify", RequireRole(auth.RoleAdmin, auth.RoleOfficer), ctrl.Document.Verify)
			documents.POST("/:id/reject", RequireRole(auth.RoleAdmin, auth.RoleOfficer), ctrl.Document.Reject)
			documents.DELETE("/:id", RequireRole(auth.RoleAdmin), ctrl.Document.Delete)
			documents.GET("/:id/audit-logs", RequireRole(auth.RoleAdmin, auth.RoleOfficer), ctrl.Document.AuditLogs)

			// 证书路由: 导出单独限流
			documents.GET("/:id/certificate", ctrl.Certificate.Preview)
			documents.GET("/:id/certificate/qr", ctrl.Certificate.Payload)
			documents.POST("/:id/certificate/export",
				RateLimitMiddleware(cfg.Export.RateRPS, cfg.Export.RateBurst),
				ctrl.Certificate.Export)
		}

		// 统计路由
		statistics := v1.Group("/statistics")
		{
			statistics.GET("/by-status", ctrl.Statistics.ByStatus)
			statistics.GET("/by-type", ctrl.Statistics.ByType)
			statistics.GET("/by-day", ctrl.Statistics.ByDay)
			statistics.GET("/verifiers", ctrl.Statistics.Verifiers)
		}
	}

	// 未匹配路由返回 JSON
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", c.Request.URL.Path)
	})

	return router
}
