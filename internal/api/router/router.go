package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clearbill/backend/config"
	"clearbill/backend/internal/api/handler"
	"clearbill/backend/internal/api/middleware"
	"clearbill/backend/pkg/jwt"
	"clearbill/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1（全部路由需认证，Token 由主 CRM 签发）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 会计期间模块
		periods := v1.Group("/periods")
		{
			periods.GET("", h.Period.GetPeriod)
			periods.POST("", h.Period.CreatePeriod)
			periods.POST("/:id/close", h.Period.ClosePeriod)

			// 月结清单模块
			periods.GET("/:id/checklist", h.Checklist.GetChecklist)
			periods.PUT("/:id/checklist", h.Checklist.ToggleItem)
			periods.POST("/:id/auto-checks", h.Checklist.RunAutoChecks)
		}

		// 月结报表模块
		reports := v1.Group("/reports")
		{
			reports.POST("/month-end", h.Report.GenerateReportPack)
		}
	}

	return r
}
