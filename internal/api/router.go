package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
)

// corsAllowHeaders 后台页面调用时携带的请求头
var corsAllowHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// CORS 后台页面跨域调用，预检请求直接返回204
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    corsAllowHeaders,
		MaxAge:          12 * time.Hour,
	})
}

// NewRouter 注册路由；debug模式下额外注册pprof
func NewRouter(mode string, actions *ActionHandler, schedules *ScheduleHandler) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()
	r.Use(gin.Recovery(), CORS())
	if mode == gin.DebugMode {
		r.Use(gin.Logger())
		// 注册ppof 方便调试和监测性能问题
		pprof.Register(r)
	}

	// 不带Origin的OPTIONS请求不会被CORS中间件拦截
	r.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/api/actions", actions.HandleAction)
	r.GET("/api/schedule/:game", schedules.GetSchedule)
	r.GET("/api/sync-runs/:game", schedules.ListSyncRuns)
	return r
}
