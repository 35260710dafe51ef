package router

import (
	"decision-console/internal/handler"
	"decision-console/internal/svc"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(svcCtx *svc.ServiceContext) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if svcCtx.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(svcCtx.Registry, promhttp.HandlerOpts{})))
	}

	cookieName := svcCtx.Config.Session.CookieName
	viewHandler := handler.NewViewHandler(Views)
	actionHandler := handler.NewActionHandler(svcCtx.Archiver)
	sessionHandler := handler.NewSessionHandler(svcCtx.Sessions, cookieName)
	streamHandler := handler.NewStreamHandler()
	diagnosticHandler := handler.NewDiagnosticHandler(svcCtx.Diagnostics)

	r.GET("/routes", viewHandler.Routes)

	// 以下路由都绑定到会话 store
	s := r.Group("", handler.SessionMiddleware(svcCtx.Sessions, cookieName))
	{
		s.GET("/views/*path", viewHandler.Show)
		s.GET("/ws", streamHandler.Stream)
		s.GET("/diagnostics", diagnosticHandler.ListDiagnostics)
		s.GET("/session", sessionHandler.GetSession)
		s.DELETE("/session", sessionHandler.EndSession)

		actions := s.Group("/actions")
		{
			actions.POST("/config/refresh", actionHandler.RefreshConfig)
			actions.POST("/tasks/refresh", actionHandler.RefreshTasks)
			actions.POST("/strategies/refresh", actionHandler.RefreshStrategies)
			actions.POST("/results/refresh", actionHandler.RefreshResults)
			actions.POST("/stats/refresh", actionHandler.RefreshStats)
			actions.POST("/task", actionHandler.SetTask)
			actions.POST("/strategy", actionHandler.SetStrategy)
			actions.POST("/run", actionHandler.Run)
			actions.POST("/compare", actionHandler.Compare)
			actions.GET("/history", actionHandler.History)
			actions.DELETE("/history/:id", actionHandler.DeleteHistory)
			actions.GET("/logs", actionHandler.Logs)
			actions.POST("/export", actionHandler.Export)
			actions.GET("/system/status", actionHandler.SystemStatus)
			actions.GET("/health", actionHandler.Health)
			actions.GET("/data", actionHandler.ListData)
			actions.POST("/data", actionHandler.CreateData)
			actions.DELETE("/data/:id", actionHandler.DeleteData)
		}
	}

	return r
}
