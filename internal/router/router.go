package router

import (
	"Gated_Community/internal/handler"
	"Gated_Community/internal/middleware"
	"Gated_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Community *service.CommunityService
	Session   *service.SessionService
}

func InitRouter(svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	community := handler.NewCommunityHandler(svc.Community)
	session := handler.NewSessionHandler(svc.Session)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 钱包会话
	sessionGroup := r.Group("/api/session")
	{
		sessionGroup.POST("/connect", session.Connect)
		sessionGroup.POST("/disconnect", middleware.RequireSession(svc.Session), session.Disconnect)
	}

	// 社区相关接口
	communityGroup := r.Group("/api/community")
	communityGroup.Use(middleware.OptionalSession(svc.Session))
	{
		communityGroup.GET("/list", community.List)
		communityGroup.GET("/stats", community.Stats)
		communityGroup.GET("/status", community.Status)
		communityGroup.GET("/status/stream", community.StatusStream)
		communityGroup.GET("/:id", community.Get)
		communityGroup.POST("/:id/verify", community.Verify)
		communityGroup.POST("/create", middleware.RequireSession(svc.Session), community.Create)
	}

	return r
}
