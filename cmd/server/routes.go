package main

import (
	"net/http"

	"codeberg.org/talespin/server/api/rest/ai"
	"codeberg.org/talespin/server/api/rest/auth"
	"codeberg.org/talespin/server/api/rest/characters"
	"codeberg.org/talespin/server/api/rest/community"
	"codeberg.org/talespin/server/api/rest/conversations"
	"codeberg.org/talespin/server/api/rest/health"
	"codeberg.org/talespin/server/api/rest/social"
	"codeberg.org/talespin/server/api/rest/stories"
	"codeberg.org/talespin/server/api/rest/users"
	"codeberg.org/talespin/server/api/websocket"
	"codeberg.org/talespin/server/docs"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/metrics"
	ws "codeberg.org/talespin/server/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	cfg := server.config
	limiter := server.services.Limiter

	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())
	router.Use(metrics.Middleware())
	router.Use(CORSMiddleware(cfg.Environment, cfg.CORSOrigins))
	router.Use(limiter.Middleware())

	router.GET("/health", health.Handler(server.db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/doc.json", swaggerHandler)

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(v1, server.userRepo)
		users.RegisterRoutes(v1, server.userRepo, server.services.Quota)
		characters.RegisterRoutes(v1, server.characterRepo, server.services.Indexer)
		stories.RegisterRoutes(v1, server.storyRepo, server.userRepo)
		conversations.RegisterRoutes(v1, server.conversationRepo, server.characterRepo)
		community.RegisterRoutes(v1, server.communityRepo, server.hub)
		social.RegisterRoutes(v1, server.socialRepo)
		ai.RegisterRoutes(v1, server.services.Agent, limiter.UserMiddleware())
		websocket.RegisterRoutes(v1, server.hub, ws.NewOriginChecker(cfg.Environment, cfg.CORSOrigins))
	}
}

func swaggerHandler(c *gin.Context) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
