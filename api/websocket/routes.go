package websocket

import (
	"github.com/gin-gonic/gin"

	ws "codeberg.org/talespin/server/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, checkOrigin OriginChecker) {
	router.GET("/ws", WebSocketHandler(hub, checkOrigin))
}
