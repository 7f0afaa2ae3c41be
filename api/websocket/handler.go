package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/errors"
	"codeberg.org/talespin/server/internal/logger"
	ws "codeberg.org/talespin/server/internal/websocket"
)

type OriginChecker func(r *http.Request) bool

// WebSocketHandler godoc
// @Summary Live community feed
// @Description Upgrades to a websocket that streams like_updated, comment_added and post_created events.
// @Tags websocket
// @Param token query string false "JWT for authenticated viewers"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/ws [get]
func WebSocketHandler(hub *ws.Hub, checkOrigin OriginChecker) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.BadRequest(c, "invalid parameters", err)
			return
		}

		var userID string

		// browsers cannot set headers on websocket requests, so the token rides in the query
		if params.Token != "" {
			claims, err := auth.ValidateJWT(params.Token)
			if err != nil {
				errors.Unauthorized(c, "invalid or expired token")
				return
			}

			userID = claims.UserID
		}

		// check connection limits before accepting new connection
		ipAddress := c.ClientIP()
		canAccept, reason := hub.CanAcceptConnection(userID, ipAddress)

		if !canAccept {
			errors.TooManyRequests(c, reason)
			return
		}

		// upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection", "ip", ipAddress)
			return
		}

		// track IP connection only after successful upgrade
		hub.TrackIPConnection(ipAddress)

		client := ws.NewClient(ws.GenerateClientID(), userID, ipAddress, conn, hub)

		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()

		logger.Info("websocket connection established",
			"client_id", client.ID,
			"user_id", userID,
			"ip", ipAddress,
		)
	}
}
