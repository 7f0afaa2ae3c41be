package websocket

type ConnectParams struct {
	Token string `form:"token"` // optional jwt; anonymous viewers may watch the feed
}
