package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// message type constants for the live feed
const (
	// is sent when a post's like count changes
	TypeLikeUpdated = "like_updated"

	// is sent when a comment is added to a post
	TypeCommentAdded = "comment_added"

	// is sent when a post is shared to the feed
	TypePostCreated = "post_created"

	// is sent to a client right after it connects
	TypeWelcome = "welcome"

	// is sent when an error occurs
	TypeError = "error"

	// is sent by clients to keep the connection alive
	TypePing = "ping"

	// is sent by server in response to ping
	TypePong = "pong"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// feed clients only send pings
	maxMessageSize = 4 * 1024

	sendBufferSize = 256
)

// hub connection limit constants
const (
	maxConnectionsPerUser = 5
	maxConnectionsPerIP   = 10
)

// errors
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrInvalidMessage   = errors.New("invalid message format")
	ErrHubStopped       = errors.New("hub stopped")
)

// represents a websocket message with typed payload
type Message struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Sequence  uint64          `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// carries a post's new like count after a toggle
type LikeUpdatedPayload struct {
	PostID     string `json:"post_id"`
	UserID     string `json:"user_id"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

type CommentAddedPayload struct {
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
}

type PostCreatedPayload struct {
	PostID      string `json:"post_id"`
	UserID      string `json:"user_id"`
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Caption     string `json:"caption,omitempty"`
}

type WelcomePayload struct {
	ClientID string `json:"client_id"`
	Clients  int    `json:"clients"`
}

type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// represents a connected feed client
type Client struct {
	// unique client identifier
	ID string

	// authenticated user, empty for anonymous viewers
	UserID string

	// client ip, used for connection limits
	IPAddress string

	conn *websocket.Conn
	hub  *Hub
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

// fans feed events out to connected clients
type Hub struct {
	// connected clients by id
	clients map[string]*Client

	// register requests from clients
	Register chan *Client

	// unregister requests from clients
	Unregister chan *Client

	// messages to deliver to every client on this instance
	Broadcast chan *Message

	// mutex for thread-safe access to clients
	mu sync.RWMutex

	// channel to signal shutdown
	shutdown     chan struct{}
	shutdownOnce sync.Once

	// connection tracking: user ID -> count of connections
	userConnections map[string]int

	// connection tracking: IP address -> count of connections
	ipConnections map[string]int

	// sequence number for message ordering on this instance
	sequence uint64

	// optional cross-instance fan-out; nil delivers locally
	relay Relay
}

// publishes feed events to every server instance
type Relay interface {
	Publish(ctx context.Context, msg *Message) error
}
