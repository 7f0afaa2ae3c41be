package websocket

import (
	"context"
	"encoding/json"
	"time"

	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/metrics"
)

func NewHub() *Hub {
	return &Hub{
		clients:         make(map[string]*Client),
		Register:        make(chan *Client),
		Unregister:      make(chan *Client),
		Broadcast:       make(chan *Message, 256),
		shutdown:        make(chan struct{}),
		userConnections: make(map[string]int),
		ipConnections:   make(map[string]int),
	}
}

// creates a message with the payload marshaled
func NewMessage(msgType string, payload any) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		msg.Payload = raw
	}

	return msg, nil
}

// routes Publish through r so every instance sees the event
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.relay = r
}

// starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.Broadcast:
			h.broadcast(message)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// Publish sends a feed event to every connected client. With a relay the
// event travels through it and comes back to this hub like any other.
func (h *Hub) Publish(ctx context.Context, msgType string, payload any) error {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()

	if relay != nil {
		return relay.Publish(ctx, msg)
	}

	return h.Deliver(ctx, msg)
}

// queues msg for local clients only
func (h *Hub) Deliver(ctx context.Context, msg *Message) error {
	select {
	case h.Broadcast <- msg:
		return nil
	case <-h.shutdown:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	h.clients[client.ID] = client

	if client.UserID != "" {
		h.userConnections[client.UserID]++
	}

	count := len(h.clients)

	h.mu.Unlock()

	metrics.SetWebsocketClients(count)

	logger.Info("client registered",
		"client_id", client.ID,
		"user_id", client.UserID,
	)

	welcome, err := NewMessage(TypeWelcome, WelcomePayload{ClientID: client.ID, Clients: count})
	if err == nil {
		if sendErr := client.Send(welcome); sendErr != nil {
			logger.ErrorErr(sendErr, "failed to send welcome", "client_id", client.ID)
		}
	}
}

// removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	if _, exists := h.clients[client.ID]; !exists {
		h.mu.Unlock()
		return
	}

	delete(h.clients, client.ID)
	client.Close()

	if client.UserID != "" {
		h.userConnections[client.UserID]--

		if h.userConnections[client.UserID] <= 0 {
			delete(h.userConnections, client.UserID)
		}
	}

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]--

		if h.ipConnections[client.IPAddress] <= 0 {
			delete(h.ipConnections, client.IPAddress)
		}
	}

	count := len(h.clients)

	h.mu.Unlock()

	metrics.SetWebsocketClients(count)

	logger.Info("client unregistered", "client_id", client.ID)
}

// sends a message to every client (sequence assigned under lock)
func (h *Hub) broadcast(msg *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sequence++
	msg.Sequence = h.sequence

	for clientID, client := range h.clients {
		if err := client.Send(msg); err != nil {
			logger.ErrorErr(err, "failed to send message to client",
				"client_id", clientID,
				"message_type", msg.Type,
			)
		}
	}
}

// returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// stops Run; safe to call more than once
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		close(h.shutdown)
	})
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()

	logger.Info("notifying clients of server shutdown")

	shutdownMsg, err := NewMessage(TypeServerShutdown, ServerShutdownPayload{
		Reason: "server is shutting down for maintenance",
	})
	if err == nil {
		for _, client := range h.clients {
			if err := client.Send(shutdownMsg); err != nil {
				logger.ErrorErr(err, "failed to send shutdown notification", "client_id", client.ID)
			}
		}
	}

	hasClients := len(h.clients) > 0

	h.mu.Unlock()

	// give clients time to receive the shutdown message
	if hasClients {
		time.Sleep(500 * time.Millisecond)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing all websocket connections")

	for _, client := range h.clients {
		client.Close()
	}

	// clear all clients and connection tracking
	h.clients = make(map[string]*Client)
	h.userConnections = make(map[string]int)
	h.ipConnections = make(map[string]int)

	metrics.SetWebsocketClients(0)
}

// checks if a new connection should be allowed based on limits
func (h *Hub) CanAcceptConnection(userID, ipAddress string) (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// check per-user limit (only for authenticated users)
	if userID != "" {
		count := h.userConnections[userID]
		if count >= maxConnectionsPerUser {
			return false, "Maximum connections per user exceeded"
		}
	}

	// check per-IP limit
	count := h.ipConnections[ipAddress]
	if count >= maxConnectionsPerIP {
		return false, "Maximum connections per IP address exceeded"
	}

	return true, ""
}

// increments the connection count for an IP address
func (h *Hub) TrackIPConnection(ipAddress string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ipConnections[ipAddress]++
}
