package websocket

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// subscribe requests are the only inbound traffic
	maxMessageSize = 512

	// an alert check can emit one alert per budget and goal at once
	sendBuffer = 256
)

var (
	errUnknownAction = errors.New("unknown action")
	errUnknownEntity = errors.New("unknown entity")
)

// Subscribable lists the entities a dashboard can follow
var Subscribable = []EntityType{EntityTypeAlert, EntityTypeExpense, EntityTypeIncome, EntityTypeGoal}

// SubscriptionRequest is sent by the dashboard to narrow or widen its feed.
//
//	{"action": "subscribe", "entities": ["alert", "goal"]}
type SubscriptionRequest struct {
	Action   string       `json:"action"`
	Entities []EntityType `json:"entities"`
}

// Client is one dashboard connection of a user. A new client receives every
// entity until it sends its first subscribe request; from then on only the
// subscribed entities are delivered.
type Client struct {
	id     string
	userID uuid.UUID
	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte

	mu        sync.RWMutex
	closed    bool
	filtered  bool
	entities  map[EntityType]bool
	closeOnce sync.Once
}

// NewClient creates a client subscribed to every entity
func NewClient(conn *websocket.Conn, userID uuid.UUID, hub *Hub) *Client {
	return &Client{
		id:       uuid.New().String(),
		userID:   userID,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, sendBuffer),
		entities: make(map[EntityType]bool),
	}
}

func (c *Client) ID() string        { return c.id }
func (c *Client) UserID() uuid.UUID { return c.userID }

// Wants reports whether events about entity should reach this client
func (c *Client) Wants(entity EntityType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.filtered || c.entities[entity]
}

// Subscriptions returns the entities the client receives, in canonical order
func (c *Client) Subscriptions() []EntityType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]EntityType, 0, len(Subscribable))
	for _, e := range Subscribable {
		if !c.filtered || c.entities[e] {
			out = append(out, e)
		}
	}
	return out
}

// Send queues data; a full buffer means the dashboard stopped reading
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientClosed
	}
}

// Close closes the connection. Safe to call from both pumps.
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		if c.conn != nil {
			closeErr = c.conn.Close()
		}
	})
	return closeErr
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// handleMessage applies a subscription request and acknowledges it with the
// resulting subscription set, or with an error event when it is malformed
func (c *Client) handleMessage(data []byte) {
	var req SubscriptionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.reply(SubscriptionRejected("malformed message"))
		return
	}
	if err := c.applySubscription(req); err != nil {
		log.Debug().
			Err(err).
			Str("client_id", c.id).
			Str("action", req.Action).
			Msg("WebSocket subscription rejected")
		c.reply(SubscriptionRejected(err.Error()))
		return
	}
	c.reply(SubscriptionUpdated(c.Subscriptions()))
}

func (c *Client) applySubscription(req SubscriptionRequest) error {
	for _, e := range req.Entities {
		if !slices.Contains(Subscribable, e) {
			return errUnknownEntity
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch req.Action {
	case "subscribe":
		if !c.filtered {
			c.filtered = true
			clear(c.entities)
		}
		for _, e := range req.Entities {
			c.entities[e] = true
		}
	case "unsubscribe":
		if !c.filtered {
			c.filtered = true
			for _, e := range Subscribable {
				c.entities[e] = true
			}
		}
		for _, e := range req.Entities {
			delete(c.entities, e)
		}
	case "reset":
		c.filtered = false
		clear(c.entities)
	default:
		return errUnknownAction
	}
	return nil
}

func (c *Client) reply(event Event) {
	data, err := event.ToJSON()
	if err != nil {
		return
	}
	if err := c.Send(data); err != nil {
		log.Debug().Err(err).Str("client_id", c.id).Msg("WebSocket reply dropped")
	}
}

// ReadPump reads subscription requests until the connection drops.
// Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("user_id", c.userID.String()).
					Msg("WebSocket unexpected close")
			}
			return
		}
		if msgType == websocket.TextMessage {
			c.handleMessage(data)
		}
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
// Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("user_id", c.userID.String()).
					Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
