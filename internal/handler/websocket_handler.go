package handler

import (
	"context"
	"net/http"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/websocket"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// JWTValidator validates session JWTs and resolves the owning user
type JWTValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
}

// UnreadAlertSource lists a user's unread alerts, newest first
type UnreadAlertSource interface {
	GetUnread(ctx context.Context, userID uuid.UUID) ([]*domain.Alert, error)
}

// WebSocketHandler upgrades dashboard connections to the live event feed
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      JWTValidator
	alerts         UnreadAlertSource
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. alerts may be nil, in
// which case new connections get no alert snapshot.
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, alerts UnreadAlertSource, allowedOrigins []string) *WebSocketHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		alerts:         alerts,
		allowedOrigins: origins,
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts configured dashboard origins and non-browser clients
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigins[origin] {
		return true
	}
	log.Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles GET /ws. The session JWT travels in the token query
// parameter because browsers cannot set headers on the upgrade request.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	ctx := c.Request().Context()
	userID, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, userID, h.hub)
	h.hub.Register(client)
	h.sendAlertSnapshot(ctx, client)

	log.Info().
		Str("user_id", userID.String()).
		Str("client_id", client.ID()).
		Int("connections", h.hub.ClientCount(userID)).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}

// sendAlertSnapshot queues the unread alert badge state ahead of any live event.
// A lookup failure only costs the snapshot; the feed stays open.
func (h *WebSocketHandler) sendAlertSnapshot(ctx context.Context, client *websocket.Client) {
	if h.alerts == nil {
		return
	}
	unread, err := h.alerts.GetUnread(ctx, client.UserID())
	if err != nil {
		log.Warn().Err(err).Str("user_id", client.UserID().String()).Msg("Failed to load unread alerts for WebSocket snapshot")
		return
	}
	data, err := websocket.AlertSnapshot(unread).ToJSON()
	if err != nil {
		return
	}
	if err := client.Send(data); err != nil {
		log.Debug().Err(err).Str("client_id", client.ID()).Msg("WebSocket snapshot dropped")
	}
}
