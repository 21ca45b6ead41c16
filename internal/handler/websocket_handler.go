package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	ws "github.com/bajeti/bajeti-backend/internal/websocket"
)

// TokenResolver validates a raw token and resolves the internal user ID.
// Implemented by middleware.AuthMiddleware.
type TokenResolver interface {
	ResolveUserFromToken(ctx context.Context, token string) (uuid.UUID, error)
}

// WebSocketHandler upgrades connections for the live event stream
type WebSocketHandler struct {
	hub      *ws.Hub
	resolver TokenResolver
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *ws.Hub, resolver TokenResolver, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		resolver: resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker allows requests with no Origin header (non-browser clients)
// and browser requests from the configured origins
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
		}
		allowed[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		return allowed[origin]
	}
}

// HandleConnection handles GET /api/v1/ws
// Browsers cannot set an Authorization header on WebSocket requests, so the
// token comes in as a query parameter.
func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return NewUnauthorizedError(c, "Missing token")
	}

	userID, err := h.resolver.ResolveUserFromToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket token rejected")
		return NewUnauthorizedError(c, "Invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("WebSocket upgrade failed")
		return nil
	}

	client := ws.NewClient(conn, userID, h.hub)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	return nil
}
