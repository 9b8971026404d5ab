package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/avolkov/blogpulse/internal/common"
	"github.com/avolkov/blogpulse/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// pongWait bounds how long a silent connection is kept.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// TokenVerifier is the subset of the token authority the handshake needs.
// Only the signature is checked: the handshake does not consult the durable
// store, so a revoked token can still open a connection.
type TokenVerifier interface {
	VerifyRefreshSignature(token string) (userID string, err error)
}

// Gateway upgrades authenticated HTTP requests to websocket connections and
// binds each one to its user's channel in the registry.
type Gateway struct {
	verifier TokenVerifier
	registry *Registry
	upgrader websocket.Upgrader
	logger   logging.Logger
}

func NewGateway(verifier TokenVerifier, registry *Registry, logger logging.Logger) *Gateway {
	return &Gateway{
		verifier: verifier,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With("module", "realtime"),
	}
}

// Registry exposes the connection registry, used by the fanout path.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Publish delivers an unread-count event to every live connection of the
// user.
func (g *Gateway) Publish(userID string, count int) {
	g.registry.Publish(userID, Event{
		Name: common.UnreadCountEvent,
		Data: UnreadCountPayload{NotificationCount: count},
	})
}

// Handler implements the push handshake. The client presents the same
// refresh cookie used on the HTTP auth path; on failure the connection is
// refused with 401 and no retry happens server-side.
func (g *Gateway) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(common.RefreshTokenCookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := g.verifier.VerifyRefreshSignature(cookie.Value)
		if err != nil {
			g.logger.Warn(r.Context(), "push handshake rejected", "remote", r.RemoteAddr)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := g.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			g.logger.Warn(r.Context(), "websocket upgrade failed", "error", err.Error())
			return
		}

		binding := g.registry.Bind(userID)
		g.logger.Info(r.Context(), "push connection bound", "user_id", userID, "conn_id", binding.id)

		go g.writePump(conn, binding)
		go g.readPump(r.Context(), conn, binding)
	}
}

// writePump drains the connection's event queue onto the wire and keeps
// the connection alive with pings.
func (g *Gateway) writePump(conn *websocket.Conn, c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames (the channel is push-only) and unbinds
// on disconnect.
func (g *Gateway) readPump(ctx context.Context, conn *websocket.Conn, c *connection) {
	defer func() {
		g.registry.Unbind(c)
		_ = conn.Close()
		g.logger.Info(ctx, "push connection dropped", "user_id", c.userID, "conn_id", c.id)
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
