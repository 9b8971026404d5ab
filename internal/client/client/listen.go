package client

import (
	"context"
	"strings"

	"github.com/avolkov/blogpulse/internal/client/models"
	"github.com/gorilla/websocket"
)

// Listen dials the push endpoint and invokes handler for every unread-count
// event until ctx ends or the connection drops. The handshake authenticates
// with the refresh cookie from the jar, so Login must have succeeded first.
func (c *Client) Listen(ctx context.Context, handler func(models.UnreadCount)) error {
	dialer := websocket.Dialer{Jar: c.http.Jar}

	conn, resp, err := dialer.DialContext(ctx, wsURL(c.baseURL)+"/ws", nil)
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteMessage(websocket.PongMessage, []byte(appData))
	})

	for {
		var ev models.PushEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		handler(ev.Data)
	}
}

func wsURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}
