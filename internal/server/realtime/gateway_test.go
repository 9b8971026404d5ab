package realtime

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/avolkov/blogpulse/internal/common"
	"github.com/avolkov/blogpulse/internal/logging"
	"github.com/gorilla/websocket"
)

type fakeVerifier struct {
	userID string
	err    error
}

func (f fakeVerifier) VerifyRefreshSignature(token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.userID, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func newTestGateway(v TokenVerifier) (*Gateway, *httptest.Server) {
	g := NewGateway(v, NewRegistry(), testLogger())
	srv := httptest.NewServer(g.Handler())
	return g, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, srv *httptest.Server, cookie string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if cookie != "" {
		header.Set("Cookie", common.RefreshTokenCookieName+"="+cookie)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	if err != nil {
		t.Fatalf("dial error: %v (resp=%+v)", err, resp)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn
}

func waitForConnections(t *testing.T, g *Gateway, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g.Registry().Connections(userID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d connections for %s, got %d", want, userID, g.Registry().Connections(userID))
}

func TestHandshake_MissingCookieRefused(t *testing.T) {
	_, srv := newTestGateway(fakeVerifier{userID: "u1"})
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestHandshake_BadSignatureRefused(t *testing.T) {
	_, srv := newTestGateway(fakeVerifier{err: errors.New("bad signature")})
	defer srv.Close()

	header := http.Header{}
	header.Set("Cookie", common.RefreshTokenCookieName+"=bogus")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 refusal, got %+v", resp)
	}
}

func TestHandshake_SignatureOnly_NoStoreCheck(t *testing.T) {
	// The verifier never consults the store: a fakeVerifier that accepts
	// any string stands in for a revoked-but-well-signed token.
	g, srv := newTestGateway(fakeVerifier{userID: "u1"})
	defer srv.Close()

	conn := dial(t, srv, "revoked-but-signed")
	defer conn.Close()

	waitForConnections(t, g, "u1", 1)
}

func TestPublish_ReachesEveryConnectionOfUser(t *testing.T) {
	g, srv := newTestGateway(fakeVerifier{userID: "u1"})
	defer srv.Close()

	conn1 := dial(t, srv, "tok")
	defer conn1.Close()
	conn2 := dial(t, srv, "tok")
	defer conn2.Close()

	waitForConnections(t, g, "u1", 2)

	g.Publish("u1", 5)

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var ev struct {
			Name string `json:"event"`
			Data struct {
				NotificationCount int `json:"notificationCount"`
			} `json:"data"`
		}
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("connection %d: read error: %v", i+1, err)
		}
		if ev.Name != common.UnreadCountEvent {
			t.Fatalf("connection %d: unexpected event %q", i+1, ev.Name)
		}
		if ev.Data.NotificationCount != 5 {
			t.Fatalf("connection %d: unexpected count %d", i+1, ev.Data.NotificationCount)
		}
	}
}

func TestDisconnect_DropsBinding(t *testing.T) {
	g, srv := newTestGateway(fakeVerifier{userID: "u1"})
	defer srv.Close()

	conn := dial(t, srv, "tok")
	waitForConnections(t, g, "u1", 1)

	conn.Close()
	waitForConnections(t, g, "u1", 0)
}
