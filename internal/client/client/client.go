// Package client is the HTTP/WebSocket client for a BlogPulse server. It
// keeps the short-lived access token in memory, carries the refresh token
// in a cookie jar, and transparently refreshes the access token when a
// request comes back 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/avolkov/blogpulse/internal/client/models"
)

// ErrLoggedOut is returned once a refresh has failed and the session is
// considered over. The caller has to log in again.
var ErrLoggedOut = errors.New("logged out")

type Client struct {
	baseURL string
	http    *http.Client
	coord   *Coordinator

	mu          sync.RWMutex
	accessToken string
	loggedIn    bool
	user        *models.Profile
}

// New builds a Client for the given server base URL (e.g.
// "http://localhost:8080"). The coordinator is injected so tests can share
// one between clients or observe its state.
func New(baseURL string, coord *Coordinator) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if coord == nil {
		coord = NewCoordinator()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
		coord:   coord,
	}, nil
}

func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loggedIn
}

func (c *Client) User() *models.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

func (c *Client) setSession(token string, user *models.Profile) {
	c.mu.Lock()
	c.accessToken = token
	if user != nil {
		c.user = user
	}
	c.loggedIn = true
	c.mu.Unlock()
}

func (c *Client) setLoggedOut() {
	c.mu.Lock()
	c.accessToken = ""
	c.user = nil
	c.loggedIn = false
	c.mu.Unlock()
}

// --- auth calls ---

// Login authenticates and stores the session. The refresh token arrives as
// an http-only cookie and lives in the jar from here on.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp models.SessionResponse
	err := c.postJSON(ctx, "/auth/login", map[string]string{"email": email, "password": password}, http.StatusOK, &resp)
	if err != nil {
		return err
	}
	c.setSession(resp.AccessToken, resp.User)
	return nil
}

// Register creates an account. The server hands back a refresh cookie but
// no access token, so a Login call is still needed afterwards.
func (c *Client) Register(ctx context.Context, email, password, role string) error {
	return c.postJSON(ctx, "/auth/register", map[string]string{"email": email, "password": password, "role": role}, http.StatusCreated, nil)
}

// Logout revokes the refresh token server-side and forgets the session.
// The endpoint wants the bearer token alongside the cookie.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doAuthed(ctx, http.MethodPost, "/auth/logout", nil, http.StatusNoContent, nil)
	c.setLoggedOut()
	return err
}

// refreshAccess performs or awaits the single-flight refresh and returns
// the new access token.
func (c *Client) refreshAccess(ctx context.Context) (string, error) {
	leader, wait := c.coord.begin()
	if !leader {
		return await(ctx, wait)
	}

	var resp models.SessionResponse
	err := c.postJSON(ctx, "/auth/refresh-token", nil, http.StatusOK, &resp)
	if err != nil {
		c.coord.fail()
		c.setLoggedOut()
		return "", fmt.Errorf("%w: %w", ErrLoggedOut, err)
	}

	c.setSession(resp.AccessToken, resp.User)
	c.coord.succeed(resp.AccessToken)
	return resp.AccessToken, nil
}

// --- authenticated API calls ---

// Notifications fetches one page of the feed. Listing also resets the
// unread counter server-side.
func (c *Client) Notifications(ctx context.Context, page, limit int) (*models.Feed, error) {
	var feed models.Feed
	path := fmt.Sprintf("/notifications?page=%d&limit=%d", page, limit)
	if err := c.doAuthed(ctx, http.MethodGet, path, nil, http.StatusOK, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// MarkRead flips one notification, or all of them when id is empty.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	path := "/notifications/read"
	if id != "" {
		path = "/notifications/" + id + "/read"
	}
	return c.doAuthed(ctx, http.MethodPatch, path, nil, http.StatusOK, nil)
}

// CreateComment posts a comment on a blog.
func (c *Client) CreateComment(ctx context.Context, blogID, content string) error {
	return c.doAuthed(ctx, http.MethodPost, "/blogs/"+blogID+"/comments", map[string]string{"content": content}, http.StatusCreated, nil)
}

// doAuthed sends a bearer-authenticated request and retries it exactly once
// after a refresh when the server answers 401.
func (c *Client) doAuthed(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	status, err := c.send(ctx, method, path, body, c.AccessToken(), out)
	if err != nil {
		return err
	}
	if status != http.StatusUnauthorized {
		return checkStatus(status, wantStatus)
	}

	token, err := c.refreshAccess(ctx)
	if err != nil {
		return err
	}

	status, err = c.send(ctx, method, path, body, token, out)
	if err != nil {
		return err
	}
	return checkStatus(status, wantStatus)
}

// --- plumbing ---

func checkStatus(got, want int) error {
	if got != want {
		return fmt.Errorf("unexpected status %d", got)
	}
	return nil
}

// send issues one request. out is only decoded into when the response is a
// 2xx with a body.
func (c *Client) send(ctx context.Context, method, path string, body any, token string, out any) (int, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

// postJSON is send + status check for the unauthenticated auth endpoints.
func (c *Client) postJSON(ctx context.Context, path string, body any, wantStatus int, out any) error {
	status, err := c.send(ctx, http.MethodPost, path, body, "", out)
	if err != nil {
		return err
	}
	return checkStatus(status, wantStatus)
}
