// Package cli is the interactive terminal frontend for BlogPulse: a small
// REPL that logs in, browses notifications, posts comments, and tails the
// live unread counter.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/avolkov/blogpulse/internal/client/client"
	"github.com/avolkov/blogpulse/internal/client/config"
)

type App struct {
	config *config.Config
	client *client.Client
	reader *bufio.Reader
	out    io.Writer

	// cancelListen stops the background unread-count tail, when running.
	cancelListen context.CancelFunc
}

func NewApp(cfg *config.Config) (*App, error) {
	c, err := client.New(cfg.ServerBaseURL, client.NewCoordinator())
	if err != nil {
		return nil, err
	}
	return &App{
		config: cfg,
		client: c,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}
