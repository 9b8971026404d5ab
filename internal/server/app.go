// Package server initializes and runs the BlogPulse server: database,
// migrations, token authority, domain services, realtime gateway, and the
// HTTP endpoint, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avolkov/blogpulse/internal/logging"
	"github.com/avolkov/blogpulse/internal/server/auth"
	"github.com/avolkov/blogpulse/internal/server/config"
	"github.com/avolkov/blogpulse/internal/server/httpapi"
	"github.com/avolkov/blogpulse/internal/server/realtime"
	"github.com/avolkov/blogpulse/internal/server/repositories/repomanager"
	"github.com/avolkov/blogpulse/internal/server/services/comments"
	"github.com/avolkov/blogpulse/internal/server/services/notifications"
	"github.com/avolkov/blogpulse/internal/server/services/sessions"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config *config.Config
	logger logging.Logger

	db         *sql.DB
	httpServer *httpapi.Server
	bridge     *realtime.Bridge
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	// The store-presence check for refresh tokens runs against the same
	// repository the session service writes to.
	authority := auth.NewAuthority(
		[]byte(cfg.AccessSecretKey),
		[]byte(cfg.RefreshSecretKey),
		cfg.AccessTokenValidityDuration,
		cfg.RefreshTokenValidityDuration,
		repos.RefreshTokens(db),
	)

	gateway := realtime.NewGateway(authority, realtime.NewRegistry(), logger)

	var publisher notifications.Publisher = gateway
	var bridge *realtime.Bridge
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		bridge = realtime.NewBridge(client, cfg.RedisChannel, gateway, logger)
		publisher = bridge
	}

	sessionService := sessions.NewService(db, repos, authority, cfg.AdminEmailList())
	notificationService := notifications.NewService(db, repos, publisher, notifications.DefaultResolvers(db, repos), logger)
	commentService := comments.NewService(db, repos, notificationService, logger)

	httpServer := httpapi.NewServer(httpapi.Options{
		Addr:               cfg.EndpointAddrHTTP,
		RefreshTokenTTL:    cfg.RefreshTokenValidityDuration,
		SecureCookies:      cfg.IsProduction(),
		LoginRatePerMinute: 30,
	}, sessionService, notificationService, commentService, authority, gateway.Handler(), logger)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		httpServer: httpServer,
		bridge:     bridge,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.bridge != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.bridge.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
