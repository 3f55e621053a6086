// Package app wires the session store, API client and services together for
// one backend. The CLI and the web UI both run on an App.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/marquee-dev/marquee/internal/account"
	"github.com/marquee-dev/marquee/internal/authz"
	"github.com/marquee-dev/marquee/internal/catalog"
	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/config"
	"github.com/marquee-dev/marquee/internal/moderation"
	"github.com/marquee-dev/marquee/internal/session"
	"github.com/marquee-dev/marquee/internal/storage"
)

// App holds everything a surface needs to serve views.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Sessions   *session.Store
	API        *client.Client
	Accounts   *account.Service
	Catalog    *catalog.Service
	Moderation *moderation.Service
	Authz      *authz.Authorizer

	storage     storage.Storage
	unsubscribe func()
}

// New opens the configured storage and builds the services on top of it.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	raw, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	return NewWithStorage(cfg, log, raw), nil
}

// NewWithStorage is New over an already opened storage. The storage is scoped
// to the configured backend origin here.
func NewWithStorage(cfg *config.Config, log zerolog.Logger, raw storage.Storage) *App {
	store := session.NewStore(storage.Scoped(raw, cfg.API.BaseURL))

	a := &App{
		Config:   cfg,
		Logger:   log,
		Sessions: store,
		Authz:    authz.New(store),
		storage:  raw,
	}

	opts := []client.Option{
		client.WithLogger(log),
		client.WithUnauthorizedHandler(func(token string) { a.Accounts.Expire(token) }),
	}
	if cfg.API.Timeout > 0 {
		opts = append(opts, client.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}))
	}
	a.API = client.New(cfg.API.BaseURL, store, opts...)

	a.Accounts = account.New(a.API, store,
		account.WithLogger(log),
		account.WithLogoutTimeout(cfg.API.LogoutTimeout),
	)
	a.Catalog = catalog.New(a.API, store, catalog.WithLogger(log))
	a.Moderation = moderation.New(a.API, moderation.WithLogger(log))
	a.unsubscribe = store.Subscribe(logSessionChange(log))

	return a
}

// logSessionChange records logins and logouts. The token is never logged.
func logSessionChange(log zerolog.Logger) func(session.Session) {
	return func(s session.Session) {
		if !s.Authenticated() {
			log.Debug().Msg("Session cleared")
			return
		}
		log.Debug().
			Str("user_id", s.UserID).
			Str("username", s.Username).
			Bool("is_admin", s.IsAdmin).
			Msg("Session stored")
	}
}

// Close lets pending logout notifications finish within ctx and releases the
// storage.
func (a *App) Close(ctx context.Context) error {
	if err := a.Accounts.Wait(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Gave up waiting for logout notification")
	}
	a.unsubscribe()
	return storage.Close(a.storage)
}
