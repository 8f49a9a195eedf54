// Package app wires the session, the backend clients and the per-screen
// controllers together.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/idilsaglam/mytodo/internal/api"
	"github.com/idilsaglam/mytodo/internal/config"
	"github.com/idilsaglam/mytodo/internal/favorites"
	"github.com/idilsaglam/mytodo/internal/session"
	"github.com/idilsaglam/mytodo/internal/store/jsonstore"
)

type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Session   *session.Manager
	Client    *api.Client // auth, profile, todos
	Recipe    *api.Client // recipes, uploads
	Favorites *favorites.Set
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := jsonstore.New(cfg.Home)
	sm := session.NewManager(store,
		session.WithEnvToken(cfg.Token),
		session.WithLogger(logger.With("component", "session")),
	)
	favs, err := favorites.Load(store)
	if err != nil {
		return nil, err
	}
	clientLog := logger.With("component", "api")
	return &App{
		Config:    cfg,
		Logger:    logger,
		Session:   sm,
		Client:    api.New(cfg.APIURL, sm, api.WithTimeout(cfg.Timeout), api.WithLogger(clientLog)),
		Recipe:    api.New(cfg.RecipeAPIURL, sm, api.WithTimeout(cfg.Timeout), api.WithLogger(clientLog)),
		Favorites: favs,
	}, nil
}

// Start returns the navigation root for this run.
func (a *App) Start() (session.State, error) {
	return a.Session.Start()
}

func (a *App) Login(ctx context.Context, st session.State, username, password string) (session.State, error) {
	token, err := a.Client.Login(ctx, username, password)
	if err != nil {
		return st, err
	}
	st, err = a.Session.Login(st, token)
	if err != nil {
		return st, err
	}
	a.Logger.Info("logged in", "username", username)
	return st, nil
}

func (a *App) Register(ctx context.Context, username, email, password string) error {
	return a.Client.Register(ctx, username, email, password)
}

func (a *App) Logout(st session.State) (session.State, error) {
	return a.Session.Logout(st)
}

// Expire moves st to the anonymous root when err means the session is gone:
// no stored token, or the server rejected it. A rejected token is cleared.
// ok is false for any other error.
func (a *App) Expire(st session.State, err error) (next session.State, ok bool) {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		if cerr := a.Session.Clear(); cerr != nil {
			a.Logger.Warn("clear rejected session", "err", cerr)
		}
	case errors.Is(err, session.ErrNoSession):
	default:
		return st, false
	}
	a.Logger.Info("session expired", "err", err)
	return session.Transition(st, session.Event{Kind: session.EventExpired}), true
}
