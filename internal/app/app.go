// Package app is the composition root: it wires storage, session,
// cart, checkout, and the backend client into one object the host
// binary (or an embedding UI shell) owns.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/durianostics/durianostics-client/internal/api"
	"github.com/durianostics/durianostics-client/internal/auth"
	"github.com/durianostics/durianostics-client/internal/cart"
	"github.com/durianostics/durianostics-client/internal/checkout"
	"github.com/durianostics/durianostics-client/internal/session"
	"github.com/durianostics/durianostics-client/internal/storage"
	"github.com/durianostics/durianostics-client/pkg/config"
	"github.com/durianostics/durianostics-client/pkg/logger"
	"github.com/durianostics/durianostics-client/pkg/metrics"
)

// App bundles every client-core service behind one lifecycle.
type App struct {
	Store    storage.Store
	Sessions *session.Manager
	Carts    *cart.Store
	API      *api.Client
	Auth     *auth.Service
	Checkout *checkout.Flow

	logger *logger.Logger
}

// New builds the whole client core from config: local storage first,
// then the session hydrated from it, the cart activated for whoever is
// signed in, and the backend client fed tokens by the session.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*App, error) {
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(store, logg)
	if err != nil {
		store.Close()
		return nil, err
	}
	sessions.Load(ctx)

	carts, err := cart.NewStore(store, logg)
	if err != nil {
		store.Close()
		return nil, err
	}
	if user, _ := sessions.Current(); user != nil {
		carts.SetActiveUser(ctx, user.ID)
	}

	var apiMetrics *metrics.APIMetrics
	if cfg.Metrics.Enabled {
		apiMetrics = metrics.NewAPIMetrics(prometheus.DefaultRegisterer)
	}

	client, err := api.NewClient(cfg.API, sessions, logg, apiMetrics)
	if err != nil {
		store.Close()
		return nil, err
	}

	authService, err := auth.NewService(client, sessions, carts, logg)
	if err != nil {
		store.Close()
		return nil, err
	}

	checkoutFlow, err := checkout.NewFlow(carts, sessions, client, logg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		Store:    store,
		Sessions: sessions,
		Carts:    carts,
		API:      client,
		Auth:     authService,
		Checkout: checkoutFlow,
		logger:   logg,
	}, nil
}

// Close flushes cached carts and releases the storage backend.
func (a *App) Close(ctx context.Context) error {
	if err := a.Carts.Flush(ctx); err != nil {
		a.logger.Error(ctx, "flushing carts on shutdown", err)
	}
	return a.Store.Close()
}
