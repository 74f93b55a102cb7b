// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/scripture-links/internal/engine"
	"github.com/pdiddy/scripture-links/internal/logging"
	"github.com/pdiddy/scripture-links/internal/notify"
	"github.com/pdiddy/scripture-links/internal/session"
	"github.com/pdiddy/scripture-links/internal/share"
	"github.com/pdiddy/scripture-links/internal/stats"
	"github.com/pdiddy/scripture-links/pkg/types"
)

// newEngine builds the adapter named by cfg.Kind. Tests replace it.
var newEngine = func(cfg types.EngineConfig) (engine.Engine, error) {
	switch cfg.Kind {
	case types.EngineHTTP, "":
		return engine.NewHTTPEngine(cfg), nil
	case types.EngineExec:
		return engine.NewExecEngine(cfg.Binary), nil
	default:
		return nil, fmt.Errorf("unknown engine %q: use http or exec", cfg.Kind)
	}
}

// app holds the long-lived collaborators shared by every command.
type app struct {
	gateway  *engine.Gateway
	store    *stats.Store
	db       *stats.SQLiteBackend
	notifier *notify.Notifier
}

func newApp(ctx context.Context, c types.Config) (*app, error) {
	eng, err := newEngine(c.Engine)
	if err != nil {
		return nil, err
	}
	gw, err := engine.NewGateway(eng, c.Engine.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating gateway: %w", err)
	}

	a := &app{gateway: gw}
	a.store, a.db, err = openStats(ctx, c.Stats)
	if err != nil {
		return nil, err
	}

	a.notifier = notify.New(notify.Options{
		Viewport:       notify.Viewport{Width: c.Notify.ViewportWidth},
		NarrowDuration: c.Notify.NarrowDuration,
		WideDuration:   c.Notify.WideDuration,
	})
	return a, nil
}

// openStats loads the counters from SQLite, or from memory when
// persistence is off. The returned backend is nil in the latter case.
func openStats(ctx context.Context, c types.StatsConfig) (*stats.Store, *stats.SQLiteBackend, error) {
	if !c.Persist || c.DBPath == "" {
		store := stats.NewStore(stats.NewMemoryBackend())
		store.Load(ctx)
		return store, nil, nil
	}
	db, err := stats.OpenSQLite(c.DBPath)
	if err != nil {
		return nil, nil, err
	}
	store := stats.NewStore(db)
	store.Load(ctx)
	return store, db, nil
}

// newSession wires a session to view. A nil loc starts from the
// configured share base URL.
func (a *app) newSession(view session.View, loc *share.Location) (*session.Session, error) {
	if loc == nil {
		var err error
		loc, err = share.Parse(cfg.Share.BaseURL)
		if err != nil {
			return nil, err
		}
	}
	return session.New(session.Deps{
		Gateway:   a.gateway,
		Stats:     a.store,
		Location:  loc,
		Notifier:  a.notifier,
		View:      view,
		Opener:    browserOpener{},
		Readiness: cfg.Readiness,
	}), nil
}

// close flushes the counters and releases the database. It runs after
// the command context is cancelled, so the save ignores cancellation.
func (a *app) close(ctx context.Context) error {
	err := a.store.Save(context.WithoutCancel(ctx))
	if a.db != nil {
		err = errors.Join(err, a.db.Close())
	}
	return err
}

func (a *app) shutdown(ctx context.Context) {
	if err := a.close(ctx); err != nil {
		logging.Warn("saving stats failed", "error", err)
	}
}

// attachTerminal routes notifications for a terminal. Commands return
// error conditions to cobra, so error notices only reach the log.
func (a *app) attachTerminal(w io.Writer, quiet bool) {
	if quiet {
		a.notifier.Subscribe(logSink)
		return
	}
	show := notify.WriterSink(w)
	a.notifier.Subscribe(func(e notify.Event) {
		if e.Notification.Kind == types.NotifyError {
			logSink(e)
			return
		}
		show(e)
	})
}

// logSink records shown notifications in the structured log.
func logSink(e notify.Event) {
	if e.Type != notify.EventShown {
		return
	}
	logging.Info("notification", "kind", e.Notification.Kind, "message", e.Notification.Message)
}
