// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes a session over HTTP: JSON endpoints for the two
// flows and a websocket feed of notifications.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/scripture-links/internal/logging"
	"github.com/pdiddy/scripture-links/internal/notify"
	"github.com/pdiddy/scripture-links/internal/session"
	"github.com/pdiddy/scripture-links/internal/share"
	"github.com/pdiddy/scripture-links/internal/stats"
	"github.com/pdiddy/scripture-links/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Gateway   session.Gateway
	Stats     *stats.Store
	Notifier  *notify.Notifier
	BaseURL   string
	Readiness types.ReadinessConfig
}

// Server serves one session.
type Server struct {
	session  *session.Session
	notifier *notify.Notifier
	view     *pageView
	hub      *Hub
	baseURL  string
}

// New wires a session to a page view and the websocket hub.
func New(opts Options) (*Server, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "/"
	}
	loc, err := share.Parse(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.New(notify.Options{Viewport: notify.Viewport{Width: 1024}})
	}

	view := &pageView{}
	hub := NewHub()
	opts.Notifier.Subscribe(hub.Sink())

	sess := session.New(session.Deps{
		Gateway:   opts.Gateway,
		Stats:     opts.Stats,
		Location:  loc,
		Notifier:  opts.Notifier,
		View:      view,
		Controls:  view,
		Readiness: opts.Readiness,
	})

	return &Server{
		session:  sess,
		notifier: opts.Notifier,
		view:     view,
		hub:      hub,
		baseURL:  opts.BaseURL,
	}, nil
}

// Session returns the served session.
func (s *Server) Session() *session.Session { return s.session }

// Hub returns the notification feed.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/resolve", s.handleResolve)
	mux.HandleFunc("POST /api/suggestion", s.handleSuggestion)
	mux.HandleFunc("POST /api/annotate", s.handleAnnotate)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/open", s.handleOpen)
	mux.HandleFunc("DELETE /api/result", s.handleClear)
	mux.HandleFunc("POST /api/viewport", s.handleViewport)
	mux.Handle("GET /ws", s.hub)
	return logging.CombinedMiddleware(mux)
}

// Run starts the hub and the engine, then serves addr until ctx is
// cancelled. An engine that fails to load leaves the server up with every
// flow unavailable.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.hub.Run(ctx)
	go func() {
		if err := s.session.Start(ctx); err != nil {
			logging.Error("engine unavailable", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
