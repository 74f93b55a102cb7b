// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine owns the resolution engine's lifecycle and funnels every
// engine reply through the result codec. Adapters implement Engine; the
// Gateway gates calls on availability and never exposes a raw reply.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pdiddy/scripture-links/internal/codec"
	"github.com/pdiddy/scripture-links/internal/logging"
	"github.com/pdiddy/scripture-links/pkg/types"
)

var (
	// ErrNotReady is returned when a call arrives before the engine is Ready.
	ErrNotReady = errors.New("engine is not ready")

	// ErrEngineFailed marks an engine whose initialization failed. The
	// gateway never leaves the Failed state.
	ErrEngineFailed = errors.New("engine failed to initialize")
)

// Readiness polling defaults. Tests override these to avoid real sleeps.
var (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultMaxWait      = 10 * time.Second
)

// UnexpectedError wraps a transport or engine fault raised while serving a
// call. It is distinct from a rejection, which is a normal outcome.
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// Metadata describes what an engine can resolve.
type Metadata struct {
	Name           string   `json:"name,omitempty"`
	Version        string   `json:"version,omitempty"`
	SupportedWorks []string `json:"supported_works"`
}

// StaticWorks lists the canonical works for engines that publish no metadata.
var StaticWorks = []string{
	"Old Testament",
	"New Testament",
	"Book of Mormon",
	"Doctrine and Covenants",
	"Pearl of Great Price",
}

// Engine is the contract every resolution engine adapter satisfies.
// Resolve returns the engine's reply in whatever shape it produces; the
// gateway normalizes it.
type Engine interface {
	// Kind names the adapter ("http" or "exec") for logs.
	Kind() string

	// Init prepares the engine. It is called at most once.
	Init(ctx context.Context) error

	// Resolve converts one citation. A rejection is a reply, not an error.
	Resolve(ctx context.Context, citation string) (any, error)

	// Annotate rewrites every citation in text as a link.
	Annotate(ctx context.Context, text string) (string, error)

	// Metadata reports the supported works.
	Metadata(ctx context.Context) (Metadata, error)
}

// Gateway gates an Engine on its availability.
type Gateway struct {
	eng   Engine
	state atomic.Int32

	once    sync.Once
	initErr error

	mu   sync.RWMutex
	meta Metadata

	cache *lru.Cache[string, types.ResolutionOutcome]
}

// NewGateway wraps eng. A positive cacheSize keeps that many resolved
// citations in memory; rejections are never cached.
func NewGateway(eng Engine, cacheSize int) (*Gateway, error) {
	g := &Gateway{eng: eng}
	if cacheSize > 0 {
		c, err := lru.New[string, types.ResolutionOutcome](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating resolution cache: %w", err)
		}
		g.cache = c
	}
	return g, nil
}

// Availability returns the current lifecycle state.
func (g *Gateway) Availability() types.Availability {
	return types.Availability(g.state.Load())
}

// Init initializes the engine exactly once. Later calls return the first
// result without touching the engine.
func (g *Gateway) Init(ctx context.Context) error {
	g.once.Do(func() {
		g.state.Store(int32(types.Loading))
		logging.EngineEvent("loading", g.eng.Kind())

		if err := g.eng.Init(ctx); err != nil {
			g.initErr = fmt.Errorf("%w: %w", ErrEngineFailed, err)
			g.state.Store(int32(types.Failed))
			logging.Error("engine initialization failed", "engine", g.eng.Kind(), "error", err)
			return
		}
		g.state.Store(int32(types.Ready))

		meta, err := g.eng.Metadata(ctx)
		if err != nil {
			logging.Warn("engine metadata unavailable", "engine", g.eng.Kind(), "error", err)
			return
		}
		g.mu.Lock()
		g.meta = meta
		g.mu.Unlock()
		logging.EngineEvent("ready", g.eng.Kind(), "supported_works", meta.SupportedWorks)
	})
	return g.initErr
}

// Metadata returns what the engine reported after Init, if anything.
func (g *Gateway) Metadata() Metadata {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.meta
}

// Resolve converts one trimmed citation into an outcome.
func (g *Gateway) Resolve(ctx context.Context, citation string) (types.ResolutionOutcome, error) {
	if g.Availability() != types.Ready {
		return types.ResolutionOutcome{}, ErrNotReady
	}

	if g.cache != nil {
		if out, ok := g.cache.Get(citation); ok {
			logging.Debug("resolution cache hit", "citation", citation)
			return out, nil
		}
	}

	raw, err := g.eng.Resolve(ctx, citation)
	if err != nil {
		return types.ResolutionOutcome{}, &UnexpectedError{Op: "resolve", Err: err}
	}

	out := codec.Normalize(raw)
	if out.IsResolved() && g.cache != nil {
		g.cache.Add(citation, out)
	}
	return out, nil
}

// Annotate rewrites citations in text and counts the inserted links.
func (g *Gateway) Annotate(ctx context.Context, text string) (types.AnnotationOutcome, error) {
	if g.Availability() != types.Ready {
		return types.AnnotationOutcome{}, ErrNotReady
	}

	out, err := g.eng.Annotate(ctx, text)
	if err != nil {
		return types.AnnotationOutcome{}, &UnexpectedError{Op: "annotate", Err: err}
	}

	return types.AnnotationOutcome{
		Text:      out,
		LinkCount: codec.CountLinks(out),
		Changed:   out != text,
	}, nil
}

// WaitReady polls availability every interval until the engine is Ready,
// returning ErrEngineFailed if it fails and ErrNotReady once maxWait
// elapses. Non-positive arguments take the package defaults.
func (g *Gateway) WaitReady(ctx context.Context, interval, maxWait time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		switch g.Availability() {
		case types.Ready:
			return nil
		case types.Failed:
			return ErrEngineFailed
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrNotReady
		case <-tick.C:
		}
	}
}
