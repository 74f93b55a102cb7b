// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scripture-links/internal/codec"
	"github.com/pdiddy/scripture-links/pkg/types"
)

type fakeEngine struct {
	initErr   error
	initCalls int32
	initGate  chan struct{}

	replies      map[string]any
	resolveErr   error
	resolveCalls int32

	annotate    func(string) string
	annotateErr error

	meta    Metadata
	metaErr error
}

func (f *fakeEngine) Kind() string { return "fake" }

func (f *fakeEngine) Init(ctx context.Context) error {
	atomic.AddInt32(&f.initCalls, 1)
	if f.initGate != nil {
		<-f.initGate
	}
	return f.initErr
}

func (f *fakeEngine) Resolve(_ context.Context, citation string) (any, error) {
	atomic.AddInt32(&f.resolveCalls, 1)
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.replies[citation], nil
}

func (f *fakeEngine) Annotate(_ context.Context, text string) (string, error) {
	if f.annotateErr != nil {
		return "", f.annotateErr
	}
	if f.annotate == nil {
		return text, nil
	}
	return f.annotate(text), nil
}

func (f *fakeEngine) Metadata(context.Context) (Metadata, error) {
	return f.meta, f.metaErr
}

func readyGateway(t *testing.T, f *fakeEngine, cacheSize int) *Gateway {
	t.Helper()
	g, err := NewGateway(f, cacheSize)
	require.NoError(t, err)
	require.NoError(t, g.Init(context.Background()))
	return g
}

func TestGatewayInitOnce(t *testing.T) {
	f := &fakeEngine{meta: Metadata{SupportedWorks: StaticWorks}}
	g, err := NewGateway(f, 0)
	require.NoError(t, err)
	assert.Equal(t, types.Unloaded, g.Availability())

	require.NoError(t, g.Init(context.Background()))
	require.NoError(t, g.Init(context.Background()))

	assert.Equal(t, types.Ready, g.Availability())
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.initCalls))
	assert.Equal(t, StaticWorks, g.Metadata().SupportedWorks)
}

func TestGatewayInitFailureIsPermanent(t *testing.T) {
	f := &fakeEngine{initErr: errors.New("boom")}
	g, err := NewGateway(f, 0)
	require.NoError(t, err)

	err = g.Init(context.Background())
	require.ErrorIs(t, err, ErrEngineFailed)
	assert.Equal(t, types.Failed, g.Availability())

	assert.ErrorIs(t, g.Init(context.Background()), ErrEngineFailed)
	assert.Equal(t, types.Failed, g.Availability())

	_, err = g.Resolve(context.Background(), "Genesis 1:1")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Zero(t, atomic.LoadInt32(&f.resolveCalls))
}

func TestGatewayMetadataFailureStillReady(t *testing.T) {
	f := &fakeEngine{metaErr: errors.New("no metadata")}
	g := readyGateway(t, f, 0)
	assert.Equal(t, types.Ready, g.Availability())
	assert.Empty(t, g.Metadata().SupportedWorks)
}

func TestGatewayLoadingState(t *testing.T) {
	f := &fakeEngine{initGate: make(chan struct{})}
	g, err := NewGateway(f, 0)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- g.Init(context.Background()) }()

	require.Eventually(t, func() bool { return g.Availability() == types.Loading }, time.Second, time.Millisecond)
	_, err = g.Annotate(context.Background(), "John 3:16")
	assert.ErrorIs(t, err, ErrNotReady)

	close(f.initGate)
	require.NoError(t, <-done)
	assert.Equal(t, types.Ready, g.Availability())
}

func TestGatewayResolve(t *testing.T) {
	f := &fakeEngine{replies: map[string]any{
		"Genesis 1:1": `{"success":true,"url":"https://www.churchofjesuschrist.org/study/scriptures/ot/gen/1?lang=eng&id=p1#p1"}`,
		"Gen 1:1": codec.Reply{Error: codec.ErrorDetail{
			Message:     "Unknown book abbreviation: 'Gen'",
			Suggestions: []string{"Genesis"},
		}},
	}}
	g := readyGateway(t, f, 0)

	out, err := g.Resolve(context.Background(), "Genesis 1:1")
	require.NoError(t, err)
	assert.True(t, out.IsResolved())
	assert.Contains(t, out.URL, "/ot/gen/1")

	out, err = g.Resolve(context.Background(), "Gen 1:1")
	require.NoError(t, err)
	assert.False(t, out.IsResolved())
	assert.Equal(t, []string{"Genesis"}, out.Suggestions)
}

func TestGatewayResolveUnexpected(t *testing.T) {
	f := &fakeEngine{resolveErr: errors.New("connection reset")}
	g := readyGateway(t, f, 0)

	_, err := g.Resolve(context.Background(), "John 3:16")
	var ue *UnexpectedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "resolve", ue.Op)
}

func TestGatewayCachesOnlyResolved(t *testing.T) {
	f := &fakeEngine{replies: map[string]any{
		"Moroni 10:4": codec.Reply{Success: true, URL: "https://www.churchofjesuschrist.org/study/scriptures/bofm/moro/10?lang=eng&id=p4#p4"},
		"Xyz 1:1":     "Unknown book abbreviation: 'Xyz'",
	}}
	g := readyGateway(t, f, 8)
	ctx := context.Background()

	for range 3 {
		_, err := g.Resolve(ctx, "Moroni 10:4")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.resolveCalls))

	for range 2 {
		_, err := g.Resolve(ctx, "Xyz 1:1")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&f.resolveCalls))
}

func TestGatewayAnnotate(t *testing.T) {
	link := "[John 3:16](https://www.churchofjesuschrist.org/study/scriptures/nt/john/3?lang=eng&id=p16#p16)"
	f := &fakeEngine{annotate: func(s string) string {
		if s == "Read John 3:16." {
			return "Read " + link + "."
		}
		return s
	}}
	g := readyGateway(t, f, 0)

	out, err := g.Annotate(context.Background(), "Read John 3:16.")
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, 1, out.LinkCount)

	out, err = g.Annotate(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Zero(t, out.LinkCount)
}

func TestWaitReady(t *testing.T) {
	t.Run("already ready", func(t *testing.T) {
		g := readyGateway(t, &fakeEngine{}, 0)
		assert.NoError(t, g.WaitReady(context.Background(), time.Millisecond, 10*time.Millisecond))
	})

	t.Run("becomes ready", func(t *testing.T) {
		f := &fakeEngine{initGate: make(chan struct{})}
		g, err := NewGateway(f, 0)
		require.NoError(t, err)
		go g.Init(context.Background())
		go func() {
			time.Sleep(5 * time.Millisecond)
			close(f.initGate)
		}()
		assert.NoError(t, g.WaitReady(context.Background(), time.Millisecond, time.Second))
	})

	t.Run("failed", func(t *testing.T) {
		g, err := NewGateway(&fakeEngine{initErr: errors.New("x")}, 0)
		require.NoError(t, err)
		g.Init(context.Background())
		assert.ErrorIs(t, g.WaitReady(context.Background(), time.Millisecond, time.Second), ErrEngineFailed)
	})

	t.Run("times out", func(t *testing.T) {
		g, err := NewGateway(&fakeEngine{}, 0)
		require.NoError(t, err)
		assert.ErrorIs(t, g.WaitReady(context.Background(), time.Millisecond, 5*time.Millisecond), ErrNotReady)
	})

	t.Run("cancelled", func(t *testing.T) {
		g, err := NewGateway(&fakeEngine{}, 0)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, g.WaitReady(ctx, time.Millisecond, time.Second), context.Canceled)
	})
}
