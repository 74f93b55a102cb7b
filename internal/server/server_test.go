// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scripture-links/internal/codec"
	"github.com/pdiddy/scripture-links/internal/engine"
	"github.com/pdiddy/scripture-links/internal/notify"
	"github.com/pdiddy/scripture-links/internal/session"
	"github.com/pdiddy/scripture-links/internal/stats"
	"github.com/pdiddy/scripture-links/pkg/types"
)

const genesisURL = "https://www.churchofjesuschrist.org/study/scriptures/ot/gen/1?lang=eng&id=p1#p1"

func init() {
	session.CorrectionDelay = time.Millisecond
}

type stubEngine struct {
	initErr error
}

func (stubEngine) Kind() string { return "stub" }

func (e stubEngine) Init(context.Context) error { return e.initErr }

func (stubEngine) Resolve(_ context.Context, citation string) (any, error) {
	switch citation {
	case "Genesis 1:1", "genesis1:1":
		return codec.Reply{Success: true, URL: genesisURL}, nil
	case "Gen 1:1":
		return codec.Reply{Error: codec.ErrorDetail{Message: "Unknown book abbreviation: 'Gen'", Suggestions: []string{"Genesis"}}}, nil
	case "explode":
		return nil, errors.New("engine crashed")
	default:
		return "Invalid scripture reference format", nil
	}
}

func (stubEngine) Annotate(_ context.Context, text string) (string, error) {
	return strings.ReplaceAll(text, "Genesis 1:1", "[Genesis 1:1]("+genesisURL+")"), nil
}

func (stubEngine) Metadata(context.Context) (engine.Metadata, error) {
	return engine.Metadata{SupportedWorks: engine.StaticWorks}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func newTestServer(t *testing.T, eng engine.Engine) (*Server, *httptest.Server) {
	t.Helper()
	gw, err := engine.NewGateway(eng, 0)
	require.NoError(t, err)

	srv, err := New(Options{
		Gateway:   gw,
		Stats:     stats.NewStore(stats.NewMemoryBackend()),
		Notifier:  notify.New(notify.Options{Viewport: notify.Viewport{Width: 1280}, WideDuration: time.Hour}),
		BaseURL:   "http://localhost:8080/",
		Readiness: types.ReadinessConfig{PollInterval: time.Millisecond, MaxWait: 50 * time.Millisecond},
	})
	require.NoError(t, err)
	_ = srv.Session().Start(context.Background())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func call(t *testing.T, ts *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	client := ts.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func TestResolveEndpoint(t *testing.T) {
	srv, ts := newTestServer(t, stubEngine{})

	status, env := call(t, ts, http.MethodPost, "/api/resolve", `{"input":"Genesis 1:1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	var res session.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, genesisURL, res.URL)
	assert.Equal(t, "genesis1:1", res.Token)

	snap := srv.view.Snapshot()
	assert.Equal(t, ResultLocator, snap.ResultKind)
	assert.True(t, snap.ActionsVisible)
	assert.True(t, snap.ControlsEnabled)
	assert.Equal(t, 1, srv.Session().Counters().ReferencesProcessed)
}

func TestResolveStatusMapping(t *testing.T) {
	_, ts := newTestServer(t, stubEngine{})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty", `{"input":"  "}`, http.StatusBadRequest, CodeEmptyInput},
		{"bad json", `{"input":`, http.StatusBadRequest, CodeBadRequest},
		{"rejected", `{"input":"Gen 1:1"}`, http.StatusUnprocessableEntity, codec.CodeUnknownBook},
		{"unexpected", `{"input":"explode"}`, http.StatusBadGateway, CodeUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, ts, http.MethodPost, "/api/resolve", tt.body)
			assert.Equal(t, tt.status, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestSuggestionEndpoint(t *testing.T) {
	srv, ts := newTestServer(t, stubEngine{})

	status, env := call(t, ts, http.MethodPost, "/api/resolve", `{"input":"Gen 1:1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	var rejected session.Result
	require.NoError(t, json.Unmarshal(env.Data, &rejected))
	require.Len(t, rejected.Commands, 1)
	assert.Equal(t, "Genesis 1:1", rejected.Commands[0].Corrected)

	choice, err := json.Marshal(rejected.Commands[0].Choice)
	require.NoError(t, err)
	status, env = call(t, ts, http.MethodPost, "/api/suggestion", string(choice))
	require.Equal(t, http.StatusOK, status)

	var res session.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, session.TriggerCorrection, res.Trigger)
	assert.Equal(t, "Genesis 1:1", srv.view.Snapshot().Input)
}

func TestSuggestionEndpointRejectsBlank(t *testing.T) {
	srv, ts := newTestServer(t, stubEngine{})

	status, env := call(t, ts, http.MethodPost, "/api/suggestion", `{"suggestion":"","original":"Gen 1:1"}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeEmptyInput, env.Error.Code)
	assert.Empty(t, srv.view.Snapshot().Input)
}

func TestAnnotateEndpoint(t *testing.T) {
	srv, ts := newTestServer(t, stubEngine{})

	status, env := call(t, ts, http.MethodPost, "/api/annotate", `{"text":"In the beginning, Genesis 1:1."}`)
	require.Equal(t, http.StatusOK, status)
	var res session.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.LinkCount)

	status, env = call(t, ts, http.MethodPost, "/api/annotate", `{"text":"plain prose"}`)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, session.StateNoMatches, res.State)
	assert.False(t, srv.view.Snapshot().ActionsVisible)

	status, env = call(t, ts, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, status)
	var c types.Counters
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, types.Counters{ReferencesProcessed: 1, TextBlocksProcessed: 1}, c)
}

func TestRootAutoResolvesRef(t *testing.T) {
	srv, ts := newTestServer(t, stubEngine{})

	status, env := call(t, ts, http.MethodGet, "/?ref=genesis1:1", "")
	require.Equal(t, http.StatusOK, status)
	var res session.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, session.TriggerShareLink, res.Trigger)
	assert.Equal(t, "http://localhost:8080/?ref=genesis1%3A1", srv.Session().Location())

	status, env = call(t, ts, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, status)
	var st Status
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, types.Ready, st.Availability)
	assert.Equal(t, genesisURL, st.Page.Result)
}

func TestOpenAndClear(t *testing.T) {
	srv, ts := newTestServer(t, stubEngine{})

	status, _ := call(t, ts, http.MethodGet, "/api/open", "")
	assert.Equal(t, http.StatusBadRequest, status)

	call(t, ts, http.MethodPost, "/api/resolve", `{"input":"Genesis 1:1"}`)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/open", nil)
	require.NoError(t, err)
	client := ts.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, genesisURL, resp.Header.Get("Location"))

	status, _ = call(t, ts, http.MethodGet, "/api/open?url=https://example.com/", "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = call(t, ts, http.MethodDelete, "/api/result", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, ResultNone, srv.view.Snapshot().ResultKind)
	assert.Equal(t, "http://localhost:8080/", srv.Session().Location())
}

func TestEngineFailureDisablesFlows(t *testing.T) {
	srv, ts := newTestServer(t, stubEngine{initErr: errors.New("no engine")})

	status, env := call(t, ts, http.MethodPost, "/api/resolve", `{"input":"Genesis 1:1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, CodeUnavailable, env.Error.Code)
	assert.False(t, srv.view.Snapshot().ControlsEnabled)
}

func TestViewportEndpoint(t *testing.T) {
	_, ts := newTestServer(t, stubEngine{})

	status, _ := call(t, ts, http.MethodPost, "/api/viewport", `{"width":375}`)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, ts, http.MethodPost, "/api/viewport", `{"width":0}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWebsocketFeed(t *testing.T) {
	srv, ts := newTestServer(t, stubEngine{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Hub().Run(ctx)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return srv.Hub().Clients() == 1 }, time.Second, time.Millisecond)

	call(t, ts, http.MethodPost, "/api/resolve", `{"input":"Genesis 1:1"}`)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg feedMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, notify.EventShown, msg.Type)
	assert.Equal(t, session.MsgResolved, msg.Notification.Message)
	assert.NotEmpty(t, msg.Timestamp)
}
