// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pdiddy/scripture-links/internal/engine"
	"github.com/pdiddy/scripture-links/internal/notify"
	"github.com/pdiddy/scripture-links/internal/session"
	"github.com/pdiddy/scripture-links/internal/share"
	"github.com/pdiddy/scripture-links/pkg/types"
)

const maxBodyBytes = 1 << 20

// Error codes returned in apiError.Code besides the engine's own.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeEmptyInput   = "EMPTY_INPUT"
	CodeBusy         = "BUSY"
	CodeUnavailable  = "ENGINE_UNAVAILABLE"
	CodeUnexpected   = "UNEXPECTED"
	CodeNotLocator   = "NOT_A_LOCATOR"
	CodeRejectedFlow = "REJECTED"
)

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
	Meta    *apiMeta  `json:"meta,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiMeta struct {
	Timestamp string `json:"timestamp"`
}

// Status is the body of GET /api/status.
type Status struct {
	Availability types.Availability  `json:"availability"`
	State        session.State       `json:"state"`
	Page         Snapshot            `json:"page"`
	Location     string              `json:"location"`
	Counters     types.Counters      `json:"counters"`
	Notification *types.Notification `json:"notification,omitempty"`
	Clients      int                 `json:"clients"`
}

func respond(w http.ResponseWriter, status int, data any) {
	write(w, status, apiResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string, data any) {
	write(w, status, apiResponse{Data: data, Error: &apiError{Code: code, Message: message}})
}

func write(w http.ResponseWriter, status int, body apiResponse) {
	body.Meta = &apiMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body: "+err.Error(), nil)
		return false
	}
	return true
}

// flowContext detaches a flow from the request so a disconnecting client
// cannot abort an engine call that already started.
func flowContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// writeResult maps a flow result onto an HTTP status.
func writeResult(w http.ResponseWriter, res session.Result, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		respondError(w, http.StatusBadRequest, CodeEmptyInput, err.Error(), nil)
	case errors.Is(err, session.ErrBusy):
		respondError(w, http.StatusConflict, CodeBusy, err.Error(), nil)
	case errors.Is(err, engine.ErrNotReady), errors.Is(err, engine.ErrEngineFailed):
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, err.Error(), nil)
	case err != nil:
		respondError(w, http.StatusInternalServerError, CodeUnexpected, err.Error(), nil)
	case res.State == session.StateRejected:
		code := res.Code
		if code == "" {
			code = CodeRejectedFlow
		}
		respondError(w, http.StatusUnprocessableEntity, code, res.Message, res)
	case res.State == session.StateFailed:
		respondError(w, http.StatusBadGateway, CodeUnexpected, res.Message, res)
	default:
		respond(w, http.StatusOK, res)
	}
}

func (s *Server) status() Status {
	st := Status{
		Availability: s.session.Availability(),
		State:        s.session.State(),
		Page:         s.view.Snapshot(),
		Location:     s.session.Location(),
		Counters:     s.session.Counters(),
		Clients:      s.hub.Clients(),
	}
	if n, ok := s.notifier.Current(); ok {
		st.Notification = &n
	}
	return st
}

// handleRoot loads the page. A ref parameter is resolved once the engine
// is ready, as when a shared link is opened.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(share.Param)
	if token == "" {
		respond(w, http.StatusOK, s.status())
		return
	}

	loc, err := share.Parse(s.baseURL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeUnexpected, err.Error(), nil)
		return
	}
	loc.SetRef(token)
	s.session.Navigate(loc)

	res, _, err := s.session.AutoResolve(flowContext(r))
	writeResult(w, res, err)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, s.status())
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input string `json:"input"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := s.session.ResolveReference(flowContext(r), req.Input, session.TriggerUser)
	writeResult(w, res, err)
}

func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	var choice types.SuggestionChoice
	if !decode(w, r, &choice) {
		return
	}
	res, err := s.session.ApplySuggestion(flowContext(r), choice)
	writeResult(w, res, err)
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := s.session.AnnotateText(flowContext(r), req.Text)
	writeResult(w, res, err)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, s.session.Counters())
}

// handleOpen redirects to a locator, defaulting to the last resolved one.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		target = s.session.Last().URL
	}
	switch err := s.session.Open(target); {
	case errors.Is(err, session.ErrEmptyInput):
		respondError(w, http.StatusBadRequest, CodeEmptyInput, session.MsgNothingToOpen, nil)
	case errors.Is(err, session.ErrNotLocator):
		respondError(w, http.StatusUnprocessableEntity, CodeNotLocator, session.MsgNotLocator, nil)
	case err != nil:
		respondError(w, http.StatusInternalServerError, CodeUnexpected, err.Error(), nil)
	default:
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.session.Clear()
	respond(w, http.StatusOK, s.status())
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var v notify.Viewport
	if !decode(w, r, &v) {
		return
	}
	if v.Width <= 0 {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "width must be positive", nil)
		return
	}
	s.notifier.SetViewport(v)
	respond(w, http.StatusOK, v)
}
