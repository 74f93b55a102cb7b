// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scripture-links/internal/engine"
	"github.com/pdiddy/scripture-links/internal/session"
)

// Codes reported in JSON output for conditions the engine never sees.
const (
	codeEmptyInput  = "EMPTY_INPUT"
	codeUnavailable = "ENGINE_UNAVAILABLE"
	codeUnexpected  = "UNEXPECTED"
)

// referenceResponse is the --json output of a single resolution.
type referenceResponse struct {
	Success   bool           `json:"success"`
	Input     string         `json:"input"`
	URL       string         `json:"url,omitempty"`
	ShareLink string         `json:"share_link,omitempty"`
	Error     *responseError `json:"error,omitempty"`
}

// textResponse is the --json output of an annotation.
type textResponse struct {
	Success         bool           `json:"success"`
	InputText       string         `json:"input_text"`
	OutputText      string         `json:"output_text"`
	ReferencesFound int            `json:"references_found"`
	Error           *responseError `json:"error,omitempty"`
}

type responseError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// annotationReport is the --format yaml output of an annotation.
type annotationReport struct {
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`
	LinkCount int    `yaml:"link_count"`
	Changed   bool   `yaml:"changed"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// flowError turns the end of a flow into the error cobra prints, using
// the same wording as the notification the session raised. emptyMsg is
// the prompt for empty input, which differs per flow.
func flowError(r session.Result, err error, emptyMsg string) error {
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		return errors.New(emptyMsg)
	case errors.Is(err, engine.ErrEngineFailed):
		return fmt.Errorf("engine failed to load: %w", err)
	case errors.Is(err, engine.ErrNotReady):
		return errors.New(session.MsgStillLoading)
	case err != nil:
		return err
	}
	if r.State == session.StateRejected || r.State == session.StateFailed {
		return errors.New(r.Message)
	}
	return nil
}

// errorCode picks the JSON error code for a failed flow.
func errorCode(r session.Result, err error) string {
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		return codeEmptyInput
	case errors.Is(err, engine.ErrEngineFailed), errors.Is(err, engine.ErrNotReady):
		return codeUnavailable
	case err == nil && r.State == session.StateRejected:
		return r.Code
	default:
		return codeUnexpected
	}
}

func newReferenceResponse(r session.Result, err error, shareLink string) referenceResponse {
	resp := referenceResponse{Input: r.Input}
	if fe := flowError(r, err, session.MsgEmptyReference); fe != nil {
		resp.Error = &responseError{Code: errorCode(r, err), Message: fe.Error()}
		for _, c := range r.Commands {
			resp.Error.Suggestions = append(resp.Error.Suggestions, c.Choice.Suggestion)
		}
		return resp
	}
	resp.Success = true
	resp.URL = r.URL
	resp.ShareLink = shareLink
	return resp
}

func newTextResponse(r session.Result, err error) textResponse {
	resp := textResponse{InputText: r.Input}
	if fe := flowError(r, err, session.MsgEmptyText); fe != nil {
		resp.Error = &responseError{Code: errorCode(r, err), Message: fe.Error()}
		return resp
	}
	resp.Success = true
	resp.OutputText = r.Text
	resp.ReferencesFound = r.LinkCount
	return resp
}
