// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/scripture-links/internal/httputil"
	"github.com/pdiddy/scripture-links/pkg/types"
)

// maxReplyBytes bounds how much of an engine reply is read.
const maxReplyBytes = 4 << 20

// HTTPEngine talks to a resolution service that returns structured replies.
type HTTPEngine struct {
	baseURL    string
	client     *http.Client
	userAgent  string
	apiKey     string
	maxRetries int
}

// NewHTTPEngine creates an adapter for the service at cfg.URL.
func NewHTTPEngine(cfg types.EngineConfig) *HTTPEngine {
	return &HTTPEngine{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		client:     httputil.NewClient(cfg.HTTPConfig),
		userAgent:  cfg.UserAgent,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
	}
}

// Kind implements Engine.
func (e *HTTPEngine) Kind() string { return string(types.EngineHTTP) }

// Init checks that the service answers its health endpoint.
func (e *HTTPEngine) Init(ctx context.Context) error {
	if e.baseURL == "" {
		return fmt.Errorf("engine url is not configured")
	}
	status, _, err := e.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("health check: HTTP %d", status)
	}
	return nil
}

// Resolve posts the citation and returns the reply body for the codec.
// HTTP 422 carries a rejection reply; other non-2xx statuses are faults.
func (e *HTTPEngine) Resolve(ctx context.Context, citation string) (any, error) {
	status, body, err := e.do(ctx, http.MethodPost, "/resolve", map[string]string{"input": citation})
	if err != nil {
		return nil, err
	}
	if !okStatus(status) && status != http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("resolve: HTTP %d", status)
	}
	return json.RawMessage(body), nil
}

// Annotate posts text and extracts the rewritten text from the reply,
// which may be {"text": ...}, a JSON string, or plain text.
func (e *HTTPEngine) Annotate(ctx context.Context, text string) (string, error) {
	status, body, err := e.do(ctx, http.MethodPost, "/annotate", map[string]string{"text": text})
	if err != nil {
		return "", err
	}
	if !okStatus(status) {
		return "", fmt.Errorf("annotate: HTTP %d", status)
	}
	return annotatedText(body), nil
}

// Metadata fetches the supported works.
func (e *HTTPEngine) Metadata(ctx context.Context) (Metadata, error) {
	status, body, err := e.do(ctx, http.MethodGet, "/metadata", nil)
	if err != nil {
		return Metadata{}, err
	}
	if !okStatus(status) {
		return Metadata{}, fmt.Errorf("metadata: HTTP %d", status)
	}
	var m Metadata
	if err := json.Unmarshal(body, &m); err != nil {
		return Metadata{}, fmt.Errorf("decoding metadata: %w", err)
	}
	return m, nil
}

func (e *HTTPEngine) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating %s request: %w", path, err)
	}
	httputil.SetHeaders(req, e.userAgent, e.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httputil.DoWithRetry(ctx, e.client, req, e.maxRetries)
	if err != nil {
		return 0, nil, fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("reading %s reply: %w", path, err)
	}
	return resp.StatusCode, data, nil
}

func okStatus(code int) bool { return code >= 200 && code < 300 }

func annotatedText(body []byte) string {
	var obj struct {
		Text       *string `json:"text"`
		OutputText *string `json:"output_text"`
	}
	if err := json.Unmarshal(body, &obj); err == nil {
		if obj.Text != nil {
			return *obj.Text
		}
		if obj.OutputText != nil {
			return *obj.OutputText
		}
	}
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}
	return string(body)
}
