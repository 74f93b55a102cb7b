// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdiddy/scripture-links/internal/codec"
	"github.com/pdiddy/scripture-links/pkg/types"
)

// DefaultBinary is the legacy resolver executable name.
const DefaultBinary = "scripture-links-engine"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)

	// Run executes name and reports its exit code. err is set only when
	// the command could not run at all.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) (string, string, int, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return "", "", -1, err
	}
	return stdout.String(), stderr.String(), 0, nil
}

// ExecEngine runs the legacy command-line resolver. It reports rejections
// only as flat strings, so outcomes from it never carry suggestions.
type ExecEngine struct {
	bin  string
	path string
	exec executor
}

// NewExecEngine creates an adapter for the resolver binary (DefaultBinary
// when empty).
func NewExecEngine(binary string) *ExecEngine {
	return newExecEngine(binary, &osExecutor{})
}

func newExecEngine(binary string, ex executor) *ExecEngine {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ExecEngine{bin: binary, exec: ex}
}

// Kind implements Engine.
func (e *ExecEngine) Kind() string { return string(types.EngineExec) }

// Init locates the binary on PATH.
func (e *ExecEngine) Init(_ context.Context) error {
	path, err := e.exec.LookPath(e.bin)
	if err != nil {
		return fmt.Errorf("locating %s: %w", e.bin, err)
	}
	e.path = path
	return nil
}

// Resolve runs --reference. A non-zero exit is a rejection whose message is
// the stderr text without its "Error: " prefix.
func (e *ExecEngine) Resolve(ctx context.Context, citation string) (any, error) {
	stdout, stderr, code, err := e.exec.Run(ctx, e.path, "--reference", citation)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", e.bin, err)
	}
	if code != 0 {
		return codec.Reply{Error: flatMessage(stderr)}, nil
	}
	return codec.Reply{Success: true, URL: strings.TrimSpace(stdout)}, nil
}

// Annotate runs --text and returns stdout without its trailing newline.
func (e *ExecEngine) Annotate(ctx context.Context, text string) (string, error) {
	stdout, stderr, code, err := e.exec.Run(ctx, e.path, "--text", text)
	if err != nil {
		return "", fmt.Errorf("running %s: %w", e.bin, err)
	}
	if code != 0 {
		return "", fmt.Errorf("%s exited %d: %s", e.bin, code, flatMessage(stderr))
	}
	return strings.TrimSuffix(stdout, "\n"), nil
}

// Metadata returns the built-in list of works.
func (e *ExecEngine) Metadata(_ context.Context) (Metadata, error) {
	return Metadata{Name: e.bin, SupportedWorks: append([]string(nil), StaticWorks...)}, nil
}

func flatMessage(stderr string) string {
	return strings.TrimPrefix(strings.TrimSpace(stderr), "Error: ")
}
