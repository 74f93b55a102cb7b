// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runResult struct {
	stdout, stderr string
	code           int
	err            error
}

type mockExecutor struct {
	lookPathErr error
	results     map[string]runResult
	calls       [][]string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.lookPathErr != nil {
		return "", m.lookPathErr
	}
	return "/usr/local/bin/" + file, nil
}

func (m *mockExecutor) Run(_ context.Context, name string, args ...string) (string, string, int, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	r := m.results[args[len(args)-1]]
	return r.stdout, r.stderr, r.code, r.err
}

func TestExecEngineInit(t *testing.T) {
	e := newExecEngine("", &mockExecutor{lookPathErr: errors.New("not found")})
	assert.Error(t, e.Init(context.Background()))

	e = newExecEngine("", &mockExecutor{})
	require.NoError(t, e.Init(context.Background()))
	assert.Equal(t, "/usr/local/bin/"+DefaultBinary, e.path)
}

func TestExecEngineResolveThroughGateway(t *testing.T) {
	m := &mockExecutor{results: map[string]runResult{
		"Genesis 1:1": {stdout: "https://www.churchofjesuschrist.org/study/scriptures/ot/gen/1?lang=eng&id=p1#p1\n"},
		"Gen 1:1":     {stderr: "Error: Unknown book abbreviation: 'Gen'. Did you mean: Genesis?\n", code: 1},
		"crash":       {err: errors.New("exec format error")},
	}}
	g, err := NewGateway(newExecEngine("resolver", m), 0)
	require.NoError(t, err)
	require.NoError(t, g.Init(context.Background()))
	assert.Equal(t, StaticWorks, g.Metadata().SupportedWorks)

	out, err := g.Resolve(context.Background(), "Genesis 1:1")
	require.NoError(t, err)
	assert.Equal(t, "https://www.churchofjesuschrist.org/study/scriptures/ot/gen/1?lang=eng&id=p1#p1", out.URL)
	assert.Equal(t, []string{"/usr/local/bin/resolver", "--reference", "Genesis 1:1"}, m.calls[0])

	out, err = g.Resolve(context.Background(), "Gen 1:1")
	require.NoError(t, err)
	assert.False(t, out.IsResolved())
	assert.Equal(t, "Unknown book abbreviation: 'Gen'. Did you mean: Genesis?", out.Message)
	assert.Empty(t, out.Suggestions, "flat errors never carry suggestions")

	_, err = g.Resolve(context.Background(), "crash")
	var ue *UnexpectedError
	assert.ErrorAs(t, err, &ue)
}

func TestExecEngineAnnotate(t *testing.T) {
	m := &mockExecutor{results: map[string]runResult{
		"See Alma 32:21": {stdout: "See [Alma 32:21](https://www.churchofjesuschrist.org/study/scriptures/bofm/alma/32?lang=eng&id=p21#p21)\n"},
		"bad":            {stderr: "Error: Text processing failed", code: 1},
	}}
	e := newExecEngine("", m)
	require.NoError(t, e.Init(context.Background()))

	got, err := e.Annotate(context.Background(), "See Alma 32:21")
	require.NoError(t, err)
	assert.Equal(t, "See [Alma 32:21](https://www.churchofjesuschrist.org/study/scriptures/bofm/alma/32?lang=eng&id=p21#p21)", got)

	_, err = e.Annotate(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Text processing failed")
}
