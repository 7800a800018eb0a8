package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/jsonfetch/internal/cliconfig"
	"github.com/bft-labs/jsonfetch/pkg/jsonhttp"
)

func newTestApp(t *testing.T, stdin string) (*app, *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	out := &bytes.Buffer{}
	return &app{
		cfg:    cliconfig.DefaultConfig(),
		logger: zerolog.Nop(),
		stdin:  strings.NewReader(stdin),
		stdout: out,
	}, out
}

func run(a *app, args ...string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestGetCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/1", r.URL.Path)
		io.WriteString(w, `{"id":1,"tags":["a"]}`)
	}))
	defer ts.Close()

	a, out := newTestApp(t, "")
	require.NoError(t, run(a, "--base-url", ts.URL, "get", "items/1"))

	assert.Equal(t, "{\n  \"id\": 1,\n  \"tags\": [\n    \"a\"\n  ]\n}\n", out.String())
}

func TestGetCommandHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	a, _ := newTestApp(t, "")
	err := run(a, "get", ts.URL)

	var httpErr *jsonhttp.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestPostCommandSources(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		io.Copy(w, r.Body)
	}))
	defer ts.Close()

	payloadPath := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(payloadPath, []byte(`{"from":"file"}`), 0644))

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"inline", []string{"--compact", "post", ts.URL, `{"b":1,"a":2}`}, "", `{"b":1,"a":2}` + "\n"},
		{"file", []string{"--compact", "post", ts.URL, "@" + payloadPath}, "", `{"from":"file"}` + "\n"},
		{"stdin explicit", []string{"--compact", "post", ts.URL, "-"}, `[1, 2]`, `[1,2]` + "\n"},
		{"stdin default", []string{"--compact", "post", ts.URL}, `"s"`, `"s"` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := newTestApp(t, tt.stdin)
			require.NoError(t, run(a, tt.args...))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestPostCommandInvalidPayload(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()

	a, _ := newTestApp(t, "")
	err := run(a, "post", ts.URL, `{"broken":`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payload")
	assert.Zero(t, calls)
}

func TestPostCommandWatchRequiresFile(t *testing.T) {
	a, _ := newTestApp(t, "")
	err := run(a, "post", "http://localhost/x", `{}`, "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch requires a @file payload")
}

func TestRelativeURLWithoutBase(t *testing.T) {
	a, _ := newTestApp(t, "")
	err := run(a, "get", "items")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires base-url")
}

func TestConfigFileAndEnv(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok":true}`)
	}))
	defer ts.Close()

	a, out := newTestApp(t, "")

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("base_url = \""+ts.URL+"\"\n"), 0644))
	t.Setenv("JSONFETCH_COMPACT", "true")

	require.NoError(t, run(a, "--config", cfgPath, "get", "status"))
	assert.Equal(t, `{"ok":true}`+"\n", out.String())
}

func TestMissingExplicitConfig(t *testing.T) {
	a, _ := newTestApp(t, "")
	err := run(a, "--config", "/nonexistent/jsonfetch.toml", "get", "http://localhost/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadPayload(t *testing.T) {
	v, err := readPayload(`{"x":[true]}`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, v.Keys())

	_, err = readPayload("@/nonexistent/file.json", nil)
	require.Error(t, err)

	_, err = readPayload("-", strings.NewReader(""))
	require.Error(t, err)

	_, ok := payloadFile("@")
	assert.False(t, ok)
}
