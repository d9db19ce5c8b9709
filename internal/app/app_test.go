package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/wdlgo/internal/config"
	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/parser"
	"github.com/specialistvlad/wdlgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// setupAppTest creates a new app instance with debug logging into a buffer.
func setupAppTest(t *testing.T, cfg Config) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)
	testApp := NewApp(logBuffer, appConfig, nil)

	t.Cleanup(func() {
		if os.Getenv("WDL_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return testApp, logBuffer
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(testutil.Unindent(content)), 0o644))
	return path
}

const greeter = `
	global name = "world";
	actions {
		debug.print("hello " + name);
		let status = action.pickup({ stations: ["s1"] });
		debug.print(status);
		log.info("picked up");
	}
`

func TestNewConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Config{}},
		{name: "socketio", cfg: Config{Router: "socketio", RouterURL: "http://localhost:3000"}},
		{name: "bad router", cfg: Config{Router: "carrier pigeon"}, wantErr: `invalid router "carrier pigeon"`},
		{name: "bad port", cfg: Config{HealthcheckPort: 70000}, wantErr: "invalid healthcheck port 70000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := NewConfig(tc.cfg)

			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
		})
	}
}

func TestNewApp_FlagsOverrideConfigFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "wdl.hcl", `
		log {
		  level = "warn"
		}
		router {
		  transport = "socketio"
		  url       = "http://router.local:3000"
		  namespace = "/fleet"
		}
	`)

	// --- Act ---
	a, _ := setupAppTest(t, Config{ConfigPaths: []string{dir}, Router: "none"})

	// --- Assert ---
	m := a.Model()
	assert.Equal(t, "debug", m.Log.Level)
	assert.Equal(t, config.TransportNone, m.Router.Transport)
	assert.Equal(t, "http://router.local:3000", m.Router.URL)
	assert.Equal(t, "/fleet", m.Router.Namespace)
	assert.Equal(t,
		[]string{"action", "channel", "debug", "env", "http", "log", "order", "regex", "time"},
		a.Registry().Modules(),
	)
}

func TestNewApp_PanicsOnInvalidConfiguration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "broken.hcl", `router { transport = "socketio" }`)
	cfg := &Config{ConfigPaths: []string{dir}}

	require.PanicsWithError(t,
		"configuration errors:\n  - router transport socketio requires a url",
		func() { NewApp(io.Discard, cfg, nil) },
	)
}

func TestNewApp_PanicsOnLoadFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "broken.hcl", `log {`)
	cfg := &Config{ConfigPaths: []string{dir}}

	require.Panics(t, func() { NewApp(io.Discard, cfg, nil) })
}

func TestApp_Run(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	path := writeFile(t, dir, "greeter.wdl", greeter)
	a, out := setupAppTest(t, Config{Router: "none"})
	ctx := context.Background()

	// --- Act ---
	prog, err := a.Load(ctx, path)
	require.NoError(t, err)
	err = a.Run(ctx, prog, []string{`name="there"`})

	// --- Assert ---
	require.NoError(t, err)
	output := out.String()
	assert.Contains(t, output, "hello there\n")
	assert.Contains(t, output, "done\n")
	assert.Contains(t, output, `msg="picked up" app=wdl user=true`)
	assert.Contains(t, output, "Starting order")
}

func TestApp_Run_PromptRouter(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	path := writeFile(t, dir, "greeter.wdl", greeter)
	var prompt bytes.Buffer
	a, out := setupAppTest(t, Config{
		Router: "prompt",
		Stdin:  strings.NewReader("maybe\n1\n"),
		Prompt: &prompt,
	})
	ctx := context.Background()

	// --- Act ---
	prog, err := a.Load(ctx, path)
	require.NoError(t, err)
	err = a.Run(ctx, prog, nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out.String(), "hello world\n")
	assert.Contains(t, out.String(), "no_station_left\n")
	assert.Contains(t, prompt.String(), `router: Pickup {"stations":["s1"]}`)
	assert.Contains(t, prompt.String(), `invalid answer "maybe"`)
}

func TestApp_Run_VarsPrecedence(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		assignments []string
		want        string
	}{
		{name: "vars file beats config", want: "hello file\n"},
		{name: "command line beats vars file", assignments: []string{`name="cli"`}, want: "hello cli\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			dir := t.TempDir()
			path := writeFile(t, dir, "greeter.wdl", greeter)
			cfgDir := filepath.Join(dir, "conf")
			require.NoError(t, os.Mkdir(cfgDir, 0o755))
			writeFile(t, cfgDir, "wdl.hcl", `vars = { name = "config" }`)
			varsFile := writeFile(t, dir, "vars.yaml", `name: file`)

			a, out := setupAppTest(t, Config{
				ConfigPaths: []string{cfgDir},
				VarsFile:    varsFile,
				Router:      "none",
			})
			ctx := context.Background()

			// --- Act ---
			prog, err := a.Load(ctx, path)
			require.NoError(t, err)
			err = a.Run(ctx, prog, tc.assignments)

			// --- Assert ---
			require.NoError(t, err)
			assert.Contains(t, out.String(), tc.want)
		})
	}
}

func TestApp_Run_ConfigVarsApply(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "greeter.wdl", greeter)
	writeFile(t, dir, "wdl.hcl", `vars = { name = "config" }`)
	a, out := setupAppTest(t, Config{ConfigPaths: []string{filepath.Join(dir, "wdl.hcl")}, Router: "none"})
	ctx := context.Background()

	prog, err := a.Load(ctx, path)
	require.NoError(t, err)
	require.NoError(t, a.Run(ctx, prog, nil))

	assert.Contains(t, out.String(), "hello config\n")
}

func TestApp_Run_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()
	a, _ := setupAppTest(t, Config{Router: "none"})

	t.Run("runtime error keeps its kind", func(t *testing.T) {
		t.Parallel()

		prog, err := a.Load(ctx, writeFile(t, dir, "div.wdl", `actions { let x = 1 / 0; }`))
		require.NoError(t, err)

		err = a.Run(ctx, prog, nil)

		require.Equal(t, evalerr.DivisionByZero, evalerr.KindOf(err))
	})

	t.Run("bad assignment", func(t *testing.T) {
		t.Parallel()

		prog, err := a.Load(ctx, writeFile(t, dir, "ok.wdl", `actions { }`))
		require.NoError(t, err)

		err = a.Run(ctx, prog, []string{"name"})

		require.ErrorContains(t, err, `invalid variable "name"`)
	})

	t.Run("order done is reported as terminal", func(t *testing.T) {
		t.Parallel()

		prog, err := a.Load(ctx, writeFile(t, dir, "done.wdl", `actions { order.done(); }`))
		require.NoError(t, err)

		err = a.Run(ctx, prog, nil)

		require.Equal(t, evalerr.OrderDone, evalerr.KindOf(err))
	})
}

func TestApp_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a, _ := setupAppTest(t, Config{Router: "none"})
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := a.Load(ctx, filepath.Join(dir, "absent.wdl"))

		require.ErrorContains(t, err, "failed to read program")
	})

	t.Run("syntax error keeps the source", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, dir, "broken.wdl", `actions { let = 1; }`)

		prog, err := a.Load(ctx, path)

		var parseErr *parser.Error
		require.ErrorAs(t, err, &parseErr)
		require.NotNil(t, prog)
		assert.Equal(t, "actions { let = 1; }", strings.TrimSpace(prog.Source))
		assert.Nil(t, prog.Tree)
	})
}

func TestApp_Compile(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		format string
		decode func([]byte, any) error
	}{
		{format: FormatJSON, decode: json.Unmarshal},
		{format: FormatYAML, decode: yaml.Unmarshal},
	}

	for _, tc := range testCases {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			dir := t.TempDir()
			a, _ := setupAppTest(t, Config{Router: "none"})
			ctx := context.Background()
			prog, err := a.Load(ctx, writeFile(t, dir, "greeter.wdl", greeter))
			require.NoError(t, err)

			// --- Act ---
			path, err := a.Compile(ctx, prog, tc.format)

			// --- Assert ---
			require.NoError(t, err)
			require.Equal(t, filepath.Join(dir, "greeter.wdl.compiled"), path)
			raw, err := os.ReadFile(path)
			require.NoError(t, err)

			var doc map[string]any
			require.NoError(t, tc.decode(raw, &doc))
			assert.Equal(t, "Program", doc["node"])
			require.Len(t, doc["globals"], 1)
			global := doc["globals"].([]any)[0].(map[string]any)
			assert.Equal(t, "name", global["name"])
		})
	}
}

func TestEncodeTree_UnknownFormat(t *testing.T) {
	t.Parallel()

	tree, err := parser.Parse(`actions { }`)
	require.NoError(t, err)

	_, err = EncodeTree(tree, "toml")

	require.EqualError(t, err, `unknown compile format "toml" (must be json or yaml)`)
}

func TestHealthcheckServer(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, logs := setupAppTest(t, Config{Router: "none"})
	h, err := a.startHealthcheckServer(0)
	require.NoError(t, err)
	port := h.addr.(*net.TCPAddr).Port

	// --- Act ---
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	// --- Assert ---
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))
	require.NoError(t, h.close())
	assert.Contains(t, logs.String(), "Health check endpoint hit.")
}

func TestApp_Run_PromptRouterNeedsInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a, _ := setupAppTest(t, Config{Router: "prompt"})
	ctx := context.Background()
	prog, err := a.Load(ctx, writeFile(t, dir, "ok.wdl", `actions { }`))
	require.NoError(t, err)

	err = a.Run(ctx, prog, nil)

	require.EqualError(t, err, "the prompt router needs an input reader")
}
