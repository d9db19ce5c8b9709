package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/wdlgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates files relative to a fresh temporary directory and
// returns the directory.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestHCLLoader_Load(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := writeFiles(t, map[string]string{
		"wdl.hcl": `
			log {
				level  = "debug"
			}

			router {
				transport = "socketio"
				url       = "https://router.local:8443"
				timeout   = "3s"
			}

			vars = {
				station = "s1"
				retries = 3
				targets = ["a", "b"]
				limits  = { speed = 1.5 }
			}
		`,
	})

	// --- Act ---
	model, err := NewHCLLoader().Load(context.Background(), filepath.Join(dir, "wdl.hcl"))

	// --- Assert ---
	require.NoError(t, err)
	require.NoError(t, model.Validate())
	assert.Equal(t, Log{Level: "debug", Format: "text"}, model.Log)
	assert.Equal(t, Router{
		Transport: TransportSocketIO,
		URL:       "https://router.local:8443",
		Namespace: "/",
		Timeout:   3 * time.Second,
	}, model.Router)

	want := map[string]value.Value{
		"station": value.String("s1"),
		"retries": value.Number(3),
		"targets": value.Array{value.String("a"), value.String("b")},
		"limits":  value.Object{"speed": value.Number(1.5)},
	}
	if diff := cmp.Diff(want, model.Vars); diff != "" {
		t.Errorf("vars mismatch (-want +got):\n%s", diff)
	}
}

func TestHCLLoader_DirectoryLaterFilesWin(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"conf/a.hcl":     `vars = { x = 1, y = 1 }`,
		"conf/b.hcl":     `vars = { y = 2 }`,
		"conf/notes.txt": `not hcl`,
	})

	model, err := NewHCLLoader().Load(context.Background(), filepath.Join(dir, "conf"), filepath.Join(dir, "missing"))

	require.NoError(t, err)
	assert.Equal(t, map[string]value.Value{"x": value.Number(1), "y": value.Number(2)}, model.Vars)
	assert.Equal(t, Defaults().Router, model.Router)
}

func TestHCLLoader_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "syntax", content: `log {`, wantErr: "failed to parse HCL file"},
		{name: "unknown block", content: `server { port = 1 }`, wantErr: "failed to decode HCL file"},
		{name: "bad timeout", content: `router { timeout = "soon" }`, wantErr: "invalid router timeout"},
		{name: "vars not an object", content: `vars = [1, 2]`, wantErr: "vars must be an object"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := writeFiles(t, map[string]string{"c.hcl": tc.content})

			_, err := NewHCLLoader().Load(context.Background(), filepath.Join(dir, "c.hcl"))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestModel_Validate(t *testing.T) {
	t.Parallel()

	m := Defaults()
	require.NoError(t, m.Validate())

	m.Log.Level = "loud"
	m.Log.Format = "xml"
	m.Router.Transport = TransportSocketIO
	m.Router.Timeout = 0

	err := m.Validate()
	require.Error(t, err)
	for _, want := range []string{"invalid log level", "invalid log format", "requires a url", "invalid router timeout"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadVarsFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := writeFiles(t, map[string]string{
		"vars.yaml": `
station: ${STATION}
area: ${AREA:-dock}
count: 2
ratio: 0.5
enabled: true
nothing: null
targets:
  - s1
  - s2
nested:
  depth: 1
`,
	})
	getenv := func(name string) string {
		if name == "STATION" {
			return "s9"
		}
		return ""
	}

	// --- Act ---
	vars, err := LoadVarsFile(filepath.Join(dir, "vars.yaml"), getenv)

	// --- Assert ---
	require.NoError(t, err)
	want := map[string]value.Value{
		"station": value.String("s9"),
		"area":    value.String("dock"),
		"count":   value.Number(2),
		"ratio":   value.Number(0.5),
		"enabled": value.Bool(true),
		"nothing": value.Null{},
		"targets": value.Array{value.String("s1"), value.String("s2")},
		"nested":  value.Object{"depth": value.Number(1)},
	}
	if diff := cmp.Diff(want, vars); diff != "" {
		t.Errorf("vars mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadVarsFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadVarsFile(filepath.Join(t.TempDir(), "missing.yaml"), os.Getenv)
	require.ErrorContains(t, err, "failed to read vars file")

	dir := writeFiles(t, map[string]string{"bad.yaml": "- just\n- a list\n"})
	_, err = LoadVarsFile(filepath.Join(dir, "bad.yaml"), os.Getenv)
	require.ErrorContains(t, err, "failed to parse vars file")
}

func TestParseAssignment(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		arg     string
		name    string
		want    value.Value
		wantErr string
	}{
		{arg: `count=3`, name: "count", want: value.Number(3)},
		{arg: `station="s1"`, name: "station", want: value.String("s1")},
		{arg: `target={"stations":["a"]}`, name: "target", want: value.Object{"stations": value.Array{value.String("a")}}},
		{arg: `eq=a=b`, wantErr: "variable eq"},
		{arg: `novalue`, wantErr: "expected name=<json>"},
		{arg: `=1`, wantErr: "expected name=<json>"},
		{arg: `word=unquoted`, wantErr: "invalid JSON value"},
	}

	for _, tc := range testCases {
		t.Run(tc.arg, func(t *testing.T) {
			t.Parallel()

			name, v, err := ParseAssignment(tc.arg)

			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, name)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestMergeVars(t *testing.T) {
	t.Parallel()

	got := MergeVars(
		map[string]value.Value{"a": value.Number(1), "b": value.Number(1)},
		nil,
		map[string]value.Value{"b": value.Number(2)},
	)

	assert.Equal(t, map[string]value.Value{"a": value.Number(1), "b": value.Number(2)}, got)
}
