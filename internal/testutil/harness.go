package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/interpreter"
	"github.com/specialistvlad/wdlgo/internal/orderlog"
	"github.com/specialistvlad/wdlgo/internal/parser"
	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/internal/router"
	"github.com/specialistvlad/wdlgo/internal/value"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a program run.
type HarnessResult struct {
	LogOutput string
	Stdout    string
	Logs      []orderlog.Entry
	// Err is the parse, start or run error, whichever came first.
	Err   error
	Order *interpreter.Order
}

// Lookup reads a variable of the finished order and fails the test when it
// does not exist.
func (r *HarnessResult) Lookup(t *testing.T, name string) value.Value {
	t.Helper()
	require.NotNil(t, r.Order, "order was never started: %v", r.Err)
	v, ok := r.Order.Lookup(name)
	require.True(t, ok, "variable %q not found", name)
	return v
}

// ProgramOptions customises RunProgramWithOptions.
type ProgramOptions struct {
	Modules   []registry.Module
	Overrides map[string]value.Value
	Router    router.Client
}

// RunProgram parses, starts and runs src with the given native modules,
// using a background context.
func RunProgram(t *testing.T, src string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunProgramWithOptions(context.Background(), t, src, ProgramOptions{Modules: modules})
}

// RunProgramWithOptions is RunProgram with a caller-provided context and
// options. Source text is unindented first so tests can keep programs in
// indented raw strings.
func RunProgramWithOptions(ctx context.Context, t *testing.T, src string, opts ProgramOptions) *HarnessResult {
	t.Helper()

	logBuffer := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx = ctxlog.WithLogger(ctx, logger)

	reg := registry.New()
	reg.RegisterModules(opts.Modules...)
	require.NoError(t, reg.Validate(), "test modules must form a valid registry")

	stdout := &SafeBuffer{}
	recorder := &orderlog.Recorder{}
	result := &HarnessResult{}

	defer func() {
		result.LogOutput = logBuffer.String()
		result.Stdout = stdout.String()
		result.Logs = recorder.Entries()
		if os.Getenv("WDL_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	}()

	prog, err := parser.Parse(Unindent(src))
	if err != nil {
		result.Err = err
		return result
	}

	order, err := interpreter.StartOrder(ctx, prog, opts.Overrides, interpreter.Options{
		Registry: reg,
		Router:   opts.Router,
		Stdout:   stdout,
		Logs:     recorder,
	})
	if err != nil {
		result.Err = err
		return result
	}
	result.Order = order
	result.Err = order.Run(ctx)
	return result
}
