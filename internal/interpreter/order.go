package interpreter

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/channel"
	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/orderlog"
	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/internal/router"
	"github.com/specialistvlad/wdlgo/internal/scope"
	"github.com/specialistvlad/wdlgo/internal/value"
)

// Options wires an order to its collaborators. Zero fields get defaults:
// an empty registry, a router that always answers done, a discarded
// stdout and a sink writing to the context's logger.
type Options struct {
	Registry *registry.Registry
	Router   router.Client
	Stdout   io.Writer
	Logs     orderlog.Sink
}

// Order is a started program.
type Order struct {
	program   *ast.Program
	globals   *scope.Scope
	functions map[string]*ast.Function
	channels  *channel.Registry
	registry  *registry.Registry
	router    router.Client
	stdout    io.Writer
	logs      orderlog.Sink

	// faults receives the first error of a spawned task, or a terminal
	// signal raised off the main flow.
	faults chan error
	tasks  sync.WaitGroup

	mu      sync.Mutex
	actions *scope.Scope
}

// StartOrder declares the program's globals, using the override for a
// global when one is given, and then its functions.
func StartOrder(ctx context.Context, prog *ast.Program, overrides map[string]value.Value, opts Options) (*Order, error) {
	logger := ctxlog.FromContext(ctx)

	o := &Order{
		program:   prog,
		globals:   scope.New(),
		functions: make(map[string]*ast.Function),
		channels:  channel.NewRegistry(),
		registry:  opts.Registry,
		router:    opts.Router,
		stdout:    opts.Stdout,
		logs:      opts.Logs,
		faults:    make(chan error, 1),
	}
	if o.registry == nil {
		o.registry = registry.New()
	}
	if o.router == nil {
		o.router = router.StaticClient{Status: router.Done}
	}
	if o.stdout == nil {
		o.stdout = io.Discard
	}
	if o.logs == nil {
		o.logs = orderlog.SlogSink{Logger: logger}
	}

	known := make(map[string]bool, len(prog.Globals))
	for _, g := range prog.Globals {
		known[g.Name] = true
		v, overridden := overrides[g.Name]
		if overridden {
			logger.Debug("Declaring global from override.", "name", g.Name)
		} else {
			var err error
			if v, err = o.eval(ctx, o.globals, g.Value); err != nil {
				return nil, err
			}
		}
		if err := o.globals.Declare(g.Name, v); err != nil {
			return nil, locate(err, g.Span)
		}
	}
	for name := range overrides {
		if !known[name] {
			logger.Warn("Ignoring override for undeclared global", "name", name)
		}
	}

	for _, fn := range prog.Functions {
		if _, exists := o.functions[fn.Name]; exists {
			return nil, evalerr.AlreadyInUse(fn.Name).At(fn.Span)
		}
		o.functions[fn.Name] = fn
	}

	logger.Debug("Order started.", "globals", len(prog.Globals), "functions", len(prog.Functions))
	return o, nil
}

// Run executes the actions block. It returns early when a spawned task
// fails or signals the end of the order, and otherwise waits for every
// spawned task before returning.
func (o *Order) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- o.runActions(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
	case err := <-o.faults:
		logger.Debug("Order interrupted by a task.", "error", err)
		return err
	}

	logger.Debug("Actions finished, waiting for spawned tasks.")
	drained := make(chan struct{})
	go func() {
		o.tasks.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		select {
		case err := <-o.faults:
			return err
		default:
			return nil
		}
	case err := <-o.faults:
		return err
	}
}

func (o *Order) runActions(ctx context.Context) error {
	sc := scope.WithParent(o.globals)
	o.mu.Lock()
	o.actions = sc
	o.mu.Unlock()

	in, err := o.execStmts(ctx, sc, o.program.Actions.Stmts)
	if err != nil {
		return err
	}
	if in.kind != interruptNone {
		return evalerr.Fatalf("AST invalid, `%s` inside of actions found", in.kind).At(o.program.Actions.Span)
	}
	return nil
}

// Lookup reads a variable as seen from the actions block, falling back to
// the globals. It is meant for inspection after Run.
func (o *Order) Lookup(name string) (value.Value, bool) {
	o.mu.Lock()
	sc := o.actions
	o.mu.Unlock()
	if sc == nil {
		sc = o.globals
	}
	return sc.Get(name)
}

// fault records err as the order's failure unless one is already pending.
func (o *Order) fault(err error) {
	select {
	case o.faults <- err:
	default:
	}
}

// Channels, Router, Stdout and Log make the order the Env of its natives.

func (o *Order) Channels() *channel.Registry { return o.channels }

func (o *Order) Router() router.Client { return o.router }

func (o *Order) Stdout() io.Writer { return o.stdout }

func (o *Order) Log(ctx context.Context, e orderlog.Entry) {
	o.logs.Log(ctx, e)
}

// locate attaches span to evaluation errors that have none yet. Foreign
// errors, such as context cancellation, pass through untouched.
func locate(err error, span ast.Span) error {
	if err == nil {
		return nil
	}
	var e *evalerr.Error
	if errors.As(err, &e) {
		return e.At(span)
	}
	return err
}
