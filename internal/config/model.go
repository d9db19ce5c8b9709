package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/wdlgo/internal/value"
)

// Router transports.
const (
	TransportPrompt   = "prompt"
	TransportSocketIO = "socketio"
	TransportNone     = "none"
)

// DefaultRouterTimeout bounds connecting to a socket.io router.
const DefaultRouterTimeout = 15 * time.Second

// Model is the unified, format-agnostic configuration.
type Model struct {
	Log    Log
	Router Router
	// Vars overrides the program's globals by name.
	Vars map[string]value.Value
}

type Log struct {
	Level  string
	Format string
}

// Router selects and configures the client behind the `action` natives.
type Router struct {
	Transport          string
	URL                string
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Model {
	return &Model{
		Log:    Log{Level: "info", Format: "text"},
		Router: Router{Transport: TransportPrompt, Namespace: "/", Timeout: DefaultRouterTimeout},
		Vars:   map[string]value.Value{},
	}
}

// Validate reports every invalid setting at once.
func (m *Model) Validate() error {
	var errs []string

	switch m.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level %q (must be debug, info, warn or error)", m.Log.Level))
	}
	switch m.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format %q (must be text or json)", m.Log.Format))
	}

	switch m.Router.Transport {
	case TransportPrompt, TransportNone:
	case TransportSocketIO:
		if m.Router.URL == "" {
			errs = append(errs, "router transport socketio requires a url")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid router transport %q (must be prompt, socketio or none)", m.Router.Transport))
	}
	if m.Router.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("invalid router timeout %s (must be positive)", m.Router.Timeout))
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}
