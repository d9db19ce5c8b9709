package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/wdlgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code. An
// empty Message means the error was already reported.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Subcommands.
const (
	CommandRun     = "run"
	CommandCheck   = "check"
	CommandCompile = "compile"
)

// Invocation is a parsed command line.
type Invocation struct {
	Command string
	Path    string
	// Assignments are `name=<json>` global overrides, only accepted by run.
	Assignments []string
	Format      string
	Config      *app.Config
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Invocation,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("wdl", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
wdl - Runs workflow programs that drive a fleet through an external router.

Usage:
  wdl [options] run <file> [name=<json>...]
  wdl [options] check <file>
  wdl [options] compile <file>

Commands:
  run       Parse the program, start the order and wait for it to end.
            Each name=<json> overrides the global of that name.
  check     Parse the program and report syntax errors.
  compile   Parse the program and write its tree to <file>.compiled.

Options:
`)
		flagSet.PrintDefaults()
	}

	var configPaths []string
	flagSet.Func("config", "Path to an HCL config file or directory. Repeatable.", func(s string) error {
		configPaths = append(configPaths, s)
		return nil
	})
	varsFileFlag := flagSet.String("vars-file", "", "YAML or JSON file of global overrides.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'. Defaults to the config file, then 'text'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'. Defaults to the config file, then 'info'.")
	routerFlag := flagSet.String("router", "", "Router transport. Options: 'prompt', 'socketio', 'none'. Defaults to the config file, then 'prompt'.")
	routerURLFlag := flagSet.String("router-url", "", "URL of the socket.io router.")
	routerNamespaceFlag := flagSet.String("router-namespace", "", "Socket.io namespace of the router.")
	formatFlag := flagSet.String("format", app.FormatJSON, "Output format of compile. Options: 'json' or 'yaml'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	rest := flagSet.Args()
	if len(rest) == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	inv := &Invocation{Command: rest[0], Format: strings.ToLower(*formatFlag)}
	switch inv.Command {
	case CommandRun, CommandCheck, CommandCompile:
	default:
		return nil, false, usageError("unknown command %q: must be run, check or compile", inv.Command)
	}
	if len(rest) < 2 {
		return nil, false, usageError("%s: missing program file", inv.Command)
	}
	inv.Path = rest[1]
	inv.Assignments = rest[2:]
	if inv.Command != CommandRun && len(inv.Assignments) > 0 {
		return nil, false, usageError("%s: unexpected arguments %s", inv.Command, strings.Join(inv.Assignments, " "))
	}
	slog.Debug("Command determined.", "command", inv.Command, "path", inv.Path)

	logFormat := strings.ToLower(*logFormatFlag)
	switch logFormat {
	case "", "text", "json":
	default:
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if inv.Format != app.FormatJSON && inv.Format != app.FormatYAML {
		return nil, false, usageError("invalid format: must be 'json' or 'yaml'")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPaths:     configPaths,
		VarsFile:        *varsFileFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		Router:          strings.ToLower(*routerFlag),
		RouterURL:       *routerURLFlag,
		RouterNamespace: *routerNamespaceFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	inv.Config = config

	slog.Debug("CLI parser finished successfully.", "command", inv.Command)
	return inv, false, nil
}
