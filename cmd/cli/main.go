package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/specialistvlad/wdlgo/internal/app"
	"github.com/specialistvlad/wdlgo/internal/cli"
	"github.com/specialistvlad/wdlgo/internal/diag"
)

// main is the entrypoint for the wdl application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// failed reports an error that was already rendered on errW.
var failed = &cli.ExitError{Code: 1}

// run encapsulates the main application logic for easier testing and error
// handling. Logs and program output go to outW, diagnostics and router
// prompts to errW.
func run(in io.Reader, outW, errW io.Writer, args []string) (err error) {
	inv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	inv.Config.Stdin = in
	inv.Config.Prompt = errW

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	wdl := app.NewApp(outW, inv.Config, nil)

	prog, err := wdl.Load(ctx, inv.Path)
	if prog == nil {
		return err
	}
	printer := diag.NewPrinter(errW, inv.Path, prog.Source)
	if err != nil {
		printer.Error(err)
		return failed
	}

	switch inv.Command {
	case cli.CommandCheck:
		fmt.Fprint(errW, pterm.Success.Sprintln(fmt.Sprintf("%s: no syntax errors", inv.Path)))
		return nil

	case cli.CommandCompile:
		path, err := wdl.Compile(ctx, prog, inv.Format)
		if err != nil {
			printer.Error(err)
			return failed
		}
		fmt.Fprint(errW, pterm.Success.Sprintln(fmt.Sprintf("compiled to %s", path)))
		return nil

	default:
		if printer.Outcome(wdl.Run(ctx, prog, inv.Assignments)) == diag.Failed {
			return failed
		}
		return nil
	}
}
