package cli

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/inkhq/inkd/internal"
	"github.com/inkhq/inkd/internal/server"
	"github.com/inkhq/inkd/internal/surface"
	"github.com/lmittmann/tint"
)

// Represents the root command for inkd.
var RootCmd struct {
	Quiet   bool       `short:"q" env:"INKD_QUIET" help:"Suppress informational output."`
	Verbose bool       `short:"v" env:"INKD_VERBOSE" help:"Enable verbose output."`
	Debug   bool       `short:"d" env:"INKD_DEBUG" help:"Enable debug output."`
	Serve   ServeCmd   `cmd:"" help:"Run the daemon."`
	Send    SendCmd    `cmd:"" help:"Send commands to a running daemon."`
	Quit    QuitCmd    `cmd:"" help:"Ask a running daemon to stop after this connection."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
//
// Termination signals are left to the shutdown coordinator. The daemon keeps
// the default disposition while running, so SIGINT and SIGTERM end it at
// once, and ignores them once a client has asked it to quit.
func Execute() error {
	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Text display daemon.\n\nListens on a TCP port for newline-delimited JSON drawing commands."),
		kong.UsageOnError(),
		vars(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Returns the variables interpolated into flag defaults and help.
func vars() kong.Vars {
	return kong.Vars{
		"version":        internal.VersionString(),
		"default_addr":   server.DefaultAddress,
		"default_width":  strconv.Itoa(surface.DefaultWidth),
		"default_height": strconv.Itoa(surface.DefaultHeight),
	}
}

// Creates the process logger for the current mode flags.
//
// Records are written to stderr, coloured only when stderr is a terminal.
// Verbose mode adds source locations.
func NewLogger() *slog.Logger {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      internal.LogLevel(),
		AddSource:  internal.IsVerbose(),
		NoColor:    !isatty(os.Stderr),
		TimeFormat: time.TimeOnly,
	})
	return slog.New(handler).WithGroup(internal.Name)
}

// Applies the CLI flags to the mode flags and replaces the global logger.
func configureLogger() {
	if RootCmd.Debug {
		internal.SetDebug(true)
	}
	if RootCmd.Quiet {
		internal.SetQuiet(true)
	}
	if RootCmd.Verbose {
		internal.SetVerbose(true)
	}

	slog.SetDefault(NewLogger())
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
