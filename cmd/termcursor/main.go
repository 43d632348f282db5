// Package main is the entry point for the termcursor CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/musher-dev/termcursor"
	"github.com/musher-dev/termcursor/internal/buildinfo"
	"github.com/musher-dev/termcursor/internal/config"
	clierrors "github.com/musher-dev/termcursor/internal/errors"
	"github.com/musher-dev/termcursor/internal/observability"
	"github.com/musher-dev/termcursor/internal/output"
	"github.com/musher-dev/termcursor/internal/terminal"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cliIO is where the CLI writes text and which terminal it drives.
type cliIO struct {
	stdout io.Writer
	stderr io.Writer
	info   *terminal.Info

	// termIn and termOut replace the process terminal when termOut is set.
	termIn  io.Reader
	termOut io.Writer

	// configFile overrides config.Path when set.
	configFile string
}

func (c cliIO) loadConfig() (*config.Config, error) {
	if c.configFile != "" {
		return config.LoadFile(c.configFile)
	}

	return config.Load()
}

func defaultIO() cliIO {
	return cliIO{
		stdout: os.Stdout,
		stderr: os.Stderr,
		info:   terminal.Detect(),
	}
}

func main() {
	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.Date = date
	buildinfo.Resolve()

	os.Exit(run(os.Args[1:], defaultIO()))
}

func run(args []string, streams cliIO) int {
	out := output.NewWriter(streams.stdout, streams.stderr, streams.info)

	var cleanups cleanupStack

	rootCmd := newRootCmdIO(streams, out, &cleanups)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(streams.stdout)
	rootCmd.SetErr(streams.stderr)

	err := rootCmd.ExecuteContext(context.Background())

	// Cobra skips post-run hooks when a command fails, and a failing
	// command's spans and log records still need flushing.
	if cleanupErr := cleanups.run(); err == nil {
		err = cleanupErr
	}

	if err != nil {
		return handleError(out, err)
	}

	return 0
}

// cleanupStack releases per-invocation resources in reverse order of
// acquisition.
type cleanupStack struct {
	names []string
	fns   []func() error
}

func (c *cleanupStack) push(name string, fn func() error) {
	c.names = append(c.names, name)
	c.fns = append(c.fns, fn)
}

func (c *cleanupStack) run() error {
	var errs []error

	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s: %w", c.names[i], err))
		}
	}

	c.names, c.fns = nil, nil

	return errors.Join(errs...)
}

// handleError formats and displays a CLI error, returning the appropriate exit code.
// For CLIError types, it displays the message and hint with styled output.
// For Cobra errors (unknown command, flags), it prints them with suggestions.
func handleError(out *output.Writer, err error) int {
	var cliErr *clierrors.CLIError
	if clierrors.AsCLI(err, &cliErr) {
		if cliErr.Cause != nil && cliErr.Code != clierrors.ExitUsage {
			out.Failure("%s: %v", cliErr.Message, cliErr.Cause)
		} else {
			out.Failure("%s", cliErr.Message)
		}

		if cliErr.Hint != "" {
			out.Hint("%s", cliErr.Hint)
		}

		return cliErr.Code
	}

	errStr := err.Error()

	// Format: "unknown command \"xyz\" for \"termcursor\"\n\nDid you mean this?\n\t..."
	if strings.HasPrefix(errStr, "unknown command") {
		out.Failure("%s", errStr)

		if !strings.Contains(errStr, "--help") {
			out.Hint("Run 'termcursor --help' for usage")
		}

		return clierrors.ExitUsage
	}

	// Flag errors are normally wrapped as CLIError by SetFlagErrorFunc.
	if strings.HasPrefix(errStr, "unknown flag") ||
		strings.HasPrefix(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "required flag") {
		out.Failure("%s", errStr)
		out.Hint("Run 'termcursor --help' for usage")

		return clierrors.ExitUsage
	}

	out.Failure("%s", errStr)

	return clierrors.ExitGeneral
}

func newRootCmd() *cobra.Command {
	streams := defaultIO()

	return newRootCmdIO(streams, output.NewWriter(streams.stdout, streams.stderr, streams.info), &cleanupStack{})
}

func newRootCmdIO(streams cliIO, out *output.Writer, cleanups *cleanupStack) *cobra.Command {
	var (
		jsonOutput bool
		quiet      bool
		noColor    bool
		timeout    time.Duration
		logLevel   string
		logFormat  string
		logFile    string
		logStderr  string
	)

	rootCmd := &cobra.Command{
		Use:   "termcursor",
		Short: "Move, query and clear the terminal cursor",
		Long: `termcursor moves the cursor of the terminal it runs in, reports where the
cursor is, and clears the screen. It drives VT-compatible terminals with
escape sequences and the Windows console through its screen buffer API.

Coordinates are 0-based: column 0, row 0 is the top-left cell.

Get started:
  termcursor pos             Print the cursor position
  termcursor goto 0 0        Move the cursor to the top-left cell
  termcursor doctor          Check whether this terminal answers queries`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := streams.loadConfig()
			if err != nil {
				return clierrors.InvalidConfig("config file", err)
			}

			out.JSON = jsonOutput
			out.Quiet = quiet

			if noColor {
				out.SetNoColor(true)

				color.NoColor = true
			}

			logCfg := observability.Config{
				Level:       pickFlagOrConfig(logLevel, cfg.LogLevel()),
				Format:      pickFlagOrConfig(logFormat, cfg.LogFormat()),
				LogFile:     pickFlagOrConfig(logFile, cfg.LogFile()),
				StderrMode:  pickFlagOrConfig(logStderr, cfg.LogStderr()),
				StderrIsTTY: terminal.IsTerminal(streams.stderr),
				SessionID:   uuid.NewString(),
				CommandPath: cmd.CommandPath(),
				Version:     buildinfo.Version,
				Commit:      buildinfo.Commit,
				Stderr:      streams.stderr,
			}

			logger, cleanup, err := observability.NewLogger(&logCfg)
			if err != nil {
				return clierrors.NewCLI(clierrors.ExitUsage, fmt.Sprintf("Invalid logging configuration: %v", err)).
					WithHint("Use --log-level (error|warn|info|debug), --log-format (json|text), --log-stderr (auto|on|off), and/or --log-file")
			}

			sess := &session{
				cfg:     cfg,
				info:    streams.info,
				logger:  logger,
				streams: streams,
			}

			if cmd.Flags().Changed("timeout") {
				sess.timeout = &timeout
			}

			ctx := out.WithContext(cmd.Context())
			ctx = sess.withContext(ctx)
			cmd.SetContext(ctx)

			logger.Debug("command started", slog.String("os", runtime.GOOS))

			if cleanup != nil {
				cleanups.push("logger resources", cleanup)
			}

			// OpenTelemetry tracing is opt-in via TERMCURSOR_TRACE or OTEL_ENABLED.
			telemetryShutdown, err := observability.SetupTelemetry(ctx, &observability.TelemetryConfig{
				Enabled: observability.IsTelemetryEnabled(),
				Version: buildinfo.Version,
				Commit:  buildinfo.Commit,
			})
			if err != nil {
				logger.Warn("telemetry initialization failed", slog.String("error", err.Error()))
			}

			cleanups.push("telemetry resources", func() error {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				return telemetryShutdown(shutdownCtx)
			})

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Minimal output (for CI)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultQueryTimeout, "How long to wait for a cursor position report (0 waits forever)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, debug")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json, text")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Optional structured log file path")
	rootCmd.PersistentFlags().StringVar(&logStderr, "log-stderr", "", "Structured logging to stderr: auto, on, off")

	rootCmd.SuggestionsMinimumDistance = 2

	rootCmd.SetFlagErrorFunc(flagError)

	// Cursor commands
	rootCmd.AddCommand(newGotoCmd())
	rootCmd.AddCommand(newMoveCmd())
	for _, dir := range directions {
		rootCmd.AddCommand(newDirectionCmd(dir))
	}
	rootCmd.AddCommand(newPosCmd())
	rootCmd.AddCommand(newClearCmd())

	// Utility commands
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// flagError wraps Cobra's raw flag errors in CLIError. A "flag" made of
// digits is a negative coordinate that needs "--" in front of it.
func flagError(cmd *cobra.Command, err error) error {
	cliErr := clierrors.NewCLI(clierrors.ExitUsage, err.Error())

	if looksLikeNegativeNumber(err.Error()) {
		return cliErr.WithHint(clierrors.HintNegativeArgs)
	}

	return cliErr.WithHint(fmt.Sprintf("Run '%s --help' for available flags", cmd.CommandPath()))
}

func looksLikeNegativeNumber(msg string) bool {
	const prefix = "unknown shorthand flag: '"

	i := strings.Index(msg, prefix)
	if i < 0 || len(msg) <= i+len(prefix) {
		return false
	}

	c := msg[i+len(prefix)]

	return c >= '0' && c <= '9'
}

func pickFlagOrConfig(flagValue, configValue string) string {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return trimmed
	}

	return configValue
}

// session is built once per invocation and shared with subcommands through
// the command context.
type session struct {
	cfg     *config.Config
	info    *terminal.Info
	logger  *slog.Logger
	streams cliIO
	timeout *time.Duration // set when --timeout was given
}

type sessionKey struct{}

func (s *session) withContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func sessionFromContext(ctx context.Context) *session {
	if s, ok := ctx.Value(sessionKey{}).(*session); ok {
		return s
	}

	streams := defaultIO()

	return &session{info: streams.info, logger: observability.Discard(), streams: streams}
}

// replyTimeout resolves --timeout, then query.timeout.
func (s *session) replyTimeout() (time.Duration, error) {
	if s.timeout != nil {
		return *s.timeout, nil
	}

	if s.cfg == nil {
		return config.DefaultQueryTimeout, nil
	}

	d, err := s.cfg.QueryTimeout()
	if err != nil {
		return 0, clierrors.InvalidConfig(config.KeyQueryTimeout, err)
	}

	return d, nil
}

// console reports whether commands drive the Windows console API.
func (s *session) console() bool {
	return runtime.GOOS == "windows" && s.streams.termOut == nil
}

func (s *session) backendName() string {
	if s.console() {
		return "console"
	}

	return "ansi"
}

// terminal builds the cursor target for this invocation.
func (s *session) terminal() (*termcursor.Terminal, error) {
	timeout, err := s.replyTimeout()
	if err != nil {
		return nil, err
	}

	opts := []termcursor.Option{
		termcursor.WithTimeout(timeout),
		termcursor.WithLogger(s.logger),
	}

	if s.streams.termOut != nil {
		opts = append(opts, termcursor.WithStreams(s.streams.termIn, s.streams.termOut))
	}

	return termcursor.New(opts...), nil
}

// VersionInfo represents version information for JSON output.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// noArgs returns a Cobra positional-arg validator that rejects any arguments
// with a clear, user-friendly message (unlike cobra.NoArgs which says "unknown command").
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return clierrors.NewCLI(clierrors.ExitUsage, fmt.Sprintf("'%s' accepts no arguments", cmd.CommandPath())).
			WithHint(fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()))
	}

	return nil
}

// rangeArgs is cobra.RangeArgs with a CLIError.
func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) >= lo && len(args) <= hi {
			return nil
		}

		want := fmt.Sprintf("%d", lo)
		if hi != lo {
			want = fmt.Sprintf("%d to %d", lo, hi)
		}

		msg := fmt.Sprintf("'%s' takes %s arguments, got %d", cmd.CommandPath(), want, len(args))

		return clierrors.NewCLI(clierrors.ExitUsage, msg).WithHint("Usage: " + cmd.UseLine())
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show version information",
		Long:    `Display the termcursor binary version, git commit, and build date.`,
		Example: `  termcursor version`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if out.JSON {
				return out.PrintJSON(VersionInfo{
					Version: buildinfo.Version,
					Commit:  buildinfo.Commit,
					Date:    buildinfo.Date,
				})
			}

			out.Print("termcursor %s\n", buildinfo.Version)
			out.Print("  commit: %s\n", buildinfo.Commit)
			out.Print("  built:  %s\n", buildinfo.Date)

			return nil
		},
	}
}
