package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/musher-dev/termcursor"
	clierrors "github.com/musher-dev/termcursor/internal/errors"
	"github.com/musher-dev/termcursor/internal/observability"
	"github.com/musher-dev/termcursor/internal/output"
)

// Position is the JSON shape of a cursor position.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func parseInt(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, clierrors.InvalidCoordinate(name, value)
	}

	return n, nil
}

// render applies cmds to the session terminal, converting failures to
// CLIErrors with an exit code per error kind.
func render(ctx context.Context, cmds ...termcursor.Command) error {
	sess := sessionFromContext(ctx)

	term, err := sess.terminal()
	if err != nil {
		return err
	}

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.String()
	}

	_, span := observability.Tracer().Start(ctx, "cursor.render", trace.WithAttributes(
		attribute.StringSlice("cursor.commands", names),
		attribute.String("cursor.backend", sess.backendName()),
	))

	err = term.Render(cmds...)
	observability.EndSpan(span, err, errorAttrs(err)...)

	if err != nil {
		return clierrors.TerminalFailed(err)
	}

	return nil
}

func errorAttrs(err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}

	return []attribute.KeyValue{
		attribute.String("cursor.error_kind", clierrors.KindOf(err).String()),
	}
}

func newGotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goto <x> <y>",
		Short: "Move the cursor to a column and row",
		Long: `Move the cursor to column x, row y. Both are 0-based, so 'goto 0 0' is the
top-left cell. Values beyond the screen are clamped by the terminal.`,
		Example: `  termcursor goto 0 0
  termcursor goto 10 5`,
		Args: rangeArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseInt("column", args[0])
			if err != nil {
				return err
			}

			y, err := parseInt("row", args[1])
			if err != nil {
				return err
			}

			return render(cmd.Context(), termcursor.Goto{X: x, Y: y})
		},
	}
}

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <dx> <dy>",
		Short: "Move the cursor relative to where it is",
		Long: `Move the cursor by dx columns and dy rows from its current position. The
current position is queried first, so the terminal must answer cursor
position reports. Negative values must follow '--'.`,
		Example: `  termcursor move 3 1
  termcursor move -- -3 0`,
		Args: rangeArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dx, err := parseInt("column offset", args[0])
			if err != nil {
				return err
			}

			dy, err := parseInt("row offset", args[1])
			if err != nil {
				return err
			}

			return render(cmd.Context(), termcursor.Relative{DX: dx, DY: dy})
		},
	}
}

type direction struct {
	name  string
	short string
	axis  string
	cmd   func(n int) termcursor.Command
}

var directions = []direction{
	{name: "left", short: "Move the cursor left", axis: "columns", cmd: func(n int) termcursor.Command { return termcursor.Left(n) }},
	{name: "right", short: "Move the cursor right", axis: "columns", cmd: func(n int) termcursor.Command { return termcursor.Right(n) }},
	{name: "up", short: "Move the cursor up", axis: "rows", cmd: func(n int) termcursor.Command { return termcursor.Up(n) }},
	{name: "down", short: "Move the cursor down", axis: "rows", cmd: func(n int) termcursor.Command { return termcursor.Down(n) }},
}

func newDirectionCmd(dir direction) *cobra.Command {
	return &cobra.Command{
		Use:   dir.name + " [n]",
		Short: dir.short,
		Long: "Move the cursor " + dir.name + " by n " + dir.axis + " (default 1). The current position\n" +
			"is queried first, so the terminal must answer cursor position reports.",
		Example: "  termcursor " + dir.name + "\n  termcursor " + dir.name + " 4",
		Args:    rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1

			if len(args) == 1 {
				var err error

				if n, err = parseInt("count", args[0]); err != nil {
					return err
				}
			}

			return render(cmd.Context(), dir.cmd(n))
		},
	}
}

func newPosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pos",
		Short: "Print the cursor position",
		Long: `Query the terminal for the cursor position and print it as "x y", 0-based.
On VT terminals the query waits up to --timeout for the terminal's report.`,
		Example: `  termcursor pos
  termcursor pos --json
  termcursor pos --timeout 3s`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			sess := sessionFromContext(cmd.Context())

			term, err := sess.terminal()
			if err != nil {
				return err
			}

			_, span := observability.Tracer().Start(cmd.Context(), "cursor.query",
				trace.WithAttributes(attribute.String("cursor.backend", sess.backendName())))

			x, y, err := term.CursorPos()
			observability.EndSpan(span, err, errorAttrs(err)...)

			if err != nil {
				return clierrors.TerminalFailed(err)
			}

			if out.JSON {
				return out.PrintJSON(Position{X: x, Y: y})
			}

			out.Print("%d %d\n", x, y)

			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Short:   "Clear the screen and home the cursor",
		Long:    `Blank every cell of the screen and move the cursor to column 0, row 0.`,
		Example: `  termcursor clear`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.Context(), termcursor.ClearScreen{})
		},
	}
}
