package main

import (
	"github.com/spf13/cobra"

	"github.com/musher-dev/termcursor/internal/doctor"
	"github.com/musher-dev/termcursor/internal/output"
)

// DoctorReport is the JSON shape of a doctor run.
type DoctorReport struct {
	Results  []doctor.Result `json:"results"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Warnings int             `json:"warnings"`
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose cursor support in this terminal",
		Long: `Run diagnostic checks to find out whether this terminal can be driven.

Checks performed:
  - Whether stdout and stdin are attached to a terminal
  - Whether TERM names a terminal that interprets escape sequences
  - Whether the configuration file is valid
  - A live cursor position query, answered within --timeout`,
		Example: `  termcursor doctor
  termcursor doctor --json
  termcursor doctor --timeout 3s`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			sess := sessionFromContext(cmd.Context())

			env := doctor.Env{
				Terminal: sess.info,
				Console:  sess.console(),
			}

			if sess.cfg != nil {
				env.Config = sess.cfg
			}

			// An invalid timeout is reported by the Configuration check.
			if term, err := sess.terminal(); err == nil {
				env.Cursor = term
			}

			results := doctor.New(env).Run(cmd.Context())
			passed, failed, warnings := doctor.Summary(results)

			if out.JSON {
				return out.PrintJSON(DoctorReport{
					Results:  results,
					Passed:   passed,
					Failed:   failed,
					Warnings: warnings,
				})
			}

			out.Println("termcursor doctor")
			out.Println("=================")
			out.Println()

			doctor.RenderResults(results, out.Print, out.Success, out.Warning, out.Failure, out.Muted)

			out.Println()
			out.Print("%d passed", passed)
			if failed > 0 {
				out.Print(", %d failed", failed)
			}
			if warnings > 0 {
				out.Print(", %d warning(s)", warnings)
			}
			out.Println()

			return nil
		},
	}
}
