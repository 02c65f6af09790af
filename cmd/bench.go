package cmd

import (
	"github.com/spf13/cobra"

	"github.com/versebench/versebench/internal/evalcmd"
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Scripture recitation benchmark tools",
		Long: `Tools for measuring how faithfully LLMs recite scripture.

Supports running a model over canonical chapters, reporting on finished runs,
inspecting and converting the canonical corpus, scoring and parsing ad hoc text, and managing
the transform profiles that normalize both sides before comparison.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())
	cmd.AddCommand(evalcmd.NewScoreCmd())
	cmd.AddCommand(evalcmd.NewParseCmd())
	cmd.AddCommand(evalcmd.NewHashCmd())
	cmd.AddCommand(evalcmd.NewProfilesCmd())
	cmd.AddCommand(evalcmd.NewConvertCmd())

	return cmd
}
