package evalcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/versebench/versebench/internal/config"
	"github.com/versebench/versebench/internal/eval/results"
	"github.com/versebench/versebench/internal/models"
	"github.com/versebench/versebench/internal/transform"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ask a model to recite chapters and score the output",
		Long: `Prompts an LLM to recite each selected chapter from memory, normalizes the
response with the model-output profile, splits it into verses, maps the verses
onto the canonical corpus and scores every verse and chapter.

The corpus is a JSONL or Parquet file of canonical verses, or an http(s) URL
that is downloaded once into the local cache. Results are written as YAML to
the output directory, optionally as JSON, and stored in the run database when
VERSEBENCH_DB is set.`,
		Example: `  # Recite Genesis 1 and Psalm 117 with Ollama
  versebench bench run --corpus ./kjv.parquet --chapters "Gen 1" --chapters "Ps 117"

  # First 10 chapters of the corpus with OpenAI
  versebench bench run --corpus ./kjv.parquet --limit 10 --provider openai --model gpt-4o

  # Replay recorded responses without calling a model
  versebench bench run --corpus ./kjv.jsonl --provider static --responses ./responses.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := executeRun(cmd.Context(), cmd.OutOrStdout(), config.Load(), opts)
			if err != nil {
				return err
			}
			if run.Status != models.RunStatusCompleted {
				return fmt.Errorf("run %s finished with status %s", run.ID, run.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Corpus, "corpus", "", "Path or URL of the canonical corpus (default $VERSEBENCH_CORPUS)")
	cmd.Flags().StringSliceVar(&opts.Chapters, "chapters", nil, `Chapters to run, e.g. "Gen 1" (default all)`)
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Run only the first N chapters of the corpus (0 for all)")
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "LLM provider: ollama, openai, gemini or static (default $VERSEBENCH_PROVIDER)")
	cmd.Flags().StringVar(&opts.Model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().StringVar(&opts.Responses, "responses", "", "YAML file of recorded responses for the static provider")
	cmd.Flags().StringVar(&opts.Translation, "translation", "KJV", "Translation named in the prompt")
	cmd.Flags().Float64Var(&opts.Temperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Number of chapters in flight")
	cmd.Flags().StringVar(&opts.ProfilesPath, "profiles", "", "Transform profile file (default $VERSEBENCH_PROFILES)")
	cmd.Flags().StringVar(&opts.CanonicalProfile, "canonical-profile", "", "Canonical profile name")
	cmd.Flags().StringVar(&opts.OutputProfile, "output-profile", "", "Model-output profile name")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "evals", "Directory for the YAML result file")
	cmd.Flags().StringVar(&opts.OutputJSON, "output-json", "", "Also write the full run as JSON to this path")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var format string
	var details bool

	cmd := &cobra.Command{
		Use:   "report <results.json | run-id>",
		Short: "Print a report for a finished run",
		Long: `Prints a report for a run read from a JSON results file or, when the argument
is not a file, looked up by id in the run database (VERSEBENCH_DB).`,
		Example: `  versebench bench report ./evals/run.json
  versebench bench report 0b6f3c1e-5d7a-4c41-9a57-0e9b6c7f4a12 --format csv
  versebench bench report ./evals/run.json --details`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.Context(), cmd.OutOrStdout(), config.Load(), args[0], format, details)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: "+strings.Join(results.Formats(), ", "))
	cmd.Flags().BoolVar(&details, "details", false, "Include every verse that did not match exactly")

	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect canonical verses as the scorer sees them",
		Long: `Prints canonical verses next to their processed text, verse id and hash.

Useful for checking what a canonical profile does to the corpus before running
a benchmark.`,
		Example: `  # Inspect Genesis 1 one verse at a time
  versebench bench inspect --corpus ./kjv.parquet --chapter "Gen 1" --interactive

  # First 20 verses of the corpus
  versebench bench inspect --corpus ./kjv.parquet --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInspect(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), config.Load(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Corpus, "corpus", "", "Path or URL of the canonical corpus (default $VERSEBENCH_CORPUS)")
	cmd.Flags().StringVar(&opts.Chapter, "chapter", "", `Chapter to inspect, e.g. "Ps 117"`)
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "Number of verses to inspect when no chapter is given (0 for all)")
	cmd.Flags().BoolVar(&opts.Interactive, "interactive", false, "Pause after each verse (press Enter to continue)")
	cmd.Flags().StringVar(&opts.ProfilesPath, "profiles", "", "Transform profile file (default $VERSEBENCH_PROFILES)")
	cmd.Flags().StringVar(&opts.CanonicalProfile, "canonical-profile", "", "Canonical profile name")

	return cmd
}

// NewScoreCmd creates the score command
func NewScoreCmd() *cobra.Command {
	var opts scoreOptions

	cmd := &cobra.Command{
		Use:   "score <canonical-file> <candidate-file>",
		Short: "Score a candidate text against canonical text",
		Long: `Normalizes the canonical text with the canonical profile and the candidate
with the model-output profile, then reports the fidelity score, edit counts,
hash match and verdict. Use "-" to read either file from stdin.`,
		Example: `  versebench bench score gen1.txt answer.txt
  pbpaste | versebench bench score gen1.txt - --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			canonical, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			candidate, err := readInput(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return executeScore(cmd.OutOrStdout(), config.Load(), canonical, candidate, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ProfilesPath, "profiles", "", "Transform profile file (default $VERSEBENCH_PROFILES)")
	cmd.Flags().StringVar(&opts.CanonicalProfile, "canonical-profile", "", "Canonical profile name")
	cmd.Flags().StringVar(&opts.OutputProfile, "output-profile", "", "Model-output profile name")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&opts.Hunks, "hunks", false, "Print the individual diff hunks")

	return cmd
}

// NewParseCmd creates the parse command
func NewParseCmd() *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Split model output into numbered verses",
		Example: `  versebench bench parse answer.txt
  versebench bench parse answer.txt --strategy inline --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return executeParse(cmd.OutOrStdout(), config.Load(), text, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", "auto", "Parse strategy: auto, line or inline")
	cmd.Flags().StringVar(&opts.ProfilesPath, "profiles", "", "Transform profile file (default $VERSEBENCH_PROFILES)")
	cmd.Flags().StringVar(&opts.OutputProfile, "output-profile", "", `Model-output profile applied first ("none" to skip)`)
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the result as JSON")

	return cmd
}

// NewHashCmd creates the hash command
func NewHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash [text]",
		Short: "Print the SHA-256 fingerprint of text",
		Long:  `Prints the lowercase hex SHA-256 of the argument, or of stdin when no argument is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = args[0]
			} else {
				var err error
				if text, err = readInput("-", cmd.InOrStdin()); err != nil {
					return err
				}
			}
			return executeHash(cmd.OutOrStdout(), text)
		},
	}
	return cmd
}

// NewProfilesCmd creates the profiles command group
func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List, validate, export and trace transform profiles",
	}

	var listPath string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the active profiles and their steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeProfilesList(cmd.OutOrStdout(), profilesPath(listPath))
		},
	}
	list.Flags().StringVar(&listPath, "profiles", "", "Transform profile file (default $VERSEBENCH_PROFILES)")

	validate := &cobra.Command{
		Use:   "validate <file>",
		Short: "Load a profile file and report problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeProfilesValidate(cmd.OutOrStdout(), args[0])
		},
	}

	var exportPath, exportFormat string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the active profiles as YAML or JSON",
		Example: `  # Start a custom profile file from the built-in defaults
  versebench bench profiles export > profiles.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeProfilesExport(cmd.OutOrStdout(), profilesPath(exportPath), exportFormat)
		},
	}
	export.Flags().StringVar(&exportPath, "profiles", "", "Transform profile file (default $VERSEBENCH_PROFILES)")
	export.Flags().StringVar(&exportFormat, "format", "yaml", "Output format: yaml or json")

	var tracePath, traceScope, traceName string
	trace := &cobra.Command{
		Use:   "trace <text | ->",
		Short: "Show the text after each step of a profile",
		Example: `  versebench bench profiles trace "¶ In the <i>beginning</i>  God"
  versebench bench profiles trace - --scope model_output < answer.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := args[0]
			if text == "-" {
				var err error
				if text, err = readInput("-", cmd.InOrStdin()); err != nil {
					return err
				}
			}
			return executeProfilesTrace(cmd.OutOrStdout(), profilesPath(tracePath), transform.Scope(traceScope), traceName, text)
		},
	}
	trace.Flags().StringVar(&tracePath, "profiles", "", "Transform profile file (default $VERSEBENCH_PROFILES)")
	trace.Flags().StringVar(&traceScope, "scope", string(transform.ScopeCanonical), "Profile scope: canonical or model_output")
	trace.Flags().StringVar(&traceName, "name", "", "Profile name (default the scope's first profile)")

	cmd.AddCommand(list, validate, export, trace)
	return cmd
}

// NewConvertCmd creates the convert command
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <corpus> <output.parquet>",
		Short: "Convert a canonical corpus to Parquet",
		Long: `Reads a JSONL or Parquet corpus, or an http(s) URL of one, validates every
record and writes the verses to a Parquet file.`,
		Example: `  versebench bench convert ./kjv.jsonl ./kjv.parquet`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeConvert(cmd.Context(), cmd.OutOrStdout(), config.Load(), args[0], args[1])
		},
	}
	return cmd
}

func profilesPath(flag string) string {
	if flag != "" {
		return flag
	}
	return config.Load().ProfilesPath
}
