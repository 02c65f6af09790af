package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/versebench/versebench/internal/eval/metrics"
	"github.com/versebench/versebench/internal/models"
)

var (
	passStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5A623"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5534B"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B949E"))
	reportFormat = []string{"text", "json", "csv"}
)

// Formats lists the supported report formats
func Formats() []string {
	return append([]string(nil), reportFormat...)
}

// WriteReport writes run in the given format
func WriteReport(w io.Writer, run *models.Run, format string, verbose bool) error {
	switch format {
	case "text":
		return WriteTextReport(w, run, verbose)
	case "json":
		return WriteJSONReport(w, run)
	case "csv":
		return WriteCSVReport(w, run)
	default:
		return fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(reportFormat, ", "))
	}
}

// VerdictLabel renders a verdict as a colored label
func VerdictLabel(v metrics.Verdict) string {
	label := strings.ToUpper(string(v))
	switch v {
	case metrics.VerdictPass:
		return passStyle.Render(label)
	case metrics.VerdictWarn:
		return warnStyle.Render(label)
	case metrics.VerdictFail:
		return failStyle.Render(label)
	default:
		return mutedStyle.Render("-")
	}
}

// PrintSummary writes the roll-up section of a report
func PrintSummary(w io.Writer, run *models.Run) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, headerStyle.Render("Benchmark Summary"))
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Run:              %s\n", run.ID)
	fmt.Fprintf(w, "Provider:         %s\n", run.Provider)
	fmt.Fprintf(w, "Model:            %s\n", run.Model)
	fmt.Fprintf(w, "Status:           %s\n", run.Status)
	fmt.Fprintf(w, "Profiles:         canonical=%s output=%s\n", run.CanonicalProfile, run.OutputProfile)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Chapters:         %d\n", run.Summary.Total)
	fmt.Fprintf(w, "Perfect Chapters: %d (%.2f%%)\n", run.Summary.Matches, run.Summary.PerfectRate*100)
	fmt.Fprintf(w, "Avg Fidelity:     %.2f\n", run.Summary.AvgFidelity)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Verses:           %d\n", run.VerseSummary.Total)
	fmt.Fprintf(w, "Perfect Verses:   %d (%.2f%%)\n", run.VerseSummary.Matches, run.VerseSummary.PerfectRate*100)
	fmt.Fprintf(w, "Avg Fidelity:     %.2f\n", run.VerseSummary.AvgFidelity)

	stats := metrics.CalculateStats(run.AllVerses())
	fmt.Fprintf(w, "Median / Min / Max: %.2f / %.2f / %.2f\n", stats.Median, stats.Min, stats.Max)
	fmt.Fprintf(w, "Verdicts:         %s %d  %s %d  %s %d\n",
		VerdictLabel(metrics.VerdictPass), run.Verdicts.Pass,
		VerdictLabel(metrics.VerdictWarn), run.Verdicts.Warn,
		VerdictLabel(metrics.VerdictFail), run.Verdicts.Fail)
	fmt.Fprintln(w, "========================================")
}

// WriteTextReport writes a human readable report. Verbose adds every
// verse that did not match exactly.
func WriteTextReport(w io.Writer, run *models.Run, verbose bool) error {
	PrintSummary(w, run)

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, "========================================")

	for i, ch := range run.Chapters {
		fmt.Fprintf(w, "\n[%d] %s %d  %s\n", i+1, ch.Book, ch.Chapter, VerdictLabel(ch.Verdict))

		if ch.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", ch.Error)
			continue
		}

		fmt.Fprintf(w, "  Fidelity:      %.2f (hash match: %t)\n", ch.FidelityScore, ch.HashMatch)
		fmt.Fprintf(w, "  Verses:        %d/%d perfect, avg %.2f\n", ch.Summary.Matches, ch.Summary.Total, ch.Summary.AvgFidelity)
		fmt.Fprintf(w, "  Edits:         %d substituted, %d omitted, %d added\n", ch.Diff.Substitutions, ch.Diff.Omissions, ch.Diff.Additions)
		if len(ch.MissingVerses) > 0 {
			fmt.Fprintf(w, "  Missing:       %v\n", ch.MissingVerses)
		}
		if len(ch.ExtraVerses) > 0 {
			fmt.Fprintf(w, "  Extra:         %v\n", ch.ExtraVerses)
		}
		for _, warning := range ch.Warnings {
			fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("warning:"), warning)
		}

		if !verbose {
			continue
		}
		for _, v := range ch.Verses {
			if v.HashMatch {
				continue
			}
			fmt.Fprintf(w, "    v%d %s (%.2f)\n", v.VerseNumber, VerdictLabel(v.Verdict), v.FidelityScore)
			fmt.Fprintf(w, "      Canonical: %s\n", truncate(v.CanonicalText, 100))
			fmt.Fprintf(w, "      Generated: %s\n", truncate(v.NormalizedText, 100))
		}
	}

	return nil
}

// WriteJSONReport writes the run as indented JSON
func WriteJSONReport(w io.Writer, run *models.Run) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(run)
}

// WriteCSVReport writes one row per verse
func WriteCSVReport(w io.Writer, run *models.Run) error {
	writer := csv.NewWriter(w)

	header := []string{"Book", "Chapter", "Verse", "Verse ID", "Matched", "Hash Match", "Fidelity", "Verdict", "Substitutions", "Omissions", "Additions", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, ch := range run.Chapters {
		if ch.Error != "" && len(ch.Verses) == 0 {
			row := []string{ch.Book, strconv.Itoa(ch.Chapter), "", "", "", "", "0", string(ch.Verdict), "", "", "", ch.Error}
			if err := writer.Write(row); err != nil {
				return err
			}
			continue
		}
		for _, v := range ch.Verses {
			row := []string{
				ch.Book,
				strconv.Itoa(ch.Chapter),
				strconv.Itoa(v.VerseNumber),
				strconv.Itoa(v.VerseID),
				strconv.FormatBool(v.Matched),
				strconv.FormatBool(v.HashMatch),
				fmt.Sprintf("%.2f", v.FidelityScore),
				string(v.Verdict),
				strconv.Itoa(v.Diff.Substitutions),
				strconv.Itoa(v.Diff.Omissions),
				strconv.Itoa(v.Diff.Additions),
				"",
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
