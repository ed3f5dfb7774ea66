// Package cli provides output formatting for the kotae command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/runstore"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteReport writes an evaluation report to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteReport(w io.Writer, report *models.MetricsReport, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		writeReportText(w, report)
		return nil
	}
}

func writeReportText(w io.Writer, report *models.MetricsReport) {
	fmt.Fprintf(w, "\nRun %s", report.RunID)
	if report.Name != "" {
		fmt.Fprintf(w, " (%s)", report.Name)
	}
	if report.Partial {
		fmt.Fprint(w, " [partial]")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Engine: %s | Reader: %s | TopK: %d | Elapsed: %dms\n",
		report.Engine, report.Reader, report.TopK, report.ElapsedMS)
	fmt.Fprintf(w, "Questions: %d | Scored: %d | Failed: %d | Skipped: %d | Gold no-answer: %d\n",
		report.Questions, report.Scored, len(report.Failed), report.Skipped, report.GoldNoAnswer)
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	writeTaskMetrics(w, "Long answer", report.LongAnswer)
	writeTaskMetrics(w, "Short answer", report.ShortAnswer)
	if len(report.Failed) > 0 {
		fmt.Fprintln(w, "\nFailed questions:")
		for _, f := range report.Failed {
			fmt.Fprintf(w, "  %s: %s", f.QuestionID, f.Reason)
			if f.Detail != "" {
				fmt.Fprintf(w, " (%s)", Truncate(f.Detail, 120))
			}
			fmt.Fprintln(w)
		}
	}
}

func writeTaskMetrics(w io.Writer, label string, m models.TaskMetrics) {
	fmt.Fprintf(w, "%-13s P %.4f  R %.4f  F1 %.4f  (%d correct / %d predicted / %d gold)\n",
		label, m.Precision, m.Recall, m.F1, m.Correct, m.Predicted, m.Gold)
}

// WriteRunList writes run summaries to w in the given format, one line per
// run in text mode.
func WriteRunList(w io.Writer, runs []runstore.RunSummary, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	default:
		writeRunListText(w, runs)
		return nil
	}
}

func writeRunListText(w io.Writer, runs []runstore.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-16s  %-12s  %-12s  %-8s  %8s  %8s  %s\n",
		"RUN", "CREATED", "NAME", "ENGINE", "READER", "LONG F1", "SHORT F1", "SCORED")
	anyPartial := false
	for _, r := range runs {
		scored := fmt.Sprintf("%d/%d", r.Scored, r.Questions)
		if r.Partial {
			scored += "*"
			anyPartial = true
		}
		fmt.Fprintf(w, "%-36s  %-16s  %-12s  %-12s  %-8s  %8.4f  %8.4f  %s\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04"), Truncate(r.Name, 12),
			r.Engine, r.Reader, r.LongF1, r.ShortF1, scored)
	}
	if anyPartial {
		fmt.Fprintln(w, "  * partial run")
	}
}

// PrintReport prints a report to stdout in text format.
func PrintReport(report *models.MetricsReport) {
	_ = WriteReport(os.Stdout, report, OutputText)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
