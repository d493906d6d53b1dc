package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	case "":
		return formatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: text, json, yaml)", s)
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, v any, format outputFormat) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

// writeImportReport prints the outcome of an import run.
func writeImportReport(w io.Writer, r *domain.ImportResult, format outputFormat) error {
	if format != formatText {
		return writeStructured(w, r, format)
	}

	state := "completed"
	if !r.Success {
		state = "failed"
	}

	fmt.Fprintf(w, "Import run %s: %s\n", r.RunID, state)
	fmt.Fprintf(w, "  Files processed:   %d\n", r.FilesProcessed)
	fmt.Fprintf(w, "  Products imported: %d (%d created, %d updated)\n",
		r.RecordsImported, r.RecordsCreated, r.RecordsUpdated)
	fmt.Fprintf(w, "  Records skipped:   %d\n", r.RecordsSkipped)
	fmt.Fprintf(w, "  Records rejected:  %d\n", r.RecordsRejected)
	fmt.Fprintf(w, "  Duration:          %s\n", r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond))

	if len(r.Errors) == 0 {
		fmt.Fprintln(w, "No errors.")
		return nil
	}
	fmt.Fprintf(w, "Errors (%d):\n", len(r.Errors))
	for _, e := range r.Errors {
		if e.FileName == "" {
			fmt.Fprintf(w, "  - %s\n", e.Error)
			continue
		}
		fmt.Fprintf(w, "  - %s: %s\n", e.FileName, e.Error)
	}
	return nil
}

// runEntryView is the structured form of a ledger entry.
type runEntryView struct {
	ID               int64      `json:"id" yaml:"id"`
	RunID            string     `json:"run_id" yaml:"run_id"`
	Filename         string     `json:"filename" yaml:"filename"`
	ProductsImported int        `json:"products_imported" yaml:"products_imported"`
	Status           string     `json:"status" yaml:"status"`
	StartedAt        time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt      *time.Time `json:"completed_at" yaml:"completed_at"`
	ErrorMessage     string     `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// writeRuns prints ledger entries, most recent first.
func writeRuns(w io.Writer, entries []domain.RunEntry, format outputFormat, now time.Time) error {
	if format != formatText {
		views := make([]runEntryView, 0, len(entries))
		for _, e := range entries {
			views = append(views, runEntryView{
				ID:               e.ID,
				RunID:            e.RunID,
				Filename:         e.SourceName,
				ProductsImported: e.RecordsImported,
				Status:           e.State.String(),
				StartedAt:        e.StartedAt,
				CompletedAt:      e.CompletedAt,
				ErrorMessage:     e.ErrorDetail,
			})
		}
		return writeStructured(w, views, format)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No imports recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tSTATUS\tPRODUCTS\tSTARTED\tDURATION\tERROR")
	for _, e := range entries {
		duration := "-"
		if e.CompletedAt != nil {
			duration = e.Duration().Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.SourceName,
			e.State,
			humanize.Comma(int64(e.RecordsImported)),
			humanize.RelTime(e.StartedAt, now, "ago", "from now"),
			duration,
			truncate(e.ErrorDetail, 60),
		)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
