package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/hurou927/fide-ratings/internal/load"
	"github.com/hurou927/fide-ratings/internal/schema"
)

// Writer renders run summaries and store reports as text tables.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new report writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteSummary writes the completion report of a load run.
func (rw *Writer) WriteSummary(res *load.Result) error {
	if _, err := fmt.Fprintf(rw.w, "Load complete (run %s)\n", res.RunID); err != nil {
		return err
	}

	table := tablewriter.NewWriter(rw.w)
	table.Header("Metric", "Value")
	rows := [][]string{
		{"players parsed", humanize.Comma(int64(res.Parsed))},
		{"records written", humanize.Comma(int64(res.Records))},
		{"records skipped", humanize.Comma(int64(res.Skipped))},
		{"batches", humanize.Comma(int64(res.Batches))},
		{"players stored", humanize.Comma(res.Counts.Players)},
		{"names indexed", humanize.Comma(res.Counts.Indexed)},
		{"elapsed", res.Elapsed.Round(time.Millisecond).String()},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteInspection writes the schema objects and row counts of a store.
func (rw *Writer) WriteInspection(dialect string, objects []schema.Object, counts schema.Counts) error {
	if _, err := fmt.Fprintf(rw.w, "Store dialect: %s\n", dialect); err != nil {
		return err
	}

	table := tablewriter.NewWriter(rw.w)
	table.Header("Kind", "Name")
	for _, o := range objects {
		if err := table.Append([]string{o.Kind, o.Name}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(rw.w, "players: %s rows, full-text index: %s entries\n",
		humanize.Comma(counts.Players), humanize.Comma(counts.Indexed))
	if err != nil {
		return err
	}
	if counts.Players != counts.Indexed {
		_, err = fmt.Fprintln(rw.w, "WARNING: full-text index is out of sync with players")
	}
	return err
}
