package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/fitcorr/internal/analysis"
	"github.com/KaramelBytes/fitcorr/internal/dataset"
	"github.com/KaramelBytes/fitcorr/internal/utils"
)

// topPairsLimit bounds the [CORRELATIONS] listing.
const topPairsLimit = 10

// Document is everything the presentation layer shows for one analysis run.
type Document struct {
	RunID    string                `json:"run_id"`
	Source   string                `json:"source"`
	RowsRead int                   `json:"rows_read"`
	Rows     int                   `json:"rows"`
	Columns  []dataset.ColumnStats `json:"columns"`
	Ignored  []string              `json:"ignored_columns,omitempty"`
	Dropped  []string              `json:"dropped_columns,omitempty"`
	Result   *analysis.Result      `json:"result"`
	Top      []analysis.Extreme    `json:"top_pairs"`
	Notes    []string              `json:"notes,omitempty"`
}

// New assembles a document from a cleaned table and its analysis.
func New(runID string, t *dataset.Table, res *analysis.Result) *Document {
	d := &Document{
		RunID:    runID,
		Source:   t.Name,
		RowsRead: t.RowsRead,
		Rows:     t.Rows(),
		Columns:  dataset.Summarize(t),
		Ignored:  t.Ignored,
		Dropped:  t.Dropped,
		Result:   res,
		Top:      res.TopPairs(topPairsLimit),
	}
	d.Notes = append(d.Notes, t.Notes...)
	if len(t.Ignored) > 0 {
		d.Notes = append(d.Notes, "ignored columns outside the allow-list: "+strings.Join(t.Ignored, ", "))
	}
	if len(t.Dropped) > 0 {
		d.Notes = append(d.Notes, "dropped columns with no numeric values: "+strings.Join(t.Dropped, ", "))
	}
	if res.Degenerate {
		d.Notes = append(d.Notes, "only one column pair has a defined correlation; it is reported as both extremes")
	}
	return d
}

// Coef formats a coefficient the way every surface prints it.
func Coef(r float64) string { return strconv.FormatFloat(r, 'f', 4, 64) }

// Markdown renders a compact report for terminals and standalone docs.
func (d *Document) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if d.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", d.Source))
	}
	if d.Rows < d.RowsRead {
		b.WriteString(fmt.Sprintf("Rows: %d (read %d)\n", d.Rows, d.RowsRead))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", d.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(d.Columns)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range d.Columns {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: non-null %d, missing %.1f%%; min %.4g, max %.4g, mean %.4g, std %.4g\n",
			c.Name, c.NonNull, missPct, c.Min, c.Max, c.Mean, c.Std))
	}

	res := d.Result
	b.WriteString("\n[EXTREME PAIRS]\n")
	b.WriteString(fmt.Sprintf("+ strongest positive: %s: r=%s (n=%d)\n", res.Positive.Pair, Coef(res.Positive.R), res.Positive.Obs))
	if res.Degenerate {
		b.WriteString(fmt.Sprintf("- strongest negative: %s: r=%s (n=%d, degenerate: single pair)\n", res.Negative.Pair, Coef(res.Negative.R), res.Negative.Obs))
	} else {
		b.WriteString(fmt.Sprintf("- strongest negative: %s: r=%s (n=%d)\n", res.Negative.Pair, Coef(res.Negative.R), res.Negative.Obs))
	}

	if len(d.Top) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range d.Top {
			b.WriteString(fmt.Sprintf("- %s: r=%s\n", p.Pair, Coef(p.R)))
		}
	}
	if len(d.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range d.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// JSON renders the document as indented JSON.
func (d *Document) JSON() ([]byte, error) {
	return utils.PrettyJSON(d)
}

// WriteHeatmapCSV writes long-format heatmap cells with a header row.
func WriteHeatmapCSV(w io.Writer, cells []analysis.Cell) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"variable_1", "variable_2", "correlation"}); err != nil {
		return fmt.Errorf("write heatmap header: %w", err)
	}
	for _, c := range cells {
		if err := cw.Write([]string{c.Variable1, c.Variable2, Coef(c.Correlation)}); err != nil {
			return fmt.Errorf("write heatmap row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
