package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/KaramelBytes/fitcorr/internal/memo"
	"github.com/KaramelBytes/fitcorr/internal/source"
)

// Options controls source decoding and numeric coercion.
type Options struct {
	Source source.Options
	// DecimalSeparator is '.' when 0. Set ',' for decimal-comma exports.
	DecimalSeparator rune
}

// Column is one retained metric. NaN marks a missing value.
type Column struct {
	Name   string
	Values []float64
}

// NonMissing counts the values that are present.
func (c Column) NonMissing() int {
	n := 0
	for _, v := range c.Values {
		if !IsMissing(v) {
			n++
		}
	}
	return n
}

// Table is the cleaned numeric view of a source. Every column and every row
// holds at least one non-missing value.
type Table struct {
	Name    string
	Columns []Column
	// SourceRows holds the 1-based source data row of each retained row.
	SourceRows []int
	// RowsRead is the number of data rows in the source.
	RowsRead int
	// Ignored lists header names outside the allow-list.
	Ignored []string
	// Dropped lists allow-listed columns removed because no value parsed.
	Dropped []string
	Notes   []string
}

// IsMissing reports whether v marks a missing value.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Rows returns the number of retained rows.
func (t *Table) Rows() int { return len(t.SourceRows) }

// Names returns the retained column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a retained column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Fingerprint identifies the table by content: column names and value bits.
func (t *Table) Fingerprint() string {
	k := memo.NewKey("table")
	for _, c := range t.Columns {
		k.String(c.Name).Float64s(c.Values)
	}
	return k.Sum()
}

// EmptyResultError reports that cleaning left nothing to analyze.
type EmptyResultError struct {
	Source  string
	Columns int
	Rows    int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no usable numeric data in %s: %d recognized columns and %d rows remain after cleaning",
		safeName(e.Source), e.Columns, e.Rows)
}

// RequireData returns an *EmptyResultError when no columns or rows remain.
func (t *Table) RequireData() error {
	if len(t.Columns) == 0 || t.Rows() == 0 {
		return &EmptyResultError{Source: t.Name, Columns: len(t.Columns), Rows: t.Rows()}
	}
	return nil
}

// Load decodes data (CSV or XLSX, chosen by name) and cleans it. The only
// error is a *source.ParseError for input that is not tabular at all.
func Load(name string, data []byte, opt Options) (*Table, error) {
	raw, err := source.Decode(name, data, opt.Source)
	if err != nil {
		return nil, err
	}
	return Clean(raw, opt), nil
}

// Clean restricts raw to allow-listed columns, coerces cells to numbers and
// drops all-missing columns, then all-missing rows.
func Clean(raw *source.RawTable, opt Options) *Table {
	t := &Table{Name: raw.Name, RowsRead: len(raw.Records)}

	// Normalize headers; the first occurrence of a name wins.
	index := map[string]int{}
	for i, h := range raw.Header {
		name := NormalizeName(h)
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			t.Notes = append(t.Notes, fmt.Sprintf("duplicate column %q: using the first occurrence", name))
			continue
		}
		index[name] = i
		if !IsAllowed(name) {
			t.Ignored = append(t.Ignored, name)
		}
	}
	selected := make([]string, 0, len(index))
	for name := range index {
		if IsAllowed(name) {
			selected = append(selected, name)
		}
	}
	sort.Slice(selected, func(i, j int) bool { return allowRank[selected[i]] < allowRank[selected[j]] })

	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	var cols []Column
	for _, name := range selected {
		idx := index[name]
		vals := make([]float64, len(raw.Records))
		present := 0
		for r, rec := range raw.Records {
			v := math.NaN()
			if idx < len(rec) {
				if x, ok := parseNumeric(rec[idx], dec); ok {
					v = x
					present++
				}
			}
			vals[r] = v
		}
		if present == 0 {
			t.Dropped = append(t.Dropped, name)
			continue
		}
		cols = append(cols, Column{Name: name, Values: vals})
	}

	keep := make([]int, 0, len(raw.Records))
	for r := range raw.Records {
		for _, c := range cols {
			if !IsMissing(c.Values[r]) {
				keep = append(keep, r)
				break
			}
		}
	}
	for i := range cols {
		vals := make([]float64, len(keep))
		for j, r := range keep {
			vals[j] = cols[i].Values[r]
		}
		cols[i].Values = vals
	}
	t.Columns = cols
	t.SourceRows = make([]int, len(keep))
	for j, r := range keep {
		t.SourceRows[j] = r + 1
	}
	if dropped := t.RowsRead - len(keep); dropped > 0 && len(cols) > 0 {
		t.Notes = append(t.Notes, fmt.Sprintf("dropped %d/%d rows with no recognized measurement", dropped, t.RowsRead))
	}
	return t
}

// parseNumeric coerces one cell. Empty, unparseable and non-finite cells are
// reported as not ok.
func parseNumeric(s string, dec rune) (float64, bool) {
	raw := strings.TrimFunc(s, unicode.IsSpace)
	if raw == "" {
		return 0, false
	}
	// Hex floats and digit separators are valid Go syntax but not data.
	if strings.ContainsAny(raw, "xX_") {
		return 0, false
	}
	if dec != '.' {
		if strings.ContainsRune(raw, '.') {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
