package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/KaramelBytes/fitcorr/internal/dataset"
)

// Matrix holds a symmetric Pearson correlation matrix across numeric columns.
// Undefined entries, including the whole diagonal, are NaN.
type Matrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
	// Obs counts the pairwise-complete observations behind each entry.
	Obs [][]int
}

// At returns the coefficient for two columns, if defined.
func (m *Matrix) At(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	v := m.Values[i][j]
	return v, !math.IsNaN(v)
}

func (m *Matrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// MarshalJSON encodes undefined entries as null.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	cols, err := json.Marshal(m.Columns)
	if err != nil {
		return nil, err
	}
	b.WriteString(`{"columns":`)
	b.Write(cols)
	b.WriteString(`,"values":[`)
	for i, row := range m.Values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for j, v := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			if math.IsNaN(v) {
				b.WriteString("null")
				continue
			}
			enc, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			b.Write(enc)
		}
		b.WriteByte(']')
	}
	b.WriteString("]}")
	return b.Bytes(), nil
}

// Correlate computes the pairwise-complete Pearson matrix for every column of t.
func Correlate(t *dataset.Table) *Matrix {
	n := len(t.Columns)
	m := &Matrix{Columns: t.Names(), Values: make([][]float64, n), Obs: make([][]int, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
		m.Obs[i] = make([]int, n)
		m.Values[i][i] = math.NaN()
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r, obs := pearson(t.Columns[i].Values, t.Columns[j].Values)
			m.Values[i][j], m.Values[j][i] = r, r
			m.Obs[i][j], m.Obs[j][i] = obs, obs
		}
	}
	return m
}

// pearson uses rows where both values are present. It returns NaN with fewer
// than two such rows or when either side has zero variance on them.
func pearson(x, y []float64) (float64, int) {
	var n int
	var sx, sy float64
	for i := range x {
		if dataset.IsMissing(x[i]) || dataset.IsMissing(y[i]) {
			continue
		}
		n++
		sx += x[i]
		sy += y[i]
	}
	if n < 2 {
		return math.NaN(), n
	}
	mx, my := sx/float64(n), sy/float64(n)
	var sxy, sxx, syy float64
	for i := range x {
		if dataset.IsMissing(x[i]) || dataset.IsMissing(y[i]) {
			continue
		}
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN(), n
	}
	r := sxy / math.Sqrt(sxx*syy)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, n
}

// Extreme is a column pair with its coefficient.
type Extreme struct {
	Pair
	R   float64 `json:"r"`
	Obs int     `json:"observations"`
}

// Result is the output of Analyze.
type Result struct {
	Matrix   *Matrix `json:"matrix"`
	Positive Extreme `json:"positive"`
	Negative Extreme `json:"negative"`
	// Degenerate is set when a single pair is defined, so Positive == Negative.
	Degenerate bool `json:"degenerate"`
	// Pairs counts defined unordered pairs.
	Pairs int `json:"pairs"`
}

// Analyze computes the correlation matrix of t and picks the pairs with the
// highest and lowest coefficient. Ties go to the lexicographically smallest
// pair (A, then B) for both extremes.
func Analyze(t *dataset.Table) (*Result, error) {
	if len(t.Columns) < 2 {
		return nil, &InsufficientDataError{Columns: len(t.Columns), Reason: "at least 2 numeric columns are required"}
	}
	m := Correlate(t)
	cands := definedPairs(m)
	if len(cands) == 0 {
		return nil, &InsufficientDataError{Columns: len(t.Columns), Reason: "no column pair has 2 overlapping observations with non-zero variance"}
	}
	pos, neg := cands[0], cands[0]
	for _, c := range cands[1:] {
		if c.R > pos.R {
			pos = c
		}
		if c.R < neg.R {
			neg = c
		}
	}
	return &Result{
		Matrix:     m,
		Positive:   pos,
		Negative:   neg,
		Degenerate: len(cands) == 1,
		Pairs:      len(cands),
	}, nil
}

// definedPairs collapses the matrix to one entry per unordered pair, sorted
// canonically.
func definedPairs(m *Matrix) []Extreme {
	var out []Extreme
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			out = append(out, Extreme{Pair: NewPair(m.Columns[i], m.Columns[j]), R: r, Obs: m.Obs[i][j]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pair.less(out[j].Pair) })
	return out
}

// TopPairs lists up to n defined pairs by descending |r|.
func (r *Result) TopPairs(n int) []Extreme {
	pairs := definedPairs(r.Matrix)
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// Cell is one heatmap entry in long format.
type Cell struct {
	Variable1   string  `json:"variable_1"`
	Variable2   string  `json:"variable_2"`
	Correlation float64 `json:"correlation"`
}

// Heatmap reshapes the matrix into long format: self-pairs, mirrored
// duplicates and undefined entries are omitted. Order follows the matrix.
func (r *Result) Heatmap() []Cell {
	m := r.Matrix
	var out []Cell
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			v := m.Values[i][j]
			if math.IsNaN(v) {
				continue
			}
			out = append(out, Cell{Variable1: m.Columns[i], Variable2: m.Columns[j], Correlation: v})
		}
	}
	return out
}

// Point is one pairwise-complete observation of a pair.
type Point struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Row int     `json:"row"`
}

// Points returns the observations of p.A (x) against p.B (y).
func Points(t *dataset.Table, p Pair) []Point {
	xs, okA := t.Column(p.A)
	ys, okB := t.Column(p.B)
	if !okA || !okB {
		return nil
	}
	var out []Point
	for i := range xs.Values {
		x, y := xs.Values[i], ys.Values[i]
		if dataset.IsMissing(x) || dataset.IsMissing(y) {
			continue
		}
		out = append(out, Point{X: x, Y: y, Row: t.SourceRows[i]})
	}
	return out
}
