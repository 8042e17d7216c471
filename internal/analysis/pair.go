package analysis

// Pair is an unordered pair of distinct columns, stored with A < B so that a
// pair and its mirror compare equal.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewPair returns the canonical form of {x, y}.
func NewPair(x, y string) Pair {
	if y < x {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

func (p Pair) String() string { return p.A + " ~ " + p.B }

// less orders pairs lexicographically by (A, B).
func (p Pair) less(o Pair) bool {
	if p.A != o.A {
		return p.A < o.A
	}
	return p.B < o.B
}
