package pythontype

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// exact-value sets larger than this are dropped in favor of their bounds
const maxExactValues = 32

// NumericRefinement constrains the possible values of an int, float or bool constant.
// A nil Exact set means any value within [Lower, Upper].
type NumericRefinement struct {
	Exact         []float64
	Lower         float64
	Upper         float64
	MayBeZero     bool
	MayBeNegative bool
	MayBePositive bool
}

// AnyNumber returns an unconstrained refinement
func AnyNumber() NumericRefinement {
	return NumericRefinement{Lower: math.Inf(-1), Upper: math.Inf(1)}.normalize()
}

// ExactNumbers returns a refinement holding exactly the given values
func ExactNumbers(xs ...float64) NumericRefinement {
	return NumericRefinement{
		Exact: append([]float64{}, xs...),
		Lower: math.Inf(-1),
		Upper: math.Inf(1),
	}.normalize()
}

// NumberRange returns a refinement for the closed interval [lower, upper]
func NumberRange(lower, upper float64) NumericRefinement {
	if lower > upper {
		lower, upper = upper, lower
	}
	return NumericRefinement{Lower: lower, Upper: upper}.normalize()
}

// normalize tightens the bounds to the exact-value set and derives the sign flags from the bounds
func (n NumericRefinement) normalize() NumericRefinement {
	if math.IsNaN(n.Lower) {
		n.Lower = math.Inf(-1)
	}
	if math.IsNaN(n.Upper) {
		n.Upper = math.Inf(1)
	}

	if n.Exact != nil {
		n.Exact = sortedFloats(n.Exact)
		inside := n.Exact[:0:0]
		for _, x := range n.Exact {
			if x >= n.Lower && x <= n.Upper {
				inside = append(inside, x)
			}
		}
		if len(inside) > 0 {
			n.Exact = inside
		}
		if len(n.Exact) > 0 {
			n.Lower = n.Exact[0]
			n.Upper = n.Exact[len(n.Exact)-1]
		}
		if len(n.Exact) > maxExactValues || len(n.Exact) == 0 {
			n.Exact = nil
		}
	}

	n.MayBeZero = n.Lower <= 0 && n.Upper >= 0
	n.MayBeNegative = n.Lower < 0
	n.MayBePositive = n.Upper > 0
	return n
}

// join returns the least refinement covering both n and m
func (n NumericRefinement) join(m NumericRefinement) NumericRefinement {
	var exact []float64
	if n.Exact != nil && m.Exact != nil {
		exact = append(append([]float64{}, n.Exact...), m.Exact...)
	}
	return NumericRefinement{
		Exact: exact,
		Lower: math.Min(n.Lower, m.Lower),
		Upper: math.Max(n.Upper, m.Upper),
	}.normalize()
}

// Single returns the only value the refinement admits, if there is exactly one
func (n NumericRefinement) Single() (float64, bool) {
	if len(n.Exact) == 1 {
		return n.Exact[0], true
	}
	if n.Lower == n.Upper && !math.IsInf(n.Lower, 0) {
		return n.Lower, true
	}
	return 0, false
}

// Contains returns true if x is admitted by the refinement
func (n NumericRefinement) Contains(x float64) bool {
	if n.Exact != nil {
		i := sort.SearchFloat64s(n.Exact, x)
		return i < len(n.Exact) && n.Exact[i] == x
	}
	return x >= n.Lower && x <= n.Upper
}

// Bounded returns true if both bounds are finite
func (n NumericRefinement) Bounded() bool {
	return !math.IsInf(n.Lower, 0) && !math.IsInf(n.Upper, 0)
}

func (n NumericRefinement) hash() FlatID {
	h := rehashFloats(saltNumeric, n.Lower, n.Upper)
	if n.Exact != nil {
		h = rehashFloats(rehash(h, saltTrue), n.Exact...)
	}
	return h
}

func (n NumericRefinement) String() string {
	var b strings.Builder
	if n.Exact != nil {
		parts := make([]string, len(n.Exact))
		for i, x := range n.Exact {
			parts[i] = formatNumber(x)
		}
		b.WriteString("{" + strings.Join(parts, ",") + "}")
		return b.String()
	}
	if math.IsInf(n.Lower, -1) && math.IsInf(n.Upper, 1) {
		return ""
	}
	b.WriteString("[" + formatNumber(n.Lower) + "," + formatNumber(n.Upper) + "]")
	return b.String()
}

func formatNumber(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "+inf"
	case math.IsInf(x, -1):
		return "-inf"
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func sortedFloats(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	sort.Float64s(out)
	j := 0
	for i := range out {
		if i == 0 || out[i] != out[i-1] {
			out[j] = out[i]
			j++
		}
	}
	return out[:j]
}
