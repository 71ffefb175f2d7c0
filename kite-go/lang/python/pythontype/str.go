package pythontype

import (
	"sort"
	"strconv"
	"strings"
)

// StringRefinement constrains the possible values of a string constant.
// A nil Exact set means any string; a nil Prefixes (Suffixes) set means any prefix (suffix).
// MaxLen < 0 means the length is unbounded.
type StringRefinement struct {
	Exact    []string
	Prefixes []string
	Suffixes []string
	MinLen   int
	MaxLen   int
}

// AnyString returns an unconstrained string refinement
func AnyString() StringRefinement {
	return StringRefinement{MaxLen: -1}
}

// ExactStrings returns a refinement holding exactly the given strings
func ExactStrings(ss ...string) StringRefinement {
	return StringRefinement{Exact: append([]string{}, ss...), MaxLen: -1}.normalize()
}

// normalize tightens the length bounds to the exact-value set
func (s StringRefinement) normalize() StringRefinement {
	if s.MinLen < 0 {
		s.MinLen = 0
	}
	if s.Exact != nil {
		s.Exact = unionStrings(s.Exact, nil)
		if len(s.Exact) > 0 {
			minLen, maxLen := len(s.Exact[0]), len(s.Exact[0])
			for _, e := range s.Exact {
				if len(e) < minLen {
					minLen = len(e)
				}
				if len(e) > maxLen {
					maxLen = len(e)
				}
			}
			s.MinLen, s.MaxLen = minLen, maxLen
		}
		if len(s.Exact) > maxExactValues || len(s.Exact) == 0 {
			s.Exact = nil
		} else {
			// exact values subsume prefix and suffix constraints
			s.Prefixes, s.Suffixes = nil, nil
		}
	}
	s.Prefixes = capStrings(unionStrings(s.Prefixes, nil))
	s.Suffixes = capStrings(unionStrings(s.Suffixes, nil))
	if s.MaxLen >= 0 && s.MaxLen < s.MinLen {
		s.MaxLen = s.MinLen
	}
	return s
}

// effectivePrefixes returns the set of prefixes every admitted string starts with one of,
// or nil if there is no such constraint
func (s StringRefinement) effectivePrefixes() []string {
	if s.Exact != nil {
		return s.Exact
	}
	return s.Prefixes
}

func (s StringRefinement) effectiveSuffixes() []string {
	if s.Exact != nil {
		return s.Exact
	}
	return s.Suffixes
}

// join returns the least refinement covering both s and t
func (s StringRefinement) join(t StringRefinement) StringRefinement {
	out := StringRefinement{
		MinLen: minInt(s.MinLen, t.MinLen),
		MaxLen: maxBound(s.MaxLen, t.MaxLen),
	}
	if s.Exact != nil && t.Exact != nil {
		out.Exact = unionStrings(s.Exact, t.Exact)
		if len(out.Exact) <= maxExactValues {
			return out.normalize()
		}
		out.Exact = nil
	}
	if p, q := s.effectivePrefixes(), t.effectivePrefixes(); p != nil && q != nil {
		out.Prefixes = unionStrings(p, q)
	}
	if p, q := s.effectiveSuffixes(), t.effectiveSuffixes(); p != nil && q != nil {
		out.Suffixes = unionStrings(p, q)
	}
	return out.normalize()
}

// Single returns the only string the refinement admits, if there is exactly one
func (s StringRefinement) Single() (string, bool) {
	if len(s.Exact) == 1 {
		return s.Exact[0], true
	}
	return "", false
}

// Contains returns true if the string is admitted by the refinement
func (s StringRefinement) Contains(x string) bool {
	if s.Exact != nil {
		i := sort.SearchStrings(s.Exact, x)
		return i < len(s.Exact) && s.Exact[i] == x
	}
	if len(x) < s.MinLen || (s.MaxLen >= 0 && len(x) > s.MaxLen) {
		return false
	}
	if s.Prefixes != nil && !anyOf(s.Prefixes, func(p string) bool { return strings.HasPrefix(x, p) }) {
		return false
	}
	if s.Suffixes != nil && !anyOf(s.Suffixes, func(p string) bool { return strings.HasSuffix(x, p) }) {
		return false
	}
	return true
}

func (s StringRefinement) hash() FlatID {
	h := rehashFloats(saltStr, float64(s.MinLen), float64(s.MaxLen))
	if s.Exact != nil {
		h = rehashStrings(rehash(h, saltTrue), s.Exact...)
	}
	h = rehashStrings(rehash(h, saltFalse), s.Prefixes...)
	return rehashStrings(rehash(h, saltFalse), s.Suffixes...)
}

func (s StringRefinement) String() string {
	if s.Exact != nil {
		parts := make([]string, len(s.Exact))
		for i, e := range s.Exact {
			parts[i] = strconv.Quote(e)
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	var parts []string
	if s.Prefixes != nil {
		parts = append(parts, "prefix="+strings.Join(s.Prefixes, "|"))
	}
	if s.Suffixes != nil {
		parts = append(parts, "suffix="+strings.Join(s.Suffixes, "|"))
	}
	if s.MinLen > 0 || s.MaxLen >= 0 {
		max := "inf"
		if s.MaxLen >= 0 {
			max = strconv.Itoa(s.MaxLen)
		}
		parts = append(parts, "len="+strconv.Itoa(s.MinLen)+".."+max)
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func capStrings(ss []string) []string {
	if len(ss) > maxExactValues {
		return nil
	}
	return ss
}

func anyOf(ss []string, pred func(string) bool) bool {
	for _, s := range ss {
		if pred(s) {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// maxBound returns the larger of two upper bounds where a negative bound is unbounded
func maxBound(a, b int) int {
	if a < 0 || b < 0 {
		return -1
	}
	if a > b {
		return a
	}
	return b
}
