package pythontype

// Tristate is the result of a boolean query that may be undecidable in the abstract
type Tristate int

const (
	// Maybe means the query may evaluate either way at runtime
	Maybe Tristate = iota
	// True means the query definitely evaluates to true
	True
	// False means the query definitely evaluates to false
	False
)

// Definite returns true if the result is known
func (t Tristate) Definite() bool {
	return t != Maybe
}

// Not negates the result
func (t Tristate) Not() Tristate {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Maybe
	}
}

// String returns a readable representation
func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "maybe"
	}
}

func fromBool(b bool) Tristate {
	if b {
		return True
	}
	return False
}

// Truthiness evaluates bool(v). It is definite only if every object agrees.
func Truthiness(v Value) Tristate {
	if v.Empty() {
		return Maybe
	}
	res := objectTruthiness(v.objs[0])
	for _, o := range v.objs[1:] {
		if objectTruthiness(o) != res {
			return Maybe
		}
	}
	return res
}

func objectTruthiness(o Object) Tristate {
	switch o := o.(type) {
	case Constant:
		switch {
		case o.Type == NoneType:
			return False
		case o.Type == StrType:
			if o.Str.MinLen > 0 {
				return True
			}
			if o.Str.MaxLen == 0 {
				return False
			}
		case o.Type.Numeric():
			if !o.Num.MayBeZero {
				return True
			}
			if x, ok := o.Num.Single(); ok && x == 0 {
				return False
			}
			if o.Num.Exact != nil && !o.Num.Contains(0) {
				return True
			}
		}
	case Container:
		if o.MinSize > 0 {
			return True
		}
		if o.MaxSize == 0 {
			return False
		}
	case Function, Class, ExternalFunction, ExternalClass:
		return True
	}
	return Maybe
}

// Compare evaluates `a op b` for the comparison operators ==, !=, <, <=, >, >=, is and is not.
// The result is definite only when the refinements of both sides decide it for every pair of
// objects.
func Compare(op string, a, b Value) Tristate {
	if a.Empty() || b.Empty() {
		return Maybe
	}
	var res Tristate
	for i, x := range a.objs {
		for j, y := range b.objs {
			r := compareObjects(op, x, y)
			if r == Maybe {
				return Maybe
			}
			if i == 0 && j == 0 {
				res = r
			} else if r != res {
				return Maybe
			}
		}
	}
	return res
}

func compareObjects(op string, x, y Object) Tristate {
	switch op {
	case "!=":
		return compareObjects("==", x, y).Not()
	case "is not":
		return compareObjects("is", x, y).Not()
	case "is":
		cx, okx := x.(Constant)
		cy, oky := y.(Constant)
		if okx && oky && (cx.Type == NoneType || cy.Type == NoneType) {
			return fromBool(cx.Type == cy.Type)
		}
		return Maybe
	}

	cx, okx := x.(Constant)
	cy, oky := y.(Constant)
	if !okx || !oky {
		return Maybe
	}
	switch {
	case cx.Type.Numeric() && cy.Type.Numeric():
		return compareNumeric(op, cx.Num, cy.Num)
	case cx.Type == StrType && cy.Type == StrType:
		return compareStrings(op, cx.Str, cy.Str)
	case cx.Type == NoneType && cy.Type == NoneType:
		if op == "==" {
			return True
		}
	case op == "==":
		// distinct builtin types never compare equal, except among numbers
		if cx.Type == NoneType || cy.Type == NoneType || cx.Type == StrType || cy.Type == StrType {
			return False
		}
	}
	return Maybe
}

func compareNumeric(op string, x, y NumericRefinement) Tristate {
	switch op {
	case "==":
		xs, okx := x.Single()
		ys, oky := y.Single()
		if okx && oky {
			return fromBool(xs == ys)
		}
		if x.Upper < y.Lower || y.Upper < x.Lower {
			return False
		}
	case "<":
		if x.Upper < y.Lower {
			return True
		}
		if x.Lower >= y.Upper {
			return False
		}
	case "<=":
		if x.Upper <= y.Lower {
			return True
		}
		if x.Lower > y.Upper {
			return False
		}
	case ">":
		return compareNumeric("<", y, x)
	case ">=":
		return compareNumeric("<=", y, x)
	}
	return Maybe
}

func compareStrings(op string, x, y StringRefinement) Tristate {
	xs, okx := x.Single()
	ys, oky := y.Single()
	if okx && oky {
		switch op {
		case "==":
			return fromBool(xs == ys)
		case "<":
			return fromBool(xs < ys)
		case "<=":
			return fromBool(xs <= ys)
		case ">":
			return fromBool(xs > ys)
		case ">=":
			return fromBool(xs >= ys)
		}
		return Maybe
	}
	if op == "==" && x.Exact != nil && y.Exact != nil {
		for _, s := range x.Exact {
			if y.Contains(s) {
				return Maybe
			}
		}
		return False
	}
	return Maybe
}
