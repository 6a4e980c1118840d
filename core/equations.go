package core

import "github.com/eaburns/dtt/loc"

// Equations is the boundary to the constraint solver.
//
// The core never decides definitional equality itself;
// it asks Equations and attributes every obligation to a location.
type Equations interface {
	// Compare reports whether a cmp b holds at type typ,
	// possibly by deferring a stuck equation.
	Compare(cmp CMP, a, b, typ Term, l loc.Loc) bool

	// AddEquation posts the equation a cmp b at type typ.
	// lhs and rhs are the inference variables the sides are stuck on, if any.
	AddEquation(a, b, typ Term, cmp CMP, l loc.Loc, lhs, rhs *InferenceVar) bool

	// CompareLevels decides a level comparison
	// that cannot be decided syntactically.
	CompareLevels(cmp CMP, a, b Level, l loc.Loc) bool

	// MatchedConstructors returns the constructors admitted by dc.
	// The second result is false if they cannot be determined,
	// for example because an argument is stuck.
	MatchedConstructors(dc *DataCall) ([]*ConCall, bool)

	// SupportsExpressions reports whether AddEquation accepts
	// term equations, rather than only level equations.
	SupportsExpressions() bool
}

// Decision is a three-valued answer.
type Decision int

const (
	No Decision = iota
	Yes
	Maybe
)

func (d Decision) String() string {
	switch d {
	case No:
		return "no"
	case Yes:
		return "yes"
	default:
		return "maybe"
	}
}

// And returns the conjunction of two decisions.
func (d Decision) And(o Decision) Decision {
	switch {
	case d == No || o == No:
		return No
	case d == Maybe || o == Maybe:
		return Maybe
	default:
		return Yes
	}
}
