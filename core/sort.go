package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eaburns/dtt/loc"
)

// A LevelVar is a universe level variable.
// Definitions are polymorphic in the two standard variables, LP and LH.
type LevelVar struct {
	Name string
}

var (
	// LP is the standard predicativity level variable.
	LP = &LevelVar{Name: "lp"}
	// LH is the standard homotopy level variable.
	LH = &LevelVar{Name: "lh"}
)

// A Level is either infinity, a closed constant,
// or max(Var+Const, MaxConst) for a level variable Var.
// Variables range over non-negative integers.
type Level struct {
	Var      *LevelVar
	Const    int
	MaxConst int
	inf      bool
}

// Infinity is the level above every other level.
var Infinity = Level{inf: true}

// NewLevel returns the closed level c.
func NewLevel(c int) Level { return Level{Const: c} }

// VarLevel returns the level v.
func VarLevel(v *LevelVar) Level { return Level{Var: v} }

func varLevel(v *LevelVar, c, m int) Level {
	if m <= c {
		m = c
	}
	return Level{Var: v, Const: c, MaxConst: m}
}

func (l Level) IsInfinity() bool { return l.inf }

// IsClosed returns whether l is a constant; infinity is not closed.
func (l Level) IsClosed() bool { return !l.inf && l.Var == nil }

func (l Level) Equal(o Level) bool {
	if l.Var == nil && o.Var == nil {
		return l.inf == o.inf && (l.inf || l.Const == o.Const)
	}
	return l.Var == o.Var && l.Const == o.Const && l.bound() == o.bound()
}

// bound is the least value a variable level can take.
func (l Level) bound() int {
	if l.MaxConst < l.Const {
		return l.Const
	}
	return l.MaxConst
}

// Add returns l+n.
func (l Level) Add(n int) Level {
	switch {
	case l.inf || n == 0:
		return l
	case l.Var == nil:
		return NewLevel(l.Const + n)
	default:
		return varLevel(l.Var, l.Const+n, l.MaxConst+n)
	}
}

// Max returns the least upper bound of l and o.
// The bound of two levels with different variables is not representable;
// in that case the second result is false.
func (l Level) Max(o Level) (Level, bool) {
	switch {
	case l.inf || o.inf:
		return Infinity, true
	case l.Var == nil && o.Var == nil:
		return NewLevel(max(l.Const, o.Const)), true
	case l.Var == nil:
		return varLevel(o.Var, o.Const, max(o.MaxConst, l.Const)), true
	case o.Var == nil:
		return varLevel(l.Var, l.Const, max(l.MaxConst, o.Const)), true
	case l.Var == o.Var:
		return varLevel(l.Var, max(l.Const, o.Const), max(l.MaxConst, o.MaxConst)), true
	default:
		return Level{}, false
	}
}

// Subst returns l with its variable replaced according to sub.
func (l Level) Subst(sub LevelSubst) Level {
	if l.Var == nil || len(sub) == 0 {
		return l
	}
	r, ok := sub[l.Var]
	if !ok {
		return l
	}
	r = r.Add(l.Const)
	if l.MaxConst > l.Const {
		// Closed levels always have a bound.
		r, _ = r.Max(NewLevel(l.MaxConst))
	}
	return r
}

func (l Level) String() string {
	var s strings.Builder
	switch {
	case l.inf:
		s.WriteString(`\oo`)
	case l.Var == nil:
		s.WriteString(strconv.Itoa(l.Const))
	default:
		if l.MaxConst > l.Const {
			s.WriteString(`\max `)
		}
		s.WriteString(l.Var.Name)
		if l.Const > 0 {
			s.WriteString("+" + strconv.Itoa(l.Const))
		} else if l.Const < 0 {
			s.WriteString(strconv.Itoa(l.Const))
		}
		if l.MaxConst > l.Const {
			s.WriteString(" " + strconv.Itoa(l.MaxConst))
		}
	}
	return s.String()
}

// CompareLevels decides a cmp b where it can, deferring to eqs otherwise.
// eqs may be nil, in which case undecidable comparisons fail.
func CompareLevels(cmp CMP, a, b Level, eqs Equations, l loc.Loc) bool {
	switch cmp {
	case GE:
		return CompareLevels(LE, b, a, eqs, l)
	case EQ:
		if a.Equal(b) {
			return true
		}
	case LE:
		switch {
		case b.inf:
			return true
		case a.inf:
			return false
		case a.Var == nil && b.Var == nil:
			return a.Const <= b.Const
		case a.Var == nil && a.Const <= b.bound():
			return true
		case a.Var != nil && a.Var == b.Var && a.Const <= b.Const && a.bound() <= b.bound():
			return true
		}
	default:
		panic(fmt.Sprintf("bad CMP: %d", cmp))
	}
	return eqs != nil && eqs.CompareLevels(cmp, a, b, l)
}

// LevelSubst maps level variables to levels.
type LevelSubst map[*LevelVar]Level

func (s LevelSubst) IsEmpty() bool { return len(s) == 0 }

// Compose returns the level substitution equivalent to
// applying s and then other.
func (s LevelSubst) Compose(other LevelSubst) LevelSubst {
	switch {
	case s.IsEmpty():
		return other
	case other.IsEmpty():
		return s
	}
	result := make(LevelSubst, len(s)+len(other))
	for v, l := range s {
		result[v] = l.Subst(other)
	}
	for v, l := range other {
		if _, ok := result[v]; !ok {
			result[v] = l
		}
	}
	return result
}

// A Sort classifies a universe by its predicativity level, P,
// and its homotopy level, H.
type Sort struct {
	P Level
	H Level
}

// PropHLevel is the homotopy level of proof-irrelevant propositions.
const PropHLevel = -1

var (
	// Prop is the sort of propositions.
	Prop = Sort{P: NewLevel(0), H: NewLevel(PropHLevel)}
	// Set0 is the sort of sets at the lowest predicative level.
	Set0 = Sort{P: NewLevel(0), H: NewLevel(0)}
	// StdSort is the sort made of the standard level variables.
	StdSort = Sort{P: VarLevel(LP), H: VarLevel(LH)}
	// Omega classifies every type; it is never itself classified.
	Omega = Sort{P: Infinity, H: Infinity}
)

// SetSort returns the sort of sets at predicative level p.
func SetSort(p int) Sort { return Sort{P: NewLevel(p), H: NewLevel(0)} }

// TypeSort returns the sort with closed levels p and h.
func TypeSort(p, h int) Sort { return Sort{P: NewLevel(p), H: NewLevel(h)} }

// IsProp returns whether s is a sort of propositions,
// regardless of its predicative level.
func (s Sort) IsProp() bool { return s.H.IsClosed() && s.H.Const <= PropHLevel }

// IsOmega returns whether s is unbounded.
func (s Sort) IsOmega() bool { return s.P.IsInfinity() }

// Succ returns the sort of the universe of s.
func (s Sort) Succ() Sort {
	if s.IsProp() {
		return Set0
	}
	return Sort{P: s.P.Add(1), H: s.H.Add(1)}
}

// Max returns the join of two sorts;
// the second result is false if the join is not representable.
func (s Sort) Max(o Sort) (Sort, bool) {
	switch {
	case s.IsProp():
		return o, true
	case o.IsProp():
		return s, true
	}
	p, ok := s.P.Max(o.P)
	if !ok {
		return Sort{}, false
	}
	h, ok := s.H.Max(o.H)
	if !ok {
		return Sort{}, false
	}
	return Sort{P: p, H: h}, true
}

func (s Sort) Subst(sub LevelSubst) Sort {
	if sub.IsEmpty() {
		return s
	}
	return Sort{P: s.P.Subst(sub), H: s.H.Subst(sub)}
}

func (s Sort) Equal(o Sort) bool { return s.P.Equal(o.P) && s.H.Equal(o.H) }

// ToLevelSubst returns the substitution that instantiates
// the standard level variables with the levels of s.
func (s Sort) ToLevelSubst() LevelSubst {
	return LevelSubst{LP: s.P, LH: s.H}
}

// CompareSorts decides a cmp b on sorts.
// Prop is below every sort.
func CompareSorts(cmp CMP, a, b Sort, eqs Equations, l loc.Loc) bool {
	switch cmp {
	case GE:
		return CompareSorts(LE, b, a, eqs, l)
	case LE:
		if a.IsProp() {
			return true
		}
	}
	if cmp == EQ && a.IsProp() && b.IsProp() {
		return true
	}
	return CompareLevels(cmp, a.P, b.P, eqs, l) && CompareLevels(cmp, a.H, b.H, eqs, l)
}

func (s Sort) String() string {
	switch {
	case s.IsProp():
		return `\Prop`
	case s.H.IsInfinity():
		return `\oo-Type` + levelSuffix(s.P)
	case s.H.IsClosed() && s.H.Const == 0:
		return `\Set` + levelSuffix(s.P)
	case s.P.IsClosed() && s.H.IsClosed():
		return fmt.Sprintf(`\%d-Type%d`, s.H.Const, s.P.Const)
	default:
		return fmt.Sprintf(`\Type (%s,%s)`, s.P, s.H)
	}
}

func levelSuffix(l Level) string {
	if l.IsClosed() {
		return strconv.Itoa(l.Const)
	}
	return " " + l.String()
}

// CMP is the relation requested of a comparison.
type CMP int

const (
	EQ CMP = iota
	LE
	GE
)

func (c CMP) Not() CMP {
	switch c {
	case LE:
		return GE
	case GE:
		return LE
	default:
		return c
	}
}

func (c CMP) String() string {
	switch c {
	case EQ:
		return "=="
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return fmt.Sprintf("CMP(%d)", int(c))
	}
}
