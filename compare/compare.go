// Package compare is a reference implementation of core.Equations.
//
// It decides definitional equality by weak-head reduction
// followed by structural comparison modulo renaming of bound variables,
// assigns bare unresolved inference variables,
// and defers equations that are stuck on inference variables.
package compare

import (
	"fmt"
	"math/big"

	set "github.com/hashicorp/go-set/v2"

	"github.com/eaburns/dtt/core"
	"github.com/eaburns/dtt/loc"
)

// An Equation is a deferred comparison.
type Equation struct {
	A, B     core.Term
	Type     core.Term
	CMP      core.CMP
	L        loc.Loc
	LHS, RHS *core.InferenceVar
}

func (eq *Equation) String() string {
	return fmt.Sprintf("%s %s %s", eq.A, eq.CMP, eq.B)
}

// A LevelEquation is a deferred level comparison.
type LevelEquation struct {
	A, B core.Level
	CMP  core.CMP
	L    loc.Loc
}

// Equations decides comparisons and collects the ones it defers.
// It is not safe for concurrent use.
type Equations struct {
	Deferred []*Equation
	Levels   []*LevelEquation

	noExprs     bool
	deferLevels bool
}

// An Option configures Equations.
type Option func(*Equations)

// LevelsOnly makes Equations reject term equations,
// so SupportsExpressions reports false
// and nothing is deferred or assigned.
func LevelsOnly() Option { return func(e *Equations) { e.noExprs = true } }

// DeferLevels makes Equations accept level comparisons
// it cannot decide, recording them in Levels.
func DeferLevels() Option { return func(e *Equations) { e.deferLevels = true } }

func New(opts ...Option) *Equations {
	e := &Equations{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ core.Equations = (*Equations)(nil)

func (e *Equations) Compare(cmp core.CMP, a, b, typ core.Term, l loc.Loc) bool {
	c := &comparer{eqs: e, l: l, binders: make(map[core.Binding]core.Binding)}
	return c.compare(cmp, a, b, typ)
}

func (e *Equations) AddEquation(a, b, typ core.Term, cmp core.CMP, l loc.Loc, lhs, rhs *core.InferenceVar) bool {
	if e.noExprs {
		return false
	}
	e.Deferred = append(e.Deferred, &Equation{A: a, B: b, Type: typ, CMP: cmp, L: l, LHS: lhs, RHS: rhs})
	return true
}

func (e *Equations) CompareLevels(cmp core.CMP, a, b core.Level, l loc.Loc) bool {
	if !e.deferLevels {
		return false
	}
	e.Levels = append(e.Levels, &LevelEquation{A: a, B: b, CMP: cmp, L: l})
	return true
}

func (e *Equations) MatchedConstructors(dc *core.DataCall) ([]*core.ConCall, bool) {
	return dc.MatchedConstructors()
}

func (e *Equations) SupportsExpressions() bool { return !e.noExprs }

type comparer struct {
	eqs *Equations
	l   loc.Loc
	// binders maps the bound variables of the left term
	// to the corresponding bound variables of the right term.
	binders map[core.Binding]core.Binding
}

func (c *comparer) compare(cmp core.CMP, a, b, typ core.Term) bool {
	if a == b {
		return true
	}
	a, b = core.WHNF(a), core.WHNF(b)
	if a == b || isError(a) || isError(b) {
		return true
	}
	if ok, done := c.inference(cmp, a, b, typ); done {
		return ok
	}
	if lam, ok := a.(*core.Lam); ok {
		if _, ok := b.(*core.Lam); !ok {
			return c.eta(lam, b)
		}
	}
	if lam, ok := b.(*core.Lam); ok {
		if _, ok := a.(*core.Lam); !ok {
			return c.eta(lam, a)
		}
	}
	if t, ok := b.(*core.Tuple); ok {
		if _, ok := a.(*core.Tuple); !ok {
			return c.tupleEta(t, a)
		}
	}
	if n, ok := b.(*core.New); ok {
		if _, ok := a.(*core.New); !ok {
			return c.newEta(n, a)
		}
	}
	switch a := a.(type) {
	case *core.Ref:
		b, ok := b.(*core.Ref)
		return ok && (a.Binding == b.Binding || c.binders[a.Binding] == b.Binding)
	case *core.App:
		b, ok := b.(*core.App)
		return ok && c.compare(core.EQ, a.Fun, b.Fun, nil) && c.compare(core.EQ, a.Arg, b.Arg, nil)
	case *core.FunCall:
		b, ok := b.(*core.FunCall)
		return ok && a.Def == b.Def && c.args(a.Args, b.Args)
	case *core.ConCall:
		if i, ok := b.(*core.Integer); ok {
			b = integerCon(i)
		}
		b, ok := b.(*core.ConCall)
		return ok && a.Def == b.Def && c.args(a.Args, b.Args)
	case *core.DataCall:
		b, ok := b.(*core.DataCall)
		return ok && a.Def == b.Def && c.args(a.Args, b.Args)
	case *core.FieldCall:
		b, ok := b.(*core.FieldCall)
		return ok && a.Field == b.Field && c.compare(core.EQ, a.Arg, b.Arg, nil)
	case *core.ClassCall:
		b, ok := b.(*core.ClassCall)
		return ok && c.classCalls(cmp, a, b)
	case *core.Lam:
		return c.lams(a, b.(*core.Lam))
	case *core.Pi:
		b, ok := b.(*core.Pi)
		return ok && c.pis(cmp, a, b)
	case *core.Sigma:
		b, ok := b.(*core.Sigma)
		return ok && c.links(cmp, a.Params, b.Params, func() bool { return true })
	case *core.Tuple:
		if b, ok := b.(*core.Tuple); ok {
			return c.args(a.Fields, b.Fields)
		}
		return c.tupleEta(a, b)
	case *core.Proj:
		b, ok := b.(*core.Proj)
		return ok && a.Field == b.Field && c.compare(core.EQ, a.Expr, b.Expr, nil)
	case *core.Universe:
		b, ok := b.(*core.Universe)
		return ok && (b.Sort.IsOmega() && cmp == core.LE ||
			core.CompareSorts(cmp, a.Sort, b.Sort, c.eqs, c.l))
	case *core.New:
		if b, ok := b.(*core.New); ok {
			return c.classCalls(core.EQ, a.Type, b.Type)
		}
		return c.newEta(a, b)
	case *core.Integer:
		switch b := b.(type) {
		case *core.Integer:
			return a.Val.Cmp(&b.Val) == 0
		case *core.ConCall:
			return c.compare(cmp, integerCon(a), b, typ)
		}
		return false
	case *core.Case:
		b, ok := b.(*core.Case)
		return ok && a.Body == b.Body && c.args(a.Args, b.Args)
	default:
		return false
	}
}

func isError(t core.Term) bool {
	_, ok := t.(*core.Error)
	return ok
}

// inference handles comparisons involving unresolved inference variables.
// It reports whether the comparison was decided, and the result.
func (c *comparer) inference(cmp core.CMP, a, b, typ core.Term) (ok, done bool) {
	da, db := core.IsWHNF(a), core.IsWHNF(b)
	if da != core.Maybe && db != core.Maybe {
		return false, false
	}
	if ra, ok := a.(*core.InferenceRef); ok {
		if rb, ok := b.(*core.InferenceRef); ok && ra.Variable() == rb.Variable() {
			return true, true
		}
	}
	if !c.eqs.SupportsExpressions() {
		return false, true
	}
	if ref, ok := a.(*core.InferenceRef); ok && ref.Variable() != nil {
		if ok, solved := c.solve(ref, b); solved {
			return ok, true
		}
	}
	if ref, ok := b.(*core.InferenceRef); ok && ref.Variable() != nil {
		if ok, solved := c.solve(ref, a); solved {
			return ok, true
		}
	}
	lhs, rhs := core.StuckInferenceVar(a), core.StuckInferenceVar(b)
	return c.eqs.AddEquation(a, b, typ, cmp, c.l, lhs, rhs), true
}

// solve assigns t to an unresolved reference.
// It does not assign t if t mentions variables bound inside the comparison,
// and fails if t mentions the variable itself
// or a binding outside the bounds of the variable.
func (c *comparer) solve(ref *core.InferenceRef, t core.Term) (ok, solved bool) {
	v := ref.Variable()
	if core.FindBinding(t, set.From[core.Variable]([]core.Variable{v})) != nil {
		return false, true
	}
	if len(c.binders) > 0 {
		local := set.New[core.Variable](2 * len(c.binders))
		for l, r := range c.binders {
			local.Insert(l)
			local.Insert(r)
		}
		if core.FindBinding(t, local) != nil {
			return false, false
		}
	}
	if core.FindFreeBinding(t, func(b core.Binding) bool { return !v.IsBound(b) }) != nil {
		return false, true
	}
	if err := ref.SetSubstExpression(t); err != nil {
		return false, false
	}
	return true, true
}

func (c *comparer) args(as, bs []core.Term) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !c.compare(core.EQ, as[i], bs[i], nil) {
			return false
		}
	}
	return true
}

// bind records that a and b are corresponding bound variables
// and returns a function that forgets it.
func (c *comparer) bind(a, b core.Binding) func() {
	old, ok := c.binders[a]
	c.binders[a] = b
	return func() {
		if ok {
			c.binders[a] = old
		} else {
			delete(c.binders, a)
		}
	}
}

// links compares two telescopes parameter by parameter,
// then calls rest with the parameters bound.
func (c *comparer) links(cmp core.CMP, a, b *core.Link, rest func() bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil && rest()
	}
	if !c.compare(cmp, a.Type(), b.Type(), nil) {
		return false
	}
	defer c.bind(a, b)()
	return c.links(cmp, a.Next, b.Next, rest)
}

func (c *comparer) lams(a, b *core.Lam) bool {
	if !c.compare(core.EQ, a.Params.Type(), b.Params.Type(), nil) {
		return false
	}
	defer c.bind(a.Params, b.Params)()
	return c.compare(core.EQ, rest(a), rest(b), nil)
}

// rest returns the lambda without its first parameter.
func rest(lam *core.Lam) core.Term {
	return core.MakeLam(lam.ResultSort, lam.Params.Next, lam.Body)
}

func (c *comparer) pis(cmp core.CMP, a, b *core.Pi) bool {
	if !c.compare(core.EQ, a.Params.Type(), b.Params.Type(), nil) {
		return false
	}
	defer c.bind(a.Params, b.Params)()
	ra := core.MakePi(a.ResultSort, a.Params.Next, a.Codomain)
	rb := core.MakePi(b.ResultSort, b.Params.Next, b.Codomain)
	return c.compare(cmp, ra, rb, nil)
}

// eta compares a lambda with a term that is not a lambda
// by applying the term to the parameter of the lambda.
func (c *comparer) eta(lam *core.Lam, t core.Term) bool {
	app := core.MakeApp(t, &core.Ref{Binding: lam.Params})
	return c.compare(core.EQ, rest(lam), app, nil)
}

func (c *comparer) tupleEta(tuple *core.Tuple, t core.Term) bool {
	for i, f := range tuple.Fields {
		if !c.compare(core.EQ, f, core.MakeProj(t, i), nil) {
			return false
		}
	}
	return true
}

func (c *comparer) newEta(n *core.New, t core.Term) bool {
	for _, f := range n.Type.Def.Fields {
		impl := n.Type.Implementation(f, n)
		if impl == nil {
			return false
		}
		if !c.compare(core.EQ, impl, core.MakeFieldCall(f, n.Type.SortArg, t), nil) {
			return false
		}
	}
	return true
}

// classCalls compares class calls of the same class.
// A class call with more implemented fields is a subtype.
func (c *comparer) classCalls(cmp core.CMP, a, b *core.ClassCall) bool {
	if a.Def != b.Def {
		return false
	}
	defer c.bind(a.This, b.This)()
	for _, f := range a.Def.Fields {
		ia, oka := a.Impls[f]
		ib, okb := b.Impls[f]
		switch {
		case oka && okb:
			if !c.compare(core.EQ, ia, ib, nil) {
				return false
			}
		case oka && cmp == core.LE, okb && cmp == core.GE:
		case oka || okb:
			return false
		}
	}
	return true
}

// integerCon returns the constructor form of a natural number literal.
func integerCon(i *core.Integer) *core.ConCall {
	if i.Val.Sign() == 0 {
		return core.ZeroCall()
	}
	var pred core.Integer
	pred.Val.Sub(&i.Val, big.NewInt(1))
	return core.SucCall(&pred)
}
