// Package check independently re-derives the types of elaborated terms.
//
// The checker trusts nothing the elaborator claims about a term:
// it re-checks every binder, call, and pattern match,
// delegating only definitional comparisons to a core.Equations.
// The first violated rule aborts the check with an *Error.
package check

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/eaburns/dtt/core"
	"github.com/eaburns/dtt/loc"
)

// An Option configures a Checker.
type Option func(*Checker)

// TraceTo writes the trace to w instead of standard output.
func TraceTo(w io.Writer) Option {
	return func(c *Checker) { c.tracer.w = w }
}

// TraceDepth sets the maximum trace depth,
// overriding the -trace.depth flag.
// 0 disables tracing; -1 traces at every depth.
func TraceDepth(n int) Option {
	return func(c *Checker) { c.tracer.depth = n }
}

// TraceFiles prints the locations in the trace using files.
func TraceFiles(files loc.Files) Option {
	return func(c *Checker) { c.tracer.files = files }
}

// At attributes the obligations of the check
// and its errors to the location l.
func At(l loc.Loc) Option {
	return func(c *Checker) { c.l = l }
}

// Checker is a double-checker over one context.
type Checker struct {
	ctx *Context
	eqs core.Equations
	// lets holds the inferred types of let clauses without a declared type.
	lets   map[*core.LetClause]core.Term
	l      loc.Loc
	tracer tracer
}

// New returns a new Checker.
// The context is shared, not copied;
// bindings added while checking are removed before a check returns.
func New(ctx *Context, eqs core.Equations, opts ...Option) *Checker {
	if ctx == nil {
		ctx = NewContext()
	}
	c := &Checker{
		ctx:    ctx,
		eqs:    eqs,
		lets:   make(map[*core.LetClause]core.Term),
		tracer: tracer{depth: *traceDepth},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check checks t against expected in ctx.
// If expected is nil, the type of t is inferred.
// On success, it returns expected if non-nil and the inferred type otherwise.
func Check(ctx *Context, eqs core.Equations, t, expected core.Term, opts ...Option) (core.Term, error) {
	return New(ctx, eqs, opts...).Check(t, expected)
}

// Check checks t against expected.
// If expected is nil, the type of t is inferred.
func (c *Checker) Check(t, expected core.Term) (typ core.Term, err error) {
	m := c.ctx.mark()
	defer func() {
		c.ctx.release(m)
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*Error); ok {
			typ, err = nil, e
		} else {
			panic(r)
		}
	}()
	return c.expr(t, expected), nil
}

// CheckType checks that t is a type and returns its sort.
func (c *Checker) CheckType(t core.Term) (sort core.Sort, err error) {
	m := c.ctx.mark()
	defer func() {
		c.ctx.release(m)
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*Error); ok {
			sort, err = core.Sort{}, e
		} else {
			panic(r)
		}
	}()
	return c.sortOf(t), nil
}

func (c *Checker) expr(t, expected core.Term) core.Term {
	tr := c.trItem("%s", t)
	defer tr.done()

	var actual core.Term
	switch t := t.(type) {
	case *core.Ref:
		if !c.ctx.Contains(t.Binding) {
			panic(c.fail(Unbound, t))
		}
		actual = c.bindingType(t.Binding)
		if actual == nil {
			panic(c.fail(Unbound, t).note("%s has no type", t.Binding.Name()))
		}
	case *core.App:
		actual = c.app(t)
	case *core.FunCall:
		actual = c.funCall(t)
	case *core.ConCall:
		actual = c.conCall(t)
	case *core.DataCall:
		c.callArgs(t, t.Def.Params.Slice(), t.Args, t.SortArg.ToLevelSubst(), core.NewExprSubst(), false)
		actual = &core.Universe{Sort: t.Def.Sort.Subst(t.SortArg.ToLevelSubst())}
	case *core.FieldCall:
		actual = c.fieldCall(t)
	case *core.ClassCall:
		actual = c.classCall(t)
	case *core.Lam:
		actual = c.lam(t)
	case *core.Pi:
		m := c.ctx.mark()
		c.links(t.Params, &core.Universe{Sort: core.Sort{P: t.ResultSort.P, H: core.Infinity}})
		c.expr(t.Codomain, &core.Universe{Sort: t.ResultSort})
		c.ctx.release(m)
		actual = &core.Universe{Sort: t.ResultSort}
	case *core.Sigma:
		m := c.ctx.mark()
		c.links(t.Params, &core.Universe{Sort: t.Sort})
		c.ctx.release(m)
		actual = &core.Universe{Sort: t.Sort}
	case *core.Tuple:
		c.expr(t.Type, nil)
		c.callArgs(t, t.Type.Params.Slice(), t.Fields, nil, core.NewExprSubst(), false)
		actual = t.Type
	case *core.Proj:
		actual = c.proj(t)
	case *core.Universe:
		if t.Sort.IsOmega() {
			panic(c.fail(SortOverflow, t))
		}
		actual = &core.Universe{Sort: t.Sort.Succ()}
	case *core.New:
		actual = c.newExpr(t)
	case *core.Let:
		actual = c.let(t)
	case *core.Case:
		actual = c.caseExpr(t)
	case *core.OfType:
		c.expr(t.Type, omega())
		c.expr(t.Expr, t.Type)
		actual = t.Type
	case *core.Integer:
		actual = core.NatCall()
	case *core.Error:
		if t.IsError() {
			panic(c.fail(UnknownError, t))
		}
		if expected == nil {
			panic(c.fail(UnknownError, t).note("goal without an expected type"))
		}
		return expected
	case *core.InferenceRef:
		if s := t.SubstExpression(); s != nil {
			return c.expr(s, expected)
		}
		c.bounds(t, t.Variable(), nil)
		actual = t.Variable().Type()
	case *core.Subst:
		ref, ok := t.Expr.(*core.InferenceRef)
		if !ok || ref.Variable() == nil {
			return c.expr(t.SubstExpression(), expected)
		}
		c.bounds(t, ref.Variable(), t.Exprs)
		actual = core.SubstTerm(ref.Variable().Type(), t.Exprs.Clone(), t.Levels)
	default:
		panic(fmt.Sprintf("bad Term type: %T", t))
	}
	return c.checkType(t, expected, actual)
}

// bounds checks that the bindings a solution of v may refer to are in scope,
// except those replaced by exprs.
func (c *Checker) bounds(t core.Term, v *core.InferenceVar, exprs core.ExprSubst) {
	var missing []string
	for _, b := range v.Bounds().Slice() {
		if _, ok := exprs[b]; !ok && !c.ctx.Contains(b) {
			missing = append(missing, b.Name())
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		panic(c.fail(Unbound, t).note("%s depends on %s, which is not bound", v.Name(), strings.Join(missing, ", ")))
	}
}

// bindingType returns the type of b,
// which is inferred for let clauses without a declared type.
func (c *Checker) bindingType(b core.Binding) core.Term {
	if clause, ok := b.(*core.LetClause); ok {
		if typ, ok := c.lets[clause]; ok {
			return typ
		}
	}
	return b.Type()
}

// checkType checks that actual is a subtype of expected.
func (c *Checker) checkType(t, expected, actual core.Term) core.Term {
	if expected == nil {
		return actual
	}
	if !c.eqs.Compare(core.LE, actual, expected, omega(), c.l) {
		panic(c.mismatch(t, expected.String(), actual))
	}
	return expected
}

func omega() *core.Universe { return &core.Universe{Sort: core.Omega} }

// addBinding brings b into scope for the rest of the enclosing scope.
func (c *Checker) addBinding(b core.Binding, t core.Term) {
	if !c.ctx.Add(b) {
		panic(c.fail(AlreadyBound, t).note("%s is already bound", b.Name()))
	}
}

// links checks the types of a telescope against u,
// bringing each link into scope after its type is checked.
// The caller releases the links.
func (c *Checker) links(l *core.Link, u core.Term) {
	for ; l != nil; l = l.Next {
		if l.IsTyped() {
			c.expr(l.Type(), u)
		}
		c.addBinding(l, l.Type())
	}
}

// sortOf checks that t is a type and returns its sort.
func (c *Checker) sortOf(t core.Term) core.Sort {
	typ := core.WHNF(c.expr(t, nil))
	u, ok := typ.(*core.Universe)
	if !ok {
		panic(c.fail(CannotInferSort, t).note("its type is %s", typ))
	}
	return u.Sort
}

func (c *Checker) app(t *core.App) core.Term {
	funType := core.WHNF(c.expr(t.Fun, nil))
	pi, ok := funType.(*core.Pi)
	if !ok {
		panic(c.mismatch(t.Fun, "a pi type", funType))
	}
	c.expr(t.Arg, pi.Params.Type())
	return core.Apply(pi, t.Arg)
}

func (c *Checker) funCall(t *core.FunCall) core.Term {
	levels := t.SortArg.ToLevelSubst()
	exprs := c.callArgs(t, t.Def.Params.Slice(), t.Args, levels, core.NewExprSubst(), isPropPath(t.Def, t.SortArg))
	return core.SubstTerm(t.Def.ResultType, exprs, levels)
}

func (c *Checker) conCall(t *core.ConCall) core.Term {
	levels := t.SortArg.ToLevelSubst()
	exprs := c.callArgs(t, t.Def.DataTypeParams(), t.DataArgs, levels, core.NewExprSubst(), false)
	c.callArgs(t, t.Def.Params.Slice(), t.Args, levels, exprs, false)
	return t.DataType()
}

// isPropPath returns whether a call is the equality type at a proposition,
// whose type argument may be any set.
func isPropPath(def *core.FunctionDef, sortArg core.Sort) bool {
	return def == core.PathInfix && sortArg.IsProp()
}

// callArgs checks args against the types of params,
// substituting earlier arguments for earlier parameters,
// and returns the substitution.
func (c *Checker) callArgs(t core.Term, params []*core.Link, args []core.Term, levels core.LevelSubst, exprs core.ExprSubst, propPath bool) core.ExprSubst {
	if len(args) != len(params) {
		panic(c.fail(TypeMismatch, t).note("expected %d arguments, got %d", len(params), len(args)))
	}
	for i, arg := range args {
		var typ core.Term
		if i == 0 && propPath {
			typ = &core.Universe{Sort: core.Sort{P: core.Infinity, H: core.NewLevel(0)}}
		} else {
			typ = core.SubstTerm(params[i].Type(), exprs, levels)
		}
		c.expr(arg, typ)
		exprs.Add(params[i], arg)
	}
	return exprs
}

func (c *Checker) fieldCall(t *core.FieldCall) core.Term {
	c.expr(t.Arg, t.Field.Type.Params.Type())
	return t.Field.TypeAt(t.SortArg, t.Arg)
}

func (c *Checker) lam(t *core.Lam) core.Term {
	m := c.ctx.mark()
	defer c.ctx.release(m)
	c.links(t.Params, &core.Universe{Sort: core.Sort{P: t.ResultSort.P, H: core.Infinity}})
	body := c.expr(t.Body, nil)
	return &core.Pi{ResultSort: t.ResultSort, Params: t.Params, Codomain: body}
}

func (c *Checker) proj(t *core.Proj) core.Term {
	typ := core.WHNF(c.expr(t.Expr, nil))
	sigma, ok := typ.(*core.Sigma)
	if !ok {
		panic(c.mismatch(t.Expr, "a sigma type", typ))
	}
	if n := sigma.Params.Len(); t.Field >= n {
		panic(c.mismatch(t, fmt.Sprintf("a sigma type with at least %d fields", t.Field+1), typ))
	}
	exprs := core.NewExprSubst()
	link := sigma.Params
	for i := 0; i < t.Field; i++ {
		exprs.Add(link, core.MakeProj(t.Expr, i))
		link = link.Next
	}
	return core.SubstTerm(link.Type(), exprs, nil)
}

func (c *Checker) newExpr(t *core.New) core.Term {
	c.expr(t.Type, nil)
	if missing := t.Type.NotImplemented(); len(missing) > 0 {
		err := c.fail(FieldCoverage, t)
		for _, f := range missing {
			err.note("%s is not implemented", f.Name())
		}
		panic(err)
	}
	if t.Renew != nil {
		c.expr(t.Renew, core.NewClassCall(t.Type.Def, t.Type.SortArg, t.Type.Sort, t.Type.Universes))
	}
	return t.Type
}

func (c *Checker) let(t *core.Let) core.Term {
	m := c.ctx.mark()
	defer c.ctx.release(m)
	for _, clause := range t.Clauses {
		if typ := clause.Type(); typ != nil {
			c.expr(typ, omega())
			c.expr(clause.Expr, typ)
		} else {
			c.lets[clause] = c.expr(clause.Expr, nil)
			defer delete(c.lets, clause)
		}
		c.addBinding(clause, t)
	}
	return c.expr(t.Body, nil)
}

func (c *Checker) caseExpr(t *core.Case) core.Term {
	m := c.ctx.mark()
	c.links(t.Params, omega())
	exprs := c.callArgs(t, t.Params.Slice(), t.Args, nil, core.NewExprSubst(), false)
	c.expr(t.ResultType, omega())
	if t.ResultTypeLevel != nil {
		c.levelProof(t.ResultTypeLevel, t.ResultType)
	}
	c.ctx.release(m)

	if t.Body == nil {
		panic(c.fail(NonExhaustive, t))
	}
	c.elimBody(t.Body, t.Params, t.ResultType, nil)
	c.coverage(t, t.Body, t.Params, nil)
	return core.SubstTerm(t.ResultType, exprs, nil)
}

// levelProof checks a proof that typ is an n-type and returns n.
// The type of the proof must be
// \Pi (a0 a1 : typ) (b0 b1 : a0 = a1) ... -> bk = bk'
// with an even, non-zero number of parameters.
func (c *Checker) levelProof(proof, typ core.Term) int {
	proofType := c.expr(proof, nil)
	params, codomain := core.PiParameters(proofType)
	if _, _, _, ok := core.AsPath(codomain); !ok {
		panic(c.fail(MalformedLevelProof, proof).note("expected an equality, got %s", codomain))
	}
	if len(params) == 0 || len(params)%2 != 0 {
		panic(c.fail(MalformedLevelProof, proof).note("expected an even number of parameters, got %d", len(params)))
	}
	for i := 0; i < len(params); i += 2 {
		if !c.eqs.Compare(core.EQ, params[i].Type(), typ, omega(), c.l) ||
			!c.eqs.Compare(core.EQ, params[i+1].Type(), typ, omega(), c.l) {
			panic(c.fail(MalformedLevelProof, proof).note("expected parameters of type %s", typ))
		}
		typ = core.PathCall(core.Prop, typ, &core.Ref{Binding: params[i]}, &core.Ref{Binding: params[i+1]})
	}
	return len(params)/2 - 2
}

// CheckData checks the parameters of a data type
// and the patterns and parameters of its constructors.
// Constructor parameters must be types in the sort of the data type.
func (c *Checker) CheckData(def *core.DataDef) (err error) {
	m := c.ctx.mark()
	defer func() {
		c.ctx.release(m)
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*Error); ok {
			err = e
		} else {
			panic(r)
		}
	}()
	tr := c.trItem("data %s", def.Name())
	defer tr.done()

	c.links(def.Params, omega())
	u := &core.Universe{Sort: def.Sort}
	for _, con := range def.Constructors {
		if con.Data != def {
			panic(c.fail(ExpectedConstructor, nil).note("%s is not a constructor of %s", con.Name(), def.Name()))
		}
		// Constructors with patterns bind the pattern variables
		// in place of the data type parameters.
		c.ctx.release(m)
		if con.Patterns == nil {
			c.links(def.Params, omega())
		} else {
			c.patterns(con.Patterns, def.Params.Slice(), core.NewExprSubst(), nil)
		}
		c.links(con.Params, u)
	}
	return nil
}

// CheckFunction checks the parameters, result type, and body of a definition.
func (c *Checker) CheckFunction(def *core.FunctionDef) (err error) {
	m := c.ctx.mark()
	defer func() {
		c.ctx.release(m)
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*Error); ok {
			err = e
		} else {
			panic(r)
		}
	}()
	tr := c.trItem("function %s", def.Name())
	defer tr.done()

	c.links(def.Params, omega())
	c.expr(def.ResultType, omega())
	switch b := def.Body.(type) {
	case nil:
	case *core.ExprBody:
		c.expr(b.Expr, def.ResultType)
	case *core.ElimBody:
		c.ctx.release(m)
		c.elimBody(b, def.Params, def.ResultType, nil)
		c.coverage(nil, b, def.Params, nil)
	case *core.IntervalElim:
		for _, ic := range b.Cases {
			for _, end := range []core.Term{ic.Left, ic.Right} {
				if end != nil {
					c.expr(end, def.ResultType)
				}
			}
		}
		if b.Otherwise != nil {
			c.ctx.release(m)
			c.elimBody(b.Otherwise, def.Params, def.ResultType, nil)
		}
	default:
		panic(fmt.Sprintf("bad Body type: %T", b))
	}
	return nil
}
