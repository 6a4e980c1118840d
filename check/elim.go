package check

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/eaburns/dtt/core"
)

// elimBody checks each clause of a pattern match on the telescope params
// and the elim tree compiled from them, if any.
// The body of a clause is checked against resultType
// with the terms matched by the patterns substituted for params.
func (c *Checker) elimBody(body *core.ElimBody, params *core.Link, resultType core.Term, levels core.LevelSubst) {
	for _, clause := range body.Clauses {
		c.clause(clause, params, resultType, levels)
	}
	if body.Tree != nil {
		m := c.ctx.mark()
		defer c.ctx.release(m)
		c.tree(body.Tree, params.Slice(), core.NewExprSubst(), resultType, levels)
	}
}

// tree checks an elim tree matching values of cols.
// exprs maps the columns already matched to their values,
// in terms of the parameters of the enclosing nodes.
//
// Each node binds its parameters to the columns on top of the stack.
// A branch splits the next column by the heads of its children,
// whose arguments become new columns.
func (c *Checker) tree(t core.ElimTree, cols []*core.Link, exprs core.ExprSubst, resultType core.Term, levels core.LevelSubst) {
	var params *core.Link
	switch t := t.(type) {
	case *core.LeafTree:
		params = t.Params
	case *core.BranchTree:
		params = t.Params
	default:
		panic(fmt.Sprintf("bad ElimTree type: %T", t))
	}
	for l := params; l != nil; l = l.Next {
		if len(cols) == 0 {
			panic(c.fail(TooManyPatterns, nil).note("no argument for %s", l.Name()))
		}
		typ := core.SubstTerm(cols[0].Type(), exprs, levels)
		if !c.eqs.Compare(core.EQ, typ, l.Type(), omega(), c.l) {
			panic(c.mismatch(&core.Ref{Binding: l}, typ.String(), l.Type()))
		}
		c.addBinding(l, typ)
		exprs = exprs.Compose(core.NewExprSubst().Add(cols[0], &core.Ref{Binding: l}), nil)
		cols = cols[1:]
	}

	switch t := t.(type) {
	case *core.LeafTree:
		if len(cols) > 0 {
			panic(c.fail(TooFewPatterns, nil).note("%d arguments are not bound by the leaf", len(cols)))
		}
		c.expr(t.Body, core.SubstTerm(resultType, exprs, levels))
	case *core.BranchTree:
		if len(cols) == 0 {
			panic(c.fail(TooManyPatterns, nil).note("no argument to branch on"))
		}
		typ := core.WHNF(core.SubstTerm(cols[0].Type(), exprs, levels))
		for _, child := range t.Children {
			c.branchChild(child, typ, cols, exprs, resultType, levels)
		}
		c.branchCoverage(t, typ)
	}
}

func (c *Checker) branchChild(child *core.BranchChild, typ core.Term, cols []*core.Link, exprs core.ExprSubst, resultType core.Term, levels core.LevelSubst) {
	tr := c.trItem("branch %s", keyString(child.Key))
	defer tr.done()

	m := c.ctx.mark()
	defer c.ctx.release(m)
	value, fresh := c.branchKey(child.Key, typ)
	next := exprs.Clone().Add(cols[0], value)
	c.tree(child.Tree, append(fresh.Slice(), cols[1:]...), next, resultType, levels)
}

// branchKey checks that key selects values of typ
// and returns the value it matches
// in terms of fresh links for the arguments it pushes.
func (c *Checker) branchKey(key core.BranchKey, typ core.Term) (core.Term, *core.Link) {
	switch k := key.(type) {
	case *core.Constructor:
		dc, ok := typ.(*core.DataCall)
		if !ok {
			panic(c.mismatch(nil, "a data type", typ).note("for branch %s", k.Name()))
		}
		if k.Data != dc.Def {
			panic(c.fail(ExpectedConstructor, dc).note("%s is not a constructor of %s", k.Name(), dc.Def.Name()))
		}
		conCall, ok := dc.MatchedConCall(k)
		switch {
		case !ok:
			panic(c.fail(ImpossibleElimination, dc).note("for branch %s", k.Name()))
		case conCall == nil:
			panic(c.fail(DataTypeNotEmpty, dc).note("%s is not admitted", k.Name()))
		}
		fresh := core.SubstLinks(k.Params, conCall.ParamSubst(), dc.SortArg.ToLevelSubst())
		return &core.ConCall{Def: k, SortArg: dc.SortArg, DataArgs: conCall.DataArgs, Args: refs(fresh)}, fresh

	case core.TupleKey:
		sigma, ok := typ.(*core.Sigma)
		if !ok || sigma.Params.Len() != k.Len {
			panic(c.mismatch(nil, fmt.Sprintf("a sigma type with %d fields", k.Len), typ))
		}
		fresh := core.SubstLinks(sigma.Params, core.NewExprSubst(), nil)
		return &core.Tuple{Fields: refs(fresh), Type: sigma}, fresh

	case *core.ClassKey:
		cc, ok := typ.(*core.ClassCall)
		if !ok || cc.Def != k.Class {
			panic(c.mismatch(nil, "a class call of "+k.Class.Name(), typ))
		}
		for _, f := range cc.Def.Fields {
			if lo.Contains(k.Implemented, f) != cc.IsImplemented(f) {
				panic(c.fail(FieldCoverage, cc).note("the branch and the class call disagree on whether %s is implemented", f.Name()))
			}
		}
		fresh := cc.FieldParams()
		return newRecord(cc, refs(fresh)), fresh

	default:
		panic(fmt.Sprintf("bad BranchKey type: %T", k))
	}
}

// branchCoverage checks that a branch on a value of typ
// has a child for every admitted constructor.
func (c *Checker) branchCoverage(t *core.BranchTree, typ core.Term) {
	dc, ok := typ.(*core.DataCall)
	if !ok {
		if len(t.Children) == 0 {
			panic(c.fail(NonExhaustive, nil).note("missing case: _"))
		}
		return
	}
	cons, ok := c.eqs.MatchedConstructors(dc)
	if !ok {
		panic(c.fail(ImpossibleElimination, dc))
	}
	for _, con := range cons {
		if !lo.ContainsBy(t.Children, func(child *core.BranchChild) bool { return child.Key == core.BranchKey(con.Def) }) {
			panic(c.fail(NonExhaustive, dc).note("missing case: %s", con.Def.Name()))
		}
	}
}

func keyString(k core.BranchKey) string {
	switch k := k.(type) {
	case *core.Constructor:
		return k.Name()
	case core.TupleKey:
		return fmt.Sprintf("tuple %d", k.Len)
	case *core.ClassKey:
		return k.Class.Name()
	default:
		panic(fmt.Sprintf("bad BranchKey type: %T", k))
	}
}

func (c *Checker) clause(clause *core.ElimClause, params *core.Link, resultType core.Term, levels core.LevelSubst) {
	tr := c.trItem("clause %s", patternsString(clause.Patterns))
	defer tr.done()

	m := c.ctx.mark()
	defer c.ctx.release(m)
	exprs := core.NewExprSubst()
	c.patterns(clause.Patterns, params.Slice(), exprs, levels)
	if clause.Body == nil {
		if !core.HasEmpty(clause.Patterns) {
			panic(c.fail(MissingBody, nil).note("clause %s", patternsString(clause.Patterns)))
		}
		return
	}
	c.expr(clause.Body, core.SubstTerm(resultType, exprs, levels))
}

// patterns checks patterns against the types of params
// and returns the terms they match.
// exprs maps the params that are already matched;
// the rest are added as they are matched.
func (c *Checker) patterns(ps []core.Pattern, params []*core.Link, exprs core.ExprSubst, levels core.LevelSubst) []core.Term {
	switch {
	case len(ps) > len(params):
		panic(c.fail(TooManyPatterns, nil).note("expected %d patterns, got %d", len(params), len(ps)))
	case len(ps) < len(params):
		panic(c.fail(TooFewPatterns, nil).note("expected %d patterns, got %d", len(params), len(ps)))
	}
	terms := make([]core.Term, len(ps))
	for i, p := range ps {
		typ := core.SubstTerm(params[i].Type(), exprs, levels)
		terms[i] = c.pattern(p, typ)
		exprs.Add(params[i], terms[i])
	}
	return terms
}

// pattern checks a pattern against typ and returns the term it matches.
// Bindings of the pattern are brought into scope.
func (c *Checker) pattern(p core.Pattern, typ core.Term) core.Term {
	switch p := p.(type) {
	case *core.BindingPattern:
		link := p.Link
		if link == nil {
			link = core.NewLink("_", typ)
		} else if !c.eqs.Compare(core.EQ, typ, link.Type(), omega(), c.l) {
			panic(c.mismatch(&core.Ref{Binding: link}, typ.String(), link.Type()))
		}
		c.addBinding(link, typ)
		return &core.Ref{Binding: link}

	case *core.EmptyPattern:
		dc := c.patternDataCall(p, typ)
		cons, ok := c.eqs.MatchedConstructors(dc)
		switch {
		case !ok:
			panic(c.fail(ImpossibleElimination, dc))
		case len(cons) > 0:
			err := c.fail(DataTypeNotEmpty, dc)
			for _, con := range cons {
				err.note("%s is admitted", con.Def.Name())
			}
			panic(err)
		}
		return &core.Error{}

	case *core.ConPattern:
		if p.Con != nil {
			return c.conPattern(p, typ)
		}
		if p.Fields != nil {
			return c.recordPattern(p, typ)
		}
		whnf := core.WHNF(typ)
		sigma, ok := whnf.(*core.Sigma)
		if !ok {
			panic(c.mismatch(nil, "a sigma type", whnf).note("for pattern %s", p))
		}
		fields := c.patterns(p.Args, sigma.Params.Slice(), core.NewExprSubst(), nil)
		return &core.Tuple{Fields: fields, Type: sigma}

	default:
		panic(fmt.Sprintf("bad Pattern type: %T", p))
	}
}

func (c *Checker) patternDataCall(p core.Pattern, typ core.Term) *core.DataCall {
	whnf := core.WHNF(typ)
	dc, ok := whnf.(*core.DataCall)
	if !ok {
		panic(c.mismatch(nil, "a data type", whnf).note("for pattern %s", p))
	}
	return dc
}

func (c *Checker) conPattern(p *core.ConPattern, typ core.Term) core.Term {
	dc := c.patternDataCall(p, typ)
	if p.Con.Data != dc.Def {
		panic(c.fail(ExpectedConstructor, dc).note("%s is not a constructor of %s", p.Con.Name(), dc.Def.Name()))
	}
	conCall, ok := dc.MatchedConCall(p.Con)
	switch {
	case !ok:
		panic(c.fail(ImpossibleElimination, dc).note("for pattern %s", p))
	case conCall == nil:
		panic(c.fail(DataTypeNotEmpty, dc).note("%s is not admitted, use an absurd pattern", p.Con.Name()))
	}
	exprs := conCall.ParamSubst()
	args := c.patterns(p.Args, p.Con.Params.Slice(), exprs, dc.SortArg.ToLevelSubst())
	return &core.ConCall{Def: p.Con, SortArg: dc.SortArg, DataArgs: conCall.DataArgs, Args: args}
}

func (c *Checker) recordPattern(p *core.ConPattern, typ core.Term) core.Term {
	whnf := core.WHNF(typ)
	cc, ok := whnf.(*core.ClassCall)
	if !ok {
		panic(c.mismatch(nil, "a class call", whnf).note("for pattern %s", p))
	}
	fields := cc.NotImplemented()
	if len(fields) != len(p.Fields) {
		panic(c.fail(FieldCoverage, cc).note("pattern %s matches %d fields, expected %d", p, len(p.Fields), len(fields)))
	}
	for i, f := range fields {
		if p.Fields[i] != f {
			panic(c.fail(FieldCoverage, cc).note("pattern %s matches %s, expected %s", p, p.Fields[i].Name(), f.Name()))
		}
	}
	args := c.patterns(p.Args, cc.FieldParams().Slice(), core.NewExprSubst(), nil)
	return newRecord(cc, args)
}

// newRecord returns the record value of cc
// whose unimplemented fields are args.
func newRecord(cc *core.ClassCall, args []core.Term) *core.New {
	result := core.NewClassCall(cc.Def, cc.SortArg, cc.Sort, cc.Universes)
	this := &core.Ref{Binding: result.This}
	i := 0
	for _, f := range cc.Def.Fields {
		if impl := cc.Implementation(f, this); impl != nil {
			result.Implement(f, impl)
			continue
		}
		result.Implement(f, args[i])
		i++
	}
	return &core.New{Type: result}
}

func patternsString(ps []core.Pattern) string {
	var s string
	for i, p := range ps {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s
}
