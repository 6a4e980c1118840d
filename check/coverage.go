package check

import (
	"strings"

	"github.com/samber/lo"

	"github.com/eaburns/dtt/core"
)

// coverage checks that the clauses of body match every value
// of the telescope params and reports the first missing case.
// A body given only by its tree is covered if the tree is,
// which elimBody checks branch by branch.
func (c *Checker) coverage(t core.Term, body *core.ElimBody, params *core.Link, levels core.LevelSubst) {
	if len(body.Clauses) == 0 && body.Tree != nil {
		return
	}
	rows := lo.Map(body.Clauses, func(cl *core.ElimClause, _ int) []core.Pattern { return cl.Patterns })
	cov := &coverer{c: c, levels: levels}
	if missing := cov.cover(rows, params.Slice(), core.NewExprSubst()); missing != nil {
		strs := lo.Map(missing, func(p core.Pattern, _ int) string { return p.String() })
		panic(c.fail(NonExhaustive, t).note("missing case: %s", strings.Join(strs, ", ")))
	}
}

type coverer struct {
	c      *Checker
	levels core.LevelSubst
}

// cover returns patterns for a value of cols that no row matches,
// or nil if the rows match every value.
//
// The types of cols are substituted by exprs,
// which maps the columns already split to the values they were split into.
func (cov *coverer) cover(rows [][]core.Pattern, cols []*core.Link, exprs core.ExprSubst) []core.Pattern {
	if len(cols) == 0 {
		if len(rows) > 0 {
			return nil
		}
		return []core.Pattern{}
	}
	col := cols[0]
	typ := core.WHNF(core.SubstTerm(col.Type(), exprs, cov.levels))

	var split bool
	for _, row := range rows {
		switch row[0].(type) {
		case *core.EmptyPattern:
			// Checked to be uninhabited.
			return nil
		case *core.ConPattern:
			split = true
		}
	}
	if len(rows) == 0 {
		if dc, ok := typ.(*core.DataCall); ok {
			if cons, ok := cov.c.eqs.MatchedConstructors(dc); ok && len(cons) == 0 {
				return nil
			}
		}
		return wildcards(len(cols))
	}
	if !split {
		rest := lo.Map(rows, func(row []core.Pattern, _ int) []core.Pattern { return row[1:] })
		return prepend(wildcard(), cov.cover(rest, cols[1:], exprs))
	}

	switch typ := typ.(type) {
	case *core.DataCall:
		cons, ok := cov.c.eqs.MatchedConstructors(typ)
		if !ok {
			panic(cov.c.fail(ImpossibleElimination, typ))
		}
		for _, conCall := range cons {
			if missing := cov.splitCon(rows, cols, exprs, typ, conCall); missing != nil {
				return missing
			}
		}
		return nil
	case *core.Sigma:
		fresh := core.SubstLinks(typ.Params, exprs.Clone(), cov.levels)
		value := &core.Tuple{Fields: refs(fresh), Type: typ}
		return cov.splitProduct(rows, cols, exprs, value, fresh, func(p *core.ConPattern) bool {
			return p.Con == nil && p.Fields == nil
		}, func(args []core.Pattern) core.Pattern {
			return &core.ConPattern{Args: args}
		})
	case *core.ClassCall:
		fresh := typ.FieldParams()
		value := newRecord(typ, refs(fresh))
		fields := typ.NotImplemented()
		return cov.splitProduct(rows, cols, exprs, value, fresh, func(p *core.ConPattern) bool {
			return p.Con == nil && p.Fields != nil
		}, func(args []core.Pattern) core.Pattern {
			return &core.ConPattern{Fields: fields, Args: args}
		})
	default:
		panic(cov.c.mismatch(nil, "a data, sigma, or class type", typ).note("for pattern %s", rows[0][0]))
	}
}

// splitCon covers the rows that can match the constructor of conCall.
func (cov *coverer) splitCon(rows [][]core.Pattern, cols []*core.Link, exprs core.ExprSubst, dc *core.DataCall, conCall *core.ConCall) []core.Pattern {
	con := conCall.Def
	paramExprs := exprs.Clone()
	for k, v := range conCall.ParamSubst() {
		paramExprs.Add(k, v)
	}
	fresh := core.SubstLinks(con.Params, paramExprs, dc.SortArg.ToLevelSubst())
	n := fresh.Len()

	var specialized [][]core.Pattern
	for _, row := range rows {
		switch p := row[0].(type) {
		case *core.BindingPattern:
			specialized = append(specialized, append(wildcards(n), row[1:]...))
		case *core.ConPattern:
			if p.Con == con {
				specialized = append(specialized, append(append([]core.Pattern{}, p.Args...), row[1:]...))
			}
		}
	}
	next := exprs.Clone().Add(cols[0], &core.ConCall{
		Def:      con,
		SortArg:  dc.SortArg,
		DataArgs: conCall.DataArgs,
		Args:     refs(fresh),
	})
	missing := cov.cover(specialized, append(fresh.Slice(), cols[1:]...), next)
	if missing == nil {
		return nil
	}
	return prepend(core.Con(con, missing[:n]...), missing[n:])
}

// splitProduct covers the rows after splitting
// the first column into the components of value.
func (cov *coverer) splitProduct(rows [][]core.Pattern, cols []*core.Link, exprs core.ExprSubst, value core.Term, fresh *core.Link, matches func(*core.ConPattern) bool, build func([]core.Pattern) core.Pattern) []core.Pattern {
	n := fresh.Len()
	var specialized [][]core.Pattern
	for _, row := range rows {
		switch p := row[0].(type) {
		case *core.BindingPattern:
			specialized = append(specialized, append(wildcards(n), row[1:]...))
		case *core.ConPattern:
			if matches(p) {
				specialized = append(specialized, append(append([]core.Pattern{}, p.Args...), row[1:]...))
			}
		}
	}
	next := exprs.Clone().Add(cols[0], value)
	missing := cov.cover(specialized, append(fresh.Slice(), cols[1:]...), next)
	if missing == nil {
		return nil
	}
	return prepend(build(missing[:n]), missing[n:])
}

func refs(l *core.Link) []core.Term {
	return lo.Map(l.Slice(), func(l *core.Link, _ int) core.Term { return &core.Ref{Binding: l} })
}

func wildcard() core.Pattern { return &core.BindingPattern{} }

func wildcards(n int) []core.Pattern {
	ps := make([]core.Pattern, n)
	for i := range ps {
		ps[i] = wildcard()
	}
	return ps
}

func prepend(p core.Pattern, ps []core.Pattern) []core.Pattern {
	if ps == nil {
		return nil
	}
	return append([]core.Pattern{p}, ps...)
}
