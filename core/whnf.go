package core

import (
	"fmt"
	"math/big"
)

// WHNF returns the weak-head normal form of t.
//
// Reduction unfolds let clauses, beta-redexes,
// projections of tuples, fields of record values,
// function bodies, and pattern matches whose scrutinees
// have constructor heads.
// A deferred substitution over an unresolved variable is returned as is.
func WHNF(t Term) Term {
	for {
		r, ok := step(t)
		if !ok {
			return t
		}
		t = r
	}
}

// step performs one head reduction of t, if t is not in weak-head form.
func step(t Term) (Term, bool) {
	switch t := t.(type) {
	case *Ref:
		if c, ok := t.Binding.(*LetClause); ok {
			return c.Expr, true
		}
		return nil, false
	case *App:
		fun := WHNF(t.Fun)
		if lam, ok := fun.(*Lam); ok {
			return MakeApp(lam, t.Arg), true
		}
		if fun != t.Fun {
			return &App{Fun: fun, Arg: t.Arg}, true
		}
		return nil, false
	case *FunCall:
		r, _, ok := evalFunCall(t)
		return r, ok
	case *FieldCall:
		arg := WHNF(t.Arg)
		if n, ok := arg.(*New); ok {
			if impl := n.Type.Implementation(t.Field, n); impl != nil {
				return impl, true
			}
		}
		if arg != t.Arg {
			return &FieldCall{Field: t.Field, SortArg: t.SortArg, Arg: arg}, true
		}
		return nil, false
	case *Proj:
		expr := WHNF(t.Expr)
		if tuple, ok := expr.(*Tuple); ok && t.Field < len(tuple.Fields) {
			return tuple.Fields[t.Field], true
		}
		if expr != t.Expr {
			return &Proj{Expr: expr, Field: t.Field}, true
		}
		return nil, false
	case *Let:
		return t.Body, true
	case *Case:
		r, _, ok := evalElimBody(t.Body, t.Args, nil)
		return r, ok
	case *OfType:
		return t.Expr, true
	case *InferenceRef:
		if t.subst != nil {
			return t.subst, true
		}
		return nil, false
	case *Subst:
		if ref, ok := t.Expr.(*InferenceRef); ok && ref.subst == nil {
			return nil, false
		}
		return t.SubstExpression(), true
	case *ConCall, *DataCall, *ClassCall, *Lam, *Pi, *Sigma, *Tuple, *Universe, *New, *Integer, *Error:
		return nil, false
	default:
		panic(fmt.Sprintf("bad Term type: %T", t))
	}
}

// IsWHNF decides whether t is in weak-head normal form.
// The answer is Maybe exactly when reduction is blocked
// on an unresolved inference variable, which Stuck then returns.
func IsWHNF(t Term) Decision {
	d, _ := status(t)
	return d
}

// Stuck returns the subterm blocking the weak-head reduction of t:
// an unresolved inference reference, or a neutral reference or error.
// It returns nil for terms that reduce or whose head is canonical.
func Stuck(t Term) Term {
	_, s := status(t)
	return s
}

func status(t Term) (Decision, Term) {
	switch t := t.(type) {
	case *Ref:
		if _, ok := t.Binding.(*LetClause); ok {
			return No, nil
		}
		return Yes, t
	case *App:
		if _, ok := Underlying(t.Fun).(*Lam); ok {
			return No, nil
		}
		return status(t.Fun)
	case *FunCall:
		_, blocker, ok := evalFunCall(t)
		return blocked(blocker, ok)
	case *FieldCall:
		arg := WHNF(t.Arg)
		if n, ok := arg.(*New); ok && n.Type.IsImplemented(t.Field) {
			return No, nil
		}
		return status(arg)
	case *Proj:
		expr := WHNF(t.Expr)
		if tuple, ok := expr.(*Tuple); ok && t.Field < len(tuple.Fields) {
			return No, nil
		}
		return status(expr)
	case *Case:
		_, blocker, ok := evalElimBody(t.Body, t.Args, nil)
		return blocked(blocker, ok)
	case *Let, *OfType:
		return No, nil
	case *ConCall, *DataCall, *ClassCall, *Lam, *Pi, *Sigma, *Tuple, *Universe, *New, *Integer:
		return Yes, nil
	case *Error:
		return Yes, t
	case *InferenceRef:
		if t.subst != nil {
			return status(t.subst)
		}
		return Maybe, t
	case *Subst:
		return status(t.SubstExpression())
	default:
		panic(fmt.Sprintf("bad Term type: %T", t))
	}
}

// blocked returns the status of a definition call or case
// given the result of evaluating it.
func blocked(blocker Term, reduced bool) (Decision, Term) {
	switch {
	case reduced:
		return No, nil
	case blocker == nil:
		return Yes, nil
	}
	d, s := status(blocker)
	if d == Maybe {
		return Maybe, s
	}
	return Yes, s
}

// evalFunCall unfolds a function call.
// If it cannot, it returns the weak-head normal argument
// that blocks the pattern match, if any.
func evalFunCall(fc *FunCall) (Term, Term, bool) {
	levels := fc.SortArg.ToLevelSubst()
	switch b := fc.Def.Body.(type) {
	case nil:
		return nil, nil, false
	case *ExprBody:
		exprs := NewExprSubst().AddLinks(fc.Def.Params, fc.Args)
		return SubstTerm(b.Expr, exprs, levels), nil, true
	case *ElimBody:
		return evalElimBody(b, fc.Args, levels)
	case *IntervalElim:
		if b.Otherwise == nil {
			return nil, nil, false
		}
		return evalElimBody(b.Otherwise, fc.Args, levels)
	default:
		panic(fmt.Sprintf("bad Body type: %T", b))
	}
}

func evalElimBody(b *ElimBody, args []Term, levels LevelSubst) (Term, Term, bool) {
	if b.Tree != nil {
		return evalTree(b.Tree, args, levels)
	}
	return evalClauses(b.Clauses, args, levels)
}

// evalClauses evaluates the first clause matching args.
// A clause that cannot be decided blocks the clauses after it.
func evalClauses(clauses []*ElimClause, args []Term, levels LevelSubst) (Term, Term, bool) {
	for _, c := range clauses {
		exprs := NewExprSubst()
		switch d, blocker := matchPatterns(c.Patterns, args, exprs); d {
		case Yes:
			if c.Body == nil {
				return nil, nil, false
			}
			return SubstTerm(c.Body, exprs, levels), nil, true
		case Maybe:
			return nil, blocker, false
		}
	}
	return nil, nil, false
}

func matchPatterns(patterns []Pattern, args []Term, exprs ExprSubst) (Decision, Term) {
	if len(patterns) != len(args) {
		return No, nil
	}
	result := Yes
	var blocker Term
	for i, p := range patterns {
		switch d, b := matchPattern(p, args[i], exprs); d {
		case No:
			return No, nil
		case Maybe:
			if result == Yes {
				result, blocker = Maybe, b
			}
		}
	}
	return result, blocker
}

func matchPattern(p Pattern, arg Term, exprs ExprSubst) (Decision, Term) {
	switch p := p.(type) {
	case *BindingPattern:
		if p.Link != nil {
			exprs.Add(p.Link, arg)
		}
		return Yes, nil
	case *EmptyPattern:
		return No, nil
	case *ConPattern:
		arg = WHNF(arg)
		if p.Con == nil {
			switch a := arg.(type) {
			case *Tuple:
				if p.Fields == nil {
					return matchPatterns(p.Args, a.Fields, exprs)
				}
			case *New:
				if p.Fields != nil {
					impls := make([]Term, len(p.Fields))
					for i, f := range p.Fields {
						impls[i] = a.Type.Implementation(f, a)
					}
					return matchPatterns(p.Args, impls, exprs)
				}
			}
			return Maybe, arg
		}
		con, args, ok := constructorOf(arg)
		switch {
		case !ok:
			return Maybe, arg
		case con != p.Con:
			return No, nil
		}
		return matchPatterns(p.Args, args, exprs)
	default:
		panic(fmt.Sprintf("bad Pattern type: %T", p))
	}
}

// constructorOf returns the constructor head of a weak-head normal term.
// Integer literals are Nat constructors.
func constructorOf(t Term) (*Constructor, []Term, bool) {
	switch t := t.(type) {
	case *ConCall:
		return t.Def, t.Args, true
	case *Integer:
		if t.Val.Sign() == 0 {
			return Zero, nil, true
		}
		var pred Integer
		pred.Val.Sub(&t.Val, big.NewInt(1))
		return Suc, []Term{&pred}, true
	default:
		return nil, nil, false
	}
}

// evalTree evaluates an elim tree on a stack of arguments.
func evalTree(tree ElimTree, args []Term, levels LevelSubst) (Term, Term, bool) {
	stack := append([]Term(nil), args...)
	exprs := NewExprSubst()
	for {
		var params *Link
		switch t := tree.(type) {
		case *LeafTree:
			params = t.Params
		case *BranchTree:
			params = t.Params
		default:
			panic(fmt.Sprintf("bad ElimTree type: %T", t))
		}
		for l := params; l != nil; l = l.Next {
			if len(stack) == 0 {
				return nil, nil, false
			}
			exprs.Add(l, stack[0])
			stack = stack[1:]
		}
		branch, ok := tree.(*BranchTree)
		if !ok {
			body := SubstTerm(tree.(*LeafTree).Body, exprs, levels)
			return MakeApp(body, stack...), nil, true
		}
		if len(stack) == 0 {
			return nil, nil, false
		}
		arg := WHNF(stack[0])
		child, fields, canonical := branch.child(arg)
		if child == nil {
			if canonical {
				return nil, nil, false
			}
			return nil, arg, false
		}
		stack = append(fields, stack[1:]...)
		tree = child
	}
}

// child returns the subtree selected by the head of arg
// and the arguments the head pushes.
// If there is no subtree, it reports whether arg has a canonical head.
func (b *BranchTree) child(arg Term) (ElimTree, []Term, bool) {
	switch a := arg.(type) {
	case *Tuple:
		for _, c := range b.Children {
			if k, ok := c.Key.(TupleKey); ok && k.Len == len(a.Fields) {
				return c.Tree, append([]Term(nil), a.Fields...), true
			}
		}
		return nil, nil, true
	case *New:
		for _, c := range b.Children {
			k, ok := c.Key.(*ClassKey)
			if !ok || k.Class != a.Type.Def {
				continue
			}
			var fields []Term
			for _, f := range a.Type.Def.Fields {
				if !isKeyImplemented(k, f) {
					fields = append(fields, a.Type.Implementation(f, a))
				}
			}
			return c.Tree, fields, true
		}
		return nil, nil, true
	}
	con, args, ok := constructorOf(arg)
	if !ok {
		return nil, nil, false
	}
	for _, c := range b.Children {
		if c.Key == BranchKey(con) {
			return c.Tree, append([]Term(nil), args...), true
		}
	}
	return nil, nil, true
}

func isKeyImplemented(k *ClassKey, f *ClassField) bool {
	for _, g := range k.Implemented {
		if g == f {
			return true
		}
	}
	return false
}

// MatchedConstructors returns the constructor calls
// admitted by the arguments of dc, with their data type arguments set.
// The second result is false if an argument matched by
// a constructor pattern is not in constructor form.
func (dc *DataCall) MatchedConstructors() ([]*ConCall, bool) {
	var result []*ConCall
	for _, con := range dc.Def.Constructors {
		cc, ok := dc.MatchedConCall(con)
		if !ok {
			return nil, false
		}
		if cc != nil {
			result = append(result, cc)
		}
	}
	return result, true
}

// MatchedConCall returns the call of con admitted by dc,
// or nil if dc does not admit con.
// The second result is false if this cannot be determined.
func (dc *DataCall) MatchedConCall(con *Constructor) (*ConCall, bool) {
	if con.Patterns == nil {
		return &ConCall{Def: con, SortArg: dc.SortArg, DataArgs: dc.Args}, true
	}
	exprs := NewExprSubst()
	switch d, _ := matchPatterns(con.Patterns, dc.Args, exprs); d {
	case No:
		return nil, true
	case Maybe:
		return nil, false
	}
	var dataArgs []Term
	for _, l := range PatternBindings(con.Patterns) {
		dataArgs = append(dataArgs, exprs[l])
	}
	return &ConCall{Def: con, SortArg: dc.SortArg, DataArgs: dataArgs}, true
}

// ParamSubst returns the substitution of the data type arguments of cc
// for the bindings they instantiate.
func (cc *ConCall) ParamSubst() ExprSubst {
	exprs := NewExprSubst()
	for i, l := range cc.Def.DataTypeParams() {
		if i < len(cc.DataArgs) {
			exprs.Add(l, cc.DataArgs[i])
		}
	}
	return exprs
}

// DataType returns the data type of cc.
func (cc *ConCall) DataType() *DataCall {
	if cc.Def.Patterns == nil {
		return &DataCall{Def: cc.Def.Data, SortArg: cc.SortArg, Args: cc.DataArgs}
	}
	exprs := cc.ParamSubst()
	args := make([]Term, len(cc.Def.Patterns))
	for i, p := range cc.Def.Patterns {
		args[i] = SubstTerm(PatternTerm(p), exprs, nil)
	}
	return &DataCall{Def: cc.Def.Data, SortArg: cc.SortArg, Args: args}
}

// PatternTerm returns the term matched by a constructor-definition pattern.
// Binding patterns become references to their links.
// Tuple, record, and absurd patterns have no term and become errors.
func PatternTerm(p Pattern) Term {
	switch p := p.(type) {
	case *BindingPattern:
		if p.Link == nil {
			return &Error{}
		}
		return &Ref{Binding: p.Link}
	case *ConPattern:
		if p.Con == nil {
			return &Error{}
		}
		args := make([]Term, len(p.Args))
		for i, a := range p.Args {
			args[i] = PatternTerm(a)
		}
		return &ConCall{Def: p.Con, SortArg: Set0, Args: args}
	default:
		return &Error{}
	}
}
