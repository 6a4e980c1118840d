package core

// Subst is a substitution deferred until Expr,
// an inference reference, is resolved.
// Exprs holds only the part of the substitution
// relevant to the bounds of the variable.
type Subst struct {
	Expr   Term
	Exprs  ExprSubst
	Levels LevelSubst
}

// MakeSubst returns expr under a deferred substitution.
// An empty substitution is the identity,
// and substitutions over a deferred substitution compose into one node.
func MakeSubst(expr Term, exprs ExprSubst, levels LevelSubst) Term {
	if exprs.IsEmpty() && levels.IsEmpty() {
		return expr
	}
	if d, ok := expr.(*Subst); ok {
		return &Subst{
			Expr:   d.Expr,
			Exprs:  d.Exprs.Compose(exprs, levels),
			Levels: d.Levels.Compose(levels),
		}
	}
	return &Subst{Expr: expr, Exprs: exprs, Levels: levels}
}

// SubstExpression returns the result of the substitution
// if Expr is resolved, and Expr itself otherwise.
func (d *Subst) SubstExpression() Term {
	if ref, ok := d.Expr.(*InferenceRef); ok && ref.subst == nil {
		return ref
	}
	return SubstTerm(d.Expr, d.Exprs.Clone(), d.Levels)
}
