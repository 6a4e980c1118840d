package core

import (
	"fmt"

	set "github.com/hashicorp/go-set/v2"
)

// FindBinding returns a variable of vars that occurs free in t, or nil.
// Definitions in vars are found at their calls.
func FindBinding(t Term, vars *set.Set[Variable]) Variable {
	if vars.Empty() {
		return nil
	}
	return finder{match: vars.Contains}.term(t)
}

// FindFreeBinding returns a binding referenced free in t
// for which match is true, or nil.
// Unlike FindBinding, it skips the bindings introduced inside t.
func FindFreeBinding(t Term, match func(Binding) bool) Binding {
	f := finder{
		match: func(v Variable) bool {
			if _, ok := v.(*InferenceVar); ok {
				return false
			}
			b, ok := v.(Binding)
			return ok && match(b)
		},
		local: set.New[Variable](0),
	}
	if v := f.term(t); v != nil {
		return v.(Binding)
	}
	return nil
}

// FindBindingInBody is FindBinding for function bodies.
func FindBindingInBody(b Body, vars *set.Set[Variable]) Variable {
	if b == nil || vars.Empty() {
		return nil
	}
	return finder{match: vars.Contains}.body(b)
}

type finder struct {
	match func(Variable) bool
	// local holds the bindings introduced inside the term, if tracked.
	local *set.Set[Variable]
}

func (f finder) has(v Variable) Variable {
	if f.local != nil && f.local.Contains(v) {
		return nil
	}
	if f.match(v) {
		return v
	}
	return nil
}

func (f finder) bind(v Variable) {
	if f.local != nil {
		f.local.Insert(v)
	}
}

func (f finder) term(t Term) Variable {
	switch t := t.(type) {
	case *Ref:
		return f.has(t.Binding)
	case *App:
		if v := f.term(t.Fun); v != nil {
			return v
		}
		return f.term(t.Arg)
	case *FunCall:
		if v := f.terms(t.Args); v != nil {
			return v
		}
		return f.has(t.Def)
	case *ConCall:
		if v := f.terms(t.DataArgs); v != nil {
			return v
		}
		if v := f.terms(t.Args); v != nil {
			return v
		}
		return f.has(t.Def)
	case *DataCall:
		if v := f.terms(t.Args); v != nil {
			return v
		}
		return f.has(t.Def)
	case *FieldCall:
		if v := f.term(t.Arg); v != nil {
			return v
		}
		return f.has(t.Field)
	case *ClassCall:
		f.bind(t.This)
		for _, field := range t.Implemented() {
			if v := f.term(t.Impls[field]); v != nil {
				return v
			}
		}
		return f.has(t.Def)
	case *Lam:
		if v := f.links(t.Params); v != nil {
			return v
		}
		return f.term(t.Body)
	case *Pi:
		if v := f.links(t.Params); v != nil {
			return v
		}
		return f.term(t.Codomain)
	case *Sigma:
		return f.links(t.Params)
	case *Tuple:
		if v := f.terms(t.Fields); v != nil {
			return v
		}
		return f.term(t.Type)
	case *Proj:
		return f.term(t.Expr)
	case *Universe, *Integer, *Error:
		return nil
	case *New:
		if v := f.term(t.Type); v != nil {
			return v
		}
		if t.Renew != nil {
			return f.term(t.Renew)
		}
		return nil
	case *Let:
		for _, c := range t.Clauses {
			if v := f.term(c.Expr); v != nil {
				return v
			}
			f.bind(c)
		}
		return f.term(t.Body)
	case *Case:
		if v := f.terms(t.Args); v != nil {
			return v
		}
		if v := f.links(t.Params); v != nil {
			return v
		}
		if v := f.term(t.ResultType); v != nil {
			return v
		}
		if t.ResultTypeLevel != nil {
			if v := f.term(t.ResultTypeLevel); v != nil {
				return v
			}
		}
		return f.elimBody(t.Body)
	case *OfType:
		if v := f.term(t.Expr); v != nil {
			return v
		}
		return f.term(t.Type)
	case *InferenceRef:
		if t.subst != nil {
			return f.term(t.subst)
		}
		return f.has(t.v)
	case *Subst:
		return f.term(t.SubstExpression())
	default:
		panic(fmt.Sprintf("bad Term type: %T", t))
	}
}

func (f finder) terms(ts []Term) Variable {
	for _, t := range ts {
		if v := f.term(t); v != nil {
			return v
		}
	}
	return nil
}

// links searches the types of a telescope.
func (f finder) links(l *Link) Variable {
	for ; l != nil; l = l.Next {
		if l.typ != nil {
			if v := f.term(l.typ); v != nil {
				return v
			}
		}
		f.bind(l)
	}
	return nil
}

func (f finder) body(b Body) Variable {
	switch b := b.(type) {
	case *ExprBody:
		return f.term(b.Expr)
	case *ElimBody:
		return f.elimBody(b)
	case *IntervalElim:
		for _, c := range b.Cases {
			if c.Left != nil {
				if v := f.term(c.Left); v != nil {
					return v
				}
			}
			if c.Right != nil {
				if v := f.term(c.Right); v != nil {
					return v
				}
			}
		}
		if b.Otherwise != nil {
			return f.elimBody(b.Otherwise)
		}
		return nil
	default:
		panic(fmt.Sprintf("bad Body type: %T", b))
	}
}

func (f finder) elimBody(b *ElimBody) Variable {
	if b == nil {
		return nil
	}
	for _, c := range b.Clauses {
		if v := f.links(c.Params); v != nil {
			return v
		}
		if c.Body != nil {
			if v := f.term(c.Body); v != nil {
				return v
			}
		}
	}
	if b.Tree != nil {
		return f.tree(b.Tree)
	}
	return nil
}

func (f finder) tree(t ElimTree) Variable {
	switch t := t.(type) {
	case *LeafTree:
		if v := f.links(t.Params); v != nil {
			return v
		}
		return f.term(t.Body)
	case *BranchTree:
		if v := f.links(t.Params); v != nil {
			return v
		}
		for _, c := range t.Children {
			if v := f.tree(c.Tree); v != nil {
				return v
			}
		}
		return nil
	default:
		panic(fmt.Sprintf("bad ElimTree type: %T", t))
	}
}
