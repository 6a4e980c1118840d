package core

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ExprSubst maps variables to the terms that replace them.
// Keys are bindings, inference variables,
// or class fields, which replace field calls f a by (t a).
type ExprSubst map[Variable]Term

func NewExprSubst() ExprSubst { return make(ExprSubst) }

// Add maps v to t and returns s.
func (s ExprSubst) Add(v Variable, t Term) ExprSubst {
	s[v] = t
	return s
}

// AddLinks maps the links of a telescope to args, pairwise, and returns s.
func (s ExprSubst) AddLinks(links *Link, args []Term) ExprSubst {
	for _, arg := range args {
		if links == nil {
			break
		}
		s[links] = arg
		links = links.Next
	}
	return s
}

func (s ExprSubst) Get(v Variable) (Term, bool) {
	t, ok := s[v]
	return t, ok
}

func (s ExprSubst) Remove(v Variable) { delete(s, v) }

func (s ExprSubst) IsEmpty() bool { return len(s) == 0 }

func (s ExprSubst) Clone() ExprSubst {
	c := make(ExprSubst, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Keys returns the keys of s sorted by name.
func (s ExprSubst) Keys() []Variable {
	keys := lo.Keys(s)
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Name() < keys[j].Name() })
	return keys
}

// Compose returns the substitution equivalent to applying s
// and then other with levels:
// each key of s maps to its value substituted by other and levels,
// and each key of other that is not a key of s maps to its value in other.
func (s ExprSubst) Compose(other ExprSubst, levels LevelSubst) ExprSubst {
	switch {
	case s.IsEmpty():
		return other.Clone()
	case other.IsEmpty() && levels.IsEmpty():
		return s.Clone()
	}
	result := make(ExprSubst, len(s)+len(other))
	for k, v := range s {
		result[k] = SubstTerm(v, other, levels)
	}
	for k, v := range other {
		if _, ok := result[k]; !ok {
			result[k] = v
		}
	}
	return result
}

// Restrict returns the sub-mapping of s on the keys for which keep is true.
func (s ExprSubst) Restrict(keep func(Variable) bool) ExprSubst {
	return ExprSubst(lo.PickBy(s, func(v Variable, _ Term) bool { return keep(v) }))
}

// ShapeError is an internal consistency failure:
// substitution turned the type of a tuple or record value
// into something that is not a Sigma or a class call.
type ShapeError struct {
	Term Term
	Want string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("substitution into %s did not preserve %s", e.Term, e.Want)
}

// SubstTerm returns t with the free occurrences of the keys of exprs
// replaced by their values and the level variables replaced per levels.
// The substitution is simultaneous and capture-avoiding.
//
// exprs is extended while traversing binders and restored before returning,
// so it must not be used concurrently.
func SubstTerm(t Term, exprs ExprSubst, levels LevelSubst) Term {
	if exprs.IsEmpty() && levels.IsEmpty() {
		return t
	}
	return newSubstituter(exprs, levels).term(t)
}

// SubstLinks returns a fresh copy of the telescope with its types substituted.
// Unlike SubstTerm, it leaves the mapping from each original link
// to a reference to its copy in exprs, for substituting into the scope
// of the telescope.
func SubstLinks(links *Link, exprs ExprSubst, levels LevelSubst) *Link {
	if exprs == nil {
		panic("nil ExprSubst")
	}
	s := newSubstituter(exprs, levels)
	result := s.links(links)
	s.undo = nil
	return result
}

type substituter struct {
	exprs  ExprSubst
	levels LevelSubst
	undo   []saved
	lets   map[*LetClause]bool
}

type saved struct {
	v   Variable
	old Term
	ok  bool
}

func newSubstituter(exprs ExprSubst, levels LevelSubst) *substituter {
	if exprs == nil {
		exprs = NewExprSubst()
	}
	return &substituter{exprs: exprs, levels: levels}
}

func (s *substituter) mark() int { return len(s.undo) }

func (s *substituter) bind(v Variable, t Term) {
	old, ok := s.exprs[v]
	s.undo = append(s.undo, saved{v: v, old: old, ok: ok})
	s.exprs[v] = t
}

func (s *substituter) release(mark int) {
	for len(s.undo) > mark {
		u := s.undo[len(s.undo)-1]
		s.undo = s.undo[:len(s.undo)-1]
		if u.ok {
			s.exprs[u.v] = u.old
		} else {
			delete(s.exprs, u.v)
		}
	}
}

func (s *substituter) term(t Term) Term {
	switch t := t.(type) {
	case *Ref:
		if r, ok := s.exprs[t.Binding]; ok {
			return r
		}
		if c, ok := t.Binding.(*LetClause); ok {
			s.let(c)
		}
		return t
	case *App:
		return MakeApp(s.term(t.Fun), s.term(t.Arg))
	case *FunCall:
		return &FunCall{Def: t.Def, SortArg: t.SortArg.Subst(s.levels), Args: s.terms(t.Args)}
	case *ConCall:
		return &ConCall{
			Def:      t.Def,
			SortArg:  t.SortArg.Subst(s.levels),
			DataArgs: s.terms(t.DataArgs),
			Args:     s.terms(t.Args),
		}
	case *DataCall:
		return &DataCall{Def: t.Def, SortArg: t.SortArg.Subst(s.levels), Args: s.terms(t.Args)}
	case *FieldCall:
		if r, ok := s.exprs[t.Field]; ok {
			return MakeApp(r, s.term(t.Arg))
		}
		return MakeFieldCall(t.Field, t.SortArg.Subst(s.levels), s.term(t.Arg))
	case *ClassCall:
		return s.classCall(t)
	case *Lam:
		m := s.mark()
		defer s.release(m)
		params := s.links(t.Params)
		return &Lam{ResultSort: t.ResultSort.Subst(s.levels), Params: params, Body: s.term(t.Body)}
	case *Pi:
		m := s.mark()
		defer s.release(m)
		params := s.links(t.Params)
		return &Pi{ResultSort: t.ResultSort.Subst(s.levels), Params: params, Codomain: s.term(t.Codomain)}
	case *Sigma:
		m := s.mark()
		defer s.release(m)
		return &Sigma{Sort: t.Sort.Subst(s.levels), Params: s.links(t.Params)}
	case *Tuple:
		fields := s.terms(t.Fields)
		sigma, ok := s.term(t.Type).(*Sigma)
		if !ok {
			panic(errors.WithStack(&ShapeError{Term: t, Want: "a sigma type"}))
		}
		return &Tuple{Fields: fields, Type: sigma}
	case *Proj:
		return MakeProj(s.term(t.Expr), t.Field)
	case *Universe:
		if s.levels.IsEmpty() {
			return t
		}
		return &Universe{Sort: t.Sort.Subst(s.levels)}
	case *New:
		cc, ok := s.term(t.Type).(*ClassCall)
		if !ok {
			panic(errors.WithStack(&ShapeError{Term: t, Want: "a class call"}))
		}
		var renew Term
		if t.Renew != nil {
			renew = s.term(t.Renew)
		}
		return &New{Renew: renew, Type: cc}
	case *Let:
		m := s.mark()
		defer s.release(m)
		clauses := make([]*LetClause, 0, len(t.Clauses))
		for _, c := range t.Clauses {
			nc := &LetClause{name: c.name, Expr: s.term(c.Expr)}
			if c.typ != nil {
				nc.typ = s.term(c.typ)
			}
			clauses = append(clauses, nc)
			s.bind(c, &Ref{Binding: nc})
		}
		return &Let{Strict: t.Strict, Clauses: clauses, Body: s.term(t.Body)}
	case *Case:
		args := s.terms(t.Args)
		m := s.mark()
		params := s.links(t.Params)
		resultType := s.term(t.ResultType)
		var resultTypeLevel Term
		if t.ResultTypeLevel != nil {
			resultTypeLevel = s.term(t.ResultTypeLevel)
		}
		s.release(m)
		return &Case{
			SCase:           t.SCase,
			Params:          params,
			ResultType:      resultType,
			ResultTypeLevel: resultTypeLevel,
			Body:            s.elimBody(t.Body),
			Args:            args,
		}
	case *OfType:
		return &OfType{Expr: s.term(t.Expr), Type: s.term(t.Type)}
	case *Integer:
		return t
	case *Error:
		if t.Expr == nil {
			return t
		}
		return &Error{Expr: s.term(t.Expr), Goal: t.Goal, L: t.L}
	case *InferenceRef:
		return s.inferenceRef(t)
	case *Subst:
		exprs := t.Exprs.Compose(s.exprs, s.levels)
		levels := t.Levels.Compose(s.levels)
		return SubstTerm(t.Expr, exprs, levels)
	default:
		panic(fmt.Sprintf("bad Term type: %T", t))
	}
}

func (s *substituter) terms(ts []Term) []Term {
	if ts == nil {
		return nil
	}
	result := make([]Term, len(ts))
	for i, t := range ts {
		result[i] = s.term(t)
	}
	return result
}

// links copies the telescope, binding each original link to its copy.
// The caller releases the bindings.
func (s *substituter) links(l *Link) *Link {
	var links []*Link
	for ; l != nil; l = l.Next {
		nl := &Link{name: l.name, Explicit: l.Explicit}
		if l.typ != nil {
			nl.typ = s.term(l.typ)
		}
		s.bind(l, &Ref{Binding: nl})
		links = append(links, nl)
	}
	return Chain(links...)
}

// let substitutes into the definition of a let clause
// that is referenced from outside of its let expression.
func (s *substituter) let(c *LetClause) {
	if s.lets[c] {
		return
	}
	if s.lets == nil {
		s.lets = make(map[*LetClause]bool)
	}
	s.lets[c] = true
	c.Expr = s.term(c.Expr)
}

func (s *substituter) classCall(cc *ClassCall) *ClassCall {
	result := NewClassCall(cc.Def, cc.SortArg.Subst(s.levels), cc.Sort.Subst(s.levels), cc.Universes)
	if len(cc.Impls) == 0 {
		return result
	}
	m := s.mark()
	defer s.release(m)
	s.bind(cc.This, &Ref{Binding: result.This})
	for _, f := range cc.Implemented() {
		result.Impls[f] = s.term(cc.Impls[f])
	}
	return result
}

func (s *substituter) inferenceRef(ref *InferenceRef) Term {
	if ref.subst != nil {
		return s.term(ref.subst)
	}
	v := ref.v
	if r, ok := s.exprs[v]; ok {
		return r
	}
	if v.Meta {
		relevant := s.exprs.Restrict(func(k Variable) bool {
			b, ok := k.(Binding)
			return ok && v.bounds.Contains(b)
		})
		if relevant.IsEmpty() && s.levels.IsEmpty() {
			return ref
		}
		return MakeSubst(ref, relevant, s.levels)
	}
	for k := range s.exprs {
		if b, ok := k.(Binding); ok {
			v.bounds.Remove(b)
		}
	}
	return ref
}

func (s *substituter) elimBody(b *ElimBody) *ElimBody {
	if b == nil {
		return nil
	}
	result := &ElimBody{Clauses: make([]*ElimClause, 0, len(b.Clauses))}
	for _, c := range b.Clauses {
		result.Clauses = append(result.Clauses, s.clause(c))
	}
	if b.Tree != nil {
		result.Tree = s.tree(b.Tree)
	}
	return result
}

func (s *substituter) clause(c *ElimClause) *ElimClause {
	m := s.mark()
	defer s.release(m)
	patterns := s.patterns(c.Patterns)
	var body Term
	if c.Body != nil {
		body = s.term(c.Body)
	}
	return &ElimClause{Params: Chain(PatternBindings(patterns)...), Patterns: patterns, Body: body}
}

func (s *substituter) patterns(ps []Pattern) []Pattern {
	result := make([]Pattern, len(ps))
	for i, p := range ps {
		switch p := p.(type) {
		case *BindingPattern:
			if p.Link == nil {
				result[i] = p
				continue
			}
			nl := &Link{name: p.Link.name, typ: s.term(p.Link.Type()), Explicit: p.Link.Explicit}
			s.bind(p.Link, &Ref{Binding: nl})
			result[i] = &BindingPattern{Link: nl}
		case *EmptyPattern:
			result[i] = p
		case *ConPattern:
			result[i] = &ConPattern{Con: p.Con, Fields: p.Fields, Args: s.patterns(p.Args)}
		default:
			panic(fmt.Sprintf("bad Pattern type: %T", p))
		}
	}
	return result
}

func (s *substituter) tree(t ElimTree) ElimTree {
	m := s.mark()
	defer s.release(m)
	switch t := t.(type) {
	case *LeafTree:
		params := s.links(t.Params)
		return &LeafTree{Params: params, Body: s.term(t.Body)}
	case *BranchTree:
		params := s.links(t.Params)
		children := make([]*BranchChild, 0, len(t.Children))
		for _, c := range t.Children {
			key := c.Key
			if k, ok := key.(*ClassKey); ok && !s.levels.IsEmpty() {
				key = &ClassKey{Class: k.Class, Sort: k.Sort.Subst(s.levels), Implemented: k.Implemented}
			}
			children = append(children, &BranchChild{Key: key, Tree: s.tree(c.Tree)})
		}
		return &BranchTree{Params: params, Children: children}
	default:
		panic(fmt.Sprintf("bad ElimTree type: %T", t))
	}
}
