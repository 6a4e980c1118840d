package core

import (
	set "github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"github.com/eaburns/dtt/loc"
)

// ErrAlreadySolved is returned when resolving
// an inference reference that is already resolved.
var ErrAlreadySolved = errors.New("inference variable already solved")

// InferenceVar is a placeholder for a term the solver has yet to find.
type InferenceVar struct {
	name string
	typ  Term
	// bounds are the bindings a solution may refer to.
	bounds *set.Set[Binding]
	ref    *InferenceRef
	// Meta variables have their substitutions deferred
	// instead of having their bounds narrowed.
	Meta bool
	L    loc.Loc
}

// NewInferenceVar returns a new variable of the given type
// whose solution may refer to bounds.
func NewInferenceVar(name string, typ Term, meta bool, l loc.Loc, bounds ...Binding) *InferenceVar {
	return &InferenceVar{
		name:   name,
		typ:    typ,
		bounds: set.From(bounds),
		Meta:   meta,
		L:      l,
	}
}

func (v *InferenceVar) Name() string { return "?" + v.name }

func (v *InferenceVar) Type() Term { return v.typ }

// SetType replaces the type of an unresolved variable.
func (v *InferenceVar) SetType(t Term) { v.typ = t }

// Bounds returns the bindings a solution may refer to.
func (v *InferenceVar) Bounds() *set.Set[Binding] { return v.bounds }

// IsBound returns whether a solution may refer to b.
func (v *InferenceVar) IsBound(b Binding) bool { return v.bounds.Contains(b) }

// RemoveBounds strikes bindings that went out of scope from the bounds.
func (v *InferenceVar) RemoveBounds(bs ...Binding) {
	v.bounds.RemoveSlice(bs)
}

// Reference returns the reference that introduced v, or nil.
func (v *InferenceVar) Reference() *InferenceRef { return v.ref }

// InferenceRef is an occurrence of an inference variable.
// Once resolved, it behaves exactly like its solution.
type InferenceRef struct {
	v     *InferenceVar
	subst Term
}

// NewInferenceRef returns a fresh reference to v.
//
// If eqs supports expressions and the type of v is a class call
// with fields, the implemented non-property fields become equations
// between the projections of the reference and their implementations,
// and the type of v is narrowed to the class call without implementations.
func NewInferenceRef(v *InferenceVar, eqs Equations) *InferenceRef {
	ref := &InferenceRef{v: v}
	if eqs == nil || !eqs.SupportsExpressions() {
		return ref
	}
	v.ref = ref
	typ := WHNF(v.typ)
	if cc, ok := typ.(*ClassCall); ok && len(cc.Def.Fields) > 0 {
		for _, f := range cc.Def.Fields {
			if f.Property {
				continue
			}
			impl := cc.Implementation(f, ref)
			if impl == nil {
				continue
			}
			eqs.AddEquation(
				MakeFieldCall(f, cc.SortArg, ref),
				WHNF(impl),
				cc.FieldType(f, ref),
				EQ, v.L, v, StuckInferenceVar(impl))
		}
		typ = NewClassCall(cc.Def, cc.SortArg, cc.Def.Sort.Subst(cc.SortArg.ToLevelSubst()), cc.Universes)
	}
	v.typ = typ
	return ref
}

// SolvedInferenceRef returns a reference to v that is already resolved to t.
func SolvedInferenceRef(v *InferenceVar, t Term) *InferenceRef {
	return &InferenceRef{v: v, subst: t}
}

// Variable returns the variable, or nil if the reference is resolved.
func (r *InferenceRef) Variable() *InferenceVar {
	if r.subst != nil {
		return nil
	}
	return r.v
}

// OriginalVariable returns the variable, resolved or not.
func (r *InferenceRef) OriginalVariable() *InferenceVar { return r.v }

// SubstExpression returns the solution, or nil.
func (r *InferenceRef) SubstExpression() Term { return r.subst }

// SetSubstExpression resolves the reference to t.
// Resolution happens once; later attempts return ErrAlreadySolved
// and leave the solution unchanged.
func (r *InferenceRef) SetSubstExpression(t Term) error {
	switch {
	case t == nil:
		return errors.New("nil solution")
	case r.subst != nil:
		return errors.Wrapf(ErrAlreadySolved, "%s", r.v.Name())
	}
	r.subst = t
	return nil
}

// StuckInferenceVar returns the unresolved variable
// the weak-head reduction of t is stuck on, or nil.
func StuckInferenceVar(t Term) *InferenceVar {
	if ref, ok := Stuck(t).(*InferenceRef); ok {
		return ref.Variable()
	}
	return nil
}
