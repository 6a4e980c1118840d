package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eaburns/dtt/loc"
)

func TestSubstEmptyIsIdentity(t *testing.T) {
	x := NewLink("x", NatCall())
	terms := []Term{
		&Ref{Binding: x},
		&Lam{ResultSort: Set0, Params: x, Body: &Ref{Binding: x}},
		plusCall(NewInteger(1), ZeroCall()),
		&Universe{Sort: StdSort},
	}
	for _, term := range terms {
		if got := SubstTerm(term, NewExprSubst(), nil); got != term {
			t.Errorf("SubstTerm(%s, {}, {})=%s, want the same term", term, got)
		}
		if got := SubstTerm(term, nil, LevelSubst{}); got != term {
			t.Errorf("SubstTerm(%s, nil, {})=%s, want the same term", term, got)
		}
	}
}

func TestSubstCaptureAvoiding(t *testing.T) {
	outer := NewLink("x", NatCall())
	inner := NewLink("x", NatCall())
	y := NewLink("y", NatCall())
	lam := &Lam{
		ResultSort: Set0,
		Params:     inner,
		Body:       plusCall(&Ref{Binding: inner}, &Ref{Binding: outer}),
	}

	t.Run("free x", func(t *testing.T) {
		exprs := NewExprSubst().Add(outer, &Ref{Binding: y})
		got := SubstTerm(lam, exprs, nil).(*Lam)
		checkString(t, `\lam (x : Nat) => plus x y`, got)
		args := got.Body.(*FunCall).Args
		require.Same(t, got.Params, args[0].(*Ref).Binding, "the bound x must refer to the new parameter")
		require.Same(t, y, args[1].(*Ref).Binding)
		require.NotSame(t, inner, got.Params)
		require.Len(t, exprs, 1)
		require.Equal(t, Term(&Ref{Binding: y}), exprs[outer], "the mapping must be restored")
	})

	t.Run("bound x", func(t *testing.T) {
		exprs := NewExprSubst().Add(inner, &Ref{Binding: y})
		got := SubstTerm(lam, exprs, nil).(*Lam)
		checkString(t, `\lam (x : Nat) => plus x x`, got)
		args := got.Body.(*FunCall).Args
		require.Same(t, got.Params, args[0].(*Ref).Binding)
		require.Same(t, outer, args[1].(*Ref).Binding)
		require.Same(t, y, exprs[inner].(*Ref).Binding, "the mapping must be restored")
	})

	t.Run("replacement mentions the binder name", func(t *testing.T) {
		// Substituting a term mentioning a free x under a binder named x.
		exprs := NewExprSubst().Add(y, &Ref{Binding: outer})
		term := &Lam{ResultSort: Set0, Params: inner, Body: plusCall(&Ref{Binding: inner}, &Ref{Binding: y})}
		got := SubstTerm(term, exprs, nil).(*Lam)
		args := got.Body.(*FunCall).Args
		require.Same(t, got.Params, args[0].(*Ref).Binding)
		require.Same(t, outer, args[1].(*Ref).Binding)
	})
}

func TestSubstLevels(t *testing.T) {
	u := &Universe{Sort: StdSort}
	got := SubstTerm(u, nil, Set0.ToLevelSubst())
	checkString(t, `\Set0`, got)
	checkString(t, `\Type (lp,lh)`, u)

	pathSort := PathInfix.ResultType.(*Universe).Sort
	require.True(t, pathSort.Subst(Prop.ToLevelSubst()).IsProp())
	require.True(t, pathSort.Subst(Set0.ToLevelSubst()).IsProp())
	require.False(t, pathSort.Subst(TypeSort(0, 1).ToLevelSubst()).IsProp())
}

func TestSubstLetUpdatesDefinitionInPlace(t *testing.T) {
	x := NewLink("x", NatCall())
	clause := NewLetClause("c", SucCall(&Ref{Binding: x}), NatCall())
	ref := &Ref{Binding: clause}

	got := SubstTerm(ref, NewExprSubst().Add(x, ZeroCall()), nil)
	require.Same(t, ref, got)
	checkString(t, "suc zero", clause.Expr)
}

func TestSubstLetBindsClauses(t *testing.T) {
	x := NewLink("x", NatCall())
	c := NewLetClause("c", &Ref{Binding: x}, nil)
	let := &Let{Clauses: []*LetClause{c}, Body: plusCall(&Ref{Binding: c}, &Ref{Binding: x})}

	got := SubstTerm(let, NewExprSubst().Add(x, ZeroCall()), nil).(*Let)
	checkString(t, `\let c => zero \in plus c zero`, got)
	require.NotSame(t, c, got.Clauses[0])
	require.Same(t, got.Clauses[0], got.Body.(*FunCall).Args[0].(*Ref).Binding)
	checkString(t, "x", c.Expr)
}

func TestSubstFieldCall(t *testing.T) {
	class := NewClassDef("C", Set0)
	f := class.AddField("f", NatCall(), false)
	a := NewLink("a", NewClassCall(class, Set0, Set0, NoUniverses))
	call := &FieldCall{Field: f, SortArg: Set0, Arg: &Ref{Binding: a}}
	checkString(t, "a.f", call)

	this := NewLink("this", NewClassCall(class, Set0, Set0, NoUniverses))
	g := &Lam{ResultSort: Set0, Params: this, Body: SucCall(&Ref{Binding: this})}
	got := SubstTerm(call, NewExprSubst().Add(f, g), nil)
	checkString(t, "suc a", got)

	n := &New{Type: NewClassCall(class, Set0, Set0, NoUniverses).Implement(f, ZeroCall())}
	got = SubstTerm(call, NewExprSubst().Add(a, n), nil)
	checkString(t, "zero", got)
}

func TestSubstClassCallFreshThis(t *testing.T) {
	class := NewClassDef("C", Set0)
	f := class.AddField("f", NatCall(), false)
	g := class.AddField("g", NatCall(), false)
	x := NewLink("x", NatCall())
	cc := NewClassCall(class, Set0, Set0, NoUniverses)
	cc.Implement(f, &Ref{Binding: x})
	cc.Implement(g, &FieldCall{Field: f, SortArg: Set0, Arg: &Ref{Binding: cc.This}})

	got := SubstTerm(cc, NewExprSubst().Add(x, ZeroCall()), nil).(*ClassCall)
	checkString(t, "C { | f => zero | g => this.f }", got)
	require.NotSame(t, cc.This, got.This)
	require.Same(t, got.This, got.Impls[g].(*FieldCall).Arg.(*Ref).Binding)
}

func TestSubstComposition(t *testing.T) {
	x := NewLink("x", NatCall())
	y := NewLink("y", NatCall())
	s1 := NewExprSubst().Add(x, &Ref{Binding: y})
	s2 := NewExprSubst().Add(y, ZeroCall())

	v := NewInferenceVar("v", NatCall(), true, loc.Loc{}, x, y)
	ref := NewInferenceRef(v, nil)
	term := plusCall(ref, &Ref{Binding: x})

	twice := SubstTerm(SubstTerm(term, s1, nil), s2, nil)
	once := SubstTerm(term, s1.Compose(s2, nil), nil)
	checkString(t, "plus ?v[x := zero, y := zero] zero", twice)
	checkString(t, once.String(), twice)

	inner := twice.(*FunCall).Args[0].(*Subst)
	require.Same(t, ref, inner.Expr, "deferred substitutions must not nest")

	require.NoError(t, ref.SetSubstExpression(plusCall(&Ref{Binding: x}, &Ref{Binding: y})))
	checkString(t, "plus (plus zero zero) zero", twice)
	checkString(t, "plus (plus zero zero) zero", once)
	checkString(t, "plus zero zero", WHNF(twice.(*FunCall).Args[0]))
}

func TestSubstMetaOutsideBounds(t *testing.T) {
	x := NewLink("x", NatCall())
	z := NewLink("z", NatCall())
	v := NewInferenceVar("v", NatCall(), true, loc.Loc{}, x)
	ref := NewInferenceRef(v, nil)

	require.Same(t, ref, SubstTerm(ref, NewExprSubst().Add(z, ZeroCall()), nil))

	got := SubstTerm(ref, NewExprSubst().Add(z, ZeroCall()).Add(x, NewInteger(1)), nil)
	d, ok := got.(*Subst)
	require.True(t, ok, "got %s, want a deferred substitution", got)
	require.Equal(t, []Variable{x}, d.Exprs.Keys(), "only the relevant mapping is deferred")
}

func TestSubstNonMetaNarrowsBounds(t *testing.T) {
	x := NewLink("x", NatCall())
	y := NewLink("y", NatCall())
	v := NewInferenceVar("v", NatCall(), false, loc.Loc{}, x, y)
	ref := NewInferenceRef(v, nil)

	require.Same(t, ref, SubstTerm(ref, NewExprSubst().Add(x, ZeroCall()), nil))
	require.False(t, v.IsBound(x))
	require.True(t, v.IsBound(y))
}

func TestMakeSubst(t *testing.T) {
	x := NewLink("x", NatCall())
	y := NewLink("y", NatCall())
	v := NewInferenceVar("v", NatCall(), true, loc.Loc{}, x, y)
	ref := NewInferenceRef(v, nil)

	require.Same(t, ref, MakeSubst(ref, NewExprSubst(), nil))

	d := MakeSubst(MakeSubst(ref, NewExprSubst().Add(x, &Ref{Binding: y}), nil), NewExprSubst().Add(y, ZeroCall()), nil).(*Subst)
	require.Same(t, ref, d.Expr)
	checkString(t, "?v[x := zero, y := zero]", d)
}

func TestSubstLinks(t *testing.T) {
	o := NewLink("A", &Universe{Sort: Set0})
	a := NewLink("a", &Ref{Binding: o})
	b := NewLink("b", &Ref{Binding: a})
	params := Chain(a, NewUntypedLink("c"), b)
	exprs := NewExprSubst().Add(o, NatCall())

	got := SubstLinks(params, exprs, nil)
	require.Equal(t, 3, got.Len())
	checkString(t, "Nat", got.Type())
	require.False(t, got.Next.IsTyped())
	require.Same(t, got, got.Next.Type().(*Ref).Binding)

	// The mappings to the new links are left for the scope of the telescope.
	require.Same(t, got.Next.Next, exprs[b].(*Ref).Binding)
}

func TestApply(t *testing.T) {
	a := NewUntypedLink("a")
	b := NewLink("b", NatCall())
	pi := &Pi{
		ResultSort: Set0,
		Params:     Chain(a, b),
		Codomain: &DataCall{
			Def:     newVec().DataDef,
			SortArg: Set0,
			Args:    []Term{NatCall(), plusCall(&Ref{Binding: a}, &Ref{Binding: b})},
		},
	}
	checkString(t, `\Pi (a b : Nat) -> Vec Nat (plus a b)`, pi)
	checkString(t, `\Pi (b : Nat) -> Vec Nat (plus zero b)`, Apply(pi, ZeroCall()))
	checkString(t, "Vec Nat (plus zero 1)", Apply(pi, ZeroCall(), NewInteger(1)))
}

func TestMakeApp(t *testing.T) {
	x := NewLink("x", NatCall())
	y := NewLink("y", NatCall())
	lam := &Lam{ResultSort: Set0, Params: Chain(x, y), Body: plusCall(&Ref{Binding: x}, &Ref{Binding: y})}

	require.Same(t, Term(lam), MakeApp(lam))
	checkString(t, `\lam (y : Nat) => plus 1 y`, MakeApp(lam, NewInteger(1)))
	checkString(t, "plus 1 2", MakeApp(lam, NewInteger(1), NewInteger(2)))

	f := NewLink("f", &Pi{ResultSort: Set0, Params: NewLink("_", NatCall()), Codomain: NatCall()})
	checkString(t, "f 1", MakeApp(&Ref{Binding: f}, NewInteger(1)))
}

func TestSubstCompositionLevels(t *testing.T) {
	x := NewLink("x", &Universe{Sort: Omega})
	s1 := NewExprSubst().Add(x, &Universe{Sort: StdSort})
	l2 := LevelSubst{LP: NewLevel(0), LH: NewLevel(0)}

	v := NewInferenceVar("v", &Universe{Sort: Omega}, true, loc.Loc{}, x)
	ref := NewInferenceRef(v, nil)

	twice := SubstTerm(SubstTerm(ref, s1, nil), NewExprSubst(), l2)
	once := SubstTerm(ref, s1.Compose(NewExprSubst(), l2), LevelSubst(nil).Compose(l2))
	deferred := MakeSubst(MakeSubst(ref, s1, nil), NewExprSubst(), l2)
	require.IsType(t, &Subst{}, twice)

	require.NoError(t, ref.SetSubstExpression(&Ref{Binding: x}))
	checkString(t, `\Set0`, WHNF(twice))
	checkString(t, `\Set0`, WHNF(once))
	checkString(t, `\Set0`, WHNF(deferred))
}

func TestCompose(t *testing.T) {
	x := NewLink("x", NatCall())
	y := NewLink("y", NatCall())
	z := NewLink("z", NatCall())
	s1 := NewExprSubst().Add(x, SucCall(&Ref{Binding: y}))
	s2 := NewExprSubst().Add(y, ZeroCall()).Add(x, &Ref{Binding: z})

	got := s1.Compose(s2, nil)
	require.Equal(t, []Variable{x, y}, got.Keys())
	checkString(t, "suc zero", got[x])
	checkString(t, "zero", got[y])

	require.Empty(t, NewExprSubst().Compose(NewExprSubst(), nil))
	require.Equal(t, s1, s1.Compose(nil, nil))
}
