package compare

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eaburns/dtt/core"
	"github.com/eaburns/dtt/loc"
)

var l = loc.Loc{1, 2}

func newPred() *core.FunctionDef {
	n := core.Bind("n", core.NatCall())
	return core.NewFunctionDef("pred", core.NewLink("m", core.NatCall()), core.NatCall(), &core.ElimBody{
		Clauses: []*core.ElimClause{
			core.NewElimClause([]core.Pattern{core.Con(core.Zero)}, core.ZeroCall()),
			core.NewElimClause([]core.Pattern{core.Con(core.Suc, n)}, &core.Ref{Binding: n.Link}),
		},
	})
}

func natPi() *core.Pi {
	return &core.Pi{ResultSort: core.Set0, Params: core.NewLink("_", core.NatCall()), Codomain: core.NatCall()}
}

func TestUniverses(t *testing.T) {
	u := func(s core.Sort) *core.Universe { return &core.Universe{Sort: s} }
	tests := []struct {
		name string
		cmp  core.CMP
		a, b core.Term
		want bool
	}{
		{name: "equal", cmp: core.EQ, a: u(core.Set0), b: u(core.Set0), want: true},
		{name: "cumulative", cmp: core.LE, a: u(core.Set0), b: u(core.SetSort(1)), want: true},
		{name: "not cumulative down", cmp: core.LE, a: u(core.SetSort(1)), b: u(core.Set0), want: false},
		{name: "ge", cmp: core.GE, a: u(core.Set0), b: u(core.SetSort(1)), want: false},
		{name: "prop", cmp: core.LE, a: u(core.Prop), b: u(core.Set0), want: true},
		{name: "omega", cmp: core.LE, a: u(core.TypeSort(7, 7)), b: u(core.Omega), want: true},
		{name: "omega equal", cmp: core.EQ, a: u(core.TypeSort(7, 7)), b: u(core.Omega), want: false},
		{name: "undecided levels", cmp: core.LE, a: u(core.StdSort), b: u(core.Set0), want: false},
		{name: "not a universe", cmp: core.EQ, a: u(core.Set0), b: core.NatCall(), want: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			eqs := New()
			require.Equal(t, test.want, eqs.Compare(test.cmp, test.a, test.b, nil, l))
			require.Empty(t, eqs.Levels)
			require.Empty(t, eqs.Deferred)
		})
	}
}

func TestDeferLevels(t *testing.T) {
	eqs := New(DeferLevels())
	a, b := &core.Universe{Sort: core.StdSort}, &core.Universe{Sort: core.Set0}
	require.True(t, eqs.Compare(core.LE, a, b, nil, l))
	require.Len(t, eqs.Levels, 2)
	require.Equal(t, "lp", eqs.Levels[0].A.String())
	require.Equal(t, "0", eqs.Levels[0].B.String())
	require.Equal(t, core.LE, eqs.Levels[0].CMP)
	require.Equal(t, l, eqs.Levels[0].L)
	require.Equal(t, "lh", eqs.Levels[1].A.String())
}

func TestReduction(t *testing.T) {
	x := core.NewLink("x", core.NatCall())
	pred := newPred()
	id := &core.Lam{ResultSort: core.Set0, Params: x, Body: &core.Ref{Binding: x}}

	tests := []struct {
		name string
		a, b core.Term
		want bool
	}{
		{name: "literal and constructors", a: core.NewInteger(2), b: core.SucCall(core.SucCall(core.ZeroCall())), want: true},
		{name: "constructors and literal", a: core.SucCall(core.ZeroCall()), b: core.NewInteger(1), want: true},
		{name: "different literals", a: core.NewInteger(2), b: core.NewInteger(3), want: false},
		{name: "literal and zero", a: core.NewInteger(1), b: core.ZeroCall(), want: false},
		{name: "function call", a: &core.FunCall{Def: pred, SortArg: core.Set0, Args: []core.Term{core.NewInteger(4)}}, b: core.NewInteger(3), want: true},
		{name: "beta", a: &core.App{Fun: id, Arg: core.ZeroCall()}, b: core.NewInteger(0), want: true},
		{name: "different constructors", a: core.ZeroCall(), b: core.SucCall(core.ZeroCall()), want: false},
		{name: "error", a: &core.Error{}, b: core.ZeroCall(), want: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.want, New().Compare(core.EQ, test.a, test.b, core.NatCall(), l))
		})
	}
}

func TestBinders(t *testing.T) {
	x, y := core.NewLink("x", core.NatCall()), core.NewLink("y", core.NatCall())
	f := core.NewLink("f", natPi())
	eqs := New()

	lx := &core.Lam{ResultSort: core.Set0, Params: x, Body: core.SucCall(&core.Ref{Binding: x})}
	ly := &core.Lam{ResultSort: core.Set0, Params: y, Body: core.SucCall(&core.Ref{Binding: y})}
	require.True(t, eqs.Compare(core.EQ, lx, ly, nil, l), "alpha-equivalent lambdas")

	w := core.NewLink("w", core.NatCall())
	lw := &core.Lam{ResultSort: core.Set0, Params: w, Body: core.ZeroCall()}
	require.False(t, eqs.Compare(core.EQ, lx, lw, nil, l), "different bodies")

	z := core.NewLink("z", core.NatCall())
	eta := &core.Lam{ResultSort: core.Set0, Params: z, Body: &core.App{Fun: &core.Ref{Binding: f}, Arg: &core.Ref{Binding: z}}}
	require.True(t, eqs.Compare(core.EQ, eta, &core.Ref{Binding: f}, nil, l), "eta")
	require.True(t, eqs.Compare(core.EQ, &core.Ref{Binding: f}, eta, nil, l), "eta reversed")

	px := &core.Pi{ResultSort: core.Set0, Params: core.NewLink("x", core.NatCall()), Codomain: core.NatCall()}
	require.True(t, eqs.Compare(core.LE, px, natPi(), nil, l))

	sa := &core.Sigma{Sort: core.Set0, Params: core.Chain(core.NewLink("a", core.NatCall()), core.NewLink("b", core.NatCall()))}
	sb := &core.Sigma{Sort: core.Set0, Params: core.Chain(core.NewLink("c", core.NatCall()), core.NewLink("d", core.NatCall()))}
	require.True(t, eqs.Compare(core.EQ, sa, sb, nil, l))

	p := core.NewLink("p", sa)
	tuple := &core.Tuple{
		Fields: []core.Term{
			&core.Proj{Expr: &core.Ref{Binding: p}, Field: 0},
			&core.Proj{Expr: &core.Ref{Binding: p}, Field: 1},
		},
		Type: sa,
	}
	require.True(t, eqs.Compare(core.EQ, tuple, &core.Ref{Binding: p}, sa, l), "tuple eta")
	require.True(t, eqs.Compare(core.EQ, &core.Ref{Binding: p}, tuple, sa, l), "tuple eta reversed")
	require.Empty(t, eqs.Deferred)
}

func TestClassCalls(t *testing.T) {
	class := core.NewClassDef("C", core.Set0)
	f := class.AddField("f", core.NatCall(), false)
	call := func() *core.ClassCall { return core.NewClassCall(class, core.Set0, core.Set0, core.NoUniverses) }
	impl := call().Implement(f, core.ZeroCall())
	eqs := New()

	require.True(t, eqs.Compare(core.LE, impl, call(), nil, l), "more implementations are a subtype")
	require.False(t, eqs.Compare(core.LE, call(), impl, nil, l))
	require.True(t, eqs.Compare(core.GE, call(), impl, nil, l))
	require.False(t, eqs.Compare(core.EQ, impl, call(), nil, l))
	require.True(t, eqs.Compare(core.EQ, impl, call().Implement(f, core.NewInteger(0)), nil, l))
	require.False(t, eqs.Compare(core.EQ, impl, call().Implement(f, core.NewInteger(1)), nil, l))

	n := &core.New{Type: call().Implement(f, core.NewInteger(5))}
	r := core.NewLink("r", impl)
	require.False(t, eqs.Compare(core.EQ, n, &core.Ref{Binding: r}, nil, l))
}

func TestSolve(t *testing.T) {
	v := core.NewInferenceVar("v", core.NatCall(), false, l)
	ref := core.NewInferenceRef(v, nil)
	eqs := New()
	require.True(t, eqs.Compare(core.EQ, ref, core.SucCall(core.ZeroCall()), core.NatCall(), l))
	require.Nil(t, ref.Variable())
	require.Equal(t, "suc zero", ref.String())
	require.Empty(t, eqs.Deferred)

	// Later comparisons see the solution.
	require.True(t, eqs.Compare(core.EQ, ref, core.NewInteger(1), core.NatCall(), l))
	require.False(t, eqs.Compare(core.EQ, ref, core.ZeroCall(), core.NatCall(), l))
}

func TestSolveOccurs(t *testing.T) {
	v := core.NewInferenceVar("v", core.NatCall(), false, l)
	ref := core.NewInferenceRef(v, nil)
	eqs := New()
	require.False(t, eqs.Compare(core.EQ, ref, core.SucCall(ref), core.NatCall(), l))
	require.Same(t, v, ref.Variable())
	require.Empty(t, eqs.Deferred)
}

func TestSameVariable(t *testing.T) {
	v := core.NewInferenceVar("v", core.NatCall(), false, l)
	eqs := New(LevelsOnly())
	require.True(t, eqs.Compare(core.EQ, core.NewInferenceRef(v, nil), core.NewInferenceRef(v, nil), core.NatCall(), l))
}

func TestDefer(t *testing.T) {
	v := core.NewInferenceVar("v", core.NatCall(), false, l)
	ref := core.NewInferenceRef(v, nil)
	stuck := &core.FunCall{Def: newPred(), SortArg: core.Set0, Args: []core.Term{ref}}

	eqs := New()
	require.True(t, eqs.Compare(core.EQ, stuck, core.ZeroCall(), core.NatCall(), l))
	require.Len(t, eqs.Deferred, 1)
	eq := eqs.Deferred[0]
	require.Equal(t, "pred ?v == zero", eq.String())
	require.Same(t, v, eq.LHS)
	require.Nil(t, eq.RHS)
	require.Equal(t, l, eq.L)
	require.Same(t, v, ref.Variable(), "a stuck call is not a solution")

	levels := New(LevelsOnly())
	require.False(t, levels.SupportsExpressions())
	require.False(t, levels.Compare(core.EQ, stuck, core.ZeroCall(), core.NatCall(), l))
	require.Empty(t, levels.Deferred)
	require.False(t, levels.AddEquation(stuck, core.ZeroCall(), core.NatCall(), core.EQ, l, v, nil))
}

func TestSolveOutOfBounds(t *testing.T) {
	x, y := core.NewLink("x", core.NatCall()), core.NewLink("y", core.NatCall())
	v := core.NewInferenceVar("v", core.NatCall(), false, l, x)
	ref := core.NewInferenceRef(v, nil)
	eqs := New()
	require.False(t, eqs.Compare(core.EQ, ref, &core.Ref{Binding: y}, core.NatCall(), l))
	require.Same(t, v, ref.Variable())
	require.Empty(t, eqs.Deferred)

	// Bindings of the solution itself are not out of bounds.
	z := core.NewLink("z", core.NatCall())
	lam := &core.Lam{ResultSort: core.Set0, Params: z, Body: core.SucCall(&core.Ref{Binding: z})}
	w := core.NewInferenceVar("w", natPi(), false, l, x)
	require.True(t, eqs.Compare(core.EQ, core.NewInferenceRef(w, nil), lam, natPi(), l))

	require.True(t, eqs.Compare(core.EQ, ref, core.SucCall(&core.Ref{Binding: x}), core.NatCall(), l))
	require.Nil(t, ref.Variable())
}
