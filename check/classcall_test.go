package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaburns/dtt/compare"
	"github.com/eaburns/dtt/core"
)

// catch runs f and returns the *Error it panics with, if any.
func catch(f func()) (err *Error) {
	defer func() {
		if r := recover(); r != nil {
			err = r.(*Error)
		}
	}()
	f()
	return nil
}

func TestClassCallSort(t *testing.T) {
	class := core.NewClassDef("C", core.Prop)
	f := class.AddField("f", nat(), false)
	cc := core.NewClassCall(class, core.Set0, core.Prop, core.NoUniverses)

	err := checkErr(t, nil, cc, nil)
	assert.Equal(t, SortMismatch, err.Cause)
	assert.Same(t, f, err.Field)
	assert.Equal(t, `\Prop`, err.Expected)

	// Implemented fields do not count.
	cc = core.NewClassCall(class, core.Set0, core.Prop, core.NoUniverses).Implement(f, core.ZeroCall())
	typ, err2 := Check(nil, compare.New(), cc, nil)
	require.NoError(t, err2)
	assert.Equal(t, `\Prop`, typ.String())

	// Nor do propositions.
	props := core.NewClassDef("P", core.Prop)
	props.AddField("e", &core.DataCall{Def: core.Empty, SortArg: core.Set0}, true)
	_, err2 = Check(nil, compare.New(), core.NewClassCall(props, core.Set0, core.Prop, core.NoUniverses), nil)
	require.NoError(t, err2)

	// A bigger sort is fine.
	big := core.NewClassCall(class, core.Set0, core.SetSort(2), core.NoUniverses)
	typ, err2 = Check(nil, compare.New(), big, nil)
	require.NoError(t, err2)
	assert.Equal(t, `\Set2`, typ.String())
}

func TestClassCallUseLevel(t *testing.T) {
	class := core.NewClassDef("C", core.Prop)
	class.AddField("f", nat(), false)
	g := class.AddField("g", nat(), false)
	class.UseLevels = []*core.UseLevel{{Fields: []*core.ClassField{g}, Level: core.PropHLevel}}

	withG := core.NewClassCall(class, core.Set0, core.Prop, core.NoUniverses).Implement(g, core.ZeroCall())
	_, err := Check(nil, compare.New(), withG, nil)
	require.NoError(t, err, "a proposition once g is implemented")

	without := core.NewClassCall(class, core.Set0, core.Prop, core.NoUniverses)
	assert.Equal(t, SortMismatch, checkErr(t, nil, without, nil).Cause)

	sets := core.NewClassDef("S", core.Prop)
	sets.AddField("f", nat(), false)
	sets.UseLevels = []*core.UseLevel{{Level: 0}}
	_, err = Check(nil, compare.New(), core.NewClassCall(sets, core.Set0, core.Prop, core.NoUniverses), nil)
	require.NoError(t, err, "Nat is a set")
}

func TestClassCallUniverses(t *testing.T) {
	class := core.NewClassDef("C", core.Set0)
	f := class.AddField("f", nat(), false)
	f.Universes = core.WithUniverses
	class.Universes = core.WithUniverses

	err := checkErr(t, nil, core.NewClassCall(class, core.Set0, core.Set0, core.NoUniverses), nil)
	assert.Equal(t, UniverseKind, err.Cause)
	assert.Same(t, f, err.Field)

	_, err2 := Check(nil, compare.New(), core.NewClassCall(class, core.Set0, core.Set0, core.WithUniverses), nil)
	require.NoError(t, err2)
	_, err2 = Check(nil, compare.New(), core.NewClassCall(class, core.Set0, core.Set0, core.NoUniverses).Implement(f, core.ZeroCall()), nil)
	require.NoError(t, err2)
}

func TestClassCallImplementations(t *testing.T) {
	class := core.NewClassDef("C", core.Set0)
	f := class.AddField("f", nat(), false)
	other := core.NewClassDef("D", core.Set0)
	g := other.AddField("g", nat(), false)

	err := checkErr(t, nil, core.NewClassCall(class, core.Set0, core.Set0, core.NoUniverses).Implement(f, set0()), nil)
	assert.Equal(t, TypeMismatch, err.Cause)

	err = checkErr(t, nil, core.NewClassCall(class, core.Set0, core.Set0, core.NoUniverses).Implement(g, core.ZeroCall()), nil)
	assert.Equal(t, TypeMismatch, err.Cause)
}

// levelType returns \Pi (a0 a1 : Nat) ... -> a = a'
// with n pairs of parameters.
func levelType(n int) core.Term {
	a0, a1 := core.NewUntypedLink("a0"), core.NewLink("a1", nat())
	var typ core.Term = nat()
	var links []*core.Link
	prev0, prev1 := a0, a1
	links = append(links, a0, a1)
	for i := 1; i < n; i++ {
		b0 := core.NewUntypedLink("b0")
		b1 := core.NewLink("b1", core.PathCall(core.Set0, typ, &core.Ref{Binding: prev0}, &core.Ref{Binding: prev1}))
		typ = core.PathCall(core.Set0, typ, &core.Ref{Binding: prev0}, &core.Ref{Binding: prev1})
		links = append(links, b0, b1)
		prev0, prev1 = b0, b1
	}
	codomain := core.PathCall(core.Set0, typ, &core.Ref{Binding: prev0}, &core.Ref{Binding: prev1})
	return &core.Pi{ResultSort: core.Set0, Params: core.Chain(links...), Codomain: codomain}
}

func TestLevelProof(t *testing.T) {
	tests := []struct {
		name string
		typ  core.Term
		want int
	}{
		{name: "proposition", typ: levelType(1), want: -1},
		{name: "set", typ: levelType(2), want: 0},
		{name: "groupoid", typ: levelType(3), want: 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := core.NewLink("p", test.typ)
			c := New(NewContext(p), compare.New())
			var got int
			err := catch(func() { got = c.levelProof(&core.Ref{Binding: p}, nat()) })
			require.Nil(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestMalformedLevelProof(t *testing.T) {
	odd := core.NewLink("a", nat())
	notPath := core.Chain(core.NewUntypedLink("a0"), core.NewLink("a1", nat()))
	wrongType := core.Chain(core.NewUntypedLink("a0"), core.NewLink("a1", set0()))
	tests := []struct {
		name string
		typ  core.Term
	}{
		{name: "odd", typ: &core.Pi{ResultSort: core.Set0, Params: odd, Codomain: core.PathCall(core.Set0, nat(), &core.Ref{Binding: odd}, &core.Ref{Binding: odd})}},
		{name: "not a path", typ: &core.Pi{ResultSort: core.Set0, Params: notPath, Codomain: nat()}},
		{name: "no parameters", typ: core.PathCall(core.Set0, nat(), core.ZeroCall(), core.ZeroCall())},
		{
			name: "wrong type",
			typ: &core.Pi{ResultSort: core.Set0, Params: wrongType, Codomain: core.PathCall(core.Set0, set0(),
				&core.Ref{Binding: wrongType}, &core.Ref{Binding: wrongType.Next})},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := core.NewLink("p", test.typ)
			c := New(NewContext(p), compare.New())
			err := catch(func() { c.levelProof(&core.Ref{Binding: p}, nat()) })
			require.NotNil(t, err)
			assert.Equal(t, MalformedLevelProof, err.Cause)
		})
	}
}

func TestCaseLevelProof(t *testing.T) {
	p := core.NewLink("p", levelType(2))
	c := natCase(core.ZeroCall(), zeroClause(), sucClause())
	c.ResultTypeLevel = &core.Ref{Binding: p}
	_, err := Check(NewContext(p), compare.New(), c, nil)
	require.NoError(t, err)

	q := core.NewLink("q", nat())
	c.ResultTypeLevel = &core.Ref{Binding: q}
	assert.Equal(t, MalformedLevelProof, checkErr(t, NewContext(q), c, nil).Cause)
}
