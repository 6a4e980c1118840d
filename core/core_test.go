package core

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"github.com/eaburns/dtt/loc"
)

// plus is an axiom, plus : Nat -> Nat -> Nat.
var plus = NewFunctionDef("plus", Chain(NewUntypedLink("a"), NewLink("b", NatCall())), NatCall(), nil)

func plusCall(a, b Term) *FunCall {
	return &FunCall{Def: plus, SortArg: Set0, Args: []Term{a, b}}
}

// newPred returns pred : Nat -> Nat by pattern matching,
// with or without an elim tree.
func newPred(withTree bool) *FunctionDef {
	n := Bind("n", NatCall())
	body := &ElimBody{
		Clauses: []*ElimClause{
			NewElimClause([]Pattern{Con(Zero)}, ZeroCall()),
			NewElimClause([]Pattern{Con(Suc, n)}, &Ref{Binding: n.Link}),
		},
	}
	param := NewLink("m", NatCall())
	if withTree {
		treeN := NewLink("n", NatCall())
		body.Tree = &BranchTree{
			Children: []*BranchChild{
				{Key: Zero, Tree: &LeafTree{Body: ZeroCall()}},
				{Key: Suc, Tree: &LeafTree{Params: treeN, Body: &Ref{Binding: treeN}}},
			},
		}
	}
	return NewFunctionDef("pred", param, NatCall(), body)
}

type vecDef struct {
	*DataDef
	nilCon, consCon *Constructor
}

// newVec returns Vec (A : \Set0) (n : Nat)
// with nil at n = zero and cons at n = suc n'.
func newVec() vecDef {
	u := &Universe{Sort: Set0}
	vec := NewDataDef("Vec", Chain(NewLink("A", u), NewLink("n", NatCall())), Set0)
	nilA := Bind("A", u)
	nilCon := vec.AddConstructor("nil", []Pattern{nilA, Con(Zero)}, nil)
	consA, consN := Bind("A", u), Bind("n", NatCall())
	a := &Ref{Binding: consA.Link}
	consCon := vec.AddConstructor("cons", []Pattern{consA, Con(Suc, consN)}, Chain(
		NewLink("x", a),
		NewLink("xs", &DataCall{Def: vec, SortArg: Set0, Args: []Term{a, &Ref{Binding: consN.Link}}}),
	))
	return vecDef{DataDef: vec, nilCon: nilCon, consCon: consCon}
}

// recorder is an Equations that records the equations posted to it.
type recorder struct {
	eqs  []string
	vars [][2]*InferenceVar
}

func (r *recorder) Compare(CMP, Term, Term, Term, loc.Loc) bool { return false }

func (r *recorder) AddEquation(a, b, _ Term, cmp CMP, _ loc.Loc, lhs, rhs *InferenceVar) bool {
	r.eqs = append(r.eqs, fmt.Sprintf("%s %s %s", a, cmp, b))
	r.vars = append(r.vars, [2]*InferenceVar{lhs, rhs})
	return true
}

func (r *recorder) CompareLevels(CMP, Level, Level, loc.Loc) bool { return false }

func (r *recorder) MatchedConstructors(dc *DataCall) ([]*ConCall, bool) {
	return dc.MatchedConstructors()
}

func (r *recorder) SupportsExpressions() bool { return true }

func checkString(t *testing.T, want string, got Term) {
	t.Helper()
	if diff := cmp.Diff(want, got.String()); diff != "" {
		t.Errorf("got %s, want %s\n%s\n%s", got, want, diff, spew.Sdump(got))
	}
}
