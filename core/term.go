package core

import (
	"math/big"
	"strings"

	"github.com/eaburns/dtt/loc"
)

// A Term is a fully elaborated term of the core calculus.
//
// The set of implementations is closed;
// every function that inspects terms switches over all of them.
// Terms are immutable, except for *InferenceRef,
// which is resolved in place, and let clauses,
// whose definitions are updated in place by substitution.
type Term interface {
	// String returns a human-readable representation
	// appropriate for diagnostics.
	String() string
	buildString(w *strings.Builder) *strings.Builder

	term()
}

// A Variable is anything an ExprSubst can map or FindBinding can find.
type Variable interface {
	Name() string
}

// A Binding is a Variable with a type,
// referenced by *Ref terms.
type Binding interface {
	Variable
	Type() Term
}

// Ref is a reference to a binding.
type Ref struct {
	Binding Binding
}

// App is the application of a function to a single argument.
type App struct {
	Fun Term
	Arg Term
}

// FunCall is a saturated call of a function definition.
type FunCall struct {
	Def     *FunctionDef
	SortArg Sort
	Args    []Term
}

// ConCall is a saturated constructor call.
// DataArgs instantiate the data type parameters,
// or the pattern bindings of a constructor with patterns.
type ConCall struct {
	Def      *Constructor
	SortArg  Sort
	DataArgs []Term
	Args     []Term
}

// DataCall is a saturated data type.
type DataCall struct {
	Def     *DataDef
	SortArg Sort
	Args    []Term
}

// FieldCall is the projection of a record field.
type FieldCall struct {
	Field   *ClassField
	SortArg Sort
	Arg     Term
}

// ClassCall is a record type with a partial map of field implementations.
// Implementations may refer to This, the record instance itself.
type ClassCall struct {
	Def       *ClassDef
	SortArg   Sort
	Impls     map[*ClassField]Term
	Sort      Sort
	Universes UniverseKind
	This      *TypedBinding
}

// Lam is a lambda abstraction.
type Lam struct {
	ResultSort Sort
	Params     *Link
	Body       Term
}

// Pi is a dependent function type.
type Pi struct {
	ResultSort Sort
	Params     *Link
	Codomain   Term
}

// Sigma is a dependent tuple type.
type Sigma struct {
	Sort   Sort
	Params *Link
}

// Tuple is a tuple of a Sigma type.
type Tuple struct {
	Fields []Term
	Type   *Sigma
}

// Proj is the projection of a tuple component, counting from 0.
type Proj struct {
	Expr  Term
	Field int
}

// Universe is the universe of types of a sort.
type Universe struct {
	Sort Sort
}

// New is a record value.
// Renew is the record it was copied from, or nil.
type New struct {
	Renew Term
	Type  *ClassCall
}

// Let is a let expression.
// Each clause is in scope of the following clauses and of Body.
type Let struct {
	Strict  bool
	Clauses []*LetClause
	Body    Term
}

// Case is a pattern match on Args.
// Params is the telescope of scrutinees, in scope of ResultType.
// ResultTypeLevel, if non-nil, is a proof
// that ResultType has a bounded homotopy level.
type Case struct {
	SCase           bool
	Params          *Link
	ResultType      Term
	ResultTypeLevel Term
	Body            *ElimBody
	Args            []Term
}

// OfType annotates a term with its type.
type OfType struct {
	Expr Term
	Type Term
}

// Integer is a natural number literal.
type Integer struct {
	Val big.Int
}

// Error is a placeholder for a term that failed to elaborate,
// or a goal left for the user.
// Expr is the partial term, if any.
type Error struct {
	Expr Term
	Goal bool
	L    loc.Loc
}

func (*Ref) term()          {}
func (*App) term()          {}
func (*FunCall) term()      {}
func (*ConCall) term()      {}
func (*DataCall) term()     {}
func (*FieldCall) term()    {}
func (*ClassCall) term()    {}
func (*Lam) term()          {}
func (*Pi) term()           {}
func (*Sigma) term()        {}
func (*Tuple) term()        {}
func (*Proj) term()         {}
func (*Universe) term()     {}
func (*New) term()          {}
func (*Let) term()          {}
func (*Case) term()         {}
func (*OfType) term()       {}
func (*Integer) term()      {}
func (*Error) term()        {}
func (*InferenceRef) term() {}
func (*Subst) term()        {}

// NewInteger returns the literal n.
func NewInteger(n int64) *Integer {
	var i Integer
	i.Val.SetInt64(n)
	return &i
}

// IsError returns whether e is a genuine error rather than a goal.
func (e *Error) IsError() bool { return !e.Goal }

// MakeApp returns fun applied to args.
// Applying no arguments is the identity,
// and lambda heads are beta-reduced.
func MakeApp(fun Term, args ...Term) Term {
	for _, arg := range args {
		if lam, ok := fun.(*Lam); ok {
			fun = applyLam(lam, arg)
			continue
		}
		fun = &App{Fun: fun, Arg: arg}
	}
	return fun
}

// applyLam substitutes arg for the first parameter of lam.
func applyLam(lam *Lam, arg Term) Term {
	exprs := NewExprSubst().Add(lam.Params, arg)
	if lam.Params.Next == nil {
		return SubstTerm(lam.Body, exprs, nil)
	}
	s := newSubstituter(exprs, nil)
	params := s.links(lam.Params.Next)
	return &Lam{ResultSort: lam.ResultSort, Params: params, Body: s.term(lam.Body)}
}

// MakeLam returns a lambda, or body if params is empty.
func MakeLam(resultSort Sort, params *Link, body Term) Term {
	if params == nil {
		return body
	}
	return &Lam{ResultSort: resultSort, Params: params, Body: body}
}

// MakePi returns a Pi type, or codomain if params is empty.
func MakePi(resultSort Sort, params *Link, codomain Term) Term {
	if params == nil {
		return codomain
	}
	return &Pi{ResultSort: resultSort, Params: params, Codomain: codomain}
}

// MakeProj returns the projection of a component;
// projections of tuples are reduced.
func MakeProj(expr Term, field int) Term {
	if tuple, ok := expr.(*Tuple); ok && field < len(tuple.Fields) {
		return tuple.Fields[field]
	}
	return &Proj{Expr: expr, Field: field}
}

// MakeFieldCall returns the projection of a field;
// projections of record values are reduced.
func MakeFieldCall(field *ClassField, sortArg Sort, arg Term) Term {
	if n, ok := arg.(*New); ok {
		if impl := n.Type.Implementation(field, n); impl != nil {
			return impl
		}
	}
	return &FieldCall{Field: field, SortArg: sortArg, Arg: arg}
}

// Apply returns the codomain of pi instantiated at args.
// If there are fewer args than parameters,
// the result is a Pi over the remaining parameters.
func Apply(pi *Pi, args ...Term) Term {
	exprs := NewExprSubst()
	link := pi.Params
	for _, arg := range args {
		if link == nil {
			panic("too many arguments")
		}
		exprs.Add(link, arg)
		link = link.Next
	}
	if link == nil {
		return SubstTerm(pi.Codomain, exprs, nil)
	}
	s := newSubstituter(exprs, nil)
	params := s.links(link)
	return &Pi{ResultSort: pi.ResultSort, Params: params, Codomain: s.term(pi.Codomain)}
}

// Underlying returns t with resolved inference references
// and deferred substitutions looked through.
func Underlying(t Term) Term {
	for {
		switch u := t.(type) {
		case *InferenceRef:
			if u.subst == nil {
				return u
			}
			t = u.subst
		case *Subst:
			s := u.SubstExpression()
			if s == t {
				return t
			}
			t = s
		default:
			return t
		}
	}
}

// PiParameters collects the parameters of nested Pi types
// and returns them with the innermost codomain in weak-head form.
func PiParameters(t Term) ([]*Link, Term) {
	var params []*Link
	for {
		t = WHNF(t)
		pi, ok := t.(*Pi)
		if !ok {
			return params, t
		}
		for link := pi.Params; link != nil; link = link.Next {
			params = append(params, link)
		}
		t = pi.Codomain
	}
}
