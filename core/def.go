package core

import "fmt"

// UniverseKind says how a definition may depend on its universe levels.
// The kinds are ordered: NoUniverses < OnlyCovariant < WithUniverses.
type UniverseKind int

const (
	NoUniverses UniverseKind = iota
	OnlyCovariant
	WithUniverses
)

func (k UniverseKind) String() string {
	switch k {
	case NoUniverses:
		return "no universes"
	case OnlyCovariant:
		return "covariant universes"
	case WithUniverses:
		return "universes"
	default:
		return fmt.Sprintf("UniverseKind(%d)", int(k))
	}
}

// A Body is the body of a function definition:
// an *ExprBody, an *ElimBody, or an *IntervalElim.
type Body interface {
	body()
}

// ExprBody is a function body that is a single term.
type ExprBody struct {
	Expr Term
}

func (*ExprBody) body()     {}
func (*ElimBody) body()     {}
func (*IntervalElim) body() {}

// FunctionDef is a function definition.
// Definitions are polymorphic in the standard level variables LP and LH;
// calls instantiate them with their sort argument.
type FunctionDef struct {
	name       string
	Params     *Link
	ResultType Term
	// Body is nil for axioms and built-ins.
	Body Body
}

func NewFunctionDef(name string, params *Link, resultType Term, body Body) *FunctionDef {
	return &FunctionDef{name: name, Params: params, ResultType: resultType, Body: body}
}

func (d *FunctionDef) Name() string { return d.name }

// DataDef is an inductive data type definition.
type DataDef struct {
	name         string
	Params       *Link
	Sort         Sort
	Constructors []*Constructor
}

func NewDataDef(name string, params *Link, sort Sort) *DataDef {
	return &DataDef{name: name, Params: params, Sort: sort}
}

func (d *DataDef) Name() string { return d.name }

// AddConstructor adds a constructor to the data type.
//
// If patterns is non-nil, it must have one pattern per data type parameter;
// the constructor then belongs only to the instances matching the patterns,
// and its parameter types refer to the pattern bindings
// instead of the data type parameters.
func (d *DataDef) AddConstructor(name string, patterns []Pattern, params *Link) *Constructor {
	c := &Constructor{name: name, Data: d, Patterns: patterns, Params: params}
	d.Constructors = append(d.Constructors, c)
	return c
}

// Constructor returns the named constructor or nil.
func (d *DataDef) Constructor(name string) *Constructor {
	for _, c := range d.Constructors {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Constructor is a data type constructor.
type Constructor struct {
	name     string
	Data     *DataDef
	Patterns []Pattern
	Params   *Link
}

func (c *Constructor) Name() string { return c.name }

// DataTypeParams returns the bindings instantiated
// by the data type arguments of a call of the constructor.
func (c *Constructor) DataTypeParams() []*Link {
	if c.Patterns == nil {
		return c.Data.Params.Slice()
	}
	return PatternBindings(c.Patterns)
}

// ClassDef is a record definition.
type ClassDef struct {
	name string
	// Fields is in declaration order;
	// the type of a field may refer to the fields before it through This.
	Fields []*ClassField
	Sort   Sort
	// This is the instance referred to by field types.
	This      *Link
	UseLevels []*UseLevel
	Universes UniverseKind
}

// NewClassDef returns a new class with no fields.
func NewClassDef(name string, sort Sort) *ClassDef {
	d := &ClassDef{name: name, Sort: sort}
	d.This = NewLink("this", NewClassCall(d, StdSort, sort, NoUniverses))
	return d
}

func (d *ClassDef) Name() string { return d.name }

// AddField adds a field of type typ, which may refer to d.This.
func (d *ClassDef) AddField(name string, typ Term, property bool) *ClassField {
	f := &ClassField{
		name:     name,
		Class:    d,
		Type:     &Pi{ResultSort: Omega, Params: d.This, Codomain: typ},
		Property: property,
	}
	d.Fields = append(d.Fields, f)
	return f
}

// Field returns the named field or nil.
func (d *ClassDef) Field(name string) *ClassField {
	for _, f := range d.Fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// UseLevel returns the h-level the class is truncated to
// when at least the given fields are implemented.
// The second result is false if no use-level applies.
func (d *ClassDef) UseLevel(impls map[*ClassField]Term) (int, bool) {
next:
	for _, u := range d.UseLevels {
		for _, f := range u.Fields {
			if _, ok := impls[f]; !ok {
				continue next
			}
		}
		return u.Level, true
	}
	return 0, false
}

// A UseLevel declares that a class is an n-type
// once the listed fields are implemented.
// Level -1 means the class is a proposition.
type UseLevel struct {
	Fields []*ClassField
	Level  int
}

// ClassField is a field of a class.
type ClassField struct {
	name  string
	Class *ClassDef
	// Type is a Pi over the instance of the class.
	Type      *Pi
	Property  bool
	Universes UniverseKind
}

func (f *ClassField) Name() string { return f.name }

// TypeAt returns the type of the field
// at the given sort argument and instance.
func (f *ClassField) TypeAt(sortArg Sort, arg Term) Term {
	exprs := NewExprSubst().Add(f.Type.Params, arg)
	return SubstTerm(f.Type.Codomain, exprs, sortArg.ToLevelSubst())
}
