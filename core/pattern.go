package core

// A Pattern is one of *BindingPattern, *EmptyPattern, or *ConPattern.
type Pattern interface {
	String() string

	pattern()
}

// BindingPattern matches anything and binds it to Link.
// A nil Link is a wildcard that binds nothing.
type BindingPattern struct {
	Link *Link
}

// EmptyPattern is the absurd pattern,
// asserting that the type of the scrutinee is uninhabited.
type EmptyPattern struct{}

// ConPattern matches a constructor applied to sub-patterns.
// A nil Con is a tuple pattern, or a record pattern if Fields is non-nil;
// the sub-patterns of a record pattern match Fields in order.
type ConPattern struct {
	Con    *Constructor
	Fields []*ClassField
	Args   []Pattern
}

func (*BindingPattern) pattern() {}
func (*EmptyPattern) pattern()   {}
func (*ConPattern) pattern()     {}

// Bind returns a pattern binding a fresh link of the given type.
func Bind(name string, typ Term) *BindingPattern {
	return &BindingPattern{Link: NewLink(name, typ)}
}

// Con returns a constructor pattern.
func Con(c *Constructor, args ...Pattern) *ConPattern {
	return &ConPattern{Con: c, Args: args}
}

// PatternBindings returns the links bound by patterns, in order.
func PatternBindings(patterns []Pattern) []*Link {
	var links []*Link
	var walk func([]Pattern)
	walk = func(ps []Pattern) {
		for _, p := range ps {
			switch p := p.(type) {
			case *BindingPattern:
				if p.Link != nil {
					links = append(links, p.Link)
				}
			case *ConPattern:
				walk(p.Args)
			}
		}
	}
	walk(patterns)
	return links
}

// HasEmpty returns whether an absurd pattern occurs in patterns.
func HasEmpty(patterns []Pattern) bool {
	for _, p := range patterns {
		switch p := p.(type) {
		case *EmptyPattern:
			return true
		case *ConPattern:
			if HasEmpty(p.Args) {
				return true
			}
		}
	}
	return false
}

// ElimClause is one clause of a pattern match.
type ElimClause struct {
	// Params is the telescope of the pattern bindings.
	Params   *Link
	Patterns []Pattern
	// Body is nil for a clause with an absurd pattern.
	Body Term
}

// NewElimClause returns a clause,
// chaining the bindings of the patterns into its telescope.
func NewElimClause(patterns []Pattern, body Term) *ElimClause {
	return &ElimClause{
		Params:   Chain(PatternBindings(patterns)...),
		Patterns: patterns,
		Body:     body,
	}
}

// ElimBody is a pattern match given by its clauses
// and, optionally, the decision tree compiled from them.
type ElimBody struct {
	Clauses []*ElimClause
	Tree    ElimTree
}

// An ElimTree is a *LeafTree or a *BranchTree.
//
// Evaluation keeps a stack of arguments.
// Each node first binds its Params to the arguments on top of the stack.
// A branch then pops one more argument, selects the child by its head,
// and pushes the head's arguments.
type ElimTree interface {
	elimTree()
}

// LeafTree is a leaf of an elim tree.
type LeafTree struct {
	Params *Link
	Body   Term
}

// BranchTree is a decision on the head of an argument.
type BranchTree struct {
	Params   *Link
	Children []*BranchChild
}

// BranchChild is the subtree for one head.
type BranchChild struct {
	Key  BranchKey
	Tree ElimTree
}

// A BranchKey is a *Constructor, a TupleKey, or a *ClassKey.
type BranchKey interface {
	branchKey()
}

// TupleKey selects tuples with Len components.
type TupleKey struct {
	Len int
}

// ClassKey selects instances of Class;
// the fields in Implemented are not pushed to the stack.
type ClassKey struct {
	Class       *ClassDef
	Sort        Sort
	Implemented []*ClassField
}

func (*LeafTree) elimTree()   {}
func (*BranchTree) elimTree() {}

func (*Constructor) branchKey() {}
func (TupleKey) branchKey()     {}
func (*ClassKey) branchKey()    {}

// IntervalElim is a function body that first matches
// interval endpoints and otherwise falls back to Otherwise.
type IntervalElim struct {
	Params    *Link
	Cases     []IntervalCase
	Otherwise *ElimBody
}

// IntervalCase gives the values at the left and right endpoints
// of one interval parameter; either may be nil.
type IntervalCase struct {
	Left, Right Term
}
