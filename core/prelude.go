package core

// The built-in definitions.
var (
	// Nat is the natural numbers; Integer literals are Nats.
	Nat  = NewDataDef("Nat", nil, Set0)
	Zero = Nat.AddConstructor("zero", nil, nil)
	Suc  = Nat.AddConstructor("suc", nil, NewLink("n", NatCall()))

	// PathInfix is the equality type a = a' of two elements of A.
	PathInfix = newPathInfix()

	// Empty is the empty proposition.
	Empty = NewDataDef("Empty", nil, Prop)
)

func newPathInfix() *FunctionDef {
	a := NewLink("A", &Universe{Sort: StdSort})
	params := Chain(a, NewUntypedLink("a"), NewLink("a'", &Ref{Binding: a}))
	result := &Universe{Sort: Sort{P: VarLevel(LP), H: VarLevel(LH).Add(-1)}}
	return NewFunctionDef("=", params, result, nil)
}

// NatCall returns the type Nat.
func NatCall() *DataCall { return &DataCall{Def: Nat, SortArg: Set0} }

// ZeroCall returns zero.
func ZeroCall() *ConCall { return &ConCall{Def: Zero, SortArg: Set0} }

// SucCall returns suc n.
func SucCall(n Term) *ConCall { return &ConCall{Def: Suc, SortArg: Set0, Args: []Term{n}} }

// PathCall returns a = b at type typ, with the given sort argument.
func PathCall(sortArg Sort, typ, a, b Term) *FunCall {
	return &FunCall{Def: PathInfix, SortArg: sortArg, Args: []Term{typ, a, b}}
}

// AsPath returns the arguments of an equality type,
// or false if t is not one.
func AsPath(t Term) (typ, a, b Term, ok bool) {
	fc, ok := t.(*FunCall)
	if !ok || fc.Def != PathInfix || len(fc.Args) != 3 {
		return nil, nil, nil, false
	}
	return fc.Args[0], fc.Args[1], fc.Args[2], true
}
