package core

// A Link is one parameter of a telescope.
//
// A nil *Link is the empty telescope.
// An untyped link shares the type of the next typed link,
// so (x y : A) is an untyped x followed by a typed y.
// The type of a link may refer to the links before it, never after.
type Link struct {
	name     string
	typ      Term
	Next     *Link
	Explicit bool
}

// NewLink returns a new, explicit, typed link.
func NewLink(name string, typ Term) *Link {
	return &Link{name: name, typ: typ, Explicit: true}
}

// NewUntypedLink returns a new, explicit link
// that takes the type of the next typed link in its chain.
func NewUntypedLink(name string) *Link {
	return &Link{name: name, Explicit: true}
}

// Chain links the given links in order and returns the first;
// Chain of nothing is the empty telescope.
func Chain(links ...*Link) *Link {
	for i := 0; i < len(links)-1; i++ {
		links[i].Next = links[i+1]
	}
	if len(links) == 0 {
		return nil
	}
	links[len(links)-1].Next = nil
	return links[0]
}

func (l *Link) Name() string { return l.name }

// IsTyped returns whether the link carries its own type.
func (l *Link) IsTyped() bool { return l.typ != nil }

// Type returns the type of the link.
func (l *Link) Type() Term {
	if t := l.NextTyped(); t != nil {
		return t.typ
	}
	panic("impossible: untyped link at the end of a telescope: " + l.name)
}

// NextTyped returns the first typed link at or after l.
func (l *Link) NextTyped() *Link {
	for ; l != nil; l = l.Next {
		if l.typ != nil {
			return l
		}
	}
	return nil
}

// Len returns the number of links in the telescope.
func (l *Link) Len() int {
	var n int
	for ; l != nil; l = l.Next {
		n++
	}
	return n
}

// Slice returns the links of the telescope in order.
func (l *Link) Slice() []*Link {
	var links []*Link
	for ; l != nil; l = l.Next {
		links = append(links, l)
	}
	return links
}

// Skip returns the telescope after the first n links.
func (l *Link) Skip(n int) *Link {
	for ; n > 0 && l != nil; n-- {
		l = l.Next
	}
	return l
}

// TypedBinding is a binding that is not a telescope parameter,
// such as the instance bound by a class call.
type TypedBinding struct {
	name string
	typ  Term
}

func NewTypedBinding(name string, typ Term) *TypedBinding {
	return &TypedBinding{name: name, typ: typ}
}

func (b *TypedBinding) Name() string { return b.name }
func (b *TypedBinding) Type() Term   { return b.typ }

// LetClause is a let binding.
// A reference to a clause evaluates to its Expr.
type LetClause struct {
	name string
	Expr Term
	typ  Term
}

// NewLetClause returns a new let clause.
// If typ is nil, the type is left to be inferred.
func NewLetClause(name string, expr, typ Term) *LetClause {
	return &LetClause{name: name, Expr: expr, typ: typ}
}

func (c *LetClause) Name() string { return c.name }

// Type returns the declared type of the clause, or nil.
func (c *LetClause) Type() Term { return c.typ }

// SetType sets the type of a clause declared without one.
func (c *LetClause) SetType(t Term) { c.typ = t }
