package core

import (
	"strconv"
	"strings"
)

func (r *Ref) String() string          { return r.buildString(new(strings.Builder)).String() }
func (a *App) String() string          { return a.buildString(new(strings.Builder)).String() }
func (f *FunCall) String() string      { return f.buildString(new(strings.Builder)).String() }
func (c *ConCall) String() string      { return c.buildString(new(strings.Builder)).String() }
func (d *DataCall) String() string     { return d.buildString(new(strings.Builder)).String() }
func (f *FieldCall) String() string    { return f.buildString(new(strings.Builder)).String() }
func (c *ClassCall) String() string    { return c.buildString(new(strings.Builder)).String() }
func (l *Lam) String() string          { return l.buildString(new(strings.Builder)).String() }
func (p *Pi) String() string           { return p.buildString(new(strings.Builder)).String() }
func (s *Sigma) String() string        { return s.buildString(new(strings.Builder)).String() }
func (t *Tuple) String() string        { return t.buildString(new(strings.Builder)).String() }
func (p *Proj) String() string         { return p.buildString(new(strings.Builder)).String() }
func (u *Universe) String() string     { return u.buildString(new(strings.Builder)).String() }
func (n *New) String() string          { return n.buildString(new(strings.Builder)).String() }
func (l *Let) String() string          { return l.buildString(new(strings.Builder)).String() }
func (c *Case) String() string         { return c.buildString(new(strings.Builder)).String() }
func (o *OfType) String() string       { return o.buildString(new(strings.Builder)).String() }
func (i *Integer) String() string      { return i.Val.String() }
func (e *Error) String() string        { return e.buildString(new(strings.Builder)).String() }
func (r *InferenceRef) String() string { return r.buildString(new(strings.Builder)).String() }
func (s *Subst) String() string        { return s.buildString(new(strings.Builder)).String() }

func (r *Ref) buildString(w *strings.Builder) *strings.Builder {
	w.WriteString(r.Binding.Name())
	return w
}

func (a *App) buildString(w *strings.Builder) *strings.Builder {
	if _, ok := a.Fun.(*App); ok {
		a.Fun.buildString(w)
	} else {
		buildArg(w, a.Fun)
	}
	w.WriteRune(' ')
	buildArg(w, a.Arg)
	return w
}

func (f *FunCall) buildString(w *strings.Builder) *strings.Builder {
	if f.Def == PathInfix && len(f.Args) == 3 {
		buildArg(w, f.Args[1])
		w.WriteString(" = ")
		buildArg(w, f.Args[2])
		return w
	}
	return buildCall(w, f.Def.Name(), f.Args)
}

func (c *ConCall) buildString(w *strings.Builder) *strings.Builder {
	return buildCall(w, c.Def.Name(), c.Args)
}

func (d *DataCall) buildString(w *strings.Builder) *strings.Builder {
	return buildCall(w, d.Def.Name(), d.Args)
}

func buildCall(w *strings.Builder, name string, args []Term) *strings.Builder {
	w.WriteString(name)
	for _, arg := range args {
		w.WriteRune(' ')
		buildArg(w, arg)
	}
	return w
}

func (f *FieldCall) buildString(w *strings.Builder) *strings.Builder {
	buildArg(w, f.Arg)
	w.WriteRune('.')
	w.WriteString(f.Field.Name())
	return w
}

func (c *ClassCall) buildString(w *strings.Builder) *strings.Builder {
	w.WriteString(c.Def.Name())
	return buildImpls(w, c)
}

func buildImpls(w *strings.Builder, c *ClassCall) *strings.Builder {
	fields := c.Implemented()
	if len(fields) == 0 {
		return w
	}
	w.WriteString(" {")
	for _, f := range fields {
		w.WriteString(" | ")
		w.WriteString(f.Name())
		w.WriteString(" => ")
		c.Impls[f].buildString(w)
	}
	w.WriteString(" }")
	return w
}

func (l *Lam) buildString(w *strings.Builder) *strings.Builder {
	w.WriteString(`\lam `)
	buildLinks(w, l.Params)
	w.WriteString(" => ")
	l.Body.buildString(w)
	return w
}

func (p *Pi) buildString(w *strings.Builder) *strings.Builder {
	w.WriteString(`\Pi `)
	buildLinks(w, p.Params)
	w.WriteString(" -> ")
	p.Codomain.buildString(w)
	return w
}

func (s *Sigma) buildString(w *strings.Builder) *strings.Builder {
	w.WriteString(`\Sigma`)
	if s.Params != nil {
		w.WriteRune(' ')
		buildLinks(w, s.Params)
	}
	return w
}

// buildLinks writes a telescope,
// grouping untyped links with the typed link they share a type with.
func buildLinks(w *strings.Builder, l *Link) {
	first := true
	for l != nil {
		if !first {
			w.WriteRune(' ')
		}
		first = false
		open, close := '(', ')'
		if !l.Explicit {
			open, close = '{', '}'
		}
		w.WriteRune(open)
		for ; ; l = l.Next {
			w.WriteString(l.name)
			if l.typ != nil {
				break
			}
			w.WriteRune(' ')
		}
		w.WriteString(" : ")
		l.typ.buildString(w)
		w.WriteRune(close)
		l = l.Next
	}
}

func (t *Tuple) buildString(w *strings.Builder) *strings.Builder {
	w.WriteRune('(')
	for i, f := range t.Fields {
		if i > 0 {
			w.WriteString(", ")
		}
		f.buildString(w)
	}
	w.WriteRune(')')
	return w
}

func (p *Proj) buildString(w *strings.Builder) *strings.Builder {
	buildArg(w, p.Expr)
	w.WriteRune('.')
	w.WriteString(strconv.Itoa(p.Field + 1))
	return w
}

func (u *Universe) buildString(w *strings.Builder) *strings.Builder {
	w.WriteString(u.Sort.String())
	return w
}

func (n *New) buildString(w *strings.Builder) *strings.Builder {
	w.WriteString(`\new `)
	if n.Renew != nil {
		buildArg(w, n.Renew)
		w.WriteRune(' ')
	}
	return n.Type.buildString(w)
}

func (l *Let) buildString(w *strings.Builder) *strings.Builder {
	if l.Strict {
		w.WriteString(`\let! `)
	} else {
		w.WriteString(`\let `)
	}
	for i, c := range l.Clauses {
		if i > 0 {
			w.WriteString(" | ")
		}
		w.WriteString(c.name)
		w.WriteString(" => ")
		c.Expr.buildString(w)
	}
	w.WriteString(` \in `)
	l.Body.buildString(w)
	return w
}

func (c *Case) buildString(w *strings.Builder) *strings.Builder {
	if c.SCase {
		w.WriteString(`\scase `)
	} else {
		w.WriteString(`\case `)
	}
	for i, l := 0, c.Params; i < len(c.Args); i++ {
		if i > 0 {
			w.WriteString(", ")
		}
		c.Args[i].buildString(w)
		if l != nil {
			w.WriteString(` \as `)
			w.WriteString(l.name)
			l = l.Next
		}
	}
	w.WriteString(` \return `)
	c.ResultType.buildString(w)
	w.WriteString(` \with {`)
	if c.Body != nil {
		for _, cl := range c.Body.Clauses {
			w.WriteString(" | ")
			for i, p := range cl.Patterns {
				if i > 0 {
					w.WriteString(", ")
				}
				w.WriteString(p.String())
			}
			if cl.Body != nil {
				w.WriteString(" => ")
				cl.Body.buildString(w)
			}
		}
	}
	w.WriteString(" }")
	return w
}

func (o *OfType) buildString(w *strings.Builder) *strings.Builder {
	w.WriteRune('(')
	o.Expr.buildString(w)
	w.WriteString(" : ")
	o.Type.buildString(w)
	w.WriteRune(')')
	return w
}

func (i *Integer) buildString(w *strings.Builder) *strings.Builder {
	w.WriteString(i.Val.String())
	return w
}

func (e *Error) buildString(w *strings.Builder) *strings.Builder {
	switch {
	case e.Goal:
		w.WriteString("{?}")
	case e.Expr != nil:
		w.WriteString("{error: ")
		e.Expr.buildString(w)
		w.WriteRune('}')
	default:
		w.WriteString("{error}")
	}
	return w
}

func (r *InferenceRef) buildString(w *strings.Builder) *strings.Builder {
	if r.subst != nil {
		return r.subst.buildString(w)
	}
	w.WriteString(r.v.Name())
	return w
}

func (s *Subst) buildString(w *strings.Builder) *strings.Builder {
	if e := s.SubstExpression(); e != s.Expr {
		return e.buildString(w)
	}
	s.Expr.buildString(w)
	w.WriteRune('[')
	for i, k := range s.Exprs.Keys() {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(k.Name())
		w.WriteString(" := ")
		s.Exprs[k].buildString(w)
	}
	w.WriteRune(']')
	return w
}

// buildArg writes t in argument position, parenthesized unless atomic.
func buildArg(w *strings.Builder, t Term) {
	if isAtomic(t) {
		t.buildString(w)
		return
	}
	w.WriteRune('(')
	t.buildString(w)
	w.WriteRune(')')
}

func isAtomic(t Term) bool {
	switch t := t.(type) {
	case *Ref, *Tuple, *Universe, *Integer, *Error, *OfType, *Proj, *FieldCall:
		return true
	case *Sigma:
		return t.Params == nil
	case *FunCall:
		return len(t.Args) == 0
	case *ConCall:
		return len(t.Args) == 0
	case *DataCall:
		return len(t.Args) == 0
	case *ClassCall:
		return len(t.Impls) == 0
	case *InferenceRef:
		return t.subst == nil || isAtomic(t.subst)
	case *Subst:
		return isAtomic(t.SubstExpression())
	default:
		return false
	}
}

func (p *BindingPattern) String() string {
	if p.Link == nil {
		return "_"
	}
	return p.Link.name
}

func (*EmptyPattern) String() string { return "()" }

func (p *ConPattern) String() string {
	var w strings.Builder
	if p.Con == nil {
		w.WriteRune('(')
		for i, a := range p.Args {
			if i > 0 {
				w.WriteString(", ")
			}
			w.WriteString(a.String())
		}
		w.WriteRune(')')
		return w.String()
	}
	w.WriteString(p.Con.Name())
	for _, a := range p.Args {
		w.WriteRune(' ')
		if c, ok := a.(*ConPattern); ok && c.Con != nil && len(c.Args) > 0 {
			w.WriteString("(" + a.String() + ")")
		} else {
			w.WriteString(a.String())
		}
	}
	return w.String()
}
