package core

// NewClassCall returns a class call with no implemented fields
// and a fresh instance binding.
func NewClassCall(def *ClassDef, sortArg, sort Sort, universes UniverseKind) *ClassCall {
	cc := &ClassCall{
		Def:       def,
		SortArg:   sortArg,
		Impls:     make(map[*ClassField]Term),
		Sort:      sort,
		Universes: universes,
	}
	cc.This = NewTypedBinding("this", cc)
	return cc
}

// Implement sets the implementation of a field and returns cc.
// The implementation may refer to cc.This.
func (cc *ClassCall) Implement(field *ClassField, impl Term) *ClassCall {
	cc.Impls[field] = impl
	return cc
}

// IsImplemented returns whether the field is implemented.
func (cc *ClassCall) IsImplemented(field *ClassField) bool {
	_, ok := cc.Impls[field]
	return ok
}

// Implementation returns the implementation of field
// with the instance replaced by this, or nil.
func (cc *ClassCall) Implementation(field *ClassField, this Term) Term {
	impl, ok := cc.Impls[field]
	if !ok {
		return nil
	}
	if this == nil {
		return impl
	}
	return SubstTerm(impl, NewExprSubst().Add(cc.This, this), nil)
}

// Implemented returns the implemented fields in declaration order.
func (cc *ClassCall) Implemented() []*ClassField {
	var fields []*ClassField
	for _, f := range cc.Def.Fields {
		if cc.IsImplemented(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// NotImplemented returns the fields without an implementation
// in declaration order.
func (cc *ClassCall) NotImplemented() []*ClassField {
	var fields []*ClassField
	for _, f := range cc.Def.Fields {
		if !cc.IsImplemented(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// FieldType returns the type of field on the instance this.
func (cc *ClassCall) FieldType(field *ClassField, this Term) Term {
	return field.TypeAt(cc.SortArg, this)
}

// FieldParams returns a fresh telescope
// with one link for each field that is not implemented.
// The type of each link refers to the earlier links
// in place of the projections of the instance.
func (cc *ClassCall) FieldParams() *Link {
	exprs := NewExprSubst()
	for f, impl := range cc.Impls {
		exprs.Add(f, cc.overThis(impl))
	}
	var links []*Link
	for _, f := range cc.NotImplemented() {
		typ := SubstTerm(cc.FieldType(f, &Ref{Binding: cc.This}), exprs, nil)
		link := NewLink(f.Name(), typ)
		links = append(links, link)
		exprs.Add(f, cc.overThis(&Ref{Binding: link}))
	}
	return Chain(links...)
}

// overThis returns the function from an instance of cc to body,
// abstracting over cc.This.
func (cc *ClassCall) overThis(body Term) Term {
	param := NewLink("this", cc)
	body = SubstTerm(body, NewExprSubst().Add(cc.This, &Ref{Binding: param}), nil)
	return &Lam{ResultSort: Omega, Params: param, Body: body}
}
