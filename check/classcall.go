package check

import (
	"github.com/eaburns/dtt/core"
)

// classCall checks the implementations of a class call
// and that its sort bounds the fields left unimplemented.
func (c *Checker) classCall(cc *core.ClassCall) core.Term {
	m := c.ctx.mark()
	defer c.ctx.release(m)
	c.addBinding(cc.This, cc)

	for f := range cc.Impls {
		if f.Class != cc.Def {
			panic(c.fail(TypeMismatch, cc).note("%s is not a field of %s", f.Name(), cc.Def.Name()))
		}
	}
	this := &core.Ref{Binding: cc.This}
	for _, f := range cc.Implemented() {
		c.expr(cc.Impls[f], cc.FieldType(f, this))
	}

	level, useLevel := cc.Def.UseLevel(cc.Impls)
	if !useLevel || level != core.PropHLevel {
		for _, f := range cc.NotImplemented() {
			sort := c.sortOf(cc.FieldType(f, this))
			if sort.IsProp() {
				continue
			}
			if !core.CompareLevels(core.LE, sort.P, cc.Sort.P, c.eqs, c.l) ||
				!(useLevel && sort.H.IsClosed() && sort.H.Const <= level ||
					core.CompareLevels(core.LE, sort.H, cc.Sort.H, c.eqs, c.l)) {
				err := c.fail(SortMismatch, cc)
				err.Field = f
				err.Expected = cc.Sort.String()
				panic(err.note("the type of %s is in %s", f.Name(), sort))
			}
		}
	}

	if cc.Universes < cc.Def.Universes {
		for _, f := range cc.Def.Fields {
			if f.Universes > cc.Universes && !cc.IsImplemented(f) {
				err := c.fail(UniverseKind, cc)
				err.Field = f
				panic(err.note("%s has %s, but the class call has %s", f.Name(), f.Universes, cc.Universes))
			}
		}
	}
	return &core.Universe{Sort: cc.Sort}
}
