package check

import (
	set "github.com/hashicorp/go-set/v2"

	"github.com/eaburns/dtt/core"
)

// Context is the set of bindings in scope.
//
// Bindings are added in a strictly nested order,
// so scopes are released back to a mark
// in the reverse of the order they were added.
// A Context must not be shared by concurrent checks.
type Context struct {
	bound *set.Set[core.Binding]
	stack []core.Binding
}

// NewContext returns a context with the given bindings in scope.
func NewContext(bs ...core.Binding) *Context {
	ctx := &Context{bound: set.New[core.Binding](len(bs))}
	for _, b := range bs {
		ctx.Add(b)
	}
	return ctx
}

// Contains returns whether b is in scope.
func (ctx *Context) Contains(b core.Binding) bool { return ctx.bound.Contains(b) }

// Len returns the number of bindings in scope.
func (ctx *Context) Len() int { return ctx.bound.Size() }

// Add brings b into scope.
// It returns false, leaving the context unchanged, if b is already in scope.
func (ctx *Context) Add(b core.Binding) bool {
	if !ctx.bound.Insert(b) {
		return false
	}
	ctx.stack = append(ctx.stack, b)
	return true
}

func (ctx *Context) mark() int { return len(ctx.stack) }

// release removes the bindings added since mark.
func (ctx *Context) release(mark int) {
	for len(ctx.stack) > mark {
		b := ctx.stack[len(ctx.stack)-1]
		ctx.stack = ctx.stack[:len(ctx.stack)-1]
		ctx.bound.Remove(b)
	}
}
