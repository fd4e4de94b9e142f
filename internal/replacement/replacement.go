// Package replacement queues edits to a syntax tree so a traversal can
// collect them and apply them once the traversal is done.
package replacement

import (
	"github.com/livebud/esm/internal/js"
)

// Replacement is an ordered queue of edits
type Replacement struct {
	ops []func() error
}

// New creates an empty replacement
func New() *Replacement {
	return &Replacement{}
}

// Swap the node at the location for the given nodes
func Swap(loc Location, nodes ...js.INode) *Replacement {
	return New().Swap(loc, nodes...)
}

// Remove the node at the location
func Remove(loc Location) *Replacement {
	return New().Remove(loc)
}

// Add nodes after the node at the location
func Add(loc Location, nodes ...js.INode) *Replacement {
	return New().Add(loc, nodes...)
}

// Insert nodes before the node at the location
func Insert(loc Location, nodes ...js.INode) *Replacement {
	return New().Insert(loc, nodes...)
}

// Prepend nodes to the start of a statement list
func Prepend(list *[]js.IStmt, nodes ...js.IStmt) *Replacement {
	return New().Prepend(list, nodes...)
}

func (r *Replacement) Swap(loc Location, nodes ...js.INode) *Replacement {
	r.ops = append(r.ops, func() error {
		return loc.set(nodes)
	})
	return r
}

func (r *Replacement) Remove(loc Location) *Replacement {
	r.ops = append(r.ops, func() error {
		return loc.set(nil)
	})
	return r
}

func (r *Replacement) Add(loc Location, nodes ...js.INode) *Replacement {
	r.ops = append(r.ops, func() error {
		return loc.set(append([]js.INode{loc.Node()}, nodes...))
	})
	return r
}

func (r *Replacement) Insert(loc Location, nodes ...js.INode) *Replacement {
	r.ops = append(r.ops, func() error {
		return loc.set(append(append([]js.INode{}, nodes...), loc.Node()))
	})
	return r
}

func (r *Replacement) Prepend(list *[]js.IStmt, nodes ...js.IStmt) *Replacement {
	r.ops = append(r.ops, func() error {
		*list = append(append([]js.IStmt{}, nodes...), *list...)
		return nil
	})
	return r
}

// And queues the other replacement's edits after this one's. Either side may
// be nil.
func (r *Replacement) And(other *Replacement) *Replacement {
	if r == nil {
		return other
	}
	if other == nil {
		return r
	}
	r.ops = append(r.ops, other.ops...)
	return r
}

// Len is the number of queued edits
func (r *Replacement) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ops)
}

// Apply the edits in the order they were queued
func (r *Replacement) Apply() error {
	if r == nil {
		return nil
	}
	for _, op := range r.ops {
		if err := op(); err != nil {
			return err
		}
	}
	r.ops = nil
	return nil
}
