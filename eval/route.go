package eval

import "github.com/solheim/marq/syntax"

// Route is the chain of source ids from the current import back to the
// root source, used to detect cyclic imports before re-entering eval.
// Modeled as an immutable persistent list passed by value rather than a
// borrowed parent pointer, since Go has no equivalent to the original's
// stack-borrowed linked list and a small value slice is the portable
// substitute the design notes call for.
type Route struct {
	ids []syntax.FileId
}

// NewRoute creates an empty route.
func NewRoute() Route {
	return Route{}
}

// Contains reports whether id is already part of the route.
func (r Route) Contains(id syntax.FileId) bool {
	for _, existing := range r.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Extend returns a new route with id appended. The receiver is left
// unmodified; each call frame holds its own extended copy.
func (r Route) Extend(id syntax.FileId) Route {
	next := make([]syntax.FileId, len(r.ids), len(r.ids)+1)
	copy(next, r.ids)
	next = append(next, id)
	return Route{ids: next}
}

// Len reports the route's depth.
func (r Route) Len() int {
	return len(r.ids)
}
