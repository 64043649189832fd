package eval

import (
	"github.com/solheim/marq/syntax"
)

const defaultRecursionLimit = 256

// Vm is the evaluator's per-call state: a handle to the host World, the
// route of ancestor source ids (cycle detection), the current source id,
// the lexical scope chain, and a pending control-flow signal. A Vm is
// created at the start of eval(source_id) and discarded when it returns;
// nothing outside the Vm is mutated by the functions that operate on it.
type Vm struct {
	World World
	Route Route

	location syntax.FileId
	scopes   *Scopes
	flow     *Flow

	depth      int
	depthLimit int

	trace []TracePoint
}

// TracePoint records a call or import boundary for diagnostics, innermost
// entry first.
type TracePoint struct {
	Call   string
	Import bool
	Span   syntax.Span
}

// NewVm constructs a fresh Vm scoped to one eval(source_id) call.
func NewVm(world World, route Route, location syntax.FileId) *Vm {
	limit := world.Config().RecursionLimit
	if limit <= 0 {
		limit = defaultRecursionLimit
	}
	return &Vm{
		World:      world,
		Route:      route,
		location:   location,
		scopes:     NewScopes(world.Config().Std),
		depthLimit: limit,
	}
}

// Location returns the source id currently being evaluated.
func (vm *Vm) Location() syntax.FileId {
	return vm.location
}

// Scopes exposes the lexical scope chain.
func (vm *Vm) Scopes() *Scopes {
	return vm.scopes
}

// PendingFlow returns the currently pending flow signal, if any.
func (vm *Vm) PendingFlow() *Flow {
	return vm.flow
}

// SetFlow sets the pending flow signal. At most one flow may be pending;
// callers are expected to check PendingFlow before overwriting it.
func (vm *Vm) SetFlow(f *Flow) {
	vm.flow = f
}

// ClearFlow resets the pending flow signal, as loops do once they've
// consumed a Break/Continue.
func (vm *Vm) ClearFlow() {
	vm.flow = nil
}

// PushTrace records a call or import boundary.
func (vm *Vm) PushTrace(tp TracePoint) {
	vm.trace = append(vm.trace, tp)
}

// PopTrace removes the most recently pushed trace point.
func (vm *Vm) PopTrace() {
	if len(vm.trace) > 0 {
		vm.trace = vm.trace[:len(vm.trace)-1]
	}
}

// Trace returns the current trace in push order: outermost first,
// innermost last.
func (vm *Vm) Trace() []TracePoint {
	return vm.trace
}

// EnterCall increments the recursion depth counter and fails once the
// configured limit is exceeded, so deeply recursive source fails with a
// diagnostic instead of exhausting the native stack.
func (vm *Vm) EnterCall() error {
	vm.depth++
	if vm.depth > vm.depthLimit {
		vm.depth--
		return &RecursionLimitError{Limit: vm.depthLimit}
	}
	return nil
}

// ExitCall decrements the recursion depth counter.
func (vm *Vm) ExitCall() {
	if vm.depth > 0 {
		vm.depth--
	}
}

// Locate resolves a path relative to the directory of the currently
// evaluating source.
func (vm *Vm) Locate(relativePath string) (syntax.FileId, error) {
	return vm.World.Resolve(relativePath, vm.location)
}
