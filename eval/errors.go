package eval

import (
	"fmt"

	"github.com/solheim/marq/syntax"
)

// SourceError pairs an underlying error with the span it occurred at, the
// shape every error that escapes eval() is expected to carry so a driver
// can point back at source text.
type SourceError struct {
	Span syntax.Span
	Err  error
	// Trace records the call/import boundaries the error crossed on its
	// way out, innermost first.
	Trace []TracePoint
}

func (e *SourceError) Error() string {
	return e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// atSpan wraps err with a span, unless err is already a SourceError (in
// which case its original, more specific span wins).
func atSpan(err error, span syntax.Span) error {
	if err == nil {
		return nil
	}
	var se *SourceError
	if as, ok := err.(*SourceError); ok {
		se = as
	}
	if se != nil {
		return se
	}
	return &SourceError{Span: span, Err: err}
}

// traced attaches a trace point to err as it crosses a call or import
// boundary. Appending outward keeps the trace innermost-first.
func traced(err error, tp TracePoint) error {
	if err == nil {
		return nil
	}
	se, ok := err.(*SourceError)
	if !ok {
		se = &SourceError{Span: tp.Span, Err: err}
	}
	se.Trace = append(se.Trace, tp)
	return se
}

// CyclicImportError reports that a module import would re-enter a source
// file already on the current route.
type CyclicImportError struct {
	File syntax.FileId
}

func (e *CyclicImportError) Error() string {
	return fmt.Sprintf("cyclic import of file %d", e.File.Raw())
}

// RecursionLimitError reports that the evaluator's call-depth guard fired.
type RecursionLimitError struct {
	Limit int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("recursion limit of %d exceeded", e.Limit)
}

// FlowMisplacedError reports a break/continue/return used outside a
// context that can consume it (loop body for break/continue, closure for
// return); a flow still pending at the end of top-level code is one.
type FlowMisplacedError struct {
	Kind FlowKind
}

func (e *FlowMisplacedError) Error() string {
	return fmt.Sprintf("%s is not allowed here", e.Kind)
}

// UnboundVariableError reports a reference to a name with no binding in
// any enclosing scope, including the standard library.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("unknown variable: %s", e.Name)
}

// NotAssignableError reports an attempt to assign into an expression that
// is not a valid access path (e.g. a literal or a function call result).
type NotAssignableError struct {
	What string
}

func (e *NotAssignableError) Error() string {
	return fmt.Sprintf("cannot assign to %s", e.What)
}

// NotCallableError reports a call on a value that is not a Func.
type NotCallableError struct {
	Got Kind
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("%s is not callable", e.Got)
}

// MissingImportNameError reports a `import "x": a, b` naming a symbol the
// imported module does not export.
type MissingImportNameError struct {
	Name string
}

func (e *MissingImportNameError) Error() string {
	return fmt.Sprintf("unresolved import: %s", e.Name)
}

// DestructureMismatchError reports a destructuring pattern that does not
// fit the shape of the value it is matched against (e.g. an array pattern
// applied to a dict, or too few/too many array items without a sink).
type DestructureMismatchError struct {
	Reason string
}

func (e *DestructureMismatchError) Error() string {
	return fmt.Sprintf("cannot destructure: %s", e.Reason)
}
