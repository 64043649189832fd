package eval

import (
	"fmt"

	"github.com/solheim/marq/syntax"
)

// ArgsValue is the evaluator's representation of a captured argument
// pack: positional values in call order plus named values by key. It is
// itself a Value (KArgs) so that `..args` spreads and closures that
// forward `args` unchanged both work without a separate wrapper type.
type ArgsValue struct {
	Span     syntax.Span
	Pos      []Value
	PosSpans []syntax.Span
	Named    map[string]Value
	// order preserves the original source order of named keys, for
	// diagnostics and for args.pairs()-style iteration.
	order []string
}

func (*ArgsValue) Kind() Kind { return KArgs }
func (*ArgsValue) isValue()   {}

// NewArgsValue creates an empty argument pack.
func NewArgsValue(span syntax.Span) *ArgsValue {
	return &ArgsValue{Span: span, Named: make(map[string]Value)}
}

// PushPositional appends a positional argument.
func (a *ArgsValue) PushPositional(v Value, span syntax.Span) {
	a.Pos = append(a.Pos, v)
	a.PosSpans = append(a.PosSpans, span)
}

// SetNamed sets (or overwrites) a named argument, recording insertion
// order the first time a key is seen.
func (a *ArgsValue) SetNamed(name string, v Value) {
	if _, ok := a.Named[name]; !ok {
		a.order = append(a.order, name)
	}
	a.Named[name] = v
}

// NamedOrder returns named argument keys in source order.
func (a *ArgsValue) NamedOrder() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// ExtendFrom appends another pack's positional and named arguments,
// implementing a spread argument (`..other`).
func (a *ArgsValue) ExtendFrom(other *ArgsValue) {
	for i, v := range other.Pos {
		span := syntax.Detached()
		if i < len(other.PosSpans) {
			span = other.PosSpans[i]
		}
		a.PushPositional(v, span)
	}
	for _, name := range other.order {
		a.SetNamed(name, other.Named[name])
	}
}

// ExtendFromArray appends an array's elements as positional arguments,
// implementing a spread of an array value (`..arr`).
func (a *ArgsValue) ExtendFromArray(arr *ArrayValue) {
	for _, v := range arr.items {
		a.PushPositional(v, syntax.Detached())
	}
}

// ExtendFromDict appends a dict's entries as named arguments,
// implementing a spread of a dict value (`..dict`).
func (a *ArgsValue) ExtendFromDict(d *DictValue) {
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		a.SetNamed(k, v)
	}
}

// TakePositional returns the positional argument at index i without
// removing it, used by native functions that consume arguments left to
// right.
func (a *ArgsValue) TakePositional(i int) (Value, bool) {
	if i < 0 || i >= len(a.Pos) {
		return nil, false
	}
	return a.Pos[i], true
}

// Expect fetches positional argument i, producing an error referencing
// the function name if it is missing.
func (a *ArgsValue) Expect(funcName string, i int) (Value, error) {
	if v, ok := a.TakePositional(i); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%s: missing argument at position %d", funcName, i)
}
