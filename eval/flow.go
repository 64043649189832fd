package eval

import "github.com/solheim/marq/syntax"

// FlowKind tags the kind of pending non-local control-flow signal.
type FlowKind int

const (
	FlowBreak FlowKind = iota
	FlowContinue
	FlowReturn
)

// Flow is a non-local control-flow signal carried on the Vm rather than
// unwound as a Go panic/exception. At most one Flow is pending at a
// time; consuming loops reset it to nil, and blocks that cannot consume
// it propagate it by simply not clearing Vm.flow.
type Flow struct {
	Kind  FlowKind
	Span  syntax.Span
	Value Value // set only for FlowReturn, may be nil
}

func (f FlowKind) String() string {
	switch f {
	case FlowBreak:
		return "break"
	case FlowContinue:
		return "continue"
	case FlowReturn:
		return "return"
	default:
		return "flow"
	}
}
