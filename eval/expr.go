package eval

import (
	"github.com/solheim/marq/syntax"
)

// exprRunnable adapts a syntax.Expr to the Runnable interface, letting
// closure bodies and default parameter values be evaluated lazily, at
// call time, in whatever scope is current then.
type exprRunnable struct {
	expr syntax.Expr
}

func (r exprRunnable) Run(vm *Vm) (Value, error) {
	return evalExpr(vm, r.expr)
}

func asRunnable(e syntax.Expr) Runnable {
	if e == nil {
		return nil
	}
	return exprRunnable{expr: e}
}

// DestructurePattern is the evaluator's compiled form of a syntax.Pattern.
// It is a thin wrapper today (bindPattern walks the syntax tree directly)
// but gives ParamSpec.Pattern and friends a concrete named type to carry
// around instead of the raw syntax.Pattern interface.
type DestructurePattern struct {
	Pattern syntax.Pattern
}

func compilePattern(p syntax.Pattern) *DestructurePattern {
	if p == nil {
		return nil
	}
	return &DestructurePattern{Pattern: p}
}

// bindPattern defines every name a pattern introduces, in the current top
// scope, from value. It implements let-binding and for-loop pattern
// binding; destructuring assignment (into existing bindings) is handled
// separately by assignDestructuring.
func bindPattern(vm *Vm, pat syntax.Pattern, value Value) error {
	switch p := pat.(type) {
	case nil:
		return nil
	case *syntax.NormalPattern:
		vm.Scopes().Define(p.Name(), value)
		return nil
	case *syntax.PlaceholderPattern:
		return nil
	case *syntax.ParenthesizedPattern:
		return bindPattern(vm, p.Pattern(), value)
	case *syntax.DestructuringPattern:
		return bindDestructuring(vm, p, value)
	default:
		return &DestructureMismatchError{Reason: "unsupported pattern"}
	}
}

// bindDestructuring implements `let (a, b) = arr` and `let (a: x) = dict`
// style bindings, including a single `..rest` sink per pattern.
func bindDestructuring(vm *Vm, pat *syntax.DestructuringPattern, value Value) error {
	items := pat.Items()

	switch v := value.(type) {
	case *ArrayValue:
		return bindArrayDestructuring(vm, items, v)
	case *DictValue:
		return bindDictDestructuring(vm, items, v)
	default:
		return &DestructureMismatchError{Reason: "value is not an array or dictionary"}
	}
}

func bindArrayDestructuring(vm *Vm, items []syntax.DestructuringItem, arr *ArrayValue) error {
	vals := arr.Items()
	sinkIdx := -1
	for i, item := range items {
		if _, ok := item.(*syntax.DestructuringSpread); ok {
			sinkIdx = i
			break
		}
	}

	if sinkIdx < 0 {
		if len(items) != len(vals) {
			return &DestructureMismatchError{Reason: "array length does not match pattern"}
		}
		for i, item := range items {
			if err := bindArrayItem(vm, item, vals[i]); err != nil {
				return err
			}
		}
		return nil
	}

	before := items[:sinkIdx]
	after := items[sinkIdx+1:]
	if len(before)+len(after) > len(vals) {
		return &DestructureMismatchError{Reason: "array shorter than pattern"}
	}
	for i, item := range before {
		if err := bindArrayItem(vm, item, vals[i]); err != nil {
			return err
		}
	}
	mid := vals[len(before) : len(vals)-len(after)]
	if sink := items[sinkIdx].(*syntax.DestructuringSpread).Sink(); sink != nil {
		if err := bindPattern(vm, sink, NewArrayValue(append([]Value{}, mid...))); err != nil {
			return err
		}
	}
	for i, item := range after {
		if err := bindArrayItem(vm, item, vals[len(vals)-len(after)+i]); err != nil {
			return err
		}
	}
	return nil
}

func bindArrayItem(vm *Vm, item syntax.DestructuringItem, v Value) error {
	b, ok := item.(*syntax.DestructuringBinding)
	if !ok {
		return &DestructureMismatchError{Reason: "named item in array destructuring"}
	}
	return bindPattern(vm, b.Pattern(), v)
}

func bindDictDestructuring(vm *Vm, items []syntax.DestructuringItem, dict *DictValue) error {
	used := make(map[string]bool)
	for _, item := range items {
		switch it := item.(type) {
		case *syntax.DestructuringNamed:
			name := it.Name().Get()
			v, ok := dict.Get(name)
			if !ok {
				return &DestructureMismatchError{Reason: "missing key " + name}
			}
			used[name] = true
			if err := bindPattern(vm, it.Pattern(), v); err != nil {
				return err
			}
		case *syntax.DestructuringBinding:
			names := it.Pattern().Bindings()
			if len(names) != 1 {
				return &DestructureMismatchError{Reason: "plain binding in dict destructuring"}
			}
			name := names[0].Get()
			v, ok := dict.Get(name)
			if !ok {
				return &DestructureMismatchError{Reason: "missing key " + name}
			}
			used[name] = true
			if err := bindPattern(vm, it.Pattern(), v); err != nil {
				return err
			}
		case *syntax.DestructuringSpread:
			rest := NewDictValue()
			for _, k := range dict.Keys() {
				if used[k] {
					continue
				}
				v, _ := dict.Get(k)
				rest.Set(k, v)
			}
			if sink := it.Sink(); sink != nil {
				if err := bindPattern(vm, sink, rest); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
