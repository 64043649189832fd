package eval

import (
	"github.com/solheim/marq/syntax"
)

// Module is the result of evaluating one source file: the top-level
// scope it defined (for `import`) and the content it produced (for
// `include` and for the root document).
type Module struct {
	Name    string
	Scope   *Scope
	Content *Content
}

// asDictValue exposes a module's top-level bindings as a dict, the form
// `import "file.mq" as m` binds m to so that `m.name` field access
// reaches an imported symbol.
func (m *Module) asDictValue() *DictValue {
	d := NewDictValue()
	for _, name := range m.Scope.Names() {
		v, _ := m.Scope.Get(name)
		d.Set(name, v)
	}
	return d
}

// Eval parses (via World.Source) and evaluates the file at id, returning
// its bound scope and rendered content. route carries the chain of
// ancestor file ids so a cyclic import (A includes B includes A) is
// reported instead of recursing forever.
func Eval(world World, route Route, id syntax.FileId) (*Module, error) {
	if route.Contains(id) {
		return nil, &CyclicImportError{File: id}
	}

	src, err := world.Source(id)
	if err != nil {
		return nil, err
	}

	vm := NewVm(world, route.Extend(id), id)
	markup := syntax.MarkupNodeFromNode(src.Root())

	content, err := evalMarkup(vm, markup)
	if err != nil {
		return nil, err
	}
	if flow := vm.PendingFlow(); flow != nil {
		return nil, atSpan(&FlowMisplacedError{Kind: flow.Kind}, flow.Span)
	}

	return &Module{
		Scope:   vm.Scopes().Top(),
		Content: content,
	}, nil
}

// evalCode evaluates a code block's statement sequence, joining
// successive results the same way markup joins content, with
// forward-scoped set/show handling mirrored from evalMarkup.
func evalCode(vm *Vm, c *syntax.CodeNode) (Value, error) {
	if c == nil {
		return None{}, nil
	}
	// Same entry/exit flow discipline as evalMarkup: a signal pending
	// from an outer context survives this block untouched.
	entry := vm.PendingFlow()
	vm.ClearFlow()
	v, err := evalCodeExprs(vm, c.Exprs())
	if err != nil {
		return nil, err
	}
	if entry != nil {
		vm.SetFlow(entry)
	}
	return v, nil
}

func evalCodeExprs(vm *Vm, exprs []syntax.Expr) (Value, error) {
	if len(exprs) == 0 {
		return None{}, nil
	}
	head, rest := exprs[0], exprs[1:]

	switch e := head.(type) {
	case *syntax.SetRuleExpr:
		style, err := evalSetRule(vm, e)
		if err != nil {
			return nil, err
		}
		if vm.PendingFlow() != nil {
			return None{}, nil
		}
		tail, err := evalCodeExprs(vm, rest)
		if err != nil {
			return nil, err
		}
		return StyledWithMap(valueToContent(tail), style), nil

	case *syntax.ShowRuleExpr:
		recipe, err := evalShowRule(vm, e)
		if err != nil {
			return nil, err
		}
		if vm.PendingFlow() != nil {
			return None{}, nil
		}
		tail, err := evalCodeExprs(vm, rest)
		if err != nil {
			return nil, err
		}
		return StyledWithRecipe(valueToContent(tail), recipe), nil

	case *syntax.WrapRuleExpr:
		tail, err := evalCodeExprs(vm, rest)
		if err != nil {
			return nil, err
		}
		if name := e.Binding(); name != nil {
			vm.Scopes().Define(name.Get(), tail)
		}
		return evalExpr(vm, e.Body())

	default:
		v, err := evalExpr(vm, head)
		if err != nil {
			return nil, err
		}
		if vm.PendingFlow() != nil {
			return v, nil
		}
		tail, err := evalCodeExprs(vm, rest)
		if err != nil {
			return nil, err
		}
		return join(v, tail)
	}
}
