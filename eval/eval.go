package eval

import (
	"fmt"

	"github.com/solheim/marq/syntax"
)

// evalArgs evaluates a call's argument list into a captured ArgsValue,
// resolving spreads (`..x`) by kind: another ArgsValue forwards both
// positional and named entries, an array spreads positionally, a dict
// spreads as named arguments.
func evalArgs(vm *Vm, node *syntax.ArgsNode) (*ArgsValue, error) {
	span := syntax.Detached()
	if node != nil {
		span = node.ToUntyped().Span()
	}
	out := NewArgsValue(span)
	if node == nil {
		return out, nil
	}
	for _, item := range node.Items() {
		switch a := item.(type) {
		case *syntax.PosArg:
			v, err := evalExpr(vm, a.Expr())
			if err != nil {
				return nil, err
			}
			out.PushPositional(v, exprSpan(a.Expr()))
		case *syntax.NamedArg:
			v, err := evalExpr(vm, a.Expr())
			if err != nil {
				return nil, err
			}
			out.SetNamed(a.Name().Get(), v)
		case *syntax.SpreadArg:
			v, err := evalExpr(vm, a.Expr())
			if err != nil {
				return nil, err
			}
			switch sv := v.(type) {
			case *ArgsValue:
				out.ExtendFrom(sv)
			case *ArrayValue:
				out.ExtendFromArray(sv)
			case *DictValue:
				out.ExtendFromDict(sv)
			default:
				return nil, fmt.Errorf("cannot spread value of type %s", v.Kind())
			}
		}
	}
	return out, nil
}

func exprSpan(e syntax.Expr) syntax.Span {
	if e == nil {
		return syntax.Detached()
	}
	return e.ToUntyped().Span()
}

func oneArg(span syntax.Span, v Value) *ArgsValue {
	a := NewArgsValue(span)
	a.PushPositional(v, span)
	return a
}

// evalExpr is the central dispatch over every expression kind the typed
// AST layer exposes. Markup-shaped expressions (content blocks, strong,
// headings, ...) are only reachable here through a ContentBlockExpr or as
// the body of a control-flow construct; evalMarkupLeaf is what handles
// them when walking a MarkupNode directly.
func evalExpr(vm *Vm, e syntax.Expr) (Value, error) {
	if e == nil {
		return None{}, nil
	}
	span := exprSpan(e)

	switch n := e.(type) {
	case *syntax.NoneExpr:
		return None{}, nil
	case *syntax.AutoExpr:
		return Auto{}, nil
	case *syntax.BoolExpr:
		return Bool(n.Get()), nil
	case *syntax.IntExpr:
		return Int(n.Get()), nil
	case *syntax.FloatExpr:
		return Float(n.Get()), nil
	case *syntax.NumericExpr:
		return numericValue(n.Value(), n.Unit()), nil
	case *syntax.StrExpr:
		return Str(n.Get()), nil

	case *syntax.IdentExpr:
		v, ok := vm.Scopes().Get(n.Get())
		if !ok {
			return nil, atSpan(&UnboundVariableError{Name: n.Get()}, span)
		}
		return v, nil

	case *syntax.ArrayExpr:
		return evalArrayExpr(vm, n)
	case *syntax.DictExpr:
		return evalDictExpr(vm, n)

	case *syntax.CodeBlockExpr:
		vm.Scopes().Enter()
		defer vm.Scopes().Exit()
		return evalCode(vm, n.Body())

	case *syntax.ContentBlockExpr:
		vm.Scopes().Enter()
		defer vm.Scopes().Exit()
		return evalMarkup(vm, n.Body())

	case *syntax.ParenthesizedExpr:
		return evalExpr(vm, n.Expr())

	case *syntax.UnaryExpr:
		return evalUnary(vm, n, span)

	case *syntax.BinaryExpr:
		return evalBinaryExpr(vm, n, span)

	case *syntax.FieldAccessExpr:
		return evalFieldAccess(vm, n, span)

	case *syntax.FuncCallExpr:
		return evalFuncCall(vm, n, span)

	case *syntax.ClosureExpr:
		return evalClosureExpr(vm, n), nil

	case *syntax.LetBindingExpr:
		return evalLetBinding(vm, n)

	case *syntax.DestructAssignmentExpr:
		v, err := evalExpr(vm, n.Value())
		if err != nil {
			return nil, err
		}
		if err := assignDestructuring(vm, n.Pattern(), v); err != nil {
			return nil, atSpan(err, span)
		}
		return None{}, nil

	case *syntax.SetRuleExpr, *syntax.ShowRuleExpr, *syntax.WrapRuleExpr:
		// Only meaningful as a statement inside a markup/code block; one
		// reached here directly has no remaining siblings to scope over.
		return None{}, nil

	case *syntax.ContextualExpr:
		return evalExpr(vm, n.Body())

	case *syntax.ConditionalExpr:
		cond, err := evalExpr(vm, n.Condition())
		if err != nil {
			return nil, err
		}
		truthy, ok := Truthy(cond)
		if !ok {
			return nil, atSpan(typeMismatch("if", cond, Bool(false)), span)
		}
		if truthy {
			return evalExpr(vm, n.IfBody())
		}
		if n.ElseBody() != nil {
			return evalExpr(vm, n.ElseBody())
		}
		return None{}, nil

	case *syntax.WhileLoopExpr:
		return evalWhileLoop(vm, n)

	case *syntax.ForLoopExpr:
		return evalForLoop(vm, n)

	case *syntax.ModuleImportExpr:
		return evalModuleImport(vm, n, span)

	case *syntax.ModuleIncludeExpr:
		return evalModuleInclude(vm, n, span)

	case *syntax.LoopBreakExpr:
		vm.SetFlow(&Flow{Kind: FlowBreak, Span: span})
		return None{}, nil

	case *syntax.LoopContinueExpr:
		vm.SetFlow(&Flow{Kind: FlowContinue, Span: span})
		return None{}, nil

	case *syntax.FuncReturnExpr:
		var v Value = None{}
		if n.Body() != nil {
			rv, err := evalExpr(vm, n.Body())
			if err != nil {
				return nil, err
			}
			v = rv
		}
		vm.SetFlow(&Flow{Kind: FlowReturn, Span: span, Value: v})
		return v, nil

	case *syntax.TextExpr, *syntax.SpaceExpr, *syntax.LinebreakExpr, *syntax.ParbreakExpr,
		*syntax.EscapeExpr, *syntax.ShorthandExpr, *syntax.SmartQuoteExpr,
		*syntax.StrongExpr, *syntax.EmphExpr, *syntax.RawExpr, *syntax.LinkExpr,
		*syntax.LabelExpr, *syntax.RefExpr, *syntax.HeadingExpr, *syntax.ListItemExpr,
		*syntax.EnumItemExpr, *syntax.TermItemExpr, *syntax.EquationExpr:
		// Markup-shaped node reached from code context (e.g. the body of a
		// for-loop written with square-bracket content): lift it through
		// the markup evaluator and surface the result as a content Value.
		return evalMarkupLeaf(vm, e)

	default:
		return nil, atSpan(fmt.Errorf("cannot evaluate %T in this context", e), span)
	}
}

func numericValue(v float64, unit syntax.Unit) Value {
	switch unit {
	case syntax.UnitPt, syntax.UnitMm, syntax.UnitCm, syntax.UnitIn:
		pt, _ := unit.ConvertTo(v, syntax.UnitPt)
		return Length(pt)
	case syntax.UnitRad, syntax.UnitDeg:
		rad, _ := unit.ConvertTo(v, syntax.UnitRad)
		return Angle(rad)
	case syntax.UnitEm:
		return Em(v)
	case syntax.UnitFr:
		return Fraction(v)
	case syntax.UnitPercent:
		return Ratio(v / 100)
	default:
		return Float(v)
	}
}

func evalArrayExpr(vm *Vm, n *syntax.ArrayExpr) (Value, error) {
	var items []Value
	for _, it := range n.Items() {
		switch ai := it.(type) {
		case *syntax.ArrayPosItem:
			v, err := evalExpr(vm, ai.Expr())
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		case *syntax.ArraySpreadItem:
			v, err := evalExpr(vm, ai.Expr())
			if err != nil {
				return nil, err
			}
			arr, ok := v.(*ArrayValue)
			if !ok {
				return nil, fmt.Errorf("cannot spread %s into an array", v.Kind())
			}
			items = append(items, arr.Items()...)
		}
	}
	return NewArrayValue(items), nil
}

func evalDictExpr(vm *Vm, n *syntax.DictExpr) (Value, error) {
	out := NewDictValue()
	for _, it := range n.Items() {
		switch di := it.(type) {
		case *syntax.DictNamedItem:
			v, err := evalExpr(vm, di.Expr())
			if err != nil {
				return nil, err
			}
			out.Set(di.Name().Get(), v)
		case *syntax.DictKeyedItem:
			k, err := evalExpr(vm, di.Key())
			if err != nil {
				return nil, err
			}
			key, ok := k.(Str)
			if !ok {
				return nil, fmt.Errorf("dictionary key must be a string, found %s", k.Kind())
			}
			v, err := evalExpr(vm, di.Expr())
			if err != nil {
				return nil, err
			}
			out.Set(string(key), v)
		case *syntax.DictSpreadItem:
			v, err := evalExpr(vm, di.Expr())
			if err != nil {
				return nil, err
			}
			d, ok := v.(*DictValue)
			if !ok {
				return nil, fmt.Errorf("cannot spread %s into a dictionary", v.Kind())
			}
			for _, k := range d.Keys() {
				val, _ := d.Get(k)
				out.Set(k, val)
			}
		}
	}
	return out, nil
}

func evalUnary(vm *Vm, n *syntax.UnaryExpr, span syntax.Span) (Value, error) {
	v, err := evalExpr(vm, n.Expr())
	if err != nil {
		return nil, err
	}
	switch n.Op() {
	case syntax.UnOpPos:
		if _, ok := asFloat(v); ok {
			return v, nil
		}
		return nil, atSpan(fmt.Errorf("cannot apply unary + to %s", v.Kind()), span)
	case syntax.UnOpNeg:
		switch x := v.(type) {
		case Int:
			return -x, nil
		case Float:
			return -x, nil
		case Length:
			return -x, nil
		case Angle:
			return -x, nil
		case Em:
			return -x, nil
		case Fraction:
			return -x, nil
		case Ratio:
			return -x, nil
		default:
			return nil, atSpan(fmt.Errorf("cannot apply unary - to %s", v.Kind()), span)
		}
	case syntax.UnOpNot:
		b, ok := Truthy(v)
		if !ok {
			return nil, atSpan(typeMismatch("not", v, v), span)
		}
		return Bool(!b), nil
	default:
		return nil, atSpan(fmt.Errorf("unknown unary operator"), span)
	}
}

func evalBinaryExpr(vm *Vm, n *syntax.BinaryExpr, span syntax.Span) (Value, error) {
	op := n.Op()

	if op == syntax.BinOpAnd || op == syntax.BinOpOr {
		lv, err := evalExpr(vm, n.Lhs())
		if err != nil {
			return nil, err
		}
		lb, ok := Truthy(lv)
		if !ok {
			return nil, atSpan(typeMismatch(op.Name(), lv, lv), span)
		}
		if op == syntax.BinOpAnd && !lb {
			return Bool(false), nil
		}
		if op == syntax.BinOpOr && lb {
			return Bool(true), nil
		}
		rv, err := evalExpr(vm, n.Rhs())
		if err != nil {
			return nil, err
		}
		rb, ok := Truthy(rv)
		if !ok {
			return nil, atSpan(typeMismatch(op.Name(), rv, rv), span)
		}
		return Bool(rb), nil
	}

	if op.IsAssignment() {
		rv, err := evalExpr(vm, n.Rhs())
		if err != nil {
			return nil, err
		}
		if op == syntax.BinOpAssign {
			if err := assignTo(vm, n.Lhs(), rv); err != nil {
				return nil, atSpan(err, span)
			}
			return None{}, nil
		}
		v, err := evalCompoundAssign(vm, op, n.Lhs(), rv)
		if err != nil {
			return nil, atSpan(err, span)
		}
		return v, nil
	}

	lv, err := evalExpr(vm, n.Lhs())
	if err != nil {
		return nil, err
	}
	rv, err := evalExpr(vm, n.Rhs())
	if err != nil {
		return nil, err
	}
	v, err := evalBinary(op, lv, rv)
	if err != nil {
		return nil, atSpan(err, span)
	}
	return v, nil
}

func evalFieldAccess(vm *Vm, n *syntax.FieldAccessExpr, span syntax.Span) (Value, error) {
	recv, err := evalExpr(vm, n.Target())
	if err != nil {
		return nil, err
	}
	name := n.Field().Get()
	switch r := recv.(type) {
	case *DictValue:
		v, ok := r.Get(name)
		if !ok {
			return nil, atSpan(fmt.Errorf("dictionary does not contain key %q", name), span)
		}
		return v, nil
	case *Content:
		v, ok := r.Field(name)
		if !ok {
			return nil, atSpan(fmt.Errorf("content has no field %q", name), span)
		}
		return v, nil
	case *ArgsValue:
		if name == "pos" {
			return NewArrayValue(append([]Value{}, r.Pos...)), nil
		}
		if v, ok := r.Named[name]; ok {
			return v, nil
		}
		return nil, atSpan(fmt.Errorf("arguments has no field %q", name), span)
	default:
		return nil, atSpan(fmt.Errorf("type %s has no field %q", recv.Kind(), name), span)
	}
}

// evalFuncCall evaluates `callee(args)`. When callee is a field access on
// a receiver kind that owns methods (array/dict/string), and the accessed
// name is not itself a bound field, the call is routed to the method
// table instead of trying to call a plain function value.
func evalFuncCall(vm *Vm, n *syntax.FuncCallExpr, span syntax.Span) (Value, error) {
	if field, ok := n.Callee().(*syntax.FieldAccessExpr); ok {
		recv, err := evalExpr(vm, field.Target())
		if err != nil {
			return nil, err
		}
		name := field.Field().Get()
		if isMethodReceiver(recv) && !hasOwnField(recv, name) {
			if isMutatingMethodFor(recv.Kind(), name) && !isAccessPath(vm, field.Target()) {
				return nil, atSpan(fmt.Errorf("cannot mutate a temporary value"), span)
			}
			args, err := evalArgs(vm, n.Args())
			if err != nil {
				return nil, err
			}
			v, err := callMethod(vm, recv, name, args, span)
			if err != nil {
				return nil, atSpan(err, span)
			}
			return v, nil
		}
	}

	calleeVal, err := evalExpr(vm, n.Callee())
	if err != nil {
		return nil, err
	}

	switch callee := calleeVal.(type) {
	case *Func:
		args, err := evalArgs(vm, n.Args())
		if err != nil {
			return nil, err
		}
		return callFunc(vm, callee, args, span)

	case *ArrayValue:
		// Calling an array indexes into it: `a(1)` is `a.at(1)`.
		args, err := evalArgs(vm, n.Args())
		if err != nil {
			return nil, err
		}
		idx, err := args.Expect("array", 0)
		if err != nil {
			return nil, atSpan(err, span)
		}
		i, ok := idx.(Int)
		if !ok {
			return nil, atSpan(fmt.Errorf("array index must be an integer, found %s", idx.Kind()), span)
		}
		v, err := callee.At(int(i))
		if err != nil {
			return nil, atSpan(err, span)
		}
		return v, nil

	case *DictValue:
		// Calling a dict looks up a key: `d("k")` is `d.at("k")`.
		args, err := evalArgs(vm, n.Args())
		if err != nil {
			return nil, err
		}
		keyVal, err := args.Expect("dictionary", 0)
		if err != nil {
			return nil, atSpan(err, span)
		}
		key, ok := keyVal.(Str)
		if !ok {
			return nil, atSpan(fmt.Errorf("dictionary key must be a string, found %s", keyVal.Kind()), span)
		}
		v, ok := callee.Get(string(key))
		if !ok {
			return nil, atSpan(fmt.Errorf("dictionary does not contain key %q", string(key)), span)
		}
		return v, nil

	default:
		return nil, atSpan(&NotCallableError{Got: calleeVal.Kind()}, span)
	}
}

// isAccessPath reports whether target can serve as a mutable access
// path: an identifier bound outside the standard library, a field
// access, an `at()` call, or parentheses around one of those.
func isAccessPath(vm *Vm, target syntax.Expr) bool {
	switch t := target.(type) {
	case *syntax.IdentExpr:
		_, ok := vm.Scopes().GetMut(t.Get())
		return ok
	case *syntax.ParenthesizedExpr:
		return isAccessPath(vm, t.Expr())
	case *syntax.FieldAccessExpr:
		return true
	case *syntax.FuncCallExpr:
		field, ok := t.Callee().(*syntax.FieldAccessExpr)
		return ok && field.Field().Get() == "at"
	default:
		return false
	}
}

func isMethodReceiver(v Value) bool {
	switch v.(type) {
	case *ArrayValue, *DictValue, Str:
		return true
	default:
		return false
	}
}

func hasOwnField(v Value, name string) bool {
	d, ok := v.(*DictValue)
	if !ok {
		return false
	}
	_, ok = d.Get(name)
	return ok
}

func evalClosureExpr(vm *Vm, n *syntax.ClosureExpr) Value {
	closure := &ClosureValue{
		Body:    asRunnable(n.Body()),
		Capture: flattenScopes(vm.Scopes()),
	}
	if name := n.Name(); name != nil {
		closure.Name = name.Get()
	}
	for _, p := range n.Params().Children() {
		switch param := p.(type) {
		case *syntax.PosParam:
			closure.Params = append(closure.Params, ParamSpec{Name: param.Name().Get()})
		case *syntax.PlaceholderParam:
			closure.Params = append(closure.Params, ParamSpec{Name: "_"})
		case *syntax.NamedParam:
			closure.Params = append(closure.Params, ParamSpec{
				Name:    param.Name().Get(),
				Default: asRunnable(param.Default()),
			})
		case *syntax.DestructuringParam:
			closure.Params = append(closure.Params, ParamSpec{
				Pattern: compilePattern(syntax.PatternFromNode(param.Pattern().ToUntyped())),
			})
		case *syntax.SinkParam:
			sinkName := ""
			if id := param.Name(); id != nil {
				sinkName = id.Get()
			}
			closure.Sink = &sinkName
		}
	}
	return &Func{Name: closure.Name, Closure: closure}
}

// flattenScopes collapses the current scope chain (excluding the
// standard-library root) into a single frame, the evaluator's
// simplification of closure capture: a closure only ever needs to read
// bindings visible at creation time, never to observe later mutation of
// an enclosing frame introduced after it escaped.
func flattenScopes(scopes *Scopes) *Scope {
	flat := NewScope()
	for i := 0; i < scopes.Depth(); i++ {
		frame := scopes.frames[i]
		for _, name := range frame.Names() {
			v, _ := frame.Get(name)
			flat.Define(name, v)
		}
	}
	return flat
}

func evalLetBinding(vm *Vm, n *syntax.LetBindingExpr) (Value, error) {
	if n.BindingKind() == syntax.LetBindingClosure {
		closure, ok := n.Init().(*syntax.ClosureExpr)
		if !ok {
			return nil, fmt.Errorf("malformed function binding")
		}
		fn := evalClosureExpr(vm, closure)
		vm.Scopes().Define(fn.(*Func).Name, fn)
		return None{}, nil
	}

	var v Value = None{}
	if n.Init() != nil {
		val, err := evalExpr(vm, n.Init())
		if err != nil {
			return nil, err
		}
		v = val
	}
	if err := bindPattern(vm, n.Pattern(), v); err != nil {
		return nil, err
	}
	return None{}, nil
}

func evalWhileLoop(vm *Vm, n *syntax.WhileLoopExpr) (Value, error) {
	var acc Value = None{}
	for {
		if err := vm.EnterCall(); err != nil {
			return nil, err
		}
		cond, err := evalExpr(vm, n.Condition())
		vm.ExitCall()
		if err != nil {
			return nil, err
		}
		truthy, ok := Truthy(cond)
		if !ok {
			return nil, typeMismatch("while", cond, Bool(false))
		}
		if !truthy {
			return acc, nil
		}

		vm.Scopes().Enter()
		v, err := evalExpr(vm, n.Body())
		vm.Scopes().Exit()
		if err != nil {
			return nil, err
		}

		acc, err = join(acc, v)
		if err != nil {
			return nil, err
		}
		if flow := vm.PendingFlow(); flow != nil {
			switch flow.Kind {
			case FlowBreak:
				vm.ClearFlow()
				return acc, nil
			case FlowContinue:
				vm.ClearFlow()
				continue
			default:
				// Return: leave the signal pending for the closure.
				return acc, nil
			}
		}
	}
}

func evalForLoop(vm *Vm, n *syntax.ForLoopExpr) (Value, error) {
	iter, err := evalExpr(vm, n.Iter())
	if err != nil {
		return nil, err
	}

	var acc Value = None{}
	step := func(v Value) (bool, error) {
		vm.Scopes().Enter()
		if err := bindPattern(vm, n.Pattern(), v); err != nil {
			vm.Scopes().Exit()
			return false, err
		}
		bodyVal, err := evalExpr(vm, n.Body())
		vm.Scopes().Exit()
		if err != nil {
			return false, err
		}

		acc, err = join(acc, bodyVal)
		if err != nil {
			return false, err
		}
		if flow := vm.PendingFlow(); flow != nil {
			switch flow.Kind {
			case FlowBreak:
				vm.ClearFlow()
				return true, nil
			case FlowContinue:
				vm.ClearFlow()
				return false, nil
			default:
				return true, nil
			}
		}
		return false, nil
	}

	switch it := iter.(type) {
	case *ArrayValue:
		for _, v := range it.Items() {
			stop, err := step(v)
			if err != nil {
				return nil, err
			}
			if stop || vm.PendingFlow() != nil {
				break
			}
		}
	case *DictValue:
		for _, k := range it.Keys() {
			val, _ := it.Get(k)
			pair := NewArrayValue([]Value{Str(k), val})
			stop, err := step(pair)
			if err != nil {
				return nil, err
			}
			if stop || vm.PendingFlow() != nil {
				break
			}
		}
	case Str:
		for _, g := range Graphemes(string(it)) {
			stop, err := step(Str(g))
			if err != nil {
				return nil, err
			}
			if stop || vm.PendingFlow() != nil {
				break
			}
		}
	default:
		return nil, fmt.Errorf("cannot iterate over %s", iter.Kind())
	}
	return acc, nil
}

func evalModuleImport(vm *Vm, n *syntax.ModuleImportExpr, span syntax.Span) (Value, error) {
	mod, err := resolveModule(vm, n.Source(), span)
	if err != nil {
		return nil, err
	}

	switch imports := n.Imports().(type) {
	case nil:
		name := moduleBindingName(n)
		vm.Scopes().Define(name, mod.asDictValue())
	case *syntax.ImportsWildcard:
		for _, name := range mod.Scope.Names() {
			v, _ := mod.Scope.Get(name)
			vm.Scopes().Define(name, v)
		}
	case *syntax.ImportItemsNode:
		for _, item := range imports.Items() {
			path := item.Path()
			if len(path) == 0 {
				continue
			}
			srcName := path[len(path)-1]
			v, ok := mod.Scope.Get(srcName)
			if !ok {
				return nil, atSpan(&MissingImportNameError{Name: srcName}, span)
			}
			dstName := srcName
			if rn := item.NewName(); rn != nil {
				dstName = rn.Get()
			}
			vm.Scopes().Define(dstName, v)
		}
	}
	return None{}, nil
}

func moduleBindingName(n *syntax.ModuleImportExpr) string {
	if nn := n.NewName(); nn != nil {
		return nn.Get()
	}
	return "module"
}

func evalModuleInclude(vm *Vm, n *syntax.ModuleIncludeExpr, span syntax.Span) (Value, error) {
	mod, err := resolveModule(vm, n.Source(), span)
	if err != nil {
		return nil, err
	}
	return mod.Content, nil
}

func resolveModule(vm *Vm, src syntax.Expr, span syntax.Span) (*Module, error) {
	v, err := evalExpr(vm, src)
	if err != nil {
		return nil, err
	}
	path, ok := v.(Str)
	if !ok {
		return nil, atSpan(fmt.Errorf("expected string path, found %s", v.Kind()), span)
	}
	id, err := vm.Locate(string(path))
	if err != nil {
		return nil, atSpan(err, span)
	}
	mod, err := Eval(vm.World, vm.Route, id)
	if err != nil {
		return nil, traced(atSpan(err, span), TracePoint{Import: true, Span: span})
	}
	return mod, nil
}

// callFunc dispatches a call to a native or user-defined function
// value. Errors crossing this boundary pick up a Call trace point.
func callFunc(vm *Vm, fn *Func, args *ArgsValue, span syntax.Span) (Value, error) {
	if err := vm.EnterCall(); err != nil {
		return nil, atSpan(err, span)
	}
	defer vm.ExitCall()

	tp := TracePoint{Call: fn.Name, Span: span}
	vm.PushTrace(tp)
	defer vm.PopTrace()

	var v Value
	var err error
	switch {
	case fn.Native != nil:
		v, err = fn.Native(vm, args)
	case fn.Closure != nil:
		v, err = callClosure(vm, fn.Closure, args, span)
	default:
		return nil, atSpan(fmt.Errorf("function %q has no implementation", fn.Name), span)
	}
	if err != nil {
		return nil, traced(err, tp)
	}
	return v, nil
}

// callClosure binds args to a closure's parameters in a fresh scope chain
// rooted at the closure's captured frame, runs its body, and restores the
// caller's scopes afterward. The temporary swap is what lets a closure
// see its defining lexical environment instead of the caller's.
func callClosure(vm *Vm, c *ClosureValue, args *ArgsValue, span syntax.Span) (Value, error) {
	paramFrame := NewScope()
	posIdx := 0
	for _, p := range c.Params {
		switch {
		case p.Pattern != nil:
			v, ok := args.TakePositional(posIdx)
			if !ok {
				return nil, atSpan(fmt.Errorf("%s: missing argument at position %d", c.Name, posIdx), span)
			}
			posIdx++
			if err := bindPatternInto(paramFrame, p.Pattern.Pattern, v); err != nil {
				return nil, atSpan(err, span)
			}
		case p.Default != nil:
			if v, ok := args.Named[p.Name]; ok {
				paramFrame.Define(p.Name, v)
			} else {
				v, err := p.Default.Run(vm)
				if err != nil {
					return nil, err
				}
				paramFrame.Define(p.Name, v)
			}
		default:
			v, ok := args.TakePositional(posIdx)
			if !ok {
				return nil, atSpan(fmt.Errorf("%s: missing argument at position %d", c.Name, posIdx), span)
			}
			posIdx++
			paramFrame.Define(p.Name, v)
		}
	}
	if c.Sink != nil && *c.Sink != "" {
		rest := NewArgsValue(span)
		for i := posIdx; i < len(args.Pos); i++ {
			rest.PushPositional(args.Pos[i], span)
		}
		for _, k := range args.NamedOrder() {
			used := false
			for _, p := range c.Params {
				if p.Name == k {
					used = true
					break
				}
			}
			if !used {
				rest.SetNamed(k, args.Named[k])
			}
		}
		paramFrame.Define(*c.Sink, rest)
	}

	// A named closure is rebound into its own call frame so the body can
	// call itself by name, without requiring the capture snapshot taken
	// at construction time to see a binding that didn't exist yet.
	if c.Name != "" {
		paramFrame.Define(c.Name, &Func{Name: c.Name, Closure: c})
	}

	saved := vm.scopes
	vm.scopes = &Scopes{std: saved.std, frames: []*Scope{c.Capture, paramFrame}}
	defer func() { vm.scopes = saved }()

	result, err := c.Body.Run(vm)
	if err != nil {
		return nil, err
	}
	if flow := vm.PendingFlow(); flow != nil {
		vm.ClearFlow()
		if flow.Kind == FlowReturn {
			if flow.Value != nil {
				return flow.Value, nil
			}
			return None{}, nil
		}
		return nil, atSpan(&FlowMisplacedError{Kind: flow.Kind}, flow.Span)
	}
	return result, nil
}

// bindPatternInto binds pat against value directly in frame, used for
// closure parameter destructuring where the target frame is not yet the
// Vm's current top scope.
func bindPatternInto(frame *Scope, pat syntax.Pattern, value Value) error {
	tmp := &Scopes{std: NewScope(), frames: []*Scope{frame}}
	vm := &Vm{scopes: tmp}
	return bindPattern(vm, pat, value)
}

// assignDestructuring implements `(a, b) = expr`: unlike let-binding
// destructuring, every named leaf must already exist in an enclosing
// scope (or be a field/`.at()` target), so each leaf is routed through
// assignTo rather than Scopes.Define.
func assignDestructuring(vm *Vm, node *syntax.DestructuringNode, value Value) error {
	items := node.Items()
	switch v := value.(type) {
	case *ArrayValue:
		return assignArrayDestructuring(vm, items, v)
	case *DictValue:
		return assignDictDestructuring(vm, items, v)
	default:
		return &DestructureMismatchError{Reason: "value is not an array or dictionary"}
	}
}

func assignArrayDestructuring(vm *Vm, items []syntax.DestructuringItem, arr *ArrayValue) error {
	vals := arr.Items()
	if len(items) != len(vals) {
		return &DestructureMismatchError{Reason: "array length does not match pattern"}
	}
	for i, item := range items {
		b, ok := item.(*syntax.DestructuringBinding)
		if !ok {
			return &DestructureMismatchError{Reason: "unsupported destructuring assignment item"}
		}
		names := b.Pattern().Bindings()
		if len(names) != 1 {
			return &DestructureMismatchError{Reason: "nested destructuring assignment is not supported"}
		}
		if err := assignTo(vm, names[0], vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func assignDictDestructuring(vm *Vm, items []syntax.DestructuringItem, dict *DictValue) error {
	for _, item := range items {
		named, ok := item.(*syntax.DestructuringNamed)
		if !ok {
			return &DestructureMismatchError{Reason: "unsupported destructuring assignment item"}
		}
		key := named.Name().Get()
		v, ok := dict.Get(key)
		if !ok {
			return &DestructureMismatchError{Reason: "missing key " + key}
		}
		names := named.Pattern().Bindings()
		if len(names) != 1 {
			return &DestructureMismatchError{Reason: "nested destructuring assignment is not supported"}
		}
		if err := assignTo(vm, names[0], v); err != nil {
			return err
		}
	}
	return nil
}
