package eval

import (
	"github.com/solheim/marq/syntax"
)

// assignTo implements the lvalue side of `=`/`+=`/`-=`/`*=`/`/=`: it
// resolves target to a mutable slot and writes value into it. Only
// identifiers, dict field access, `.at(i)`/`.at(key)` method calls and
// call-index forms `x(i)`/`x(key)` are valid assignment targets; anything
// else is a NotAssignableError.
func assignTo(vm *Vm, target syntax.Expr, value Value) error {
	switch t := target.(type) {
	case *syntax.IdentExpr:
		frame, ok := vm.Scopes().GetMut(t.Get())
		if !ok {
			return &UnboundVariableError{Name: t.Get()}
		}
		frame.Define(t.Get(), value)
		return nil

	case *syntax.ParenthesizedExpr:
		return assignTo(vm, t.Expr(), value)

	case *syntax.FieldAccessExpr:
		recv, err := evalExpr(vm, t.Target())
		if err != nil {
			return err
		}
		dict, ok := recv.(*DictValue)
		if !ok {
			return &NotAssignableError{What: "a field of " + recv.Kind().String()}
		}
		dict.Set(t.Field().Get(), value)
		return nil

	case *syntax.FuncCallExpr:
		recvExpr := t.Callee()
		if field, ok := recvExpr.(*syntax.FieldAccessExpr); ok {
			if field.Field().Get() != "at" {
				return &NotAssignableError{What: "a function call"}
			}
			recvExpr = field.Target()
		}
		recv, err := evalExpr(vm, recvExpr)
		if err != nil {
			return err
		}
		args, err := evalArgs(vm, t.Args())
		if err != nil {
			return err
		}
		idx, err := args.Expect("at", 0)
		if err != nil {
			return err
		}
		switch r := recv.(type) {
		case *ArrayValue:
			i, ok := idx.(Int)
			if !ok {
				return &DestructureMismatchError{Reason: "array index must be an integer"}
			}
			return r.SetAt(int(i), value)
		case *DictValue:
			key, ok := idx.(Str)
			if !ok {
				return &DestructureMismatchError{Reason: "dict key must be a string"}
			}
			r.Set(string(key), value)
			return nil
		default:
			return &NotAssignableError{What: "at() on " + recv.Kind().String()}
		}

	default:
		return &NotAssignableError{What: "this expression"}
	}
}

// readTarget reads the current value at an assignment target, used by
// the compound assignment operators (`+=` and friends) which need both
// the old and new value.
func readTarget(vm *Vm, target syntax.Expr) (Value, error) {
	return evalExpr(vm, target)
}

func evalCompoundAssign(vm *Vm, op syntax.BinOp, target syntax.Expr, rhs Value) (Value, error) {
	cur, err := readTarget(vm, target)
	if err != nil {
		return nil, err
	}
	var next Value
	switch op {
	case syntax.BinOpAddAssign:
		next, err = add(cur, rhs)
	case syntax.BinOpSubAssign:
		next, err = sub(cur, rhs)
	case syntax.BinOpMulAssign:
		next, err = mul(cur, rhs)
	case syntax.BinOpDivAssign:
		next, err = div(cur, rhs)
	default:
		next, err = rhs, nil
	}
	if err != nil {
		return nil, err
	}
	if err := assignTo(vm, target, next); err != nil {
		return nil, err
	}
	return None{}, nil
}
