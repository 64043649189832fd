package eval

import (
	"fmt"

	"github.com/solheim/marq/syntax"
)

// evalBinary implements the non-assignment binary operators. Assignment
// forms are handled separately in access.go since they need an lvalue
// access path rather than two plain values.
func evalBinary(op syntax.BinOp, lhs, rhs Value) (Value, error) {
	switch op {
	case syntax.BinOpAdd:
		return add(lhs, rhs)
	case syntax.BinOpSub:
		return sub(lhs, rhs)
	case syntax.BinOpMul:
		return mul(lhs, rhs)
	case syntax.BinOpDiv:
		return div(lhs, rhs)
	case syntax.BinOpEq:
		return Bool(equalValues(lhs, rhs)), nil
	case syntax.BinOpNeq:
		return Bool(!equalValues(lhs, rhs)), nil
	case syntax.BinOpLt:
		return compareOp(lhs, rhs, func(c int) bool { return c < 0 })
	case syntax.BinOpLeq:
		return compareOp(lhs, rhs, func(c int) bool { return c <= 0 })
	case syntax.BinOpGt:
		return compareOp(lhs, rhs, func(c int) bool { return c > 0 })
	case syntax.BinOpGeq:
		return compareOp(lhs, rhs, func(c int) bool { return c >= 0 })
	case syntax.BinOpIn:
		return inOp(lhs, rhs)
	case syntax.BinOpNotIn:
		v, err := inOp(lhs, rhs)
		if err != nil {
			return nil, err
		}
		return Bool(!bool(v.(Bool))), nil
	default:
		return nil, fmt.Errorf("operator %s cannot be evaluated without an access path", op.Name())
	}
}

func compareOp(lhs, rhs Value, pred func(int) bool) (Value, error) {
	c, ok := compareValues(lhs, rhs)
	if !ok {
		return nil, fmt.Errorf("cannot compare %s and %s", lhs.Kind(), rhs.Kind())
	}
	return Bool(pred(c)), nil
}

func inOp(lhs, rhs Value) (Value, error) {
	switch r := rhs.(type) {
	case Str:
		l, ok := lhs.(Str)
		if !ok {
			return nil, fmt.Errorf("expected string, found %s", lhs.Kind())
		}
		return Bool(r.Contains(l)), nil
	case *ArrayValue:
		for _, v := range r.items {
			if equalValues(lhs, v) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	case *DictValue:
		l, ok := lhs.(Str)
		if !ok {
			return nil, fmt.Errorf("expected string key, found %s", lhs.Kind())
		}
		_, found := r.Get(string(l))
		return Bool(found), nil
	default:
		return nil, fmt.Errorf("cannot use `in` on %s", rhs.Kind())
	}
}

func add(lhs, rhs Value) (Value, error) {
	if ls, ok := lhs.(Str); ok {
		if rs, ok := rhs.(Str); ok {
			return ls.Concat(rs), nil
		}
		return nil, typeMismatch("+", lhs, rhs)
	}
	if la, ok := lhs.(*ArrayValue); ok {
		if ra, ok := rhs.(*ArrayValue); ok {
			return la.Concat(ra), nil
		}
		return nil, typeMismatch("+", lhs, rhs)
	}
	if lc, ok := lhs.(*Content); ok {
		rc, ok := rhs.(*Content)
		if !ok {
			return nil, typeMismatch("+", lhs, rhs)
		}
		return JoinContent(lc, rc), nil
	}
	if lf, lok := asFloat(lhs); lok {
		if rf, rok := asFloat(rhs); rok {
			if li, liok := lhs.(Int); liok {
				if ri, riok := rhs.(Int); riok {
					return li + ri, nil
				}
			}
			return Float(lf + rf), nil
		}
	}
	return nil, typeMismatch("+", lhs, rhs)
}

func sub(lhs, rhs Value) (Value, error) {
	if li, ok := lhs.(Int); ok {
		if ri, ok := rhs.(Int); ok {
			return li - ri, nil
		}
	}
	if lf, lok := asFloat(lhs); lok {
		if rf, rok := asFloat(rhs); rok {
			return Float(lf - rf), nil
		}
	}
	return nil, typeMismatch("-", lhs, rhs)
}

func mul(lhs, rhs Value) (Value, error) {
	if ls, ok := lhs.(Str); ok {
		if ri, ok := rhs.(Int); ok {
			s, err := ls.Repeat(int(ri))
			return s, err
		}
	}
	if li, ok := lhs.(Int); ok {
		if ri, ok := rhs.(Int); ok {
			return li * ri, nil
		}
	}
	if lf, lok := asFloat(lhs); lok {
		if rf, rok := asFloat(rhs); rok {
			return Float(lf * rf), nil
		}
	}
	return nil, typeMismatch("*", lhs, rhs)
}

func div(lhs, rhs Value) (Value, error) {
	rf, rok := asFloat(rhs)
	if !rok {
		return nil, typeMismatch("/", lhs, rhs)
	}
	if rf == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	lf, lok := asFloat(lhs)
	if !lok {
		return nil, typeMismatch("/", lhs, rhs)
	}
	if li, liok := lhs.(Int); liok {
		if ri, riok := rhs.(Int); riok && ri != 0 && int64(li)%int64(ri) == 0 {
			return li / ri, nil
		}
	}
	return Float(lf / rf), nil
}

func typeMismatch(op string, lhs, rhs Value) error {
	return fmt.Errorf("cannot apply %q to %s and %s", op, lhs.Kind(), rhs.Kind())
}

// join implements the binary join operator used to combine successive
// values in a code block: None is the identity, Content values and Str
// values concatenate, anything else joins with itself by following its
// own kind's addition, and mixed kinds are a type error.
func join(a, b Value) (Value, error) {
	if _, ok := a.(None); ok {
		return b, nil
	}
	if _, ok := b.(None); ok {
		return a, nil
	}
	if ac, ok := a.(*Content); ok {
		bc, ok := b.(*Content)
		if !ok {
			return nil, fmt.Errorf("cannot join %s with %s", a.Kind(), b.Kind())
		}
		return JoinContent(ac, bc), nil
	}
	if as, ok := a.(Str); ok {
		bs, ok := b.(Str)
		if !ok {
			return nil, fmt.Errorf("cannot join %s with %s", a.Kind(), b.Kind())
		}
		return as.Concat(bs), nil
	}
	if a.Kind() == b.Kind() {
		return add(a, b)
	}
	return nil, fmt.Errorf("cannot join %s with %s", a.Kind(), b.Kind())
}
