package eval

import (
	"fmt"

	"github.com/solheim/marq/syntax"
)

// callMethod dispatches a `.name(args)` call on recv. Array and Dict are
// reference-typed Values in this evaluator (their receivers are pointers
// shared with whatever scope slot holds them), so the mutating methods
// below write through recv directly rather than needing a separate lvalue
// access path the way a value-typed original would.
func callMethod(vm *Vm, recv Value, name string, args *ArgsValue, span syntax.Span) (Value, error) {
	switch v := recv.(type) {
	case *ArrayValue:
		return callArrayMethod(vm, v, name, args, span)
	case *DictValue:
		return callDictMethod(v, name, args, span)
	case Str:
		return callStrMethod(v, name, args, span)
	default:
		return nil, atSpan(fmt.Errorf("type %s has no method `%s`", recv.Kind(), name), span)
	}
}

func callArrayMethod(vm *Vm, v *ArrayValue, name string, args *ArgsValue, span syntax.Span) (Value, error) {
	switch name {
	case "map":
		fnArg, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		fn, ok := fnArg.(*Func)
		if !ok {
			return nil, fmt.Errorf("expected function, found %s", fnArg.Kind())
		}
		return v.Map(func(item Value) (Value, error) {
			return callFunc(vm, fn, oneArg(span, item), span)
		})

	case "filter":
		fnArg, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		fn, ok := fnArg.(*Func)
		if !ok {
			return nil, fmt.Errorf("expected function, found %s", fnArg.Kind())
		}
		return v.Filter(func(item Value) (bool, error) {
			r, err := callFunc(vm, fn, oneArg(span, item), span)
			if err != nil {
				return false, err
			}
			b, ok := r.(Bool)
			if !ok {
				return false, fmt.Errorf("filter function must return a boolean")
			}
			return bool(b), nil
		})

	case "fold":
		init, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		fnArg, err := args.Expect(name, 1)
		if err != nil {
			return nil, err
		}
		fn, ok := fnArg.(*Func)
		if !ok {
			return nil, fmt.Errorf("expected function, found %s", fnArg.Kind())
		}
		return v.Fold(init, func(acc, item Value) (Value, error) {
			a := NewArgsValue(span)
			a.PushPositional(acc, span)
			a.PushPositional(item, span)
			return callFunc(vm, fn, a, span)
		})

	case "sum":
		acc := Value(Int(0))
		for i, item := range v.Items() {
			if i == 0 {
				acc = item
				continue
			}
			var err error
			acc, err = add(acc, item)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	case "push":
		val, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		v.Push(val)
		return None{}, nil

	case "pop":
		return v.Pop()

	case "insert":
		idx, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		val, err := args.Expect(name, 1)
		if err != nil {
			return nil, err
		}
		i, ok := idx.(Int)
		if !ok {
			return nil, fmt.Errorf("expected integer, found %s", idx.Kind())
		}
		return None{}, v.Insert(int(i), val)

	case "remove":
		idx, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		i, ok := idx.(Int)
		if !ok {
			return nil, fmt.Errorf("expected integer, found %s", idx.Kind())
		}
		return v.Remove(int(i))

	case "first":
		if v.Len() == 0 {
			return nil, fmt.Errorf("array is empty")
		}
		return v.At(0)

	case "last":
		if v.Len() == 0 {
			return nil, fmt.Errorf("array is empty")
		}
		return v.At(v.Len() - 1)

	case "at":
		idx, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		i, ok := idx.(Int)
		if !ok {
			return nil, fmt.Errorf("expected integer, found %s", idx.Kind())
		}
		return v.At(int(i))

	case "len":
		return Int(v.Len()), nil

	case "slice":
		start, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		si, ok := start.(Int)
		if !ok {
			return nil, fmt.Errorf("expected integer, found %s", start.Kind())
		}
		end := Int(v.Len())
		if e, ok := args.TakePositional(1); ok {
			if ei, ok := e.(Int); ok {
				end = ei
			}
		}
		out := make([]Value, 0, int(end-si))
		for i := int(si); i < int(end); i++ {
			item, err := v.At(i)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return NewArrayValue(out), nil

	case "contains":
		needle, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		for _, item := range v.Items() {
			if equalValues(item, needle) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil

	case "join":
		sep := Str("")
		if s, ok := args.TakePositional(0); ok {
			if str, ok := s.(Str); ok {
				sep = str
			}
		}
		out := ""
		for i, item := range v.Items() {
			if i > 0 {
				out += string(sep)
			}
			out += Display(item)
		}
		return Str(out), nil

	default:
		return nil, atSpan(fmt.Errorf("type %s has no method `%s`", v.Kind(), name), span)
	}
}

func callDictMethod(v *DictValue, name string, args *ArgsValue, span syntax.Span) (Value, error) {
	switch name {
	case "insert":
		keyArg, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		key, ok := keyArg.(Str)
		if !ok {
			return nil, fmt.Errorf("expected string, found %s", keyArg.Kind())
		}
		val, err := args.Expect(name, 1)
		if err != nil {
			return nil, err
		}
		v.Set(string(key), val)
		return None{}, nil

	case "remove":
		keyArg, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		key, ok := keyArg.(Str)
		if !ok {
			return nil, fmt.Errorf("expected string, found %s", keyArg.Kind())
		}
		val, ok := v.Remove(string(key))
		if !ok {
			return nil, atSpan(fmt.Errorf("dictionary does not contain key %q", string(key)), span)
		}
		return val, nil

	case "at":
		keyArg, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		key, ok := keyArg.(Str)
		if !ok {
			return nil, fmt.Errorf("expected string, found %s", keyArg.Kind())
		}
		val, ok := v.Get(string(key))
		if !ok {
			return nil, atSpan(fmt.Errorf("dictionary does not contain key %q", string(key)), span)
		}
		return val, nil

	case "len":
		return Int(v.Len()), nil

	case "keys":
		keys := v.Keys()
		out := make([]Value, len(keys))
		for i, k := range keys {
			out[i] = Str(k)
		}
		return NewArrayValue(out), nil

	case "values":
		keys := v.Keys()
		out := make([]Value, len(keys))
		for i, k := range keys {
			val, _ := v.Get(k)
			out[i] = val
		}
		return NewArrayValue(out), nil

	case "pairs":
		keys := v.Keys()
		out := make([]Value, len(keys))
		for i, k := range keys {
			val, _ := v.Get(k)
			out[i] = NewArrayValue([]Value{Str(k), val})
		}
		return NewArrayValue(out), nil

	default:
		return nil, atSpan(fmt.Errorf("type %s has no method `%s`", v.Kind(), name), span)
	}
}

func callStrMethod(v Str, name string, args *ArgsValue, span syntax.Span) (Value, error) {
	switch name {
	case "len":
		return Int(v.Len()), nil
	case "at":
		idx, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		i, ok := idx.(Int)
		if !ok {
			return nil, fmt.Errorf("expected integer, found %s", idx.Kind())
		}
		return v.At(int(i))
	case "slice":
		start, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		si, ok := start.(Int)
		if !ok {
			return nil, fmt.Errorf("expected integer, found %s", start.Kind())
		}
		end := Int(v.Len())
		if e, ok := args.TakePositional(1); ok {
			if ei, ok := e.(Int); ok {
				end = ei
			}
		}
		return v.Slice(int(si), int(end))
	case "upper":
		return v.Upper(), nil
	case "lower":
		return v.Lower(), nil
	case "contains":
		needle, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		n, ok := needle.(Str)
		if !ok {
			return nil, fmt.Errorf("expected string, found %s", needle.Kind())
		}
		return Bool(v.Contains(n)), nil
	case "split":
		sepArg, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		sep, ok := sepArg.(Str)
		if !ok {
			return nil, fmt.Errorf("expected string, found %s", sepArg.Kind())
		}
		parts := v.Split(sep)
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return NewArrayValue(out), nil
	case "trim":
		return v.Trim(), nil
	case "ends-with":
		suffix, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		s, ok := suffix.(Str)
		if !ok {
			return nil, fmt.Errorf("expected string, found %s", suffix.Kind())
		}
		return Bool(len(v) >= len(s) && v[len(v)-len(s):] == s), nil
	case "starts-with":
		prefix, err := args.Expect(name, 0)
		if err != nil {
			return nil, err
		}
		s, ok := prefix.(Str)
		if !ok {
			return nil, fmt.Errorf("expected string, found %s", prefix.Kind())
		}
		return Bool(len(v) >= len(s) && v[:len(s)] == s), nil
	default:
		return nil, atSpan(fmt.Errorf("type %s has no method `%s`", v.Kind(), name), span)
	}
}

// isMutatingMethodFor reports whether name mutates its receiver in place
// for the given receiver kind, mirroring the surface language's fixed
// is_mutating_method/is_accessor_method partition: push/pop/insert/remove
// on arrays and insert/remove on dicts write through the receiver; every
// other method (map/filter/first/at/keys/... ) only reads it.
func isMutatingMethodFor(kind Kind, name string) bool {
	switch kind {
	case KArray:
		return isMutatingMethod(name)
	case KDict:
		switch name {
		case "insert", "remove":
			return true
		}
	}
	return false
}
