package eval

import (
	"strings"

	"github.com/solheim/marq/syntax"
)

// evalMarkup evaluates a markup container to a single Content value. Set
// and show rules are forward-scoped: each one recursively evaluates every
// sibling that follows it first, then wraps that whole tail in a styled
// node, exactly mirroring how `#set`/`#show` apply to "the rest of the
// document" rather than mutating an ambient style in place.
func evalMarkup(vm *Vm, m *syntax.MarkupNode) (*Content, error) {
	if m == nil {
		return Empty(), nil
	}
	// A flow already pending when the block is entered is taken out and
	// re-set on exit, so a nested block cannot consume a signal that
	// belongs to an outer loop or closure.
	entry := vm.PendingFlow()
	vm.ClearFlow()
	c, err := evalMarkupExprs(vm, m.Exprs())
	if err != nil {
		return nil, err
	}
	if entry != nil {
		vm.SetFlow(entry)
	}
	return c, nil
}

func evalMarkupExprs(vm *Vm, exprs []syntax.Expr) (*Content, error) {
	if len(exprs) == 0 {
		return Empty(), nil
	}
	head, rest := exprs[0], exprs[1:]

	switch e := head.(type) {
	case *syntax.SetRuleExpr:
		style, err := evalSetRule(vm, e)
		if err != nil {
			return nil, err
		}
		if vm.PendingFlow() != nil {
			return Empty(), nil
		}
		tail, err := evalMarkupExprs(vm, rest)
		if err != nil {
			return nil, err
		}
		return StyledWithMap(tail, style), nil

	case *syntax.ShowRuleExpr:
		recipe, err := evalShowRule(vm, e)
		if err != nil {
			return nil, err
		}
		if vm.PendingFlow() != nil {
			return Empty(), nil
		}
		tail, err := evalMarkupExprs(vm, rest)
		if err != nil {
			return nil, err
		}
		return StyledWithRecipe(tail, recipe), nil

	case *syntax.WrapRuleExpr:
		tail, err := evalMarkupExprs(vm, rest)
		if err != nil {
			return nil, err
		}
		if name := e.Binding(); name != nil {
			vm.Scopes().Define(name.Get(), tail)
		}
		v, err := evalExpr(vm, e.Body())
		if err != nil {
			return nil, err
		}
		return valueToContent(v), nil

	default:
		head, err := evalMarkupLeaf(vm, e)
		if err != nil {
			return nil, err
		}
		if vm.PendingFlow() != nil {
			return head, nil
		}
		tail, err := evalMarkupExprs(vm, rest)
		if err != nil {
			return nil, err
		}
		return JoinContent(head, tail), nil
	}
}

// evalSetRule evaluates `set target(named: args) [if cond]` into a style
// map entry. Only the named arguments of the call matter: a set rule
// configures a function's defaults, it does not invoke it.
func evalSetRule(vm *Vm, e *syntax.SetRuleExpr) (StyleMap, error) {
	if cond := e.Condition(); cond != nil {
		v, err := evalExpr(vm, cond)
		if err != nil {
			return nil, err
		}
		truthy, ok := Truthy(v)
		if !ok {
			return nil, typeMismatch("if", v, Bool(false))
		}
		if !truthy {
			return nil, nil
		}
	}

	call, ok := e.Target().(*syntax.FuncCallExpr)
	if !ok {
		return nil, &NotAssignableError{What: "a set rule target that is not a function call"}
	}
	ident, ok := call.Callee().(*syntax.IdentExpr)
	if !ok {
		return nil, &NotAssignableError{What: "a set rule target that is not a named function"}
	}
	args, err := evalArgs(vm, call.Args())
	if err != nil {
		return nil, err
	}
	return StyleMap{{FuncName: ident.Get(), Args: args.Named}}, nil
}

// evalShowRule evaluates `show [selector]: transform` into a recipe.
// Applying a recipe against matching content is a layout-time concern
// (per Content's Recipe field) and is not performed here; the evaluator
// only records the pairing.
func evalShowRule(vm *Vm, e *syntax.ShowRuleExpr) (Recipe, error) {
	var sel Value
	if selExpr := e.Selector(); selExpr != nil {
		v, err := evalExpr(vm, selExpr)
		if err != nil {
			return Recipe{}, err
		}
		sel = v
	}
	transform, err := evalExpr(vm, e.Transform())
	if err != nil {
		return Recipe{}, err
	}
	return Recipe{Selector: sel, Transform: transform}, nil
}

// evalMarkupLeaf evaluates a single markup node (anything other than a
// set/show rule, which evalMarkupExprs handles specially) into Content.
func evalMarkupLeaf(vm *Vm, e syntax.Expr) (*Content, error) {
	switch n := e.(type) {
	case *syntax.TextExpr:
		return TextContent(n.Get()), nil
	case *syntax.SpaceExpr:
		return SpaceContent(), nil
	case *syntax.LinebreakExpr:
		return LinebreakContent(true), nil
	case *syntax.ParbreakExpr:
		return ParbreakContent(), nil
	case *syntax.EscapeExpr:
		return TextContent(string(n.Get())), nil
	case *syntax.ShorthandExpr:
		return TextContent(n.Get()), nil
	case *syntax.SmartQuoteExpr:
		return QuoteContent(n.Double()), nil

	case *syntax.StrongExpr:
		inner, err := evalMarkup(vm, n.Body())
		if err != nil {
			return nil, err
		}
		return elementContent("strong", inner, nil), nil

	case *syntax.EmphExpr:
		inner, err := evalMarkup(vm, n.Body())
		if err != nil {
			return nil, err
		}
		return elementContent("emph", inner, nil), nil

	case *syntax.RawExpr:
		return TextContent(strings.Join(n.Lines(), "\n")), nil

	case *syntax.LinkExpr:
		return TextContent(n.Get()), nil

	case *syntax.LabelExpr:
		return Empty(), nil

	case *syntax.RefExpr:
		return TextContent("@" + n.Target()), nil

	case *syntax.HeadingExpr:
		inner, err := evalMarkup(vm, n.Body())
		if err != nil {
			return nil, err
		}
		return elementContent("heading", inner, map[string]Value{"level": Int(n.Level())}), nil

	case *syntax.ListItemExpr:
		inner, err := evalMarkup(vm, n.Body())
		if err != nil {
			return nil, err
		}
		return ItemContent(&ListItem{ItemKind: ItemBullet, Body: inner}), nil

	case *syntax.EnumItemExpr:
		inner, err := evalMarkup(vm, n.Body())
		if err != nil {
			return nil, err
		}
		return ItemContent(&ListItem{ItemKind: ItemNumbered, Number: n.Number(), Body: inner}), nil

	case *syntax.TermItemExpr:
		term, err := evalMarkup(vm, n.Term())
		if err != nil {
			return nil, err
		}
		desc, err := evalMarkup(vm, n.Description())
		if err != nil {
			return nil, err
		}
		return ItemContent(&ListItem{ItemKind: ItemTerm, Term: term, Body: desc}), nil

	case *syntax.EquationExpr:
		// Math layout is out of scope; the source text stands in as the
		// rendered form so expressions embedded in math still surface.
		return TextContent(n.ToUntyped().Text()), nil

	default:
		v, err := evalExpr(vm, e)
		if err != nil {
			return nil, err
		}
		if vm.PendingFlow() != nil {
			return Empty(), nil
		}
		return valueToContent(v), nil
	}
}

// elementContent wraps inner in a Show node exposing a "body" field (and
// any extra fields), the shape every markup-native element takes so show
// rules written against `it.body` work uniformly regardless of which
// construct produced the content.
func elementContent(name string, inner *Content, extra map[string]Value) *Content {
	fields := map[string]Value{
		"func": Str(name),
		"body": wrapContent(inner),
	}
	for k, v := range extra {
		fields[k] = v
	}
	return ShowContent(inner, fields)
}

func wrapContent(c *Content) Value {
	if c == nil {
		return Empty()
	}
	return c
}

func valueToContent(v Value) *Content {
	if v == nil {
		return Empty()
	}
	if c, ok := v.(*Content); ok {
		return c
	}
	if _, ok := v.(None); ok {
		return Empty()
	}
	return TextContent(Display(v))
}
