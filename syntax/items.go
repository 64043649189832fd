package syntax

// This file defines the small node-backed item types that decorate the
// AST's collection literals: call arguments, array/dict entries,
// closure parameters, and import items. Each type wraps the untyped
// node the parser produced and exposes a typed accessor or two.

// exprAfterColon walks node's children past a Colon token and returns
// the expression that follows, optionally skipping leading trivia
// (named call arguments allow `f(x: \n 1)`; dict/param items don't need
// to since the parser never leaves trivia there).
func exprAfterColon(node *SyntaxNode, skipTrivia bool) Expr {
	afterColon := false
	for _, child := range node.Children() {
		if !afterColon {
			if child.Kind() == Colon {
				afterColon = true
			}
			continue
		}
		if skipTrivia {
			switch child.Kind() {
			case Space, Linebreak, Parbreak:
				continue
			}
		}
		return ExprFromNode(child)
	}
	return nil
}

// exprAfterDots returns the expression following a `..` spread marker
// inside node, used by every *SpreadItem/*SpreadArg type.
func exprAfterDots(node *SyntaxNode) Expr {
	for _, child := range node.Children() {
		if child.Kind() != Dots {
			return ExprFromNode(child)
		}
	}
	return nil
}

// identChild returns the node's first Ident child as an *IdentExpr, or
// nil if it has none.
func identChild(node *SyntaxNode) *IdentExpr {
	if child := node.CastFirst(Ident); child != nil {
		return &IdentExpr{node: child}
	}
	return nil
}

// --- call arguments: f(pos, name: value, ..spread) ---

// Arg is one argument in a function call.
type Arg interface {
	isArg()
}

// ArgFromNode classifies a call-argument-list child, returning nil for
// trivia and delimiter tokens that aren't arguments at all.
func ArgFromNode(node *SyntaxNode) Arg {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case Space, Linebreak, Parbreak, Comma, LeftParen, RightParen:
		return nil
	case Spread:
		return &SpreadArg{node: node}
	case Named:
		return &NamedArg{node: node}
	default:
		if expr := ExprFromNode(node); expr != nil {
			return &PosArg{expr: expr}
		}
		return nil
	}
}

// PosArg is a positional argument: `f(x)`.
type PosArg struct {
	expr Expr
}

func (a *PosArg) isArg() {}

func (a *PosArg) Expr() Expr { return a.expr }

// NamedArg is a keyword argument: `f(name: value)`.
type NamedArg struct {
	node *SyntaxNode
}

func (a *NamedArg) isArg() {}

func (a *NamedArg) Name() *IdentExpr { return identChild(a.node) }
func (a *NamedArg) Expr() Expr       { return exprAfterColon(a.node, true) }

// SpreadArg passes an array or args value as a run of positional/named
// arguments: `f(..args)`.
type SpreadArg struct {
	node *SyntaxNode
}

func (a *SpreadArg) isArg() {}

func (a *SpreadArg) Expr() Expr { return exprAfterDots(a.node) }

// --- array items: (1, 2, ..rest) ---

// ArrayItem is one element of an array literal.
type ArrayItem interface {
	isArrayItem()
}

// ArrayItemFromNode classifies an array-literal child, returning nil for
// trivia and delimiter tokens.
func ArrayItemFromNode(node *SyntaxNode) ArrayItem {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case Space, Linebreak, Parbreak, Comma, LeftParen, RightParen:
		return nil
	case Spread:
		return &ArraySpreadItem{node: node}
	default:
		if expr := ExprFromNode(node); expr != nil {
			return &ArrayPosItem{expr: expr}
		}
		return nil
	}
}

// ArrayPosItem is a plain positional element.
type ArrayPosItem struct {
	expr Expr
}

func (i *ArrayPosItem) isArrayItem() {}

func (i *ArrayPosItem) Expr() Expr { return i.expr }

// ArraySpreadItem splices another array's elements in: `(..items)`.
type ArraySpreadItem struct {
	node *SyntaxNode
}

func (i *ArraySpreadItem) isArrayItem() {}

func (i *ArraySpreadItem) Expr() Expr { return exprAfterDots(i.node) }

// --- dict items: (a: 1, "b": 2, ..rest) ---

// DictItem is one entry of a dictionary literal.
type DictItem interface {
	isDictItem()
}

// DictItemFromNode classifies a dict-literal child.
func DictItemFromNode(node *SyntaxNode) DictItem {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case Spread:
		return &DictSpreadItem{node: node}
	case Named:
		return &DictNamedItem{node: node}
	case Keyed:
		return &DictKeyedItem{node: node}
	default:
		return nil
	}
}

// DictNamedItem keys a value by a bare identifier: `(a: 1)`.
type DictNamedItem struct {
	node *SyntaxNode
}

func (i *DictNamedItem) isDictItem() {}

func (i *DictNamedItem) Name() *IdentExpr { return identChild(i.node) }
func (i *DictNamedItem) Expr() Expr       { return exprAfterColon(i.node, false) }

// DictKeyedItem keys a value by an arbitrary expression: `("key": 1)`.
type DictKeyedItem struct {
	node *SyntaxNode
}

func (i *DictKeyedItem) isDictItem() {}

// Key returns the key expression (the item's first child).
func (i *DictKeyedItem) Key() Expr {
	children := i.node.Children()
	if len(children) == 0 {
		return nil
	}
	return ExprFromNode(children[0])
}

func (i *DictKeyedItem) Expr() Expr { return exprAfterColon(i.node, false) }

// DictSpreadItem merges another dict's entries in: `(..other)`.
type DictSpreadItem struct {
	node *SyntaxNode
}

func (i *DictSpreadItem) isDictItem() {}

func (i *DictSpreadItem) Expr() Expr { return exprAfterDots(i.node) }

// --- closure/function parameters ---

// Param is one entry in a parameter list.
type Param interface {
	isParam()
}

// ParamFromNode classifies a parameter-list child by its node kind.
func ParamFromNode(node *SyntaxNode) Param {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case Spread:
		return &SinkParam{node: node}
	case Named:
		return &NamedParam{node: node}
	case Destructuring:
		return &DestructuringParam{node: node}
	case Ident:
		return &PosParam{node: node}
	case Underscore:
		return &PlaceholderParam{node: node}
	default:
		return nil
	}
}

// PosParam is a plain required parameter: `(x)`.
type PosParam struct {
	node *SyntaxNode
}

func (p *PosParam) isParam() {}

func (p *PosParam) Name() *IdentExpr { return &IdentExpr{node: p.node} }

// PlaceholderParam accepts and discards an argument: `(_)`.
type PlaceholderParam struct {
	node *SyntaxNode
}

func (p *PlaceholderParam) isParam() {}

// NamedParam is a parameter with a default value: `(x: 1)`.
type NamedParam struct {
	node *SyntaxNode
}

func (p *NamedParam) isParam() {}

func (p *NamedParam) Name() *IdentExpr { return identChild(p.node) }
func (p *NamedParam) Default() Expr    { return exprAfterColon(p.node, false) }

// SinkParam collects the remaining arguments: `(..rest)`.
type SinkParam struct {
	node *SyntaxNode
}

func (p *SinkParam) isParam() {}

// Name returns the sink's binding name, or nil for a bare `..`.
func (p *SinkParam) Name() *IdentExpr { return identChild(p.node) }

// DestructuringParam destructures the matching positional argument:
// `((a, b))`.
type DestructuringParam struct {
	node *SyntaxNode
}

func (p *DestructuringParam) isParam() {}

func (p *DestructuringParam) Pattern() *DestructuringNode {
	return &DestructuringNode{node: p.node}
}

// --- import item lists ---

// Imports is the right-hand side of `import "path": ...`.
type Imports interface {
	isImports()
}

// ImportsWildcard is a star-import: `import "x": *`.
type ImportsWildcard struct{}

func (i *ImportsWildcard) isImports() {}

// ImportItemsNode is an explicit, possibly-renamed item list.
type ImportItemsNode struct {
	node *SyntaxNode
}

func (i *ImportItemsNode) isImports() {}

// Items returns the listed import items in source order.
func (i *ImportItemsNode) Items() []*ImportItem {
	var items []*ImportItem
	for _, child := range i.node.Children() {
		if child.Kind() == ImportItemPath || child.Kind() == RenamedImportItem {
			items = append(items, &ImportItem{node: child})
		}
	}
	return items
}

// ImportItem is a single dotted path, optionally renamed with `as`.
type ImportItem struct {
	node *SyntaxNode
}

// Path returns the dotted path's identifier segments.
func (i *ImportItem) Path() []string {
	var segments []string
	for _, child := range i.node.Children() {
		if child.Kind() == Ident {
			segments = append(segments, child.Text())
		}
	}
	return segments
}

// NewName returns the `as` rename target, or nil if the item wasn't
// renamed.
func (i *ImportItem) NewName() *IdentExpr {
	if i.node.Kind() != RenamedImportItem {
		return nil
	}
	children := i.node.Children()
	for j, child := range children {
		if child.Kind() != As || j+1 >= len(children) {
			continue
		}
		if next := children[j+1]; next.Kind() == Ident {
			return &IdentExpr{node: next}
		}
	}
	return nil
}
