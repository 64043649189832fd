package syntax

// Pattern is a binding target on the left of `let`, a `for` loop
// iteration variable, or a closure parameter: a plain name, `_`, a
// parenthesized pattern, or a full destructuring pattern.
type Pattern interface {
	AstNode
	isPattern()
	// Bindings lists every identifier this pattern would bind, walking
	// into nested parens/destructuring so a caller never has to recurse
	// itself.
	Bindings() []*IdentExpr
}

// wrapPatternNode builds the wrapper for each node kind that can stand
// for a pattern (nil for any other kind); PatternFromNode consults it twice
// (once on node's first matching child, once on node itself) since the
// parser sometimes hands back a wrapping node and sometimes the pattern
// node directly.
func wrapPatternNode(kind SyntaxKind, node *SyntaxNode) Pattern {
	switch kind {
	case Destructuring:
		return &DestructuringPattern{node: node}
	case Parenthesized:
		return &ParenthesizedPattern{node: node}
	case Underscore:
		return &PlaceholderPattern{node: node}
	case Ident:
		return &NormalPattern{node: node}
	default:
		return nil
	}
}

// PatternFromNode builds the typed Pattern a raw syntax node represents,
// or nil if node isn't (and doesn't contain) one of the recognized
// pattern kinds.
func PatternFromNode(node *SyntaxNode) Pattern {
	if node == nil {
		return nil
	}
	for _, kind := range [...]SyntaxKind{Destructuring, Parenthesized, Underscore, Ident} {
		if child := node.CastFirst(kind); child != nil {
			return wrapPatternNode(kind, child)
		}
	}
	return wrapPatternNode(node.Kind(), node)
}

// NormalPattern is a plain name binding: `x`.
type NormalPattern struct {
	node *SyntaxNode
}

func (p *NormalPattern) Kind() SyntaxKind       { return Ident }
func (p *NormalPattern) ToUntyped() *SyntaxNode { return p.node }
func (p *NormalPattern) isAstNode()             {}
func (p *NormalPattern) isPattern()             {}

// Name reports the bound identifier's text.
func (p *NormalPattern) Name() string {
	return p.node.Text()
}

func (p *NormalPattern) Bindings() []*IdentExpr {
	return []*IdentExpr{{node: p.node}}
}

// NormalPatternFromNode narrows node to *NormalPattern, or nil if it
// isn't an Ident node.
func NormalPatternFromNode(node *SyntaxNode) *NormalPattern {
	if node == nil || node.Kind() != Ident {
		return nil
	}
	return &NormalPattern{node: node}
}

// PlaceholderPattern is the `_` sink pattern: it accepts any value and
// binds nothing.
type PlaceholderPattern struct {
	node *SyntaxNode
}

func (p *PlaceholderPattern) Kind() SyntaxKind       { return Underscore }
func (p *PlaceholderPattern) ToUntyped() *SyntaxNode { return p.node }
func (p *PlaceholderPattern) isAstNode()             {}
func (p *PlaceholderPattern) isPattern()             {}

// PlaceholderPatternFromNode narrows node to *PlaceholderPattern, or nil
// if it isn't an Underscore node.
func PlaceholderPatternFromNode(node *SyntaxNode) *PlaceholderPattern {
	if node == nil || node.Kind() != Underscore {
		return nil
	}
	return &PlaceholderPattern{node: node}
}

func (p *PlaceholderPattern) Bindings() []*IdentExpr {
	return nil
}

// ParenthesizedPattern wraps a single inner pattern in parens: `(x)`.
// Distinct from DestructuringPattern, which always has comma-separated
// items even when there is only one.
type ParenthesizedPattern struct {
	node *SyntaxNode
}

func (p *ParenthesizedPattern) Kind() SyntaxKind       { return Parenthesized }
func (p *ParenthesizedPattern) ToUntyped() *SyntaxNode { return p.node }
func (p *ParenthesizedPattern) isAstNode()             {}
func (p *ParenthesizedPattern) isPattern()             {}

// Pattern returns the inner pattern, skipping the delimiter tokens.
func (p *ParenthesizedPattern) Pattern() Pattern {
	for _, child := range p.node.Children() {
		if child.Kind() == LeftParen || child.Kind() == RightParen {
			continue
		}
		return PatternFromNode(child)
	}
	return nil
}

// ParenthesizedPatternFromNode narrows node to *ParenthesizedPattern, or
// nil if it isn't a Parenthesized node.
func ParenthesizedPatternFromNode(node *SyntaxNode) *ParenthesizedPattern {
	if node == nil || node.Kind() != Parenthesized {
		return nil
	}
	return &ParenthesizedPattern{node: node}
}

func (p *ParenthesizedPattern) Bindings() []*IdentExpr {
	if inner := p.Pattern(); inner != nil {
		return inner.Bindings()
	}
	return nil
}

// DestructuringPattern is a comma-separated pattern list: `(a, b: c, ..d)`.
type DestructuringPattern struct {
	node *SyntaxNode
}

func (p *DestructuringPattern) Kind() SyntaxKind       { return Destructuring }
func (p *DestructuringPattern) ToUntyped() *SyntaxNode { return p.node }
func (p *DestructuringPattern) isAstNode()             {}
func (p *DestructuringPattern) isPattern()             {}

// Items returns the pattern's positional, named, and spread items in
// source order.
func (p *DestructuringPattern) Items() []DestructuringItem {
	var items []DestructuringItem
	for _, child := range p.node.Children() {
		if item := DestructuringItemFromNode(child); item != nil {
			items = append(items, item)
		}
	}
	return items
}

// DestructuringPatternFromNode narrows node to *DestructuringPattern, or
// nil if it isn't a Destructuring node.
func DestructuringPatternFromNode(node *SyntaxNode) *DestructuringPattern {
	if node == nil || node.Kind() != Destructuring {
		return nil
	}
	return &DestructuringPattern{node: node}
}

func (p *DestructuringPattern) Bindings() []*IdentExpr {
	var out []*IdentExpr
	for _, item := range p.Items() {
		out = append(out, bindingsOf(item)...)
	}
	return out
}

func bindingsOf(item DestructuringItem) []*IdentExpr {
	switch i := item.(type) {
	case *DestructuringBinding:
		if pat := i.Pattern(); pat != nil {
			return pat.Bindings()
		}
	case *DestructuringNamed:
		if pat := i.Pattern(); pat != nil {
			return pat.Bindings()
		}
	case *DestructuringSpread:
		if sink := i.Sink(); sink != nil {
			return sink.Bindings()
		}
	}
	return nil
}

// DestructuringItem is one element of a DestructuringPattern: a bare
// binding, a `name: pattern` pair, or a `..sink` spread.
type DestructuringItem interface {
	isDestructuringItem()
}

// DestructuringItemFromNode classifies node into the matching
// DestructuringItem variant, or nil if it isn't one.
func DestructuringItemFromNode(node *SyntaxNode) DestructuringItem {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case Spread:
		return &DestructuringSpread{node: node}
	case Named:
		return &DestructuringNamed{node: node}
	case Ident, Underscore, Parenthesized, Destructuring:
		if pattern := PatternFromNode(node); pattern != nil {
			return &DestructuringBinding{pattern: pattern}
		}
	}
	return nil
}

// DestructuringBinding is a bare positional item: `x`.
type DestructuringBinding struct {
	pattern Pattern
}

func (d *DestructuringBinding) isDestructuringItem() {}

// Pattern returns the item's binding pattern.
func (d *DestructuringBinding) Pattern() Pattern {
	return d.pattern
}

// DestructuringNamed is a `name: pattern` item, used to pull a dict key
// out under a possibly different binding name.
type DestructuringNamed struct {
	node *SyntaxNode
}

func (d *DestructuringNamed) isDestructuringItem() {}

// Name returns the dict key being destructured.
func (d *DestructuringNamed) Name() *IdentExpr {
	if child := d.node.CastFirst(Ident); child != nil {
		return &IdentExpr{node: child}
	}
	return nil
}

// Pattern returns the pattern bound to the named value.
func (d *DestructuringNamed) Pattern() Pattern {
	seenColon := false
	for _, child := range d.node.Children() {
		if child.Kind() == Colon {
			seenColon = true
			continue
		}
		if seenColon {
			return PatternFromNode(child)
		}
	}
	return nil
}

// DestructuringSpread is a `..rest` item collecting every item not
// otherwise matched.
type DestructuringSpread struct {
	node *SyntaxNode
}

func (d *DestructuringSpread) isDestructuringItem() {}

// Sink returns the pattern the spread's remainder binds to, or nil for
// a bare `..` that discards it.
func (d *DestructuringSpread) Sink() Pattern {
	for _, child := range d.node.Children() {
		if child.Kind() != Dots {
			return PatternFromNode(child)
		}
	}
	return nil
}
