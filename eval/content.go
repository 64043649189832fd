package eval

import "strings"

// ContentKind tags the variants of Content. As with Value, Content is
// modeled as a single closed tagged union rather than an interface per
// variant, matching the surface language's sum-type semantics.
type ContentKind int

const (
	CEmpty ContentKind = iota
	CSpace
	CParbreak
	CLinebreak
	CText
	CQuote
	CItem
	CShow
	CSequence
	CStyled
)

// ListItemKind distinguishes the three list-like constructs that share
// the Content.Item variant.
type ListItemKind int

const (
	ItemBullet ListItemKind = iota
	ItemNumbered
	ItemTerm
)

// ListItem is the payload of a Content.Item node.
type ListItem struct {
	ItemKind ListItemKind
	Number   int // valid when ItemKind == ItemNumbered
	Term     *Content
	Body     *Content
}

// StyleEntry is one entry of a StyleMap: the name of the function the
// style was produced for and the arguments it was called with. Set rules
// attach these to content; applying them is a layout-time concern and is
// not performed here.
type StyleEntry struct {
	FuncName string
	Args     map[string]Value
}

// StyleMap is an ordered list of style entries.
type StyleMap []StyleEntry

// Recipe pairs a selector function/value with a transform function.
type Recipe struct {
	Selector Value
	Transform Value
}

func (*Content) Kind() Kind { return KContent }
func (*Content) isValue()   {}

// Content is the evaluator's single renderable-node type. Fields not used
// by the active Kind are left zero.
type Content struct {
	kind ContentKind

	Justify bool // CLinebreak
	Text    string // CText
	Double  bool // CQuote

	Item *ListItem // CItem

	Inner    *Content          // CShow, CStyled
	Fields   map[string]Value // CShow (field map exposed to field access)
	Sequence []*Content        // CSequence

	Style  StyleMap // CStyled (set-rule form)
	Recipe *Recipe  // CStyled (show-rule form); mutually exclusive with Style
}

// Empty returns the identity content value.
func Empty() *Content { return &Content{kind: CEmpty} }

func TextContent(s string) *Content { return &Content{kind: CText, Text: s} }

func SpaceContent() *Content { return &Content{kind: CSpace} }

func ParbreakContent() *Content { return &Content{kind: CParbreak} }

func LinebreakContent(justify bool) *Content {
	return &Content{kind: CLinebreak, Justify: justify}
}

func QuoteContent(double bool) *Content { return &Content{kind: CQuote, Double: double} }

func ItemContent(item *ListItem) *Content { return &Content{kind: CItem, Item: item} }

func ShowContent(inner *Content, fields map[string]Value) *Content {
	return &Content{kind: CShow, Inner: inner, Fields: fields}
}

// SequenceContent flattens nested sequences and drops empties, matching
// Content::sequence in the evaluator's join table.
func SequenceContent(parts ...*Content) *Content {
	flat := flattenContent(parts)
	if len(flat) == 0 {
		return Empty()
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Content{kind: CSequence, Sequence: flat}
}

func flattenContent(parts []*Content) []*Content {
	var out []*Content
	for _, p := range parts {
		if p == nil || p.kind == CEmpty {
			continue
		}
		if p.kind == CSequence {
			out = append(out, p.Sequence...)
			continue
		}
		out = append(out, p)
	}
	return out
}

// StyledWithMap wraps content with a set-rule style map.
func StyledWithMap(inner *Content, style StyleMap) *Content {
	if len(style) == 0 {
		return inner
	}
	return &Content{kind: CStyled, Inner: inner, Style: style}
}

// StyledWithRecipe wraps content with a show-rule recipe.
func StyledWithRecipe(inner *Content, recipe Recipe) *Content {
	return &Content{kind: CStyled, Inner: inner, Recipe: &recipe}
}

// JoinContent implements the binary join operator for two content values:
// concatenation via SequenceContent, flattening as it goes.
func JoinContent(a, b *Content) *Content {
	return SequenceContent(a, b)
}

// Field looks up a field exposed by a Show node's field map. Only
// CShow content (with a non-nil field map) and nothing else admits field
// access, per the evaluator's FieldAccess rule.
func (c *Content) Field(name string) (Value, bool) {
	if c.kind != CShow || c.Fields == nil {
		return nil, false
	}
	v, ok := c.Fields[name]
	return v, ok
}

func (c *Content) Equal(o *Content) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case CEmpty, CSpace, CParbreak:
		return true
	case CLinebreak:
		return c.Justify == o.Justify
	case CText:
		return c.Text == o.Text
	case CQuote:
		return c.Double == o.Double
	case CSequence:
		if len(c.Sequence) != len(o.Sequence) {
			return false
		}
		for i := range c.Sequence {
			if !c.Sequence[i].Equal(o.Sequence[i]) {
				return false
			}
		}
		return true
	default:
		return c == o
	}
}

// String renders a debug textual form: Text verbatim, Sequence children
// concatenated without separators, list/enum/term items prefixed with
// their marker, and Show/Styled wrappers as their inner content only (no
// node names). This backs the reference driver's output and is
// deliberately not a layout.
func (c *Content) String() string {
	var b strings.Builder
	writeContent(&b, c)
	return b.String()
}

func writeContent(b *strings.Builder, c *Content) {
	if c == nil {
		return
	}
	switch c.kind {
	case CEmpty:
	case CSpace:
		b.WriteByte(' ')
	case CParbreak:
		b.WriteString("\n\n")
	case CLinebreak:
		b.WriteByte('\n')
	case CText:
		b.WriteString(c.Text)
	case CQuote:
		if c.Double {
			b.WriteByte('"')
		} else {
			b.WriteByte('\'')
		}
	case CItem:
		writeListItem(b, c.Item)
	case CShow:
		writeContent(b, c.Inner)
	case CSequence:
		for _, child := range c.Sequence {
			writeContent(b, child)
		}
	case CStyled:
		writeContent(b, c.Inner)
	}
}

func writeListItem(b *strings.Builder, item *ListItem) {
	if item == nil {
		return
	}
	switch item.ItemKind {
	case ItemBullet:
		b.WriteString("- ")
	case ItemNumbered:
		b.WriteString(formatFloat(float64(item.Number)))
		b.WriteString(". ")
	case ItemTerm:
		writeContent(b, item.Term)
		b.WriteString(": ")
	}
	writeContent(b, item.Body)
}
