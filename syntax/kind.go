package syntax

// SyntaxKind tags every token and tree node the lexer and parser
// produce. It's a flat enum rather than a class hierarchy: a node's
// behavior is picked by switching on its Kind(), both here (the
// classification predicates) and throughout the AST wrapper types in
// ast.go.
type SyntaxKind uint8

const (
	End SyntaxKind = iota
	Error

	Shebang
	LineComment
	BlockComment

	Markup
	Text
	Space
	Linebreak
	Parbreak

	Escape
	Shorthand
	SmartQuote

	Strong
	Emph

	Raw
	RawLang
	RawDelim
	RawTrimmed

	Link
	Label
	Ref
	RefMarker

	Heading
	HeadingMarker
	ListItem
	ListMarker
	EnumItem
	EnumMarker
	TermItem
	TermMarker

	Equation
	Math
	MathText
	MathIdent
	MathShorthand
	MathAlignPoint
	MathDelimited
	MathAttach
	MathPrimes
	MathFrac
	MathRoot

	Hash
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	LeftParen
	RightParen
	Comma
	Semicolon
	Colon
	Star
	Underscore
	Dollar
	Plus
	Minus
	Slash
	Hat
	Dot
	Eq
	EqEq
	ExclEq
	Lt
	LtEq
	Gt
	GtEq
	PlusEq
	HyphEq
	StarEq
	SlashEq
	Dots
	Arrow
	Root
	Bang

	Not
	And
	Or

	None
	Auto

	Let
	Set
	Show
	Context
	If
	Else
	For
	In
	While
	Break
	Continue
	Return
	Import
	Include
	As
	Wrap

	Code
	Ident
	Bool
	Int
	Float
	Numeric
	Str

	CodeBlock
	ContentBlock
	Parenthesized
	Array
	Dict
	Named
	Keyed
	Unary
	Binary
	FieldAccess
	FuncCall
	Args
	Spread
	Closure
	Params

	LetBinding
	SetRule
	ShowRule
	WrapRule
	Contextual
	Conditional
	WhileLoop
	ForLoop
	ModuleImport
	ImportItems
	ImportItemPath
	RenamedImportItem
	ModuleInclude
	LoopBreak
	LoopContinue
	FuncReturn
	Destructuring
	DestructAssignment

	numSyntaxKinds
)

// kindInfo is the per-kind metadata the classification predicates and
// Name() consult; it replaces what would otherwise be six parallel
// switch statements walking every kind with one table built once at
// package init.
type kindInfo struct {
	name     string
	grouping bool
	terminal bool
	block    bool
	stmt     bool
	trivia   bool
	keyword  bool
}

var kindTable [numSyntaxKinds]kindInfo

func init() {
	set := func(k SyntaxKind, name string, flags ...func(*kindInfo)) {
		info := kindInfo{name: name}
		for _, f := range flags {
			f(&info)
		}
		kindTable[k] = info
	}
	grouping := func(i *kindInfo) { i.grouping = true }
	terminal := func(i *kindInfo) { i.terminal = true }
	block := func(i *kindInfo) { i.block = true }
	stmt := func(i *kindInfo) { i.stmt = true }
	trivia := func(i *kindInfo) { i.trivia = true }
	keyword := func(i *kindInfo) { i.keyword = true }

	set(End, "end of tokens", terminal)
	set(Error, "syntax error")
	set(Shebang, "shebang", trivia)
	set(LineComment, "line comment", trivia)
	set(BlockComment, "block comment", trivia)
	set(Markup, "markup")
	set(Text, "text")
	set(Space, "space", trivia)
	set(Linebreak, "line break")
	set(Parbreak, "paragraph break", trivia)
	set(Escape, "escape sequence")
	set(Shorthand, "shorthand")
	set(SmartQuote, "smart quote")
	set(Strong, "strong content")
	set(Emph, "emphasized content")
	set(Raw, "raw block")
	set(RawLang, "raw language tag")
	set(RawDelim, "raw delimiter")
	set(RawTrimmed, "raw trimmed")
	set(Link, "link")
	set(Label, "label")
	set(Ref, "reference")
	set(RefMarker, "reference marker")
	set(Heading, "heading")
	set(HeadingMarker, "heading marker")
	set(ListItem, "list item")
	set(ListMarker, "list marker")
	set(EnumItem, "enum item")
	set(EnumMarker, "enum marker")
	set(TermItem, "term list item")
	set(TermMarker, "term marker")
	set(Equation, "equation")
	set(Math, "math")
	set(MathText, "math text")
	set(MathIdent, "math identifier")
	set(MathShorthand, "math shorthand")
	set(MathAlignPoint, "math alignment point")
	set(MathDelimited, "delimited math")
	set(MathAttach, "math attachments")
	set(MathPrimes, "math primes")
	set(MathFrac, "math fraction")
	set(MathRoot, "math root")
	set(Hash, "hash")
	set(LeftBrace, "opening brace", grouping)
	set(RightBrace, "closing brace", grouping, terminal)
	set(LeftBracket, "opening bracket", grouping)
	set(RightBracket, "closing bracket", grouping, terminal)
	set(LeftParen, "opening paren", grouping)
	set(RightParen, "closing paren", grouping, terminal)
	set(Comma, "comma")
	set(Semicolon, "semicolon", terminal)
	set(Colon, "colon")
	set(Star, "star")
	set(Underscore, "underscore")
	set(Dollar, "dollar sign")
	set(Plus, "plus")
	set(Minus, "minus")
	set(Slash, "slash")
	set(Hat, "hat")
	set(Dot, "dot")
	set(Eq, "equals sign")
	set(EqEq, "equality operator")
	set(ExclEq, "inequality operator")
	set(Lt, "less-than operator")
	set(LtEq, "less-than or equal operator")
	set(Gt, "greater-than operator")
	set(GtEq, "greater-than or equal operator")
	set(PlusEq, "add-assign operator")
	set(HyphEq, "subtract-assign operator")
	set(StarEq, "multiply-assign operator")
	set(SlashEq, "divide-assign operator")
	set(Dots, "dots")
	set(Arrow, "arrow")
	set(Root, "root")
	set(Bang, "exclamation mark")
	set(Not, "operator `not`", keyword)
	set(And, "operator `and`", keyword)
	set(Or, "operator `or`", keyword)
	set(None, "`none`", keyword)
	set(Auto, "`auto`", keyword)
	set(Let, "keyword `let`", keyword)
	set(Set, "keyword `set`", keyword)
	set(Show, "keyword `show`", keyword)
	set(Context, "keyword `context`", keyword)
	set(If, "keyword `if`", keyword)
	set(Else, "keyword `else`", keyword)
	set(For, "keyword `for`", keyword)
	set(In, "keyword `in`", keyword)
	set(While, "keyword `while`", keyword)
	set(Break, "keyword `break`", keyword)
	set(Continue, "keyword `continue`", keyword)
	set(Return, "keyword `return`", keyword)
	set(Import, "keyword `import`", keyword)
	set(Include, "keyword `include`", keyword)
	set(As, "keyword `as`", keyword)
	set(Wrap, "keyword `wrap`", keyword)
	set(Code, "code")
	set(Ident, "identifier")
	set(Bool, "boolean")
	set(Int, "integer")
	set(Float, "float")
	set(Numeric, "numeric value")
	set(Str, "string")
	set(CodeBlock, "code block", block)
	set(ContentBlock, "content block", block)
	set(Parenthesized, "group")
	set(Array, "array")
	set(Dict, "dictionary")
	set(Named, "named pair")
	set(Keyed, "keyed pair")
	set(Unary, "unary expression")
	set(Binary, "binary expression")
	set(FieldAccess, "field access")
	set(FuncCall, "function call")
	set(Args, "call arguments")
	set(Spread, "spread")
	set(Closure, "closure")
	set(Params, "closure parameters")
	set(LetBinding, "`let` expression", stmt)
	set(SetRule, "`set` expression", stmt)
	set(ShowRule, "`show` expression", stmt)
	set(WrapRule, "`wrap` expression", stmt)
	set(Contextual, "`context` expression")
	set(Conditional, "`if` expression")
	set(WhileLoop, "while-loop expression")
	set(ForLoop, "for-loop expression")
	set(ModuleImport, "`import` expression", stmt)
	set(ImportItems, "import items")
	set(ImportItemPath, "imported item path")
	set(RenamedImportItem, "renamed import item")
	set(ModuleInclude, "`include` expression", stmt)
	set(LoopBreak, "`break` expression")
	set(LoopContinue, "`continue` expression")
	set(FuncReturn, "`return` expression")
	set(Destructuring, "destructuring pattern")
	set(DestructAssignment, "destructuring assignment expression")
}

func (k SyntaxKind) info() kindInfo {
	if int(k) < len(kindTable) {
		return kindTable[k]
	}
	return kindInfo{name: "unknown"}
}

// IsGrouping reports whether k is a bracket, brace, or paren token.
func (k SyntaxKind) IsGrouping() bool { return k.info().grouping }

// IsTerminator reports whether k can end an expression: End, a
// closing delimiter, or a semicolon.
func (k SyntaxKind) IsTerminator() bool { return k.info().terminal }

// IsBlock reports whether k is a code or content block node.
func (k SyntaxKind) IsBlock() bool { return k.info().block }

// IsStmt reports whether k is a statement-level construct.
func (k SyntaxKind) IsStmt() bool { return k.info().stmt }

// IsTrivia reports whether k is skipped automatically in code/math
// mode: comments, the shebang line, plain spaces, paragraph breaks.
func (k SyntaxKind) IsTrivia() bool { return k.info().trivia }

// IsKeyword reports whether k is a reserved word.
func (k SyntaxKind) IsKeyword() bool { return k.info().keyword }

// IsError reports whether k marks a parse error node.
func (k SyntaxKind) IsError() bool { return k == Error }

// Name returns a human-readable description of k, used in parser
// diagnostics ("expected identifier, found keyword `let`").
func (k SyntaxKind) Name() string { return k.info().name }

func (k SyntaxKind) String() string { return k.Name() }
