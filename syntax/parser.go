// Package syntax provides the parser for Marq documents.
//
// This file implements a recursive descent parser with memoization for
// efficient parsing of Marq source code. The parser handles three syntax
// modes: Markup, Math, and Code, switching between them as grammar
// productions in parser_markup.go/parser_math.go/parser_code.go require.
package syntax

// MaxDepth bounds expression nesting; past it the parser gives up on the
// rest of the group rather than risk a stack overflow on adversarial input.
const MaxDepth = 256

// Parse parses a source file as top-level markup.
func Parse(text string) *SyntaxNode {
	p := NewParser(text, 0, ModeMarkup)
	markupExprs(p, true, SyntaxSetOf(End))
	return p.finishInto(Markup)
}

// ParseCode parses top-level code.
func ParseCode(text string) *SyntaxNode {
	p := NewParser(text, 0, ModeCode)
	codeExprs(p, SyntaxSetOf(End))
	return p.finishInto(Code)
}

// ParseMath parses top-level math.
func ParseMath(text string) *SyntaxNode {
	p := NewParser(text, 0, ModeMath)
	mathExprs(p, SyntaxSetOf(End))
	return p.finishInto(Math)
}

// AtNewline governs whether a newline in trivia should synthesize a
// temporary End token, pausing whatever grammar production is currently
// consuming tokens. A column-gated variant (see requireColumn) is encoded
// as a distinct kind rather than a separate field so callers can still
// pass AtNewline around as one plain value.
type AtNewline int

const (
	NLContinue AtNewline = iota
	NLStop
	NLContextualContinue
	NLStopParBreak
	nlRequireColumnBase
)

// requireColumn builds an AtNewline that stops only once a following
// line's indentation falls to or below col — how list/enum/term markers
// bound their continuation lines.
func requireColumn(col int) AtNewline {
	return nlRequireColumnBase + AtNewline(col)
}

func (m AtNewline) isRequireColumn() bool { return m >= nlRequireColumnBase }

func (m AtNewline) column() int {
	if m.isRequireColumn() {
		return int(m - nlRequireColumnBase)
	}
	return 0
}

// stopAt reports whether a newline carrying the given info should end the
// current production, given the token kind that follows it.
func (m AtNewline) stopAt(newline *Newline, kind SyntaxKind) bool {
	if newline == nil {
		return false
	}
	switch {
	case m == NLContinue:
		return false
	case m == NLStop:
		return true
	case m == NLContextualContinue:
		return kind != Else && kind != Dot
	case m == NLStopParBreak:
		return newline.parbreak
	case m.isRequireColumn():
		return newline.column >= 0 && newline.column <= m.column()
	default:
		return false
	}
}

// Newline records what a run of trivia before a token revealed about line
// breaks, for AtNewline.stopAt to consult.
type Newline struct {
	// column is the indent column of the token following the trivia, or
	// -1 if not tracked (only markup mode tracks it).
	column int
	// parbreak is set if any newline in the trivia was a paragraph break.
	parbreak bool
}

// Token is the lookahead token the parser holds before committing it to
// the tree with eat.
type Token struct {
	kind    SyntaxKind
	node    *SyntaxNode
	nTrivia int
	newline *Newline
	start   int
	prevEnd int
}

// Marker is a saved index into the parser's node list, used to later wrap
// everything parsed since in one tree node.
type Marker int

// MemoKey indexes the memoization table by the text offset a production
// started at.
type MemoKey int

// PartialState is the subset of parser state needed to rewind the lexer
// and lookahead token to a prior point without touching the node list.
type PartialState struct {
	cursor  int
	lexMode SyntaxMode
	token   Token
}

// Checkpoint is a full rewindable snapshot: PartialState plus how many
// nodes had been produced.
type Checkpoint struct {
	nodeLen int
	state   PartialState
}

// memoEntry is what MemoArena caches per start offset: the nodes a prior
// parse produced from there, and the state to resume from afterward.
type memoEntry struct {
	nodes []*SyntaxNode
	state PartialState
}

// MemoArena caches packrat-style: once some production has been parsed
// starting at a given offset, a later attempt at the same offset (from
// backtracking) replays the cached nodes instead of reparsing.
type MemoArena struct {
	arena   []*SyntaxNode
	memoMap map[MemoKey]memoEntry
}

// Parser drives tokens from a Lexer into a flat node list that wrap later
// folds into a tree; markup/math/code grammars each push productions
// through this shared machinery.
type Parser struct {
	text     string
	lexer    *Lexer
	nlMode   AtNewline
	token    Token
	balanced bool
	nodes    []*SyntaxNode
	memo     *MemoArena
	depth    int
}

// NewParser starts a parser over text at offset, lexing in mode.
func NewParser(text string, offset int, mode SyntaxMode) *Parser {
	lexer := NewLexer(text, mode)
	lexer.Jump(offset)
	nlMode := NLContinue
	nodes := make([]*SyntaxNode, 0, 64)
	token := lex(&nodes, lexer, nlMode)
	return &Parser{
		text:     text,
		lexer:    lexer,
		nlMode:   nlMode,
		token:    token,
		balanced: true,
		nodes:    nodes,
		memo:     &MemoArena{memoMap: make(map[MemoKey]memoEntry)},
	}
}

// finish consumes the parser, returning its flat node list.
func (p *Parser) finish() []*SyntaxNode { return p.nodes }

// finishInto wraps the parser's nodes in one top-level node of kind.
func (p *Parser) finishInto(kind SyntaxKind) *SyntaxNode {
	return Inner(kind, p.finish())
}

func (p *Parser) current() SyntaxKind       { return p.token.kind }
func (p *Parser) at(kind SyntaxKind) bool   { return p.token.kind == kind }
func (p *Parser) atSet(set SyntaxSet) bool  { return set.Contains(p.token.kind) }
func (p *Parser) end() bool                 { return p.at(End) }
func (p *Parser) hadTrivia() bool           { return p.token.nTrivia > 0 }
func (p *Parser) hadNewline() bool          { return p.token.newline != nil }

// directlyAt reports whether the current token is kind with no trivia
// (comments, whitespace) separating it from whatever was eaten before it.
func (p *Parser) directlyAt(kind SyntaxKind) bool {
	return p.token.kind == kind && !p.hadTrivia()
}

// currentColumn returns the indent column of the current token, preferring
// the value already captured in its newline info over re-deriving it.
func (p *Parser) currentColumn() int {
	if p.token.newline != nil && p.token.newline.column >= 0 {
		return p.token.newline.column
	}
	return p.lexer.Column(p.token.start)
}

func (p *Parser) currentText() string  { return p.text[p.token.start:p.currentEnd()] }
func (p *Parser) currentStart() int    { return p.token.start }
func (p *Parser) currentEnd() int      { return p.lexer.Cursor() }
func (p *Parser) prevEnd() int         { return p.token.prevEnd }

// marker returns a Marker at the parser's current position.
func (p *Parser) marker() Marker { return Marker(len(p.nodes)) }

// beforeTrivia returns a Marker just before any trivia preceding the
// current token — where wrap should stop so trailing comments/whitespace
// land outside the wrapped node.
func (p *Parser) beforeTrivia() Marker {
	return Marker(len(p.nodes) - p.token.nTrivia)
}

func (p *Parser) nodeAt(m Marker) *SyntaxNode    { return p.nodes[m] }
func (p *Parser) nodeAtMut(m Marker) *SyntaxNode { return p.nodes[m] }

// eatAndGet eats the current token and returns the node just appended, for
// callers that need to mutate it in place (ConvertToError, Expected, ...).
func (p *Parser) eatAndGet() *SyntaxNode {
	offset := len(p.nodes)
	p.eat()
	return p.nodes[offset]
}

// eatIf eats the current token if it's kind, reporting whether it did.
func (p *Parser) eatIf(kind SyntaxKind) bool {
	if p.at(kind) {
		p.eat()
		return true
	}
	return false
}

// assert eats the current token, panicking if it isn't kind — for grammar
// points a caller has already verified via at/atSet.
func (p *Parser) assert(kind SyntaxKind) {
	if p.token.kind != kind {
		panic("parser assertion failed: expected " + kind.Name())
	}
	p.eat()
}

// convertAndEat relabels the current token's node to kind before eating
// it, e.g. turning bare text into a recognized shorthand or math symbol.
func (p *Parser) convertAndEat(kind SyntaxKind) {
	p.token.node.ConvertToKind(kind)
	p.eat()
}

// eat commits the current token to the node list and lexes the next one.
func (p *Parser) eat() {
	p.nodes = append(p.nodes, p.token.node)
	p.token = lex(&p.nodes, p.lexer, p.nlMode)
}

// flushTrivia detaches any already-parsed trivia from the current token,
// so a subsequent wrap/expect treats it as directly adjacent.
func (p *Parser) flushTrivia() {
	p.token.nTrivia = 0
	p.token.prevEnd = p.token.start
}

// splitAtBeforeTrivia partitions the node list around from..beforeTrivia():
// the nodes to fold into a new tree node, the trailing trivia to leave
// untouched after it, and the index the fold should be spliced back at.
// wrap and wrapError both build on this rather than repeating the
// trim-then-splice bookkeeping.
func (p *Parser) splitAtBeforeTrivia(from Marker) (folded, trailing []*SyntaxNode, at int) {
	to := int(p.beforeTrivia())
	at = int(from)
	if at > to {
		at = to
	}
	folded = append([]*SyntaxNode(nil), p.nodes[at:to]...)
	trailing = append([]*SyntaxNode(nil), p.nodes[to:]...)
	return folded, trailing, at
}

// wrap folds every node from marker up to (but not including) trailing
// trivia into one new node of kind.
func (p *Parser) wrap(from Marker, kind SyntaxKind) {
	children, trailing, at := p.splitAtBeforeTrivia(from)
	p.nodes = p.nodes[:at]
	p.nodes = append(p.nodes, Inner(kind, children))
	p.nodes = append(p.nodes, trailing...)
}

// wrapError folds every node from marker into a single error node carrying
// their concatenated text and message, used when a whole malformed span
// should be reported as one diagnostic instead of many.
func (p *Parser) wrapError(from Marker, message string) {
	children, trailing, at := p.splitAtBeforeTrivia(from)
	var text string
	for _, n := range children {
		text += n.IntoText()
	}
	errNode := ErrorNode(NewSyntaxError(message), text)
	p.nodes = p.nodes[:at]
	p.nodes = append(p.nodes, errNode)
	p.nodes = append(p.nodes, trailing...)
}

// enterModes re-lexes subsequent tokens under mode (and stop's newline
// rule) for the duration of f, then rewinds the lexer back to where the
// mode switch took effect so the caller's own token stream resumes
// unaffected once f returns and the mode differed from before.
func (p *Parser) enterModes(mode SyntaxMode, stop AtNewline, f func(*Parser)) {
	previous := p.lexer.Mode()
	p.lexer.SetMode(mode)
	p.withNLMode(stop, f)
	if mode != previous {
		p.lexer.SetMode(previous)
		p.lexer.Jump(p.token.prevEnd)
		p.nodes = p.nodes[:len(p.nodes)-p.token.nTrivia]
		p.token = lex(&p.nodes, p.lexer, p.nlMode)
	}
}

// withNLMode runs f under newline mode, restoring the previous mode
// afterward and re-evaluating whether the already-lexed lookahead token
// should now read as End under the restored mode.
func (p *Parser) withNLMode(mode AtNewline, f func(*Parser)) {
	previous := p.nlMode
	p.nlMode = mode
	f(p)
	p.nlMode = previous
	if p.token.newline != nil && mode != previous {
		actualKind := p.token.node.Kind()
		if p.nlMode.stopAt(p.token.newline, actualKind) {
			p.token.kind = End
		} else {
			p.token.kind = actualKind
		}
	}
}

// lex advances lexer past any trivia (recording it into nodes) and
// returns the Token describing the next real token, applying nlMode to
// decide whether a newline in that trivia should mask it as End.
func lex(nodes *[]*SyntaxNode, lexer *Lexer, nlMode AtNewline) Token {
	prevEnd := lexer.Cursor()
	start := prevEnd
	kind, node := lexer.Next()

	nTrivia := 0
	hadNewline := false
	parbreak := false
	for kind.IsTrivia() {
		hadNewline = hadNewline || lexer.Newline()
		parbreak = parbreak || kind == Parbreak
		nTrivia++
		*nodes = append(*nodes, node)
		start = lexer.Cursor()
		kind, node = lexer.Next()
	}

	var newline *Newline
	if hadNewline {
		col := -1
		if lexer.Mode() == ModeMarkup {
			col = lexer.Column(start)
		}
		newline = &Newline{column: col, parbreak: parbreak}
		if nlMode.stopAt(newline, kind) {
			kind = End
		}
	}

	return Token{kind: kind, node: node, nTrivia: nTrivia, newline: newline, start: start, prevEnd: prevEnd}
}

// memoizeParsedNodes records the nodes parsed since prevLen (and the
// state reached afterward) under key, for a later restoreMemoOrCheckpoint
// at the same offset to replay instead of reparsing.
func (p *Parser) memoizeParsedNodes(key MemoKey, prevLen int) {
	checkpoint := p.checkpoint()
	memoNodes := append([]*SyntaxNode(nil), p.nodes[prevLen:checkpoint.nodeLen]...)
	p.memo.memoMap[key] = memoEntry{nodes: memoNodes, state: checkpoint.state}
}

// restoreMemoOrCheckpoint looks up a cached parse at the current offset.
// If found, it splices in the cached nodes and rewinds to the cached
// state, returning ok=false so the caller skips reparsing. Otherwise it
// returns a key and checkpoint for the caller to later pass to
// memoizeParsedNodes, with ok=true.
func (p *Parser) restoreMemoOrCheckpoint() (key MemoKey, checkpoint Checkpoint, ok bool) {
	key = MemoKey(p.currentStart())
	if memo, found := p.memo.memoMap[key]; found {
		p.nodes = append(p.nodes, memo.nodes...)
		p.restorePartial(memo.state)
		return 0, Checkpoint{}, false
	}
	return key, p.checkpoint(), true
}

// restore rewinds the parser to checkpoint, discarding any nodes parsed
// since.
func (p *Parser) restore(checkpoint Checkpoint) {
	p.nodes = p.nodes[:checkpoint.nodeLen]
	p.restorePartial(checkpoint.state)
}

func (p *Parser) restorePartial(state PartialState) {
	p.lexer.Jump(state.cursor)
	p.lexer.SetMode(state.lexMode)
	p.token = state.token
}

func (p *Parser) checkpoint() Checkpoint {
	return Checkpoint{
		nodeLen: len(p.nodes),
		state: PartialState{
			cursor:  p.lexer.Cursor(),
			lexMode: p.lexer.Mode(),
			token:   p.token,
		},
	}
}

// expect eats the current token if it's kind, and otherwise reports an
// error — routed through the keyword-as-identifier special case so
// `let.foo` reads as "expected identifier, found keyword `let`" rather
// than a generic unexpected-token error.
func (p *Parser) expect(kind SyntaxKind) bool {
	if p.at(kind) {
		p.eat()
		return true
	}
	if kind == Ident && p.token.kind.IsKeyword() {
		p.trimErrors()
		p.eatAndGet().Expected(kind.Name())
	} else {
		p.balanced = p.balanced && !kind.IsGrouping()
		p.expected(kind.Name())
	}
	return false
}

// expectClosingDelimiter eats kind if present, else marks the opening
// delimiter at open as unclosed.
func (p *Parser) expectClosingDelimiter(open Marker, kind SyntaxKind) {
	if !p.eatIf(kind) {
		p.nodes[open].ConvertToError("unclosed delimiter")
	}
}

// expected records an "expected <thing>" error at the current position,
// unless the position already trails an error (to avoid cascades).
func (p *Parser) expected(thing string) {
	if !p.afterError() {
		p.expectedAt(p.beforeTrivia(), thing)
	}
}

func (p *Parser) afterError() bool {
	m := p.beforeTrivia()
	return int(m) > 0 && p.nodes[m-1].Kind().IsError()
}

func (p *Parser) expectedAt(m Marker, thing string) {
	errNode := ErrorNode(NewSyntaxError("expected "+thing), "")
	rest := append([]*SyntaxNode{errNode}, p.nodes[m:]...)
	p.nodes = append(p.nodes[:m], rest...)
}

// hint attaches h to the trailing error node, if any.
func (p *Parser) hint(h string) {
	m := p.beforeTrivia()
	if int(m) > 0 {
		p.nodes[m-1].Hint(h)
	}
}

// unexpected eats the current token and marks it as an unexpected-token
// error.
func (p *Parser) unexpected() {
	p.trimErrors()
	p.balanced = p.balanced && !p.token.kind.IsGrouping()
	p.eatAndGet().Unexpected()
}

// trimErrors drops any trailing zero-length error nodes, so a fresh error
// doesn't pile up behind an empty placeholder one.
func (p *Parser) trimErrors() {
	end := int(p.beforeTrivia())
	start := end
	for start > 0 && p.nodes[start-1].Kind().IsError() && p.nodes[start-1].IsEmpty() {
		start--
	}
	if start < end {
		p.nodes = append(p.nodes[:start], p.nodes[end:]...)
	}
}

// checkDepthUntil reports p if nesting depth is still within MaxDepth, or
// records a depth-exceeded error (consuming up to stopSet) and returns nil
// as a signal for the caller to abandon the current production.
func (p *Parser) checkDepthUntil(stopSet SyntaxSet) *Parser {
	if p.depth < MaxDepth {
		return p
	}
	p.depthCheckError(&stopSet)
	return nil
}

// increaseDepth enters one more nesting level, returning a closer to call
// on the way back out, or nil (after recording a depth error) if MaxDepth
// was already reached.
func (p *Parser) increaseDepth() func() {
	if p.depth < MaxDepth {
		p.depth++
		return func() { p.depth-- }
	}
	p.depthCheckError(nil)
	return nil
}

// bracketDelta reports how kind changes an open-bracket balance counter:
// +1 for an opener, -1 for a closer, 0 otherwise.
func bracketDelta(kind SyntaxKind) int {
	switch kind {
	case LeftBracket, LeftBrace, LeftParen:
		return 1
	case RightBracket, RightBrace, RightParen:
		return -1
	default:
		return 0
	}
}

// depthCheckError consumes tokens (tracking bracket balance so it doesn't
// stop mid-group) until reaching stopSet at zero balance or end of input,
// then wraps everything consumed as one "maximum parsing depth exceeded"
// error.
func (p *Parser) depthCheckError(stopSet *SyntaxSet) {
	m := p.marker()

	balance := 0
	savedNLMode := p.nlMode
	p.nlMode = NLContinue
	for {
		balance += bracketDelta(p.token.kind)
		if balance < 0 {
			balance = 0
		}
		p.eat()

		atStop := stopSet == nil || p.atSet(*stopSet)
		if (balance == 0 && atStop) || p.end() {
			break
		}
	}
	p.nlMode = savedNLMode

	p.wrapError(m, "maximum parsing depth exceeded")
}
