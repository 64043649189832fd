package syntax

// This file holds the code-mode grammar: statement sequences, the
// precedence climber for expressions, and the single-lookahead
// disambiguation of parenthesized syntax (group vs. array vs. dict vs.
// closure parameters vs. destructuring target).

// code parses a statement sequence and folds it into a Code node.
func code(p *Parser, stopSet SyntaxSet) {
	m := p.marker()
	codeExprs(p, stopSet)
	p.wrap(m, Code)
}

// codeExprs consumes statements until stopSet (End always stops),
// requiring a `;` or line break between them.
func codeExprs(p *Parser, stopSet SyntaxSet) {
	if !stopSet.Contains(End) {
		stopSet = stopSet.Add(End)
	}
	if p.depth >= MaxDepth {
		p.depthCheckError(&stopSet)
		return
	}

	for !p.atSet(stopSet) {
		p.withNLMode(NLContextualContinue, func(p *Parser) {
			codeStatement(p, stopSet)
		})
	}
}

// codeStatement parses one expression plus its trailing separator.
func codeStatement(p *Parser, stopSet SyntaxSet) {
	if !p.atSet(CodeExprSet) {
		p.unexpected()
		return
	}
	expression(p)
	if p.atSet(stopSet) || p.eatIf(Semicolon) {
		return
	}
	p.expected("semicolon or line break")
	if p.at(Label) {
		p.hint("labels can only be applied in markup mode")
		p.hint("try wrapping your code in a markup block (`[ ]`)")
	}
}

// embeddedCodeExpr parses a code expression embedded in markup or math.
// The expression extends until the end of the line or a semicolon, so
// `#x + 3` is one binary expression rather than `#x` followed by the
// literal text ` + 3`.
func embeddedCodeExpr(p *Parser) {
	p.enterModes(ModeCode, NLStop, func(p *Parser) {
		p.assert(Hash)
		if p.hadTrivia() || p.end() {
			p.expected("expression")
			return
		}

		isStmt := p.atSet(StmtSet)
		wasExprStart := p.atSet(AtomicCodeExprSet)
		expressionWithPower(p, false, 0)

		// `#12p`, `#"abc\"` and friends never were at an expression
		// start; flag the stray token instead of silently dropping it.
		if !wasExprStart {
			p.unexpected()
		}

		ateSemi := (isStmt || p.directlyAt(Semicolon)) && p.eatIf(Semicolon)
		if isStmt && !ateSemi && !p.end() && !p.at(RightBracket) {
			p.expected("semicolon or line break")
		}
	})
}

// expression parses one full code expression.
func expression(p *Parser) {
	expressionWithPower(p, false, 0)
}

// expressionWithPower is the precedence climber. atomic restricts the
// continuation to postfix forms that cannot change the expression's
// shape mid-markup (field access, call); minPower rejects infix
// operators that bind more loosely than the caller's context.
func expressionWithPower(p *Parser, atomic bool, minPower int) {
	cleanup := p.increaseDepth()
	if cleanup == nil {
		return
	}
	defer cleanup()

	m := p.marker()
	parsePrefix(p, atomic)

	for continuePostfix(p, m, atomic, minPower) {
	}
}

// parsePrefix handles an optional leading unary operator before the
// primary expression. The operand is parsed at the operator's own
// power so `-a.b` negates the field access, not just `a`.
func parsePrefix(p *Parser, atomic bool) {
	if atomic || !p.atSet(UnaryOpSet) {
		primaryExpr(p, atomic)
		return
	}
	op := unOpForKind(p.current())
	if op == nil {
		primaryExpr(p, atomic)
		return
	}
	m := p.marker()
	p.eat()
	expressionWithPower(p, atomic, unaryPrecedence)
	p.wrap(m, Unary)
}

// continuePostfix tries to extend the expression at m by one postfix or
// infix step, reporting whether it did.
func continuePostfix(p *Parser, m Marker, atomic bool, minPower int) bool {
	// A directly attached `(...)` or `[...]` is always a call, even in
	// atomic position.
	if p.directlyAt(LeftParen) || p.directlyAt(LeftBracket) {
		callArgs(p)
		p.wrap(m, FuncCall)
		return true
	}

	fieldFollows := p.directlyAt(Dot) && p.nextTokenIsIdent()
	if atomic && !fieldFollows {
		return false
	}

	if p.eatIf(Dot) {
		p.expect(Ident)
		p.wrap(m, FieldAccess)
		return true
	}

	op, ok := infixOperator(p, minPower)
	if !ok {
		return false
	}
	if op < 0 {
		// `not` without a following `in`: the error is already recorded.
		return false
	}

	power := op.Precedence()
	if power < minPower {
		return false
	}
	if op.Assoc() == AssocLeft {
		power++
	}

	p.eat()
	expressionWithPower(p, false, power)
	p.wrap(m, Binary)
	return true
}

// infixOperator inspects the current token for an infix operator,
// assembling the two-token `not in` form when it applies. It returns
// (op, true) on a usable operator, (-1, true) after reporting a
// malformed `not`, and (_, false) when no operator is present.
func infixOperator(p *Parser, minPower int) (BinOp, bool) {
	if p.atSet(BinaryOpSet) {
		if op := BinOpFromSyntaxKind(p.current()); op >= 0 {
			return op, true
		}
		return -1, false
	}
	if minPower <= BinOpNotIn.Precedence() && p.eatIf(Not) {
		if p.at(In) {
			return BinOpNotIn, true
		}
		p.expected("keyword `in`")
		return -1, true
	}
	return -1, false
}

// nextTokenIsIdent peeks one token past the current one without
// disturbing the parser's lookahead.
func (p *Parser) nextTokenIsIdent() bool {
	savedCursor := p.lexer.Cursor()
	savedMode := p.lexer.Mode()
	kind, _ := p.lexer.Next()
	p.lexer.Jump(savedCursor)
	p.lexer.SetMode(savedMode)
	return kind == Ident
}

// primaryExpr parses the leaf or statement-level construct at the
// cursor.
func primaryExpr(p *Parser, atomic bool) {
	m := p.marker()
	switch p.current() {
	case Ident:
		p.eat()
		// A bare identifier directly before `=>` is a one-parameter
		// closure.
		if !atomic && p.at(Arrow) {
			p.wrap(m, Params)
			p.assert(Arrow)
			expression(p)
			p.wrap(m, Closure)
		}

	case Underscore:
		underscoreExpr(p, m, atomic)

	case LeftBrace:
		codeBlock(p)
	case LeftBracket:
		contentBlock(p)
	case LeftParen:
		parenGroupExpr(p, atomic)
	case Dollar:
		equation(p)

	case Let:
		letBinding(p)
	case Set:
		setRule(p)
	case Show:
		showRule(p)
	case Wrap:
		wrapRule(p)
	case Context:
		contextual(p, atomic)
	case If:
		conditional(p)
	case While:
		whileLoop(p)
	case For:
		forLoop(p)
	case Import:
		moduleImport(p)
	case Include:
		moduleInclude(p)
	case Break:
		jumpStmt(p, Break, LoopBreak)
	case Continue:
		jumpStmt(p, Continue, LoopContinue)
	case Return:
		returnStmt(p)

	case Raw:
		// The lexer delimits raw spans fully; nothing left to parse.
		p.eat()

	case None, Auto, Int, Float, Bool, Numeric, Str, Label:
		p.eat()

	default:
		p.expected("expression")
	}
}

// underscoreExpr handles the three meanings of a leading `_`: a
// one-parameter placeholder closure (`_ => ...`), the discard side of a
// destructuring assignment (`_ = ...`), or an error.
func underscoreExpr(p *Parser, m Marker, atomic bool) {
	if atomic {
		p.expected("expression")
		return
	}
	p.eat()
	switch {
	case p.at(Arrow):
		p.wrap(m, Params)
		p.eat()
		expression(p)
		p.wrap(m, Closure)
	case p.eatIf(Eq):
		expression(p)
		p.wrap(m, DestructAssignment)
	default:
		p.nodes[m].Expected("expression")
	}
}

// bodyBlock parses the `{ ... }` or `[ ... ]` body of a control-flow
// construct.
func bodyBlock(p *Parser) {
	switch p.current() {
	case LeftBracket:
		contentBlock(p)
	case LeftBrace:
		codeBlock(p)
	default:
		p.expected("block")
	}
}

// codeBlock parses `{ let x = 1; x + 2 }`.
func codeBlock(p *Parser) {
	m := p.marker()
	p.enterModes(ModeCode, NLContinue, func(p *Parser) {
		p.assert(LeftBrace)
		code(p, SyntaxSetOf(RightBrace, RightBracket, RightParen, End))
		p.expectClosingDelimiter(m, RightBrace)
	})
	p.wrap(m, CodeBlock)
}

// contentBlock parses `[*Hi* there!]`.
func contentBlock(p *Parser) {
	m := p.marker()
	p.enterModes(ModeMarkup, NLContinue, func(p *Parser) {
		p.assert(LeftBracket)
		markup(p, true, true, SyntaxSetOf(RightBracket, End))
		p.expectClosingDelimiter(m, RightBracket)
	})
	p.wrap(m, ContentBlock)
}

// letBinding parses `let x = 1`, `let f(a) = a`, `let (a, b) = pair`.
func letBinding(p *Parser) {
	m := p.marker()
	p.assert(Let)

	head := p.marker()
	isClosure := false
	isPattern := false
	if p.eatIf(Ident) {
		if p.directlyAt(LeftParen) {
			closureParams(p)
			isClosure = true
		}
	} else {
		bindingPattern(p, false, make(map[string]bool), "")
		isPattern = true
	}

	// A function head or a destructuring pattern needs an initializer;
	// a plain name may stand alone (`let x` binds none).
	var hasInit bool
	if isClosure || isPattern {
		hasInit = p.expect(Eq)
	} else {
		hasInit = p.eatIf(Eq)
	}
	if hasInit {
		expression(p)
	}

	if isClosure {
		p.wrap(head, Closure)
	}
	p.wrap(m, LetBinding)
}

// setRule parses `set text(size: 10pt)` with an optional trailing
// `if cond` guard. The target may be a dotted path (`set par.line(..)`).
func setRule(p *Parser) {
	m := p.marker()
	p.assert(Set)

	target := p.marker()
	p.expect(Ident)
	for p.eatIf(Dot) {
		p.expect(Ident)
		p.wrap(target, FieldAccess)
	}
	callArgs(p)
	p.wrap(target, FuncCall)

	if p.eatIf(If) {
		expression(p)
	}
	p.wrap(m, SetRule)
}

// showRule parses `show heading: it => emph(it.body)`; the selector
// before the colon is optional.
func showRule(p *Parser) {
	m := p.marker()
	p.assert(Show)
	beforeSelector := p.beforeTrivia()

	if !p.at(Colon) {
		expression(p)
	}
	if p.eatIf(Colon) {
		expression(p)
	} else {
		p.expectedAt(beforeSelector, "colon")
	}
	p.wrap(m, ShowRule)
}

// wrapRule parses a wrap binding: `wrap rest in emph(rest)`. The bound
// name captures everything that follows it in the enclosing block, the
// same forward-scoped shape as set/show but binding a value instead of
// a style.
func wrapRule(p *Parser) {
	m := p.marker()
	p.assert(Wrap)
	p.expect(Ident)
	p.expect(In)
	expression(p)
	p.wrap(m, WrapRule)
}

// contextual parses `context text.lang`.
func contextual(p *Parser, atomic bool) {
	m := p.marker()
	p.assert(Context)
	expressionWithPower(p, atomic, 0)
	p.wrap(m, Contextual)
}

// conditional parses `if x { y } else { z }`, chaining `else if`.
func conditional(p *Parser) {
	m := p.marker()
	p.assert(If)
	expression(p)
	bodyBlock(p)
	if p.eatIf(Else) {
		if p.at(If) {
			conditional(p)
		} else {
			bodyBlock(p)
		}
	}
	p.wrap(m, Conditional)
}

// whileLoop parses `while x { y }`.
func whileLoop(p *Parser) {
	m := p.marker()
	p.assert(While)
	expression(p)
	bodyBlock(p)
	p.wrap(m, WhileLoop)
}

// forLoop parses `for x in y { z }` and `for (k, v) in y { z }`.
func forLoop(p *Parser) {
	m := p.marker()
	p.assert(For)

	bound := make(map[string]bool)
	bindingPattern(p, false, bound, "")

	// `for k, v in ..` without parens is a common slip; report it once
	// and keep going with the second pattern so the body still parses.
	if p.at(Comma) {
		comma := p.eatAndGet()
		comma.Unexpected()
		comma.Hint("destructuring patterns must be wrapped in parentheses")
		if p.atSet(PatternSet) {
			bindingPattern(p, false, bound, "")
		}
	}

	p.expect(In)
	expression(p)
	bodyBlock(p)
	p.wrap(m, ForLoop)
}

// moduleImport parses `import "utils.mq": a, b, c`, including the
// `as name` rebinding and the `: *` wildcard.
func moduleImport(p *Parser) {
	m := p.marker()
	p.assert(Import)
	expression(p)
	if p.eatIf(As) {
		p.expect(Ident)
	}

	if p.eatIf(Colon) {
		if p.at(LeftParen) {
			p.withNLMode(NLContinue, func(p *Parser) {
				group := p.marker()
				p.assert(LeftParen)
				importItems(p)
				p.expectClosingDelimiter(group, RightParen)
			})
		} else if !p.eatIf(Star) {
			importItems(p)
		}
	}
	p.wrap(m, ModuleImport)
}

// importItems parses the comma-separated name list after an import's
// colon. Each item is a dotted path with an optional `as` rename.
func importItems(p *Parser) {
	m := p.marker()
	for !p.current().IsTerminator() {
		item := p.marker()
		if !p.eatIf(Ident) {
			p.unexpected()
		}
		for p.eatIf(Dot) {
			p.expect(Ident)
		}
		p.wrap(item, ImportItemPath)

		if p.eatIf(As) {
			p.expect(Ident)
			p.wrap(item, RenamedImportItem)
		}
		if !p.current().IsTerminator() {
			p.expect(Comma)
		}
	}
	p.wrap(m, ImportItems)
}

// moduleInclude parses `include "chapter1.mq"`.
func moduleInclude(p *Parser) {
	m := p.marker()
	p.assert(Include)
	expression(p)
	p.wrap(m, ModuleInclude)
}

// jumpStmt parses a bare `break`/`continue`.
func jumpStmt(p *Parser, keyword, wrapKind SyntaxKind) {
	m := p.marker()
	p.assert(keyword)
	p.wrap(m, wrapKind)
}

// returnStmt parses `return` with an optional value expression.
func returnStmt(p *Parser) {
	m := p.marker()
	p.assert(Return)
	if p.atSet(CodeExprSet) {
		expression(p)
	}
	p.wrap(m, FuncReturn)
}

// parenGroupExpr parses an expression opening with `(`. The contents
// are first committed as a group/array/dict; only when the closing
// paren turns out to be followed by `=>` (closure parameters) or `=`
// (destructuring target) does the parser rewind and reinterpret them.
// Backtracked results are memoized so repeated speculation over the
// same offset replays instead of reparsing.
func parenGroupExpr(p *Parser, atomic bool) {
	if atomic {
		collection(p)
		return
	}

	key, checkpoint, needsParse := p.restoreMemoOrCheckpoint()
	if !needsParse {
		return
	}
	nodesBefore := checkpoint.nodeLen

	firstKind := collection(p)

	switch {
	case p.at(Arrow):
		p.restore(checkpoint)
		m := p.marker()
		closureParams(p)
		if !p.expect(Arrow) {
			return
		}
		expression(p)
		p.wrap(m, Closure)

	case p.at(Eq) && firstKind != Parenthesized:
		p.restore(checkpoint)
		m := p.marker()
		destructuringGroup(p, true, make(map[string]bool))
		if !p.expect(Eq) {
			return
		}
		expression(p)
		p.wrap(m, DestructAssignment)

	default:
		// First interpretation stood; nothing to memoize.
		return
	}

	p.memoizeParsedNodes(key, nodesBefore)
}

// collectionState accumulates what the single pass over a
// parenthesized group learns about its eventual kind.
type collectionState struct {
	// itemCount counts parsed items, trailing errors included.
	itemCount int
	// plainGroup stays true while the contents could still read as an
	// ordinary parenthesized expression (single item, no comma, no
	// spread, no pair).
	plainGroup bool
	// resolved is non-nil once an item has committed the group to Array
	// or Dict.
	resolved *SyntaxKind
	// keysSeen tracks dict keys for duplicate detection.
	keysSeen map[string]bool
}

func (s *collectionState) commit(kind SyntaxKind) {
	s.resolved = &kind
}

func (s *collectionState) committedTo(kind SyntaxKind) bool {
	return s.resolved != nil && *s.resolved == kind
}

// collection parses `(...)` as a parenthesized expression, array, or
// dict in one pass, returning the kind it settled on. An empty `()` is
// an array; a lone `:` is an empty dict; one item without a comma is a
// plain group.
func collection(p *Parser) SyntaxKind {
	state := collectionState{
		plainGroup: true,
		keysSeen:   make(map[string]bool),
	}

	m := p.marker()
	p.withNLMode(NLContinue, func(p *Parser) {
		p.assert(LeftParen)
		if p.eatIf(Colon) {
			state.commit(Dict)
		}

		for !p.current().IsTerminator() {
			if !p.atSet(ArrayOrDictItemSet) {
				p.unexpected()
				continue
			}
			collectionItem(p, &state)
			state.itemCount++
			if !p.current().IsTerminator() && p.expect(Comma) {
				state.plainGroup = false
			}
		}
		p.expectClosingDelimiter(m, RightParen)
	})

	kind := Array
	switch {
	case state.plainGroup && state.itemCount == 1:
		kind = Parenthesized
	case state.resolved != nil:
		kind = *state.resolved
	}
	p.wrap(m, kind)
	return kind
}

// collectionItem parses one item and folds what it saw into state.
func collectionItem(p *Parser, state *collectionState) {
	m := p.marker()

	if p.eatIf(Dots) {
		expression(p)
		p.wrap(m, Spread)
		state.plainGroup = false
		return
	}

	expression(p)

	if !p.eatIf(Colon) {
		// Positional item: commits the group to an array unless a pair
		// already made it a dict.
		if state.committedTo(Dict) {
			p.nodes[m].Expected("named or keyed pair")
		} else {
			state.commit(Array)
		}
		return
	}

	// `name: value` or `"key": value` pair.
	expression(p)

	keyNode := p.nodes[m]
	pairKind := Keyed
	if keyNode.Kind() == Ident {
		pairKind = Named
	}
	if keyNode.Kind() == Ident || keyNode.Kind() == Str {
		key := keyNode.Text()
		if state.keysSeen[key] {
			keyNode.ConvertToError("duplicate key: " + key)
		}
		state.keysSeen[key] = true
	}

	p.wrap(m, pairKind)
	state.plainGroup = false
	if state.committedTo(Array) {
		p.nodes[m].Expected("expression")
	} else {
		state.commit(Dict)
	}
}

// callArgs parses a call's argument list: an optional `(...)` group
// followed by any number of directly attached `[...]` trailing content
// arguments.
func callArgs(p *Parser) {
	if !p.directlyAt(LeftParen) && !p.directlyAt(LeftBracket) {
		p.expected("argument list")
		if p.at(LeftParen) || p.at(LeftBracket) {
			p.hint("there may not be any spaces before the argument list")
		}
	}

	m := p.marker()
	if p.at(LeftParen) {
		group := p.marker()
		p.withNLMode(NLContinue, func(p *Parser) {
			p.assert(LeftParen)
			namesSeen := make(map[string]bool)
			for !p.current().IsTerminator() {
				if !p.atSet(ArgSet) {
					p.unexpected()
					continue
				}
				callArg(p, namesSeen)
				if !p.current().IsTerminator() {
					p.expect(Comma)
				}
			}
			p.expectClosingDelimiter(group, RightParen)
		})
	}

	for p.directlyAt(LeftBracket) {
		contentBlock(p)
	}
	p.wrap(m, Args)
}

// callArg parses one argument: a spread, a positional value, or a
// `name: value` pair with duplicate-name detection.
func callArg(p *Parser, namesSeen map[string]bool) {
	m := p.marker()

	if p.eatIf(Dots) {
		expression(p)
		p.wrap(m, Spread)
		return
	}

	startedAsExpr := p.atSet(CodeExprSet)
	nameText := p.currentText()
	expression(p)

	if p.eatIf(Colon) {
		if startedAsExpr {
			if p.nodes[m].Kind() != Ident {
				p.nodes[m].Expected("identifier")
			} else if namesSeen[nameText] {
				p.nodes[m].ConvertToError("duplicate argument: " + nameText)
			}
			namesSeen[nameText] = true
		}
		expression(p)
		p.wrap(m, Named)
	}
}

// closureParams parses a closure's `(x, y: 1, ..rest)` parameter list.
func closureParams(p *Parser) {
	m := p.marker()
	p.withNLMode(NLContinue, func(p *Parser) {
		p.assert(LeftParen)

		bound := make(map[string]bool)
		sawSink := false
		for !p.current().IsTerminator() {
			if !p.atSet(ParamSet) {
				p.unexpected()
				continue
			}
			closureParam(p, bound, &sawSink)
			if !p.current().IsTerminator() {
				p.expect(Comma)
			}
		}
		p.expectClosingDelimiter(m, RightParen)
	})
	p.wrap(m, Params)
}

// closureParam parses one parameter: a sink, a plain pattern, or a
// named parameter with a default.
func closureParam(p *Parser, bound map[string]bool, sawSink *bool) {
	m := p.marker()

	if p.eatIf(Dots) {
		if p.atSet(PatternLeafSet) {
			bindingLeaf(p, false, bound, "parameter")
		}
		p.wrap(m, Spread)
		if *sawSink {
			p.nodes[m].ConvertToError("only one argument sink is allowed")
		}
		*sawSink = true
		return
	}

	startedAsPattern := p.atSet(PatternSet)
	bindingPattern(p, false, bound, "parameter")

	if p.eatIf(Colon) {
		if startedAsPattern && p.nodes[m].Kind() != Ident {
			p.nodes[m].Expected("identifier")
		}
		expression(p)
		p.wrap(m, Named)
	}
}

// bindingPattern parses a binding or reassignment pattern: `_`, a
// parenthesized destructuring, or a single leaf.
func bindingPattern(p *Parser, reassignment bool, bound map[string]bool, dupeWord string) {
	cleanup := p.increaseDepth()
	if cleanup == nil {
		return
	}
	defer cleanup()

	switch p.current() {
	case Underscore:
		p.eat()
	case LeftParen:
		destructuringGroup(p, reassignment, bound)
	default:
		bindingLeaf(p, reassignment, bound, dupeWord)
	}
}

// destructuringGroup parses `(a, b)` as either a parenthesized pattern
// (one plain entry, no comma or sink) or a Destructuring node.
func destructuringGroup(p *Parser, reassignment bool, bound map[string]bool) {
	sawSink := false
	entryCount := 0
	plainGroup := true

	m := p.marker()
	p.withNLMode(NLContinue, func(p *Parser) {
		p.assert(LeftParen)

		for !p.current().IsTerminator() {
			if !p.atSet(DestructuringItemSet) {
				p.unexpected()
				continue
			}
			destructuringEntry(p, reassignment, bound, &plainGroup, &sawSink)
			entryCount++
			if !p.current().IsTerminator() && p.expect(Comma) {
				plainGroup = false
			}
		}
		p.expectClosingDelimiter(m, RightParen)
	})

	if plainGroup && entryCount == 1 && !sawSink {
		p.wrap(m, Parenthesized)
	} else {
		p.wrap(m, Destructuring)
	}
}

// destructuringEntry parses one entry of a destructuring pattern: a
// `..rest` sink, a plain sub-pattern, or a `key: pattern` pair.
func destructuringEntry(p *Parser, reassignment bool, bound map[string]bool, plainGroup, sawSink *bool) {
	m := p.marker()

	if p.eatIf(Dots) {
		if p.atSet(PatternLeafSet) {
			bindingLeaf(p, reassignment, bound, "")
		}
		p.wrap(m, Spread)
		if *sawSink {
			p.nodes[m].ConvertToError("only one destructuring sink is allowed")
		}
		*sawSink = true
		return
	}

	startedAsPattern := p.atSet(PatternSet)

	// An identifier directly before `:` is a dict key, not a binding;
	// anything else backtracks into the ordinary pattern parse.
	checkpoint := p.checkpoint()
	if !(p.eatIf(Ident) && p.at(Colon)) {
		p.restore(checkpoint)
		bindingPattern(p, reassignment, bound, "")
	}

	if p.eatIf(Colon) {
		if startedAsPattern && p.nodes[m].Kind() != Ident {
			p.nodes[m].Expected("identifier")
		}
		bindingPattern(p, reassignment, bound, "")
		p.wrap(m, Named)
		*plainGroup = false
	}
}

// bindingLeaf parses a single name in a pattern. Outside reassignment
// it must be a fresh identifier; a keyword or non-identifier expression
// is converted to an error in place. dupeWord names the construct in
// duplicate diagnostics ("parameter" vs. the default "binding").
func bindingLeaf(p *Parser, reassignment bool, bound map[string]bool, dupeWord string) {
	if p.current().IsKeyword() {
		p.eatAndGet().Expected("pattern")
		return
	}
	if !p.atSet(PatternLeafSet) {
		p.expected("pattern")
		return
	}

	m := p.marker()
	nameText := p.currentText()

	// An atomic expression parse here gives recovery on things like
	// `let f.x = 1` a node to anchor to.
	expressionWithPower(p, true, 0)

	if reassignment {
		return
	}
	leaf := p.nodes[m]
	if leaf.Kind() != Ident {
		leaf.Expected("pattern")
		return
	}
	if bound[nameText] {
		what := dupeWord
		if what == "" {
			what = "binding"
		}
		leaf.ConvertToError("duplicate " + what + ": " + nameText)
	}
	bound[nameText] = true
}
