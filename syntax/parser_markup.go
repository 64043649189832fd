package syntax

// markup parses a run of markup content and wraps it as a Markup node.
// wrapTrivia additionally folds any trivia already buffered before the
// marker into the wrapped range (used when a delimiter like `*`/`_` sits
// right after whitespace that should belong to the emphasis node).
func markup(p *Parser, atStart bool, wrapTrivia bool, stopSet SyntaxSet) {
	m := p.marker()
	if wrapTrivia {
		m = p.beforeTrivia()
	}
	markupExprs(p, atStart, stopSet)
	if wrapTrivia {
		p.flushTrivia()
	}
	p.wrap(m, Markup)
}

// markupExprs consumes markup nodes until a token in stopSet is reached
// (End is always an implicit stop), tracking bracket nesting so a
// dangling `]` inside, say, a heading body doesn't prematurely close an
// outer content block.
func markupExprs(p *Parser, atStart bool, stopSet SyntaxSet) {
	stopSet = stopSet.Add(End)
	if p.depth >= MaxDepth {
		p.depthCheckError(&stopSet)
		return
	}

	lineStart := atStart || p.hadNewline()
	bracketNesting := 0
	for {
		atStop := p.atSet(stopSet)
		insideNestedBracket := bracketNesting > 0 && p.at(RightBracket)
		if atStop && !insideNestedBracket {
			break
		}
		markupExpr(p, lineStart, &bracketNesting)
		lineStart = p.hadNewline()
	}
}

// markupExpr dispatches on the current token to parse exactly one
// markup node; sigil tokens that only act like their prefix construct
// at the start of a line (heading/list/enum/term markers) fall back to
// literal text mid-line.
func markupExpr(p *Parser, atLineStart bool, bracketNesting *int) {
	cleanup := p.increaseDepth()
	if cleanup == nil {
		return
	}
	defer cleanup()

	switch p.current() {
	case LeftBracket:
		*bracketNesting++
		p.convertAndEat(Text)
	case RightBracket:
		if *bracketNesting == 0 {
			p.unexpected()
			p.hint("try using a backslash escape: \\]")
			return
		}
		*bracketNesting--
		p.convertAndEat(Text)

	case Shebang:
		p.eat()

	case Text, Linebreak, Escape, Shorthand, SmartQuote, Link, Label:
		p.eat()

	case Raw:
		// Raw spans are fully delimited by the lexer already; there is
		// no further structure for the parser to recognize here.
		p.eat()

	case Hash:
		embeddedCodeExpr(p)
	case Star:
		strong(p)
	case Underscore:
		emph(p)
	case HeadingMarker:
		parseLineLeadingSigil(p, atLineStart, heading)
	case ListMarker:
		parseLineLeadingSigil(p, atLineStart, listItem)
	case EnumMarker:
		parseLineLeadingSigil(p, atLineStart, enumItem)
	case TermMarker:
		parseLineLeadingSigil(p, atLineStart, termItem)
	case RefMarker:
		reference(p)
	case Dollar:
		equation(p)

	case Colon:
		p.convertAndEat(Text)

	default:
		p.unexpected()
	}
}

// parseLineLeadingSigil runs parse (heading/listItem/enumItem/termItem)
// when the sigil was seen at the start of a line, otherwise demotes it
// to plain text — `- not a list` mid-paragraph stays literal.
func parseLineLeadingSigil(p *Parser, atLineStart bool, parse func(*Parser)) {
	if atLineStart {
		parse(p)
		return
	}
	p.convertAndEat(Text)
}

// delimitedSpan parses markup between a pair of matching sigil tokens
// (`*strong*`, `_emph_`) and wraps the result as wrapKind.
func delimitedSpan(p *Parser, sigil SyntaxKind, wrapKind SyntaxKind) {
	p.withNLMode(NLStopParBreak, func(p *Parser) {
		m := p.marker()
		p.assert(sigil)
		markup(p, false, true, SyntaxSetOf(sigil, RightBracket, End))
		p.expectClosingDelimiter(m, sigil)
		p.wrap(m, wrapKind)
	})
}

func strong(p *Parser) { delimitedSpan(p, Star, Strong) }
func emph(p *Parser)   { delimitedSpan(p, Underscore, Emph) }

// heading parses a section heading: `= Introduction`. The marker kind
// already carries the nesting level (more `=` signs), so the parser
// just needs to collect the title's markup.
func heading(p *Parser) {
	p.withNLMode(NLStop, func(p *Parser) {
		m := p.marker()
		p.assert(HeadingMarker)
		markup(p, false, false, SyntaxSetOf(Label, RightBracket, End))
		p.wrap(m, Heading)
	})
}

// columnItem parses a single list/enum item body: `parse` consumes the
// marker and content, and col pins the indentation the NL-mode uses to
// decide where the item's body ends: a line indented at or below col
// closes the item.
func columnItem(p *Parser, marker SyntaxKind, wrapKind SyntaxKind) {
	col := p.currentColumn()
	p.withNLMode(requireColumn(col), func(p *Parser) {
		m := p.marker()
		p.assert(marker)
		markup(p, true, false, SyntaxSetOf(RightBracket, End))
		p.wrap(m, wrapKind)
	})
}

func listItem(p *Parser) { columnItem(p, ListMarker, ListItem) }
func enumItem(p *Parser) { columnItem(p, EnumMarker, EnumItem) }

// termItem parses a description-list item: `/ Term: Details`. Unlike
// list/enum items it has two markup spans (term, then details) split by
// a colon, both bounded by the marker's column.
func termItem(p *Parser) {
	col := p.currentColumn()
	p.withNLMode(requireColumn(col), func(p *Parser) {
		m := p.marker()
		p.withNLMode(NLStop, func(p *Parser) {
			p.assert(TermMarker)
			markup(p, false, false, SyntaxSetOf(Colon, RightBracket, End))
		})
		p.expect(Colon)
		markup(p, true, false, SyntaxSetOf(RightBracket, End))
		p.wrap(m, TermItem)
	})
}

// reference parses a citation/label reference: `@target` or the
// content-attaching form `@target[..]`.
func reference(p *Parser) {
	m := p.marker()
	p.assert(RefMarker)
	if p.directlyAt(LeftBracket) {
		contentBlock(p)
	}
	p.wrap(m, Ref)
}

// equation parses an inline or display math span: `$x$`, `$ x^2 $`.
func equation(p *Parser) {
	m := p.marker()
	p.enterModes(ModeMath, NLContinue, func(p *Parser) {
		p.assert(Dollar)
		parseMathContent(p, SyntaxSetOf(Dollar, End))
		p.expectClosingDelimiter(m, Dollar)
	})
	p.wrap(m, Equation)
}
