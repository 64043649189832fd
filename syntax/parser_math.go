package syntax

import "unicode"

// Binding powers for the two math constructs that compete with infix
// operators: a trailing `(...)` forms a call/root argument list only
// when it out-binds whatever operator would otherwise claim it.
const (
	mathCallPower = 2
	mathRootPower = 2
)

// parseMathContent parses a run of math tokens into a Math node.
func parseMathContent(p *Parser, stopSet SyntaxSet) {
	m := p.marker()
	mathExprs(p, stopSet)
	p.wrap(m, Math)
}

// mathExprs parses expressions until stopSet, reporting how many it
// consumed (including malformed ones) so callers like mathArg can tell
// an empty argument from a real one.
func mathExprs(p *Parser, stopSet SyntaxSet) int {
	stopSet = stopSet.Add(End)
	if p.depth >= MaxDepth {
		p.depthCheckError(&stopSet)
		return 1
	}

	n := 0
	for !p.atSet(stopSet) {
		if p.atSet(MathExprSet) {
			mathExpr(p)
		} else {
			p.unexpected()
		}
		n++
	}
	return n
}

func mathExpr(p *Parser) {
	mathExprBP(p, 0, NewSyntaxSet())
}

// mathOperator describes one infix/postfix math operator: the node kind
// it wraps its operands in, its binding power, and (for a true infix
// form) which side associates tighter.
type mathOperator struct {
	wrap  SyntaxKind
	power int
	assoc Assoc
	infix bool
}

// mathOperatorFor reports the operator opKind spells here, if any.
// MathPrimes and `!` only count as operators when glued directly to
// their left operand (no intervening trivia) — `x'` is a derivative,
// `x '` is two separate atoms.
func mathOperatorFor(opKind SyntaxKind, glued bool) (mathOperator, bool) {
	switch opKind {
	case Slash:
		return mathOperator{wrap: MathFrac, power: 1, assoc: AssocLeft, infix: true}, true
	case Underscore, Hat:
		return mathOperator{wrap: MathAttach, power: 2, assoc: AssocRight, infix: true}, true
	case MathPrimes:
		if glued {
			return mathOperator{wrap: MathAttach, power: 2}, true
		}
	case Bang:
		if glued {
			return mathOperator{wrap: Math, power: 3}, true
		}
	}
	return mathOperator{}, false
}

// mathExprBP parses one expression via precedence climbing, accepting
// any operator whose binding power is at least minPower.
func mathExprBP(p *Parser, minPower int, stopSet SyntaxSet) {
	cleanup := p.increaseDepth()
	if cleanup == nil {
		return
	}
	defer cleanup()

	m := p.marker()
	continuable := mathPrimary(p, m, minPower)

	if continuable && mathCallPower >= minPower && !p.hadTrivia() &&
		p.atSet(SyntaxSetOf(LeftBrace, LeftParen)) {
		mathDelimited(p)
		p.wrap(m, Math)
	}

	for !p.atSet(stopSet) {
		opKind := p.current()
		op, ok := mathOperatorFor(opKind, !p.hadTrivia())
		if !ok || op.power < minPower {
			break
		}

		var chainSet SyntaxSet
		if op.wrap == MathAttach {
			chainSet = SyntaxSetOf(Hat, Underscore).Remove(opKind)
		}

		if opKind == Bang {
			p.convertAndEat(MathText)
		} else {
			p.eat()
		}
		if op.wrap == MathFrac {
			mathUnparen(p, m)
		}

		if op.infix {
			rhsPower := op.power
			if op.assoc == AssocLeft {
				rhsPower++
			}
			mRhs := p.marker()
			mathExprBP(p, rhsPower, chainSet)
			mathUnparen(p, mRhs)
		}

		if !(opKind == MathPrimes && p.atSet(stopSet)) {
			for p.atSet(chainSet) {
				chainSet = chainSet.Remove(p.current())
				p.eat()
				mChain := p.marker()
				mathExprBP(p, op.power, chainSet)
				mathUnparen(p, mChain)
			}
		}

		p.wrap(m, op.wrap)
	}
}

// mathPrimary parses the leaf or prefix form at the cursor and reports
// whether the result can still absorb a trailing call/attach (it can't
// once it's already a complete call, a bracketed group, or punctuation).
func mathPrimary(p *Parser, m Marker, minPower int) bool {
	switch p.current() {
	case Hash:
		embeddedCodeExpr(p)
		return false

	case MathIdent, FieldAccess:
		p.eat()
		if mathCallPower >= minPower && p.directlyAt(LeftParen) {
			mathArgs(p)
			p.wrap(m, FuncCall)
			return false
		}
		return true

	case LeftBrace, LeftParen:
		mathDelimited(p)
		return false

	case RightBrace:
		convertMathShorthandOrText(p, "|]")
		return false

	case Dot, Bang, Comma, Semicolon, RightParen:
		p.convertAndEat(MathText)
		return false

	case MathText:
		alphabetic := isMathAlphabetic(p.currentText())
		p.eat()
		return alphabetic

	case Linebreak, MathAlignPoint, MathShorthand:
		p.eat()
		return false

	case MathPrimes, Escape, Str:
		p.eat()
		return true

	case Root:
		p.eat()
		m2 := p.marker()
		mathExprBP(p, mathRootPower, NewSyntaxSet())
		mathUnparen(p, m2)
		p.wrap(m, MathRoot)
		return false

	default:
		p.expected("expression")
		return false
	}
}

// isMathAlphabetic reports whether text should be treated as a bare
// identifier for the purpose of implicit function calls (`sin(x)` but
// not `|x|(y)`): single letters from Unicode's letter categories or the
// math-alphabetic block, or a run that's entirely letters.
func isMathAlphabetic(text string) bool {
	runes := []rune(text)
	if len(runes) == 1 {
		return unicode.IsLetter(runes[0]) || isMathClassAlphabetic(runes[0])
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isMathClassAlphabetic reports whether r belongs to the Unicode
// mathematical-alphanumeric blocks (bold/italic/script letter variants
// used in formulas). A full table would consult the Unicode math-class
// data; letter-category membership is a close enough approximation for
// the symbols the lexer actually emits as MathText.
func isMathClassAlphabetic(r rune) bool {
	return unicode.IsLetter(r)
}

// convertMathShorthandOrText converts the current token to MathShorthand
// when its text matches shorthand, otherwise to MathText.
func convertMathShorthandOrText(p *Parser, shorthand string) {
	if p.currentText() == shorthand {
		p.convertAndEat(MathShorthand)
	} else {
		p.convertAndEat(MathText)
	}
}

// mathDelimited parses a bracketed math group: `[x + y]`, `{x + y}`,
// `(x + y)`, including the `[|`/`|]` fence shorthand.
func mathDelimited(p *Parser) {
	m := p.marker()
	convertMathShorthandOrText(p, "[|")

	mBody := p.marker()
	mathExprs(p, SyntaxSetOf(Dollar, End, RightBrace, RightParen))
	if !p.atSet(SyntaxSetOf(RightBrace, RightParen)) {
		// No closing delimiter: leave it as a bare sequence rather than
		// claim a MathDelimited node that was never actually closed.
		p.wrap(mBody, Math)
		return
	}

	p.wrap(mBody, Math)
	convertMathShorthandOrText(p, "|]")
	p.wrap(m, MathDelimited)
}

// mathUnparen strips one layer of parens from the node at marker m when
// it's a MathDelimited wrapping literal "(" / ")" tokens, so `(x)/y`
// parses as a plain fraction rather than a parenthesized numerator.
func mathUnparen(p *Parser, m Marker) {
	if int(m) >= len(p.nodes) {
		return
	}
	node := p.nodes[m]
	if node.Kind() != MathDelimited {
		return
	}

	children := node.Children()
	if len(children) < 2 {
		return
	}
	first, last := children[0], children[len(children)-1]
	if first.Text() == "(" && last.Text() == ")" {
		first.ConvertToKind(LeftParen)
		last.ConvertToKind(RightParen)
		node.ConvertToKind(Math)
	}
}

// mathArgs parses a math function's argument list, including its
// row-major array shorthand: `(a, b; c, d)` groups into two rows once a
// `;` is seen, while `size: #50%` style named arguments opt out of row
// grouping.
func mathArgs(p *Parser) {
	m := p.marker()
	p.assert(LeftParen)

	positional := true
	sawRows := false
	rowStart := p.marker()
	seen := make(map[string]bool)

	for !p.atSet(SyntaxSetOf(End, Dollar, RightParen)) {
		positional = mathArg(p, seen)

		switch p.current() {
		case Comma:
			p.eat()
			if !positional {
				rowStart = p.marker()
			}
		case Semicolon:
			if !positional {
				rowStart = p.marker()
			}
			p.wrap(rowStart, Array)
			p.eat()
			rowStart = p.marker()
			sawRows = true
		case End, Dollar, RightParen:
		default:
			p.expected("comma or semicolon")
		}
	}

	if rowStart != p.marker() && sawRows && positional {
		p.wrap(rowStart, Array)
	}

	p.expectClosingDelimiter(m, RightParen)
	p.wrap(m, Args)
}

// mathArg parses one argument inside mathArgs, reporting whether it was
// positional (as opposed to `name: value`).
func mathArg(p *Parser, seen map[string]bool) bool {
	m := p.marker()
	start := p.currentStart()

	var kind *SyntaxKind
	if p.at(Dot) {
		if node := p.lexer.MaybeMathSpreadArg(start); node != nil {
			k := Spread
			kind = &k
			p.token.node = node
			p.eat()
		}
	}
	if kind == nil && p.atSet(SyntaxSetOf(MathText, MathIdent, Underscore)) {
		if node := p.lexer.MaybeMathNamedArg(start); node != nil {
			k := Named
			kind = &k
			name := p.currentText()
			p.token.node = node
			p.eat()
			p.convertAndEat(Colon)
			if seen[name] {
				p.nodes[m].ConvertToError("duplicate argument: " + name)
			}
			seen[name] = true
		}
	}

	mValue := p.marker()
	n := mathExprs(p, SyntaxSetOf(End, Dollar, Comma, Semicolon, RightParen))
	if n == 0 {
		if kind != nil && *kind == Named {
			p.expected("expression")
		}
		p.flushTrivia()
	}
	if n != 1 {
		p.wrap(mValue, Math)
	}

	if kind != nil {
		p.wrap(m, *kind)
	}
	return kind == nil || *kind != Named
}
