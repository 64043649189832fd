package syntax

import (
	"unicode"

	"golang.org/x/text/unicode/runenames"
)

// IsNewline reports whether c is one of the line-terminator characters
// the lexer treats as ending a line: the four ASCII controls plus the
// three Unicode line/paragraph separators.
func IsNewline(c rune) bool {
	switch c {
	case '\n', '\x0B', '\x0C', '\r', '', ' ', ' ':
		return true
	default:
		return false
	}
}

// IsSpace reports whether c counts as whitespace under mode. Markup
// mode is deliberately narrower than unicode.IsSpace: it only treats
// space, tab, and the newline set as trivia, since math/code mode's
// broader Unicode whitespace would otherwise swallow symbols markup
// wants to keep literal.
func IsSpace(c rune, mode SyntaxMode) bool {
	if mode == ModeMarkup {
		return c == ' ' || c == '\t' || IsNewline(c)
	}
	return unicode.IsSpace(c)
}

// idStartClasses and idContinueClasses are the Unicode general
// categories that make up identifier characters, modeled on XID_Start
// / XID_Continue with the grammar's own underscore/hyphen extensions
// layered on top.
var idStartClasses = []*unicode.RangeTable{unicode.L, unicode.Nl}
var idContinueClasses = []*unicode.RangeTable{unicode.L, unicode.Nl, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc}

func isAnyClass(c rune, classes []*unicode.RangeTable) bool {
	for _, class := range classes {
		if unicode.Is(class, c) {
			return true
		}
	}
	return false
}

// IsIDStart reports whether c can open an identifier: a Unicode
// letter/letter-number, or underscore.
func IsIDStart(c rune) bool {
	return isAnyClass(c, idStartClasses) || c == '_'
}

// IsIDContinue reports whether c can continue an identifier already
// under way: adds marks, digits, connector punctuation, underscore,
// and hyphen to IsIDStart's set.
func IsIDContinue(c rune) bool {
	return isAnyClass(c, idContinueClasses) || c == '_' || c == '-'
}

// IsMathIDStart reports whether c can open an identifier inside math
// mode. Math identifiers are narrower than code identifiers: no
// underscore, since `_` is the math subscript operator there.
func IsMathIDStart(c rune) bool {
	return isAnyClass(c, idStartClasses)
}

// IsMathIDContinue reports whether c can continue a math identifier,
// same exclusion as IsMathIDStart.
func IsMathIDContinue(c rune) bool {
	return isAnyClass(c, idContinueClasses)
}

// IsValidInLabelLiteral reports whether c may appear inside a
// `<label>` literal: identifier characters plus `:` and `.` so labels
// can look like dotted paths.
func IsValidInLabelLiteral(c rune) bool {
	return IsIDContinue(c) || c == ':' || c == '.'
}

// IsIdent reports whether s is a complete, valid identifier: a start
// character followed by zero or more continue characters and nothing
// else.
func IsIdent(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || !IsIDStart(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !IsIDContinue(r) {
			return false
		}
	}
	return true
}

// IsValidLabelLiteralID reports whether every character of id is valid
// inside a label literal.
func IsValidLabelLiteralID(id string) bool {
	if len(id) == 0 {
		return false
	}
	for _, r := range id {
		if !IsValidInLabelLiteral(r) {
			return false
		}
	}
	return true
}

// MathClass is the Unicode math layout class of a character: whether
// it opens or closes a delimiter pair, acts as an operator, etc. The
// lexer consults it to recognize fence characters in math mode.
type MathClass int

const (
	MathClassNone MathClass = iota
	MathClassNormal
	MathClassAlphabetic
	MathClassBinary
	MathClassClosing
	MathClassDiacritic
	MathClassFence
	MathClassGlyphPart
	MathClassLarge
	MathClassOpening
	MathClassPunctuation
	MathClassRelation
	MathClassSpace
	MathClassUnary
	MathClassVary
	MathClassSpecial
)

// bracketPair names one opening/closing delimiter pair recognized by
// DefaultMathClass, beyond the three ASCII pairs handled directly.
type bracketPair struct {
	open, close rune
}

// mathBracketPairs lists the Unicode bracket characters math mode
// recognizes as delimiter fences, pulled from the Ps/Pe bracket blocks
// commonly used in mathematical typesetting.
var mathBracketPairs = []bracketPair{
	{'⌈', '⌉'}, // ceiling
	{'⌊', '⌋'}, // floor
	{'〈', '〉'}, // angle bracket
	{'⟨', '⟩'}, // mathematical angle bracket
	{'⟪', '⟫'}, // mathematical double angle bracket
	{'⟬', '⟭'}, // mathematical white tortoise shell bracket
	{'⟮', '⟯'}, // mathematical flattened parenthesis
	{'⦃', '⦄'}, // white curly bracket
	{'⦅', '⦆'}, // white parenthesis
	{'⦇', '⦈'}, // Z notation image bracket
	{'⦉', '⦊'}, // Z notation binding bracket
	{'⦋', '⦌'}, // square bracket with underbar
	{'⦍', '⦎'}, // square bracket with tick in top corner
	{'⦏', '⦐'}, // square bracket with tick in bottom corner
	{'⦑', '⦒'}, // angle bracket with dot
	{'⦓', '⦔'}, // arc less-than/greater-than bracket
	{'⦕', '⦖'}, // double arc bracket
	{'⦗', '⦘'}, // black tortoise shell bracket
	{'⧼', '⧽'}, // curved angle bracket
}

// DefaultMathClass returns the math layout class of c. This covers the
// delimiter-fence characters math mode needs to recognize; a full
// Unicode math-class table would classify operators and relations too,
// but the lexer only ever asks DefaultMathClass about brackets.
func DefaultMathClass(c rune) MathClass {
	switch c {
	case '(', '[', '{':
		return MathClassOpening
	case ')', ']', '}':
		return MathClassClosing
	}
	for _, pair := range mathBracketPairs {
		switch c {
		case pair.open:
			return MathClassOpening
		case pair.close:
			return MathClassClosing
		}
	}
	return MathClassNone
}

// Script names a Unicode writing system, used to decide where markup
// may need script-aware spacing rules.
type Script int

const (
	ScriptUnknown Script = iota
	ScriptLatin
	ScriptHan
	ScriptHiragana
	ScriptKatakana
	ScriptHangul
)

// scriptRange pins one contiguous codepoint block to the Script it
// belongs to.
type scriptRange struct {
	lo, hi rune
	script Script
}

var scriptRanges = []scriptRange{
	{0x4E00, 0x9FFF, ScriptHan},
	{0x3040, 0x309F, ScriptHiragana},
	{0x30A0, 0x30FF, ScriptKatakana},
	{0xAC00, 0xD7AF, ScriptHangul},
}

// GetScript classifies c into a coarse Script bucket by codepoint
// range. This is a practical subset (CJK/Kana/Hangul/Latin) rather
// than the full Unicode Script property table.
func GetScript(c rune) Script {
	for _, r := range scriptRanges {
		if c >= r.lo && c <= r.hi {
			return r.script
		}
	}
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		return ScriptLatin
	}
	_ = runenames.Name(c)
	return ScriptUnknown
}
