package syntax

import (
	"unicode/utf8"
)

// Scanner is a byte-offset cursor over a string with rune-aware
// peek/eat operations. The lexer and parser's lookahead helpers are all
// built on top of it; it has no notion of tokens or modes itself.
type Scanner struct {
	src string
	at  int
}

// NewScanner positions a scanner at the start of text.
func NewScanner(text string) *Scanner {
	return &Scanner{src: text}
}

// String returns the full text being scanned, regardless of cursor
// position.
func (s *Scanner) String() string {
	return s.src
}

// Cursor reports the current byte offset.
func (s *Scanner) Cursor() int {
	return s.at
}

// Jump moves the cursor to pos, clamped to [0, len(text)].
func (s *Scanner) Jump(pos int) {
	switch {
	case pos < 0:
		pos = 0
	case pos > len(s.src):
		pos = len(s.src)
	}
	s.at = pos
}

// Advance moves the cursor forward by by bytes (negative moves back).
func (s *Scanner) Advance(by int) {
	s.Jump(s.at + by)
}

// Done reports whether the cursor has reached the end of the text.
func (s *Scanner) Done() bool {
	return s.at >= len(s.src)
}

// decodeAt decodes the rune starting at byte offset pos, reporting its
// width in bytes; returns (0, 0) out of range.
func (s *Scanner) decodeAt(pos int) (rune, int) {
	if pos < 0 || pos >= len(s.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s.src[pos:])
}

// Peek returns the rune at the cursor without consuming it, or 0 at end
// of input.
func (s *Scanner) Peek() rune {
	r, _ := s.decodeAt(s.at)
	return r
}

// Scout looks at the rune offset runes away from the cursor without
// moving it: positive looks ahead, negative looks behind, zero is Peek.
// Returns 0 if that position falls outside the text.
func (s *Scanner) Scout(offset int) rune {
	pos := s.at
	switch {
	case offset > 0:
		for ; offset > 0; offset-- {
			_, size := s.decodeAt(pos)
			if size == 0 {
				return 0
			}
			pos += size
		}
	case offset < 0:
		for ; offset < 0; offset++ {
			if pos <= 0 {
				return 0
			}
			_, size := utf8.DecodeLastRuneInString(s.src[:pos])
			pos -= size
		}
	}
	r, _ := s.decodeAt(pos)
	return r
}

// Eat consumes and returns the rune at the cursor, or 0 at end of input.
func (s *Scanner) Eat() rune {
	r, size := s.decodeAt(s.at)
	s.at += size
	return r
}

// Uneat steps the cursor back by one rune; a no-op at the start.
func (s *Scanner) Uneat() {
	if s.at <= 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(s.src[:s.at])
	s.at -= size
}

// EatIf consumes the next rune only if it equals r, reporting whether it
// did.
func (s *Scanner) EatIf(r rune) bool {
	if s.Peek() != r {
		return false
	}
	s.Eat()
	return true
}

// EatIfStr consumes str only if it matches at the cursor, reporting
// whether it did.
func (s *Scanner) EatIfStr(str string) bool {
	if !s.At(str) {
		return false
	}
	s.at += len(str)
	return true
}

// eatSpan drives the cursor forward while want(rune) holds (or, when
// invert is true, while it doesn't), returning the consumed span.
func (s *Scanner) eatSpan(want func(rune) bool, invert bool) string {
	start := s.at
	for !s.Done() {
		matched := want(s.Peek())
		if matched == invert {
			break
		}
		s.Eat()
	}
	return s.src[start:s.at]
}

// EatWhile consumes runes for as long as pred holds, returning the text
// consumed.
func (s *Scanner) EatWhile(pred func(rune) bool) string {
	return s.eatSpan(pred, false)
}

// EatUntil consumes runes until pred holds (exclusive), returning the
// text consumed.
func (s *Scanner) EatUntil(pred func(rune) bool) string {
	return s.eatSpan(pred, true)
}

// lineBreakRunes are the single-rune line terminators EatNewline
// recognizes directly; \r\n is handled as a special two-rune case.
var lineBreakRunes = [...]rune{'\n', '\r', '\x0B', '\x0C'}
var lineBreakStrs = [...]string{"", " ", " "}

// EatNewline consumes one newline sequence at the cursor (folding a
// trailing \n onto a leading \r), reporting whether it consumed one.
func (s *Scanner) EatNewline() bool {
	for _, r := range lineBreakRunes {
		if s.EatIf(r) {
			if r == '\r' {
				s.EatIf('\n')
			}
			return true
		}
	}
	for _, str := range lineBreakStrs {
		if s.EatIfStr(str) {
			return true
		}
	}
	return false
}

// At reports whether str matches the text starting at the cursor.
func (s *Scanner) At(str string) bool {
	end := s.at + len(str)
	return end <= len(s.src) && s.src[s.at:end] == str
}

// AtRune reports whether pred holds for the rune at the cursor.
func (s *Scanner) AtRune(pred func(rune) bool) bool {
	return !s.Done() && pred(s.Peek())
}

// AtAny reports whether the rune at the cursor is one of runes.
func (s *Scanner) AtAny(runes ...rune) bool {
	if s.Done() {
		return false
	}
	cur := s.Peek()
	for _, r := range runes {
		if cur == r {
			return true
		}
	}
	return false
}

// AtAnyStr reports whether any of strs matches at the cursor.
func (s *Scanner) AtAnyStr(strs ...string) bool {
	for _, str := range strs {
		if s.At(str) {
			return true
		}
	}
	return false
}

// Before returns everything before the cursor.
func (s *Scanner) Before() string {
	return s.src[:s.at]
}

// After returns everything from the cursor onward.
func (s *Scanner) After() string {
	return s.src[s.at:]
}

// From returns the text between start and the cursor (empty if start is
// past the cursor).
func (s *Scanner) From(start int) string {
	if start < 0 {
		start = 0
	}
	if start > s.at {
		return ""
	}
	return s.src[start:s.at]
}

// To returns the text between the cursor and end (empty if the cursor
// is past end).
func (s *Scanner) To(end int) string {
	if end > len(s.src) {
		end = len(s.src)
	}
	if s.at > end {
		return ""
	}
	return s.src[s.at:end]
}

// Get returns the text in [start, end), clamped to the underlying
// string's bounds.
func (s *Scanner) Get(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s.src) {
		end = len(s.src)
	}
	if start >= end {
		return ""
	}
	return s.src[start:end]
}

// Clone returns an independent scanner over the same text at the same
// position.
func (s *Scanner) Clone() *Scanner {
	return &Scanner{src: s.src, at: s.at}
}
