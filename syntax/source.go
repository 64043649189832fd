package syntax

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Source pairs a file's text with its parsed, span-numbered syntax
// tree and a line-offset index, and knows how to apply an edit to all
// three at once. It is cheap to copy by value since its fields are
// either immutable strings or pointers to shared structures — callers
// needing independent mutation should take *Source and call Edit.
type Source struct {
	id    FileId
	text  string
	root  *SyntaxNode
	lines *Lines
}

// NewSource parses text and numbers its tree under id.
func NewSource(id FileId, text string) *Source {
	root := Parse(text)
	root.Numberize(id, [2]uint64{spanNumberLo, spanNumberHi})
	return &Source{id: id, text: text, root: root, lines: NewLines(text)}
}

// NewDetachedSource builds a source under a synthetic file id, for text
// that has no real path on disk (REPL input, test fixtures).
func NewDetachedSource(text string) *Source {
	vpath, _ := NewVirtualPath("/detached")
	path := NewRootedPath(ProjectRoot(), *vpath)
	id := UniquePathId(*path).AsFileId()
	return NewSource(id, text)
}

func (s *Source) Id() FileId        { return s.id }
func (s *Source) Text() string      { return s.text }
func (s *Source) Root() *SyntaxNode { return s.root }
func (s *Source) Lines() *Lines     { return s.lines }
func (s *Source) Len() int          { return len(s.text) }

// belongsHere reports whether span was issued against this exact
// source (as opposed to some other file sharing the registry).
func (s *Source) belongsHere(span Span) bool {
	return span.Id() == s.id
}

// Find locates the node a span refers to, or nil if the span belongs
// to a different source or no longer resolves to any node.
func (s *Source) Find(span Span) *LinkedNode {
	if !s.belongsHere(span) {
		return nil
	}
	return NewLinkedNode(s.root).Find(span)
}

// Range resolves span to a byte range in this source: directly, for a
// raw-range span, or by locating the numbered node and reading its
// offset/length otherwise.
func (s *Source) Range(span Span) (start, end int, ok bool) {
	if !s.belongsHere(span) {
		return 0, 0, false
	}
	if st, ed, isRange := span.Range(); isRange {
		return st, ed, true
	}
	node := s.Find(span)
	if node == nil {
		return 0, 0, false
	}
	start = node.Offset()
	return start, start + node.Len(), true
}

// Edit replaces the clamped byte range [replaceStart, replaceEnd) with
// with and reports the byte range of new text affected. This always
// fully reparses and renumbers the tree; it does not call Reparse, so
// no part of the old tree is reused.
func (s *Source) Edit(replaceStart, replaceEnd int, with string) (editStart, editEnd int) {
	replaceStart, replaceEnd = clampRange(replaceStart, replaceEnd, len(s.text))

	newText := s.text[:replaceStart] + with + s.text[replaceEnd:]
	s.text = newText
	s.root = Parse(newText)
	s.root.Numberize(s.id, [2]uint64{spanNumberLo, spanNumberHi})
	s.lines = NewLines(newText)

	editEnd = replaceStart + len(with)
	return replaceStart, editEnd
}

func clampRange(start, end, max int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > max {
		end = max
	}
	if start > end {
		start = end
	}
	return start, end
}

// Replace swaps in an entirely new text, diffing against the current
// text to find the minimal common-prefix/common-suffix edit and
// applying it through Edit, which reparses the whole text.
func (s *Source) Replace(newText string) (start, end int) {
	prefixLen := commonPrefixLen(s.text, newText)

	oldSuffix := s.text[prefixLen:]
	newSuffix := newText[prefixLen:]
	suffixLen := commonSuffixLen(oldSuffix, newSuffix)

	replaceStart := prefixLen
	replaceEnd := len(s.text) - suffixLen
	replaceWithEnd := len(newText) - suffixLen

	return s.Edit(replaceStart, replaceEnd, newText[replaceStart:replaceWithEnd])
}

func commonPrefixLen(a, b string) int {
	n := minInt(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func commonSuffixLen(a, b string) int {
	lenA, lenB := len(a), len(b)
	n := minInt(lenA, lenB)
	for i := 0; i < n; i++ {
		if a[lenA-1-i] != b[lenB-1-i] {
			return i
		}
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// GetText returns the clamped text in [start, end).
func (s *Source) GetText(start, end int) string {
	start, end = clampRange(start, end, len(s.text))
	return s.text[start:end]
}

// GetLine returns the given 0-indexed line's text, without its
// terminator.
func (s *Source) GetLine(line int) string { return s.lines.Line(line) }

// LineCount returns the number of lines in the source.
func (s *Source) LineCount() int { return s.lines.Len() }

func (s *Source) String() string {
	return fmt.Sprintf("Source{id: %d, lines: %d}", s.id.Raw(), s.lines.Len())
}

// Lines indexes a text's line boundaries for fast conversion between
// byte offsets, (line, column) positions, and UTF-16 offsets (the unit
// LSP clients speak). Lines are 0-indexed; ByteToColumn counts runes,
// matching LSP's character-offset convention rather than bytes.
type Lines struct {
	text       string
	lineStarts []int
}

// NewLines scans text once to record every line start.
func NewLines(text string) *Lines {
	lineStarts := make([]int, 1, 16)
	lineStarts[0] = 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	return &Lines{text: text, lineStarts: lineStarts}
}

func (l *Lines) Len() int { return len(l.lineStarts) }

// lineSpan returns the byte range covered by line, newline excluded.
func (l *Lines) lineSpan(line int) (start, end int) {
	start = l.lineStarts[line]
	if line+1 < len(l.lineStarts) {
		end = l.lineStarts[line+1] - 1
		if end < start {
			end = start
		}
	} else {
		end = len(l.text)
	}
	return start, end
}

// Line returns line's text (0-indexed), without its trailing newline.
func (l *Lines) Line(line int) string {
	if line < 0 || line >= len(l.lineStarts) {
		return ""
	}
	start, end := l.lineSpan(line)
	return l.text[start:end]
}

// LineStart returns the byte offset where line begins.
func (l *Lines) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(l.lineStarts) {
		return len(l.text)
	}
	return l.lineStarts[line]
}

// LineEnd returns the byte offset where line ends, including its
// newline terminator (or end of text on the last line).
func (l *Lines) LineEnd(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(l.lineStarts)-1 {
		return len(l.text)
	}
	return l.lineStarts[line+1]
}

// ByteToLine returns the 0-indexed line containing offset, via binary
// search over the line-start table.
func (l *Lines) ByteToLine(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset >= len(l.text) {
		return len(l.lineStarts) - 1
	}
	i := sort.Search(len(l.lineStarts), func(i int) bool { return l.lineStarts[i] > offset })
	return i - 1
}

// ByteToColumn returns the rune-counted column of offset within its
// line.
func (l *Lines) ByteToColumn(offset int) int {
	_, col := l.ByteToLineColumn(offset)
	return col
}

// ByteToLineColumn returns both the line and rune-counted column for
// offset.
func (l *Lines) ByteToLineColumn(offset int) (line, column int) {
	line = l.ByteToLine(offset)
	lineStart := l.lineStarts[line]
	return line, utf8.RuneCountInString(l.text[lineStart:offset])
}

// LineColumnToByte converts a (line, rune column) position back to a
// byte offset, or -1 if line is out of range.
func (l *Lines) LineColumnToByte(line, column int) int {
	if line < 0 || line >= len(l.lineStarts) {
		return -1
	}
	start, end := l.lineStarts[line], len(l.text)
	if line+1 < len(l.lineStarts) {
		end = l.lineStarts[line+1]
	}
	return start + runeOffsetToByteOffset(l.text[start:end], column)
}

// runeOffsetToByteOffset walks s counting runes until it has passed
// count of them, returning the byte offset reached.
func runeOffsetToByteOffset(s string, count int) int {
	byteOffset, runes := 0, 0
	for _, r := range s {
		if runes >= count {
			break
		}
		byteOffset += utf8.RuneLen(r)
		runes++
	}
	return byteOffset
}

// UTF16Len returns the UTF-16 code-unit length of the text up to
// byteOffset.
func (l *Lines) UTF16Len(byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(l.text) {
		byteOffset = len(l.text)
	}
	return utf16Len(l.text[:byteOffset])
}

// UTF16ToByteOffset converts a UTF-16 code-unit offset to a byte
// offset.
func (l *Lines) UTF16ToByteOffset(utf16Offset int) int {
	if utf16Offset <= 0 {
		return 0
	}
	byteOffset, units := 0, 0
	for _, r := range l.text {
		if units >= utf16Offset {
			break
		}
		byteOffset += utf8.RuneLen(r)
		units += utf16UnitsFor(r)
	}
	return byteOffset
}

// ByteToUTF16LineColumn returns the line and UTF-16 column for a byte
// offset — the position format LSP clients expect.
func (l *Lines) ByteToUTF16LineColumn(offset int) (line, utf16Column int) {
	line = l.ByteToLine(offset)
	lineStart := l.lineStarts[line]
	return line, utf16Len(l.text[lineStart:offset])
}

// UTF16LineColumnToByte converts a line and UTF-16 column to a byte
// offset.
func (l *Lines) UTF16LineColumnToByte(line, utf16Column int) int {
	if line < 0 || line >= len(l.lineStarts) {
		return -1
	}
	start, end := l.lineStarts[line], len(l.text)
	if line+1 < len(l.lineStarts) {
		end = l.lineStarts[line+1]
	}

	byteOffset, units := 0, 0
	for _, r := range l.text[start:end] {
		if units >= utf16Column {
			break
		}
		byteOffset += utf8.RuneLen(r)
		units += utf16UnitsFor(r)
	}
	return start + byteOffset
}

func utf16UnitsFor(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

func utf16Len(s string) int {
	count := 0
	for _, r := range s {
		count += utf16UnitsFor(r)
	}
	return count
}

// Position is a 0-indexed (line, rune-column) location in a source.
type Position struct {
	Line   int
	Column int
}

// PositionFromByte converts a byte offset to a Position via lines.
func PositionFromByte(lines *Lines, offset int) Position {
	line, column := lines.ByteToLineColumn(offset)
	return Position{Line: line, Column: column}
}

// ToByte converts p back to a byte offset via lines.
func (p Position) ToByte(lines *Lines) int {
	return lines.LineColumnToByte(p.Line, p.Column)
}

// RangePosition is a (start, end) pair of Positions.
type RangePosition struct {
	Start Position
	End   Position
}

// RangePositionFromBytes converts a byte range to a RangePosition via
// lines.
func RangePositionFromBytes(lines *Lines, start, end int) RangePosition {
	return RangePosition{Start: PositionFromByte(lines, start), End: PositionFromByte(lines, end)}
}
