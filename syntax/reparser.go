package syntax

// Reparse updates root in place to reflect an edit, doing as little
// reparsing work as the edit allows, and reports the byte range of the
// new text that was actually reparsed. Source.Edit is the ergonomic
// entry point; this is the raw algorithm it drives.
func Reparse(root *SyntaxNode, text string, replacedStart, replacedEnd, replacementLen int) (start, end int) {
	replaced := byteRange{replacedStart, replacedEnd}
	if span := tryReparse(text, replaced, replacementLen, nil, root, 0); span != nil {
		return span.lo, span.hi
	}

	id := root.Span().Id()
	*root = *Parse(text)
	if id.IsValid() {
		root.Numberize(id, [2]uint64{spanNumberLo, spanNumberHi})
	}
	return 0, len(text)
}

// byteRange is a half-open [lo, hi) byte interval, used throughout this
// file instead of the raw [2]int pairs the algorithm manipulates so the
// containment/overlap helpers read as range operations rather than
// index arithmetic.
type byteRange struct {
	lo, hi int
}

func (r byteRange) len() int { return r.hi - r.lo }

// contains reports whether r strictly contains other (no shared
// endpoint) — the condition under which an edit falls entirely inside
// one child and recursive reparse can even be attempted.
func (r byteRange) contains(other byteRange) bool {
	return r.lo < other.lo && r.hi > other.hi
}

// touches reports whether r and other overlap or share an endpoint.
func (r byteRange) touches(other byteRange) bool {
	return (r.lo <= other.lo && other.lo <= r.hi) || (other.lo <= r.lo && r.lo <= other.hi)
}

// tryReparse attempts a localized reparse of node's subtree, returning
// the reparsed byte range or nil if no shortcut applied and a caller
// higher up (eventually Reparse itself) must fall back to a full parse.
func tryReparse(text string, replaced byteRange, replacementLen int, parentKind *SyntaxKind, node *SyntaxNode, offset int) *byteRange {
	span, overlapStart, overlapEnd := reparseChildren(text, replaced, replacementLen, node, offset)
	if span != nil {
		return span
	}

	// Reparsing a run of markup expressions is only safe directly
	// inside a content block or at the document root — anywhere else
	// (headings, list items, ...) indentation and line-break rules
	// couple the item to its surrounding structure too tightly.
	if overlapStart >= overlapEnd || node.Kind() != Markup ||
		(parentKind != nil && *parentKind != ContentBlock) {
		return nil
	}
	return reparseMarkupRun(text, replaced, replacementLen, parentKind, node, offset, overlapStart, overlapEnd)
}

// reparseChildren scans node's direct children for one that fully
// contains the edit and can be reparsed (or re-lexed as a whole block)
// on its own; it also reports which children overlap the edit at all,
// for reparseMarkupRun's use when no single child sufficed.
func reparseChildren(text string, replaced byteRange, replacementLen int, node *SyntaxNode, offset int) (span *byteRange, overlapStart, overlapEnd int) {
	overlapStart = int(^uint(0) >> 1)
	overlapEnd = 0
	cursor := offset
	nodeKind := node.Kind()

	children := node.ChildrenMut()
	for i, child := range children {
		prevRange := byteRange{cursor, cursor + child.Len()}
		prevLen := child.Len()
		prevDesc := child.Descendants()

		if !child.IsLeaf() && prevRange.contains(replaced) {
			newLen := prevLen + replacementLen - replaced.len()
			newRange := byteRange{cursor, cursor + newLen}

			if result := tryReparse(text, replaced, replacementLen, &nodeKind, child, cursor); result != nil {
				if child.Len() != newLen {
					panic("child length mismatch after reparse")
				}
				node.UpdateParent(prevLen, newLen, prevDesc, child.Descendants())
				return result, overlapStart, overlapEnd
			}

			if child.Kind().IsBlock() {
				if newborn := ReparseBlock(text, newRange.lo, newRange.hi); newborn != nil {
					if err := node.ReplaceChildren(i, i+1, []*SyntaxNode{newborn}); err == nil {
						return &newRange, overlapStart, overlapEnd
					}
				}
			}
		}

		if prevRange.touches(replaced) {
			if i < overlapStart {
				overlapStart = i
			}
			if i+1 > overlapEnd {
				overlapEnd = i + 1
			}
		}

		if replaced.hi < cursor {
			break
		}
		cursor += child.Len()
	}
	return nil, overlapStart, overlapEnd
}

// reparseMarkupRun retries ReparseMarkup over a growing window of
// node's children, starting at the ones that overlap the edit and
// expanding outward (doubling each failed attempt) until either a
// reparse succeeds or the window has swallowed the whole node.
func reparseMarkupRun(text string, replaced byteRange, replacementLen int, parentKind *SyntaxKind, node *SyntaxNode, offset, overlapStart, overlapEnd int) *byteRange {
	children := node.ChildrenMut()

	for expansion := 1; ; expansion *= 2 {
		start, end := markupWindow(children, overlapStart, overlapEnd, expansion)

		prefixLen, atStart, nesting := markupStateBefore(children[:start])
		runLen, atStartAfter, nestingAfter := markupStateThrough(children[start:end], atStart, nesting)

		shifted := offset + prefixLen
		newLen := runLen + replacementLen - replaced.len()
		newRange := byteRange{shifted, shifted + newLen}
		atEnd := end == len(children)

		reparsed := ReparseMarkup(text, newRange.lo, newRange.hi, &atStart, &nesting, parentKind == nil)
		if reparsed != nil {
			// If more children follow, atStart/nesting must come out
			// exactly as they would have without the shortcut, or a
			// later sibling would be parsed under the wrong state.
			atStartOK := atEnd || atStart == atStartAfter
			nestingOK := (atEnd && parentKind == nil) || nesting == nestingAfter
			if atStartOK && nestingOK {
				if err := node.ReplaceChildren(start, end, reparsed); err == nil {
					return &newRange
				}
			}
		}

		if start == 0 && atEnd {
			return nil
		}
	}
}

// markupWindow computes the [start, end) child index window to retry
// ReparseMarkup over: the overlapping children plus expansion slack on
// each side, widened further past any node that can't stand as a
// boundary on its own (trivia, errors, a bare `/` or `:`).
func markupWindow(children []*SyntaxNode, overlapStart, overlapEnd, expansion int) (start, end int) {
	switch {
	case expansion >= 2:
		if overlapStart > expansion {
			start = overlapStart - expansion
		} else {
			start = 0
		}
	case overlapStart > 2:
		start = overlapStart - 2
	default:
		start = 0
	}

	end = overlapEnd + expansion
	if end > len(children) {
		end = len(children)
	}

	for start > 0 && expandsBoundary(children[start]) {
		start--
	}
	for end < len(children) && expandsBoundary(children[end]) {
		end++
	}
	if start > 0 && children[start-1].Kind() == Hash {
		start--
	}
	return start, end
}

// expandsBoundary reports whether node is too fragile to anchor a
// reparse window edge and the window must grow past it.
func expandsBoundary(node *SyntaxNode) bool {
	kind := node.Kind()
	if kind.IsTrivia() || kind.IsError() || kind == Semicolon {
		return true
	}
	text := node.Text()
	return text == "/" || text == ":"
}

// markupStateBefore replays prefix to synthesize the atStart/nesting
// state a fresh parse would have reached just before the reparse
// window, without actually parsing any of it.
func markupStateBefore(prefix []*SyntaxNode) (length int, atStart bool, nesting int) {
	atStart = true
	for _, child := range prefix {
		length += child.Len()
		advanceAtStart(child, &atStart)
		advanceNesting(child, &nesting)
	}
	return length, atStart, nesting
}

// markupStateThrough replays run starting from (atStart, nesting) and
// returns the length consumed plus the state after — the state the
// reparse window's ReparseMarkup call must reproduce for its result to
// be safe to splice in.
func markupStateThrough(run []*SyntaxNode, atStart bool, nesting int) (length int, atStartAfter bool, nestingAfter int) {
	atStartAfter, nestingAfter = atStart, nesting
	for _, child := range run {
		length += child.Len()
		advanceAtStart(child, &atStartAfter)
		advanceNesting(child, &nestingAfter)
	}
	return length, atStartAfter, nestingAfter
}

// advanceAtStart updates atStart to reflect whether the parser would
// still be at a line start after node.
func advanceAtStart(node *SyntaxNode, atStart *bool) {
	kind := node.Kind()
	if !kind.IsTrivia() {
		*atStart = false
		return
	}
	*atStart = *atStart || kind == Parbreak || (kind == Space && textHasNewline(node.Text()))
}

func textHasNewline(text string) bool {
	for _, c := range text {
		if IsNewline(c) {
			return true
		}
	}
	return false
}

// advanceNesting updates the bracket-nesting counter markup tracks for
// literal `[`/`]` text tokens produced inside nested content.
func advanceNesting(node *SyntaxNode, nesting *int) {
	if node.Kind() != Text {
		return
	}
	switch node.Text() {
	case "[":
		*nesting++
	case "]":
		if *nesting > 0 {
			*nesting--
		}
	}
}

// ReparseBlock re-lexes the code or content block starting at text[start]
// and reports whether it reproduces exactly [start, end) as a single
// balanced, error-free block; returns nil if not.
func ReparseBlock(text string, start, end int) *SyntaxNode {
	if start >= end || start >= len(text) {
		return nil
	}

	var wrapKind SyntaxKind
	switch text[start] {
	case '{':
		wrapKind = CodeBlock
	case '[':
		wrapKind = ContentBlock
	default:
		return nil
	}

	p := NewParser(text, start, ModeCode)
	if wrapKind == CodeBlock {
		codeBlock(p)
	} else {
		contentBlock(p)
	}

	if p.prevEnd() != end || !p.balanced {
		return nil
	}

	for _, n := range p.finish() {
		if n.Kind() == wrapKind {
			if n.Erroneous() {
				return nil
			}
			return n
		}
	}
	return nil
}

// ReparseMarkup parses [start, end) as a run of markup expressions,
// threading atStart/nesting through exactly as the full parser would,
// and returns the parsed nodes — or nil if the range couldn't be
// consumed cleanly.
func ReparseMarkup(text string, start, end int, atStart *bool, nesting *int, topLevel bool) []*SyntaxNode {
	if start >= end || start > len(text) {
		return nil
	}

	p := NewParser(text, start, ModeMarkup)
	localNesting := *nesting
	currentAtStart := *atStart || p.hadNewline()

	for !p.end() && p.currentStart() < end {
		markupExpr(p, currentAtStart, &localNesting)
		currentAtStart = p.hadNewline()
	}

	if p.prevEnd() != end && p.currentStart() != end && p.prevEnd() > end {
		return nil
	}

	*atStart = currentAtStart
	*nesting = localNesting
	return p.finish()
}
