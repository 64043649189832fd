package eval

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Graphemes splits s into its extended grapheme clusters, the unit
// `for` loops and string indexing operate on (so that, e.g., a base
// letter plus a combining mark counts as one element).
func Graphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Len returns the grapheme-cluster length of the string.
func (s Str) Len() int {
	return uniseg.GraphemeClusterCount(string(s))
}

// At returns the grapheme cluster at index i, with negative indices
// wrapping from the end (a[-1] is last), matching Array's indexing rule.
func (s Str) At(i int) (Str, error) {
	graphemes := Graphemes(string(s))
	n := len(graphemes)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return "", fmt.Errorf("string index out of bounds: %d", i)
	}
	return Str(graphemes[i]), nil
}

// Slice returns the grapheme-cluster range [start, end).
func (s Str) Slice(start, end int) (Str, error) {
	graphemes := Graphemes(string(s))
	n := len(graphemes)
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	if start < 0 || end > n || start > end {
		return "", fmt.Errorf("string slice out of bounds: %d..%d", start, end)
	}
	return Str(strings.Join(graphemes[start:end], "")), nil
}

// Upper returns the Unicode-correct uppercased form using x/text/cases
// rather than strings.ToUpper, which gets locale-sensitive casing (e.g.
// German ß, Turkish dotless i) wrong for some inputs.
func (s Str) Upper() Str {
	return Str(cases.Upper(language.Und).String(string(s)))
}

// Lower returns the Unicode-correct lowercased form.
func (s Str) Lower() Str {
	return Str(cases.Lower(language.Und).String(string(s)))
}

// Contains reports whether needle occurs in s.
func (s Str) Contains(needle Str) bool {
	return strings.Contains(string(s), string(needle))
}

// Split divides s on every occurrence of sep using strings.Split; an
// empty sep splits s into individual runes, not grapheme clusters.
func (s Str) Split(sep Str) []Str {
	parts := strings.Split(string(s), string(sep))
	out := make([]Str, len(parts))
	for i, p := range parts {
		out[i] = Str(p)
	}
	return out
}

// Trim removes leading and trailing whitespace.
func (s Str) Trim() Str {
	return Str(strings.TrimSpace(string(s)))
}

// Concat implements Str+Str join/addition.
func (s Str) Concat(o Str) Str {
	return s + o
}

// Repeat builds a string by repeating s n times, used by the `*`
// operator between a string and an integer.
func (s Str) Repeat(n int) (Str, error) {
	if n < 0 {
		return "", fmt.Errorf("cannot repeat a string a negative number of times")
	}
	return Str(strings.Repeat(string(s), n)), nil
}
