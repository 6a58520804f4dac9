// Package mashup parses and rewrites Power Query mashup documents: ordered
// "shared" query declarations inside a section block, each optionally
// preceded by a bracketed attribute literal.
//
// The document format has no published grammar or tokenizer, so the package
// scans the raw text directly with a small finite-state scanner that is
// aware of string literals and nested bracket/brace depth.
package mashup

// FindMatchingOpenBracket walks backward from the closing ']' at closeIdx
// and returns the index of its matching '['. It tracks bracket and brace
// depth and suppresses counting inside double-quoted string literals; a
// quote preceded by an odd number of backslashes does not close a literal.
// Returns -1 when closeIdx is not a ']' or no match exists.
func FindMatchingOpenBracket(text string, closeIdx int) int {
	if closeIdx < 0 || closeIdx >= len(text) || text[closeIdx] != ']' {
		return -1
	}
	bracketDepth := 0
	braceDepth := 0
	inString := false
	for i := closeIdx; i >= 0; i-- {
		c := text[i]
		if c == '"' && !isEscapedQuote(text, i) {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case ']':
			bracketDepth++
		case '[':
			bracketDepth--
			if bracketDepth == 0 && braceDepth == 0 {
				return i
			}
		case '}':
			braceDepth++
		case '{':
			braceDepth--
		}
	}
	return -1
}

// isEscapedQuote reports whether the '"' at index i is escaped, i.e.
// preceded by an odd number of consecutive backslashes.
func isEscapedQuote(text string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// skipSpace returns the first index at or after i that is not whitespace.
func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}
