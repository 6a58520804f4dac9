package mashup

import "strings"

// splice replaces doc[start:end] with repl, preserving every other byte.
func splice(doc string, start, end int, repl string) string {
	var b strings.Builder
	b.Grow(start + len(repl) + len(doc) - end)
	b.WriteString(doc[:start])
	b.WriteString(repl)
	b.WriteString(doc[end:])
	return b.String()
}
