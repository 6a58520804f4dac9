package mashup

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultSectionName is the section header synthesized for an empty
// document.
const DefaultSectionName = "Section1"

// Mashup documents use CRLF line endings.
const crlf = "\r\n"

var sectionHeaderRe = regexp.MustCompile(`(?mi)^[ \t]*section[ \t]+[^;\r\n]+;`)

// UpsertQuery returns the document with the named query added or replaced.
//
// An existing declaration is replaced in place: its whole span, discovered
// attribute included, is swapped for the canonical declaration while every
// other byte of the document is preserved. A new query is appended at the
// end. An empty document first gets a section header synthesized, prefixed
// by sectionAttribute when provided; a non-empty document gets
// sectionAttribute inserted before its header, once, if not already present.
//
// Malformed surrounding text never fails the operation: when no clean
// declaration boundary can be found the query is appended.
func UpsertQuery(doc, name, code, attribute, sectionAttribute string) string {
	decl := buildDeclaration(name, code, attribute)

	for _, existing := range parseDecls(doc) {
		if existing.Name == name {
			return splice(doc, existing.start, existing.end, decl)
		}
	}

	out := doc
	if strings.TrimSpace(out) == "" {
		out = ""
		if sectionAttribute != "" {
			out = sectionAttribute + crlf
		}
		out += "section " + DefaultSectionName + ";" + crlf
	} else if sectionAttribute != "" {
		// Only text before the section header counts as an installed
		// attribute; the same bytes can legitimately occur inside a
		// query body further down.
		if loc := sectionHeaderRe.FindStringIndex(out); loc != nil && !strings.Contains(out[:loc[0]], sectionAttribute) {
			out = splice(out, loc[0], loc[0], sectionAttribute+crlf)
		}
	}

	if !strings.HasSuffix(out, "\n") {
		out += crlf
	}
	return out + decl + crlf
}

// buildDeclaration renders the canonical form of one query declaration:
//
//	[attribute]
//	shared <name> = <code>;
func buildDeclaration(name, code, attribute string) string {
	var b strings.Builder
	if attribute != "" {
		b.WriteString(attribute)
		b.WriteString(crlf)
	}
	b.WriteString("shared ")
	b.WriteString(normalizeQueryName(name))
	b.WriteString(" = ")
	b.WriteString(ensureLetExpression(code))
	b.WriteString(";")
	return b.String()
}

// normalizeQueryName wraps names that are not legal bare identifiers in the
// quoted #"..." form, escaping embedded quotes.
func normalizeQueryName(name string) string {
	if isBareIdentifier(name) {
		return name
	}
	escaped := strings.ReplaceAll(name, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `#"` + escaped + `"`
}

func isBareIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || r == '.') {
			continue
		}
		return false
	}
	return true
}

// ensureLetExpression wraps a bare expression in a minimal one-step let
// block so every stored query is a complete expression.
func ensureLetExpression(code string) string {
	trimmed := strings.TrimSpace(code)
	lower := strings.ToLower(trimmed)
	if lower == "let" || strings.HasPrefix(lower, "let") && len(trimmed) > 3 && isSpace(trimmed[3]) {
		return trimmed
	}
	return "let" + crlf + "  Source = " + trimmed + crlf + "in" + crlf + "  Source"
}
