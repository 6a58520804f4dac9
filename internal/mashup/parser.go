package mashup

import "strings"

// ParsedQuery is one "shared" declaration extracted from a mashup document.
// It is derived on every parse and never stored.
type ParsedQuery struct {
	Name      string // declared name, quoted form unwrapped
	Code      string // expression body, trailing semicolon stripped
	Attribute string // preceding bracketed literal, "" when absent
}

// queryDecl is a ParsedQuery plus the byte span it occupies in the
// document, attribute included. Spans feed the in-place replacement in
// UpsertQuery.
type queryDecl struct {
	ParsedQuery
	start int // attribute start, or keyword start when no attribute
	end   int // just past the trailing semicolon (or code end)
}

// stagingAttributePrefix marks section-level scaffolding. An attribute
// whose content starts with it is never a query's attribute, even when
// directly adjacent to a declaration.
const stagingAttributePrefix = "StagingDefinition"

// ParseQueries extracts the ordered query declarations from a mashup
// document. A document with no declarations yields an empty list. The
// "shared" keyword matches case-insensitively; identifier case is
// preserved verbatim.
func ParseQueries(doc string) []ParsedQuery {
	decls := parseDecls(doc)
	out := make([]ParsedQuery, len(decls))
	for i, d := range decls {
		out[i] = d.ParsedQuery
	}
	return out
}

func parseDecls(doc string) []queryDecl {
	sites := scanDeclarationSites(doc)
	decls := make([]queryDecl, 0, len(sites))
	for i, site := range sites {
		start := site.keywordStart
		attrStart, attr := findAttribute(doc, site.keywordStart)
		if attrStart >= 0 {
			start = attrStart
		}

		next := len(doc)
		if i+1 < len(sites) {
			next = sites[i+1].keywordStart
			if aStart, _ := findAttribute(doc, next); aStart >= 0 {
				next = aStart
			}
		}

		span := doc[site.eqEnd:next]
		end := next
		semi := strings.LastIndexByte(span, ';')
		var code string
		if semi >= 0 {
			code = strings.TrimSpace(span[:semi])
			end = site.eqEnd + semi + 1
		} else {
			// Malformed tail: no terminating semicolon. Take the span as-is.
			code = strings.TrimSpace(span)
		}

		decls = append(decls, queryDecl{
			ParsedQuery: ParsedQuery{Name: site.name, Code: code, Attribute: attr},
			start:       start,
			end:         end,
		})
	}
	return decls
}

// declSite is a matched "shared <name> =" occurrence.
type declSite struct {
	keywordStart int    // index of the 's' in "shared"
	name         string // unwrapped query name
	eqEnd        int    // index just past the '='
}

const sharedKeyword = "shared"

func scanDeclarationSites(doc string) []declSite {
	var sites []declSite
	for i := 0; i+len(sharedKeyword) <= len(doc); {
		// The keyword is pure ASCII, so ASCII-insensitive comparison at
		// byte offsets is exact. Lowercasing the whole document would
		// shift offsets wherever a rune changes byte length under case
		// mapping.
		if c := doc[i]; c != 's' && c != 'S' {
			i++
			continue
		}
		pos := i
		i = pos + 1
		if !strings.EqualFold(doc[pos:pos+len(sharedKeyword)], sharedKeyword) {
			continue
		}

		if !atDeclarationBoundary(doc, pos) {
			continue
		}
		k := pos + len(sharedKeyword)
		if k >= len(doc) || !isSpace(doc[k]) {
			continue
		}
		name, nameEnd, ok := parseQueryName(doc, skipSpace(doc, k))
		if !ok {
			continue
		}
		k = skipSpace(doc, nameEnd)
		if k >= len(doc) || doc[k] != '=' {
			continue
		}
		sites = append(sites, declSite{keywordStart: pos, name: name, eqEnd: k + 1})
		i = k + 1
	}
	return sites
}

// atDeclarationBoundary reports whether the "shared" at pos starts a
// declaration rather than appearing inside an expression or a string.
// Declarations start on their own line, or directly after a statement or
// attribute terminator.
func atDeclarationBoundary(doc string, pos int) bool {
	i := pos - 1
	for i >= 0 && (doc[i] == ' ' || doc[i] == '\t') {
		i--
	}
	if i < 0 || doc[i] == '\n' {
		return true
	}
	for i >= 0 && isSpace(doc[i]) {
		i--
	}
	if i < 0 {
		return true
	}
	return doc[i] == ';' || doc[i] == ']'
}

// parseQueryName reads a bare or #"quoted" identifier starting at i.
// Quoted identifiers are unwrapped to their inner text with escaped quotes
// and backslashes resolved.
func parseQueryName(doc string, i int) (name string, end int, ok bool) {
	if i >= len(doc) {
		return "", 0, false
	}
	if strings.HasPrefix(doc[i:], `#"`) {
		var sb strings.Builder
		for j := i + 2; j < len(doc); j++ {
			c := doc[j]
			if c == '\\' && j+1 < len(doc) && (doc[j+1] == '"' || doc[j+1] == '\\') {
				sb.WriteByte(doc[j+1])
				j++
				continue
			}
			if c == '"' {
				return sb.String(), j + 1, sb.Len() > 0
			}
			sb.WriteByte(c)
		}
		return "", 0, false // unterminated quoted identifier
	}

	j := i
	for j < len(doc) && isIdentByte(doc[j], j > i) {
		j++
	}
	if j == i {
		return "", 0, false
	}
	return doc[i:j], j, true
}

func isIdentByte(c byte, tail bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return true
	case tail && (c >= '0' && c <= '9' || c == '.'):
		return true
	}
	return false
}

// findAttribute locates the bracketed attribute literal immediately
// preceding the declaration at keywordStart. Only whitespace may separate
// the closing ']' from the keyword. Staging attributes belong to the
// section, not the query, and are skipped.
func findAttribute(doc string, keywordStart int) (int, string) {
	i := keywordStart - 1
	for i >= 0 && isSpace(doc[i]) {
		i--
	}
	if i < 0 || doc[i] != ']' {
		return -1, ""
	}
	open := FindMatchingOpenBracket(doc, i)
	if open < 0 {
		return -1, ""
	}
	attr := doc[open : i+1]
	if isStagingAttribute(attr) {
		return -1, ""
	}
	return open, attr
}

func isStagingAttribute(attr string) bool {
	inner := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(attr), "["))
	return strings.HasPrefix(inner, stagingAttributePrefix)
}
