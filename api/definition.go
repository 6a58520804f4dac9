// Package api defines the wire shapes shared between the definition engine,
// the remote client, and external consumers.
package api

import "strings"

// Well-known part paths inside a definition bundle. Matching is
// case-insensitive; any other path is passed through untouched.
const (
	QueryMetadataPath = "queryMetadata.json"
	MashupPath        = "mashup.pq"
	PlatformPath      = ".platform"
)

// PayloadTypeInlineBase64 marks a part whose payload is carried inline as a
// base64 string. It is the only payload type this engine produces.
const PayloadTypeInlineBase64 = "InlineBase64"

// Part is a single named blob inside a definition bundle.
type Part struct {
	Path        string `json:"path"`
	Payload     string `json:"payload"`
	PayloadType string `json:"payloadType"`
}

// DefinitionBundle is the multi-part container for a dataflow definition.
// At most one part exists per logical path.
type DefinitionBundle struct {
	Parts []Part `json:"parts"`
}

// PathMatches reports whether a part path names the given well-known role.
func PathMatches(partPath, wellKnown string) bool {
	return strings.EqualFold(partPath, wellKnown)
}

// FindPart returns the index of the part matching path (case-insensitive),
// or -1 if absent.
func (b *DefinitionBundle) FindPart(path string) int {
	for i, p := range b.Parts {
		if PathMatches(p.Path, path) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the bundle. Engine operations never mutate
// their input bundle; they return an edited clone.
func (b *DefinitionBundle) Clone() *DefinitionBundle {
	out := &DefinitionBundle{Parts: make([]Part, len(b.Parts))}
	copy(out.Parts, b.Parts)
	return out
}
