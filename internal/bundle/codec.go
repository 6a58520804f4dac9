// Package bundle decodes and encodes definition bundle parts: base64 to
// text, and text to a generic JSON object model for the metadata parts.
//
// Decoding is lenient. A part that fails base64 or JSON decoding leaves its
// decoded field unset and records a Diagnostic; the remaining parts still
// decode. Encoding is canonical: JSON is serialized with sorted keys and
// two-space indentation so an unchanged part re-encodes byte-identically.
package bundle

import (
	"encoding/base64"
	"fmt"

	"github.com/agentic-research/flowdef/api"
	"github.com/ohler55/ojg/oj"
)

// Diagnostic describes a non-fatal decode problem tied to one part.
type Diagnostic struct {
	Path    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Path, d.Message)
}

// DecodedView exposes the well-known parts of a bundle in usable form.
// A Has flag is true only when the part was present and decoded cleanly;
// a part that was present but failed to decode leaves its flag false and
// records the failure in Diags.
type DecodedView struct {
	QueryMetadata map[string]any
	HasMetadata   bool

	MashupText string
	HasMashup  bool

	Platform    map[string]any
	HasPlatform bool

	// Raw holds every part whose path is not one of the well-known roles.
	// They pass through encoding untouched.
	Raw []api.Part

	Diags []Diagnostic
}

// Decode expands the bundle's well-known parts. Never returns an error:
// every failure is a Diagnostic and the rest of the bundle still decodes.
func Decode(b *api.DefinitionBundle) DecodedView {
	var view DecodedView
	for _, part := range b.Parts {
		switch {
		case api.PathMatches(part.Path, api.QueryMetadataPath):
			if obj, ok := decodeJSONPart(part, &view.Diags); ok {
				view.QueryMetadata = obj
				view.HasMetadata = true
			}
		case api.PathMatches(part.Path, api.MashupPath):
			if text, ok := decodeTextPart(part, &view.Diags); ok {
				view.MashupText = text
				view.HasMashup = true
			}
		case api.PathMatches(part.Path, api.PlatformPath):
			if obj, ok := decodeJSONPart(part, &view.Diags); ok {
				view.Platform = obj
				view.HasPlatform = true
			}
		default:
			view.Raw = append(view.Raw, part)
		}
	}
	return view
}

func decodeTextPart(part api.Part, diags *[]Diagnostic) (string, bool) {
	if part.Payload == "" {
		*diags = append(*diags, Diagnostic{Path: part.Path, Message: "empty payload"})
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(part.Payload)
	if err != nil {
		*diags = append(*diags, Diagnostic{Path: part.Path, Message: fmt.Sprintf("base64 decode: %v", err)})
		return "", false
	}
	return string(raw), true
}

func decodeJSONPart(part api.Part, diags *[]Diagnostic) (map[string]any, bool) {
	text, ok := decodeTextPart(part, diags)
	if !ok {
		return nil, false
	}
	val, err := oj.ParseString(text)
	if err != nil {
		*diags = append(*diags, Diagnostic{Path: part.Path, Message: fmt.Sprintf("json parse: %v", err)})
		return nil, false
	}
	obj, ok := val.(map[string]any)
	if !ok {
		*diags = append(*diags, Diagnostic{Path: part.Path, Message: fmt.Sprintf("json root is %T, want object", val)})
		return nil, false
	}
	return obj, true
}

// CanonicalJSON serializes v with sorted keys and two-space indentation.
// Repeated serialization of equal values is byte-identical.
func CanonicalJSON(v any) string {
	return oj.JSON(v, &oj.Options{Sort: true, Indent: 2})
}

// EncodeText returns a copy of the bundle in which the part at path carries
// text as its base64 payload. The part is appended if it does not exist;
// all other parts keep their exact bytes.
func EncodeText(b *api.DefinitionBundle, path, text string) *api.DefinitionBundle {
	out := b.Clone()
	payload := base64.StdEncoding.EncodeToString([]byte(text))
	if i := out.FindPart(path); i >= 0 {
		out.Parts[i].Payload = payload
		out.Parts[i].PayloadType = api.PayloadTypeInlineBase64
		return out
	}
	out.Parts = append(out.Parts, api.Part{
		Path:        path,
		Payload:     payload,
		PayloadType: api.PayloadTypeInlineBase64,
	})
	return out
}

// EncodeJSON canonically serializes v and stores it as the part at path.
func EncodeJSON(b *api.DefinitionBundle, path string, v any) *api.DefinitionBundle {
	return EncodeText(b, path, CanonicalJSON(v))
}
