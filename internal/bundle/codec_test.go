package bundle

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/agentic-research/flowdef/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestDecode_AllWellKnownParts(t *testing.T) {
	b := &api.DefinitionBundle{Parts: []api.Part{
		{Path: "queryMetadata.json", Payload: b64(`{"documentLocale":"en-US"}`), PayloadType: api.PayloadTypeInlineBase64},
		{Path: "mashup.pq", Payload: b64("section Section1;\r\n"), PayloadType: api.PayloadTypeInlineBase64},
		{Path: ".platform", Payload: b64(`{"version":"2.0"}`), PayloadType: api.PayloadTypeInlineBase64},
	}}

	view := Decode(b)

	require.True(t, view.HasMetadata)
	assert.Equal(t, "en-US", view.QueryMetadata["documentLocale"])
	require.True(t, view.HasMashup)
	assert.Equal(t, "section Section1;\r\n", view.MashupText)
	require.True(t, view.HasPlatform)
	assert.Equal(t, "2.0", view.Platform["version"])
	assert.Empty(t, view.Raw)
	assert.Empty(t, view.Diags)
}

func TestDecode_PathMatchIsCaseInsensitive(t *testing.T) {
	b := &api.DefinitionBundle{Parts: []api.Part{
		{Path: "QUERYMETADATA.JSON", Payload: b64(`{}`), PayloadType: api.PayloadTypeInlineBase64},
	}}
	view := Decode(b)
	assert.True(t, view.HasMetadata)
}

func TestDecode_MalformedBase64IsNonFatal(t *testing.T) {
	b := &api.DefinitionBundle{Parts: []api.Part{
		{Path: "queryMetadata.json", Payload: "!!! not base64 !!!", PayloadType: api.PayloadTypeInlineBase64},
		{Path: "mashup.pq", Payload: b64("section Section1;\r\n"), PayloadType: api.PayloadTypeInlineBase64},
	}}

	view := Decode(b)

	assert.False(t, view.HasMetadata)
	assert.True(t, view.HasMashup, "other parts still decode")
	require.Len(t, view.Diags, 1)
	assert.Equal(t, "queryMetadata.json", view.Diags[0].Path)
}

func TestDecode_MalformedJSONIsNonFatal(t *testing.T) {
	b := &api.DefinitionBundle{Parts: []api.Part{
		{Path: "queryMetadata.json", Payload: b64("{not json"), PayloadType: api.PayloadTypeInlineBase64},
	}}
	view := Decode(b)
	assert.False(t, view.HasMetadata)
	require.Len(t, view.Diags, 1)
	assert.Contains(t, view.Diags[0].Message, "json parse")
}

func TestDecode_EmptyPayloadIsNonFatal(t *testing.T) {
	b := &api.DefinitionBundle{Parts: []api.Part{
		{Path: "mashup.pq", Payload: "", PayloadType: api.PayloadTypeInlineBase64},
	}}
	view := Decode(b)
	assert.False(t, view.HasMashup)
	require.Len(t, view.Diags, 1)
}

func TestDecode_UnknownPartsPassThrough(t *testing.T) {
	b := &api.DefinitionBundle{Parts: []api.Part{
		{Path: "report/definition.json", Payload: b64("whatever"), PayloadType: api.PayloadTypeInlineBase64},
	}}
	view := Decode(b)
	require.Len(t, view.Raw, 1)
	assert.Equal(t, "report/definition.json", view.Raw[0].Path)
	assert.Empty(t, view.Diags, "unknown parts are not decoded, so they cannot fail")
}

func TestEncodeText_ReplacesExactlyOnePart(t *testing.T) {
	orig := &api.DefinitionBundle{Parts: []api.Part{
		{Path: "mashup.pq", Payload: b64("old"), PayloadType: api.PayloadTypeInlineBase64},
		{Path: "other.bin", Payload: b64("opaque"), PayloadType: api.PayloadTypeInlineBase64},
	}}

	out := EncodeText(orig, "mashup.pq", "new")

	assert.Equal(t, b64("new"), out.Parts[0].Payload)
	assert.Equal(t, b64("opaque"), out.Parts[1].Payload)
	assert.Equal(t, b64("old"), orig.Parts[0].Payload, "input bundle is not mutated")
}

func TestEncodeText_AppendsMissingPart(t *testing.T) {
	out := EncodeText(&api.DefinitionBundle{}, "mashup.pq", "section Section1;\r\n")
	require.Len(t, out.Parts, 1)
	assert.Equal(t, "mashup.pq", out.Parts[0].Path)
	assert.Equal(t, api.PayloadTypeInlineBase64, out.Parts[0].PayloadType)
}

func TestEncodeJSON_RoundTripIsByteIdentical(t *testing.T) {
	meta := map[string]any{
		"documentLocale": "en-US",
		"queriesMetadata": map[string]any{
			"Customers": map[string]any{
				"queryId":     "abc",
				"queryName":   "Customers",
				"loadEnabled": false,
			},
		},
	}
	first := EncodeJSON(&api.DefinitionBundle{}, "queryMetadata.json", meta)

	view := Decode(first)
	require.True(t, view.HasMetadata)
	second := EncodeJSON(first, "queryMetadata.json", view.QueryMetadata)

	assert.Equal(t, first.Parts[0].Payload, second.Parts[0].Payload)
}

func TestCanonicalJSON_Deterministic(t *testing.T) {
	v := map[string]any{"b": "2", "a": "1", "c": map[string]any{"z": true, "y": false}}
	out := CanonicalJSON(v)
	assert.Equal(t, out, CanonicalJSON(v))
	assert.Less(t, strings.Index(out, `"a"`), strings.Index(out, `"b"`), "keys are sorted")
}
