package definition

import (
	"github.com/agentic-research/flowdef/api"
	"github.com/agentic-research/flowdef/internal/bundle"
	"github.com/agentic-research/flowdef/internal/mashup"
	"github.com/ohler55/ojg/jp"
)

// QuerySummary joins one parsed declaration with its metadata mirror.
type QuerySummary struct {
	Name        string
	ID          string
	Attribute   string
	Hidden      bool
	LoadEnabled bool
}

// Summary is the read-only view of a decoded bundle.
type Summary struct {
	Queries     []QuerySummary
	Connections []string
	Diags       []bundle.Diagnostic
}

// Summarize decodes the bundle and joins the document's declarations with
// their metadata entries. Queries missing from the metadata appear with an
// empty id; metadata entries for queries missing from the document are not
// listed (the document is the source of truth for ordering).
func (e *Editor) Summarize(b *api.DefinitionBundle) Summary {
	view := bundle.Decode(b)
	s := Summary{Diags: view.Diags}

	for _, q := range mashup.ParseQueries(view.MashupText) {
		qs := QuerySummary{Name: q.Name, Attribute: q.Attribute}
		if view.QueryMetadata != nil {
			entry := jp.C("queriesMetadata").C(q.Name)
			qs.ID = firstString(entry.C("queryId").Get(view.QueryMetadata))
			qs.Hidden = firstBool(entry.C("isHidden").Get(view.QueryMetadata))
			qs.LoadEnabled = firstBool(entry.C("loadEnabled").Get(view.QueryMetadata))
		}
		s.Queries = append(s.Queries, qs)
	}

	if view.QueryMetadata != nil {
		for _, v := range jp.C("connections").W().C("connectionId").Get(view.QueryMetadata) {
			if id, ok := v.(string); ok {
				s.Connections = append(s.Connections, id)
			}
		}
	}
	return s
}

func firstString(vals []any) string {
	if len(vals) == 0 {
		return ""
	}
	s, _ := vals[0].(string)
	return s
}

func firstBool(vals []any) bool {
	if len(vals) == 0 {
		return false
	}
	b, _ := vals[0].(bool)
	return b
}
