// Package definition is the façade external collaborators call: decode a
// bundle, add or replace a query, register a connection, or swap the whole
// mashup document and resync its metadata mirror.
//
// The editor holds no state between calls. Every operation decodes the
// bundle it is given, transforms the decoded values, and returns a new
// bundle with exactly the touched parts re-encoded.
package definition

import (
	"context"

	"github.com/agentic-research/flowdef/api"
	"github.com/agentic-research/flowdef/internal/bundle"
	"github.com/agentic-research/flowdef/internal/mashup"
	"github.com/agentic-research/flowdef/internal/metadata"
)

// ClusterResolver looks up the gateway cluster for a connection. A failed
// lookup is represented as "", never as an error: the connection is then
// stored in its bare form.
type ClusterResolver interface {
	ResolveClusterID(ctx context.Context, connectionID string) string
}

// QueryEdit describes one query to add or replace.
type QueryEdit struct {
	Name             string
	Code             string
	Attribute        string // optional bracketed literal preceding the declaration
	SectionAttribute string // optional section-level attribute, installed once
}

// ConnectionSpec describes a connection reference to register.
type ConnectionSpec struct {
	Kind         string
	Path         string
	ConnectionID string
}

// Editor implements the definition operations over a bundle.
type Editor struct {
	cfg metadata.Config
}

// NewEditor returns an editor using cfg's defaults for new metadata
// entries.
func NewEditor(cfg metadata.Config) *Editor {
	return &Editor{cfg: cfg}
}

// Decode expands the bundle's well-known parts.
func (e *Editor) Decode(b *api.DefinitionBundle) bundle.DecodedView {
	return bundle.Decode(b)
}

// AddQuery upserts the query into the mashup document and mirrors the edit
// into the query metadata. When the edit's attribute references a data
// destination, that destination's entry is created or marked hidden.
func (e *Editor) AddQuery(b *api.DefinitionBundle, edit QueryEdit) (*api.DefinitionBundle, []bundle.Diagnostic) {
	view := bundle.Decode(b)

	doc := mashup.UpsertQuery(view.MashupText, edit.Name, edit.Code, edit.Attribute, edit.SectionAttribute)
	meta := metadata.Apply(view.QueryMetadata, metadata.Upsert{
		Name:        edit.Name,
		Destination: metadata.ExtractDestination(edit.Attribute),
	}, e.cfg)

	out := bundle.EncodeText(b, api.MashupPath, doc)
	out = bundle.EncodeJSON(out, api.QueryMetadataPath, meta)
	return out, view.Diags
}

// AddConnection registers the connection in the metadata part, resolving a
// cluster id through resolver when one is supplied. Registering an already
// present connection is a no-op on the list.
func (e *Editor) AddConnection(ctx context.Context, b *api.DefinitionBundle, spec ConnectionSpec, resolver ClusterResolver) (*api.DefinitionBundle, []bundle.Diagnostic) {
	view := bundle.Decode(b)

	clusterID := ""
	if resolver != nil {
		clusterID = resolver.ResolveClusterID(ctx, spec.ConnectionID)
	}
	meta := metadata.AddConnection(view.QueryMetadata, spec.Kind, spec.Path, spec.ConnectionID, clusterID)

	out := bundle.EncodeJSON(b, api.QueryMetadataPath, meta)
	return out, view.Diags
}

// SetDocument replaces the whole mashup document and resyncs the metadata
// so it mirrors exactly the queries declared in doc: ids carried over by
// name, stale entries dropped, hidden flags recomputed.
func (e *Editor) SetDocument(b *api.DefinitionBundle, doc string) (*api.DefinitionBundle, []bundle.Diagnostic) {
	view := bundle.Decode(b)

	queries := mashup.ParseQueries(doc)
	infos := make([]metadata.QueryInfo, len(queries))
	for i, q := range queries {
		infos[i] = metadata.QueryInfo{Name: q.Name, Attribute: q.Attribute}
	}
	meta := metadata.Apply(view.QueryMetadata, metadata.Resync{Queries: infos}, e.cfg)

	out := bundle.EncodeText(b, api.MashupPath, doc)
	out = bundle.EncodeJSON(out, api.QueryMetadataPath, meta)
	return out, view.Diags
}
