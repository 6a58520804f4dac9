// Package metadata reconciles the JSON query-metadata object against the
// mashup document it mirrors, and manages the connection-reference list.
//
// Every operation is a pure transform: the input object is deep-copied and
// the edited copy returned, so callers can thread values through without
// aliasing surprises.
package metadata

import "github.com/google/uuid"

// Config carries the defaults the synchronizer writes into new entries.
// Downstream consumers require documentLocale for date and number parsing.
type Config struct {
	DocumentLocale     string
	DefaultLoadEnabled bool
}

// DefaultConfig returns the production defaults: en-US locale, and queries
// never auto-loaded to a default destination.
func DefaultConfig() Config {
	return Config{DocumentLocale: "en-US", DefaultLoadEnabled: false}
}

// Op is a synchronizer operation. Exactly two variants exist: Upsert for an
// additive single-query edit, Resync for a full authoritative replace. The
// tagged form keeps the mode visible at every call site.
type Op interface {
	isOp()
}

// Upsert ensures an entry exists for Name, preserving its id and any flags
// already set. When Destination names a write-target helper query, that
// query's entry is created if needed and marked hidden.
type Upsert struct {
	Name        string
	Destination string // "" when the query references no destination
}

// Resync replaces the whole queriesMetadata map so it mirrors Queries
// exactly: ids are carried over by name, stale entries dropped, and hidden
// flags recomputed from destination references.
type Resync struct {
	Queries []QueryInfo
}

// QueryInfo is the (name, attribute) pair Resync needs per query.
type QueryInfo struct {
	Name      string
	Attribute string
}

func (Upsert) isOp() {}
func (Resync) isOp() {}

// Apply runs op against the metadata object and returns the edited copy.
// A nil or empty meta is valid and yields a freshly scaffolded object.
func Apply(meta map[string]any, op Op, cfg Config) map[string]any {
	out, _ := cloneValue(meta).(map[string]any)
	if out == nil {
		out = make(map[string]any)
	}
	if _, ok := out["documentLocale"]; !ok {
		out["documentLocale"] = cfg.DocumentLocale
	}
	queries, ok := out["queriesMetadata"].(map[string]any)
	if !ok {
		queries = make(map[string]any)
	}

	switch op := op.(type) {
	case Upsert:
		applyUpsert(queries, op, cfg)
	case Resync:
		queries = applyResync(queries, op.Queries, cfg)
	}
	out["queriesMetadata"] = queries
	return out
}

func applyUpsert(queries map[string]any, op Upsert, cfg Config) {
	if entry, ok := queries[op.Name].(map[string]any); ok {
		// Existing entry: id untouched, loadEnabled backfilled only if missing.
		if _, ok := entry["loadEnabled"]; !ok {
			entry["loadEnabled"] = cfg.DefaultLoadEnabled
		}
	} else {
		queries[op.Name] = newEntry(op.Name, cfg)
	}

	if op.Destination == "" {
		return
	}
	dest, ok := queries[op.Destination].(map[string]any)
	if !ok {
		dest = newEntry(op.Destination, cfg)
		queries[op.Destination] = dest
	}
	dest["isHidden"] = true
}

func applyResync(old map[string]any, list []QueryInfo, cfg Config) map[string]any {
	hidden := make(map[string]bool)
	for _, q := range list {
		if dest := ExtractDestination(q.Attribute); dest != "" {
			hidden[dest] = true
		}
	}

	fresh := make(map[string]any, len(list))
	for _, q := range list {
		id := existingID(old, q.Name)
		if id == "" {
			// Duplicate names in the list collapse to one entry; the last
			// occurrence keeps the id minted for the first.
			id = existingID(fresh, q.Name)
		}
		if id == "" {
			id = uuid.NewString()
		}
		entry := map[string]any{
			"queryId":     id,
			"queryName":   q.Name,
			"loadEnabled": cfg.DefaultLoadEnabled,
		}
		if hidden[q.Name] {
			entry["isHidden"] = true
		}
		fresh[q.Name] = entry
	}
	return fresh
}

func existingID(queries map[string]any, name string) string {
	entry, ok := queries[name].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := entry["queryId"].(string)
	return id
}

func newEntry(name string, cfg Config) map[string]any {
	return map[string]any{
		"queryId":     uuid.NewString(),
		"queryName":   name,
		"loadEnabled": cfg.DefaultLoadEnabled,
	}
}

// cloneValue deep-copies the generic JSON value forms the codec produces.
func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
