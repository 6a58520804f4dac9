package metadata

import (
	"regexp"
	"strings"

	"github.com/ohler55/ojg/oj"
)

var destinationQueryRe = regexp.MustCompile(`QueryName\s*=\s*"([^"]+)"`)

// dataDestinationsMarker opens the attribute region that binds a query to
// its write-target helper query.
const dataDestinationsMarker = "DataDestinations"

// ExtractDestination pulls the referenced destination query name out of an
// attribute literal. Returns "" when the attribute carries no
// DataDestinations marker or the marker names no query.
func ExtractDestination(attribute string) string {
	idx := strings.Index(attribute, dataDestinationsMarker)
	if idx < 0 {
		return ""
	}
	if m := destinationQueryRe.FindStringSubmatch(attribute[idx:]); m != nil {
		return m[1]
	}
	return ""
}

// CompositeConnectionID renders the identifier form required for credential
// binding on gateway-bound connections: a JSON object embedding the cluster
// id and the datasource id, serialized to a string.
func CompositeConnectionID(clusterID, connectionID string) string {
	return oj.JSON(map[string]any{
		"ClusterId":    clusterID,
		"DatasourceId": connectionID,
	}, &oj.Options{Sort: true})
}

// AddConnection appends a connection reference to the metadata object's
// connections list, unless an equivalent entry already exists. When
// clusterID is non-empty the stored identifier is the composite form.
//
// An existing entry matches when its identifier equals the bare id, equals
// the composite value, or is a legacy composite embedding the bare id as
// its DatasourceId. The loose match keeps repeated registrations from
// duplicating a connection represented in either form.
func AddConnection(meta map[string]any, kind, path, connectionID, clusterID string) map[string]any {
	out, _ := cloneValue(meta).(map[string]any)
	if out == nil {
		out = make(map[string]any)
	}

	stored := connectionID
	if clusterID != "" {
		stored = CompositeConnectionID(clusterID, connectionID)
	}

	conns, _ := out["connections"].([]any)
	for _, c := range conns {
		entry, ok := c.(map[string]any)
		if !ok {
			continue
		}
		existing, _ := entry["connectionId"].(string)
		if connectionMatches(existing, connectionID, stored) {
			return out
		}
	}

	out["connections"] = append(conns, map[string]any{
		"connectionId": stored,
		"kind":         kind,
		"path":         path,
	})
	return out
}

func connectionMatches(existing, bareID, compositeID string) bool {
	if existing == "" || bareID == "" {
		return false
	}
	if existing == bareID || existing == compositeID {
		return true
	}
	return strings.Contains(existing, "DatasourceId") && strings.Contains(existing, bareID)
}
