package result

import (
	"strings"

	"github.com/ritzau/resultgraph/pkg/model"
)

// MapKind is the inferred role of a result map
type MapKind int

const (
	// MapValueMap is an untagged property bag
	MapValueMap MapKind = iota
	// MapVertexElement carries id and label markers and scalar values
	MapVertexElement
	// MapVertexValueMap carries id and label markers and list-wrapped values
	MapVertexValueMap
	// MapEdgeElement carries id and label markers and both direction markers
	MapEdgeElement
)

func (k MapKind) String() string {
	switch k {
	case MapValueMap:
		return "value-map"
	case MapVertexElement:
		return "vertex-element-map"
	case MapVertexValueMap:
		return "vertex-value-map"
	case MapEdgeElement:
		return "edge-element-map"
	default:
		return "unknown"
	}
}

// HasMarkers reports whether m carries both the identity and the
// discriminator markers.
func HasMarkers(m map[string]any) bool {
	_, hasID := m[KeyID]
	_, hasLabel := m[KeyLabel]
	return hasID && hasLabel
}

// IsReservedKey reports whether key is a T or Direction token
func IsReservedKey(key string) bool {
	return strings.HasPrefix(key, TokenPrefix) || strings.HasPrefix(key, DirPrefix)
}

// ClassifyMap infers the role of a result map from its shape.
func ClassifyMap(m map[string]any) MapKind {
	if !HasMarkers(m) {
		return MapValueMap
	}

	_, hasIn := m[KeyIn]
	_, hasOut := m[KeyOut]
	if hasIn && hasOut {
		return MapEdgeElement
	}

	for key, v := range m {
		if IsReservedKey(key) {
			continue
		}
		if _, isList := v.([]any); isList {
			return MapVertexValueMap
		}
	}
	return MapVertexElement
}

// IsVertexLike reports whether e can stand at a vertex position of a path
func IsVertexLike(e Element) bool {
	switch v := e.(type) {
	case Vertex, Scalar:
		return true
	case Map:
		return ClassifyMap(v.Entries) != MapEdgeElement
	default:
		return false
	}
}

// IsEdgeLike reports whether e can stand at an edge position of a path
func IsEdgeLike(e Element) bool {
	switch v := e.(type) {
	case Edge:
		return true
	case Map:
		return ClassifyMap(v.Entries) == MapEdgeElement
	default:
		return false
	}
}

// Endpoint extracts a vertex reference from a direction marker value, which
// may be a Vertex, a map with id and label markers, or a bare id.
func Endpoint(v any) (Vertex, bool) {
	switch val := v.(type) {
	case nil:
		return Vertex{}, false
	case Vertex:
		return val, true
	case Map:
		return Endpoint(val.Entries)
	case map[string]any:
		id, ok := val[KeyID]
		if !ok {
			return Vertex{}, false
		}
		label, _ := val[KeyLabel].(string)
		return Vertex{ID: id, Label: label}, true
	default:
		return Vertex{ID: val}, true
	}
}

// EdgeFromMap converts an edge element map into an Edge. Non-marker entries
// become the edge's properties.
func EdgeFromMap(m map[string]any) (Edge, bool) {
	if ClassifyMap(m) != MapEdgeElement {
		return Edge{}, false
	}
	out, outOK := Endpoint(m[KeyOut])
	in, inOK := Endpoint(m[KeyIn])
	if !outOK || !inOK {
		return Edge{}, false
	}

	props := make(map[string]any)
	for k, v := range m {
		if !IsReservedKey(k) {
			props[k] = v
		}
	}
	return Edge{
		ID:         m[KeyID],
		Label:      model.FormatValue(m[KeyLabel]),
		OutV:       out,
		InV:        in,
		Properties: props,
	}, true
}
