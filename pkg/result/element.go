// Package result models property-graph query results as a closed set of
// element variants and classifies ambiguous map shapes.
package result

import (
	"github.com/ritzau/resultgraph/pkg/model"
)

// Reserved marker keys of element maps
const (
	KeyID       = "T.id"
	KeyLabel    = "T.label"
	KeyIn       = "Direction.IN"
	KeyOut      = "Direction.OUT"
	TokenPrefix = "T."
	DirPrefix   = "Direction."
)

// ElementKind tags the variant of an Element
type ElementKind int

const (
	KindVertex ElementKind = iota
	KindEdge
	KindMap
	KindScalar
	KindPath
)

func (k ElementKind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindEdge:
		return "edge"
	case KindMap:
		return "map"
	case KindScalar:
		return "scalar"
	case KindPath:
		return "path"
	default:
		return "unknown"
	}
}

// Element is one item of a property-graph result. The set of
// implementations is closed: Vertex, Edge, Map, Scalar and Path.
type Element interface {
	Kind() ElementKind
}

// Vertex is a structured vertex with its native id and label
type Vertex struct {
	ID         any            `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Kind implements Element
func (Vertex) Kind() ElementKind { return KindVertex }

// IDString returns the vertex id as text
func (v Vertex) IDString() string { return model.FormatValue(v.ID) }

// String renders the vertex the way traversal consoles print it
func (v Vertex) String() string { return "v[" + v.IDString() + "]" }

// Edge is a structured edge. OutV is the tail and InV the head; an endpoint
// with a nil ID is unknown.
type Edge struct {
	ID         any            `json:"id"`
	Label      string         `json:"label"`
	OutV       Vertex         `json:"outV"`
	InV        Vertex         `json:"inV"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Kind implements Element
func (Edge) Kind() ElementKind { return KindEdge }

// IDString returns the edge id as text
func (e Edge) IDString() string { return model.FormatValue(e.ID) }

// HasEndpoints reports whether both endpoint ids are known
func (e Edge) HasEndpoints() bool { return e.OutV.ID != nil && e.InV.ID != nil }

// String renders the edge the way traversal consoles print it
func (e Edge) String() string {
	return "e[" + e.IDString() + "][" + e.OutV.IDString() + "-" + e.Label + "->" + e.InV.IDString() + "]"
}

// Map is a result map: either an element map tagged with T.id / T.label /
// Direction markers or an untagged value map.
type Map struct {
	Entries map[string]any
}

// Kind implements Element
func (Map) Kind() ElementKind { return KindMap }

// Scalar is any other value (string, number, boolean)
type Scalar struct {
	Value any
}

// Kind implements Element
func (Scalar) Kind() ElementKind { return KindScalar }

// Path is an ordered sequence of elements produced by a traversal
type Path struct {
	Objects []Element
	Labels  [][]string
}

// Kind implements Element
func (Path) Kind() ElementKind { return KindPath }

// FromValue wraps a decoded value in its Element variant. Plain lists become
// paths, plain JSON objects become maps.
func FromValue(v any) Element {
	switch val := v.(type) {
	case *Vertex:
		return *val
	case *Edge:
		return *val
	case Element:
		return val
	case map[string]any:
		return Map{Entries: val}
	case []any:
		objects := make([]Element, 0, len(val))
		for _, item := range val {
			objects = append(objects, FromValue(item))
		}
		return Path{Objects: objects}
	default:
		return Scalar{Value: val}
	}
}
