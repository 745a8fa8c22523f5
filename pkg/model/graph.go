package model

// Attribute keys shared by the graph store, the result adapters and the
// rendering layer.
const (
	AttrID         = "id"
	AttrLabel      = "label"
	AttrTitle      = "title"
	AttrGroup      = "group"
	AttrProperties = "properties"
	AttrDirected   = "directed"
)

// DefaultGroup is the sentinel group assigned when no grouping spec resolves
// or when grouping is disabled. It is distinct from the empty group.
const DefaultGroup = "DEFAULT_GROUP"

// Attrs is the top-level attribute set stored for a node or an edge.
// label, title, group and properties live here next to any extra keys a
// caller merged in with AddNodeData or AddEdgeData.
type Attrs map[string]any

// String returns the attribute as a string, or "" when absent.
func (a Attrs) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return FormatValue(v)
}

// Properties returns the properties sub-map, or nil when the entity has none.
func (a Attrs) Properties() map[string]any {
	props, _ := a[AttrProperties].(map[string]any)
	return props
}

// Clone copies the attribute set and its properties sub-map so the copy can
// be handed out without exposing the store's own maps.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	if props := a.Properties(); props != nil {
		cp := make(map[string]any, len(props))
		for k, v := range props {
			cp[k] = v
		}
		out[AttrProperties] = cp
	}
	return out
}

// Node is a read-only view of a vertex in the graph store.
type Node struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`           // Truncated display text
	Title      string         `json:"title"`           // Full display text, used as tooltip
	Group      string         `json:"group"`           // Clustering key, "" = no assigned group
	Properties map[string]any `json:"properties"`      // Entity properties
	Attrs      Attrs          `json:"attrs,omitempty"` // Every stored attribute, including the above
}

// NewNode builds a node view from its stored attributes.
func NewNode(id string, attrs Attrs) *Node {
	attrs = attrs.Clone()
	return &Node{
		ID:         id,
		Label:      attrs.String(AttrLabel),
		Title:      attrs.String(AttrTitle),
		Group:      attrs.String(AttrGroup),
		Properties: attrs.Properties(),
		Attrs:      attrs,
	}
}

// Edge is a read-only view of a single edge of the multigraph.
type Edge struct {
	From       string         `json:"from"`
	To         string         `json:"to"`
	Key        string         `json:"key"` // Disambiguates parallel edges between the same ordered pair
	Label      string         `json:"label"`
	Title      string         `json:"title"`
	Group      string         `json:"group,omitempty"`
	Properties map[string]any `json:"properties"`
	Directed   bool           `json:"directed"` // Rendering hint; storage is always oriented From -> To
	Attrs      Attrs          `json:"attrs,omitempty"`
}

// NewEdge builds an edge view from its stored attributes. An edge is
// directed unless its attributes explicitly say otherwise.
func NewEdge(from, to, key string, attrs Attrs) *Edge {
	attrs = attrs.Clone()
	directed := true
	if d, ok := attrs[AttrDirected].(bool); ok {
		directed = d
	}
	return &Edge{
		From:       from,
		To:         to,
		Key:        key,
		Label:      attrs.String(AttrLabel),
		Title:      attrs.String(AttrTitle),
		Group:      attrs.String(AttrGroup),
		Properties: attrs.Properties(),
		Directed:   directed,
		Attrs:      attrs,
	}
}
