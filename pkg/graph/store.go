package graph

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/ritzau/resultgraph/pkg/model"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

var (
	// ErrInvalidDataShape is returned when node or edge data is not a map.
	ErrInvalidDataShape = errors.New("data must be a map")
	// ErrEdgeNotFound is returned when an edge (from, to, key) does not exist.
	ErrEdgeNotFound = errors.New("edge does not exist")
)

// vertex is the gonum node stored for each graph node
type vertex struct {
	uid   int64
	name  string
	attrs model.Attrs
}

func (v *vertex) ID() int64 { return v.uid }

// link is the gonum line stored for each edge of the multigraph
type link struct {
	from, to *vertex
	uid      int64
	key      string
	attrs    model.Attrs
}

func (l *link) From() graph.Node { return l.from }
func (l *link) To() graph.Node   { return l.to }
func (l *link) ID() int64        { return l.uid }
func (l *link) ReversedLine() graph.Line {
	return &link{from: l.to, to: l.from, uid: l.uid, key: l.key, attrs: l.attrs}
}

// edgeID identifies an edge of the multigraph
type edgeID struct {
	from, to, key string
}

// Graph is an in-memory directed multigraph whose nodes are keyed by string
// ids and whose edges are keyed by (from, to, key). Nodes and edges carry a
// free-form attribute set. Graph performs no locking; callers sharing one
// Graph across goroutines must serialize access.
type Graph struct {
	graph     *multi.DirectedGraph
	nodes     map[string]*vertex // Map from node id to gonum node
	edges     map[edgeID]*link
	nodeOrder []string
	edgeOrder []edgeID
	nextID    int64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		graph: multi.NewDirectedGraph(),
		nodes: make(map[string]*vertex),
		edges: make(map[edgeID]*link),
	}
}

// ensureNode returns the node with the given id, creating it with empty
// attributes if it does not exist yet.
func (g *Graph) ensureNode(id string) (*vertex, bool) {
	if v, exists := g.nodes[id]; exists {
		return v, false
	}

	v := &vertex{uid: g.nextID, name: id, attrs: model.Attrs{}}
	g.nextID++
	g.nodes[id] = v
	g.nodeOrder = append(g.nodeOrder, id)
	g.graph.AddNode(v)
	return v, true
}

// AddNode creates the node if absent. Data keys are merged onto the node's
// attributes, last write wins per key. A properties map is copied so later
// property writes never reach the caller's map.
func (g *Graph) AddNode(id string, data map[string]any) {
	v, _ := g.ensureNode(id)
	for k, val := range data {
		if props, ok := val.(map[string]any); ok && k == model.AttrProperties {
			val = maps.Clone(props)
		}
		v.attrs[k] = val
	}
}

// AddNodeProperty sets properties[key] = value on the node, creating the node
// and its properties sub-map as needed.
func (g *Graph) AddNodeProperty(id, key string, value any) {
	v, _ := g.ensureNode(id)
	props := v.attrs.Properties()
	if props == nil {
		props = make(map[string]any)
		v.attrs[model.AttrProperties] = props
	}
	props[key] = value
}

// AddNodeData overwrites each key of data onto the node's top-level
// attributes. data must be a map.
func (g *Graph) AddNodeData(id string, data any) error {
	m, ok := asMap(data)
	if !ok {
		return fmt.Errorf("node %q: %w, got %T", id, ErrInvalidDataShape, data)
	}
	g.AddNode(id, m)
	return nil
}

// AddEdge inserts the edge (from, to, key) or merges onto it when it already
// exists. label is always stored; title only when non-empty. Missing
// endpoints are created with empty attributes.
func (g *Graph) AddEdge(from, to, key, label, title string, data map[string]any) {
	eid := edgeID{from: from, to: to, key: key}
	l, exists := g.edges[eid]
	if !exists {
		f, _ := g.ensureNode(from)
		t, _ := g.ensureNode(to)
		uid := g.graph.NewLine(f, t).ID()
		l = &link{from: f, to: t, uid: uid, key: key, attrs: model.Attrs{}}
		g.graph.SetLine(l)
		g.edges[eid] = l
		g.edgeOrder = append(g.edgeOrder, eid)
	}

	for k, val := range data {
		l.attrs[k] = val
	}
	l.attrs[model.AttrLabel] = label
	if title != "" {
		l.attrs[model.AttrTitle] = title
	}
}

// AddEdgeData merges data onto an existing edge. The store is left untouched
// when the edge does not exist or data is not a map.
func (g *Graph) AddEdgeData(from, to, key string, data any) error {
	l, exists := g.edges[edgeID{from: from, to: to, key: key}]
	if !exists {
		return fmt.Errorf("edge %s -> %s [%s]: %w", from, to, key, ErrEdgeNotFound)
	}
	m, ok := asMap(data)
	if !ok {
		return fmt.Errorf("edge %s -> %s [%s]: %w, got %T", from, to, key, ErrInvalidDataShape, data)
	}
	for k, val := range m {
		l.attrs[k] = val
	}
	return nil
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, exists := g.nodes[id]
	return exists
}

// HasEdge reports whether the edge (from, to, key) exists.
func (g *Graph) HasEdge(from, to, key string) bool {
	_, exists := g.edges[edgeID{from: from, to: to, key: key}]
	return exists
}

// GetNode returns a node by id
func (g *Graph) GetNode(id string) (*model.Node, bool) {
	v, exists := g.nodes[id]
	if !exists {
		return nil, false
	}
	return model.NewNode(id, v.attrs), true
}

// GetEdge returns an edge by its (from, to, key) triple
func (g *Graph) GetEdge(from, to, key string) (*model.Edge, bool) {
	l, exists := g.edges[edgeID{from: from, to: to, key: key}]
	if !exists {
		return nil, false
	}
	return model.NewEdge(from, to, key, l.attrs), true
}

// Nodes returns all nodes in insertion order
func (g *Graph) Nodes() []*model.Node {
	nodes := make([]*model.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, model.NewNode(id, g.nodes[id].attrs))
	}
	return nodes
}

// Edges returns all edges in insertion order
func (g *Graph) Edges() []*model.Edge {
	edges := make([]*model.Edge, 0, len(g.edgeOrder))
	for _, eid := range g.edgeOrder {
		edges = append(edges, model.NewEdge(eid.from, eid.to, eid.key, g.edges[eid].attrs))
	}
	return edges
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int { return len(g.nodeOrder) }

// EdgeCount returns the number of edges, counting parallel edges separately
func (g *Graph) EdgeCount() int { return len(g.edgeOrder) }

// EdgesBetween returns the keys of all parallel edges from -> to, oldest first.
func (g *Graph) EdgesBetween(from, to string) []string {
	f, fok := g.nodes[from]
	t, tok := g.nodes[to]
	if !fok || !tok || !g.graph.HasEdgeFromTo(f.uid, t.uid) {
		return nil
	}

	var found []*link
	lines := g.graph.Lines(f.uid, t.uid)
	for lines.Next() {
		if l, ok := lines.Line().(*link); ok {
			found = append(found, l)
		}
	}
	slices.SortFunc(found, func(a, b *link) int { return cmp.Compare(a.uid, b.uid) })

	keys := make([]string, 0, len(found))
	for _, l := range found {
		keys = append(keys, l.key)
	}
	return keys
}

func asMap(data any) (map[string]any, bool) {
	switch m := data.(type) {
	case map[string]any:
		return m, true
	case model.Attrs:
		return m, true
	default:
		return nil, false
	}
}
