// Package gremlin populates a graph from property-graph traversal results:
// paths, structured vertices and edges, element maps and value maps.
package gremlin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ritzau/resultgraph/pkg/ident"
	"github.com/ritzau/resultgraph/pkg/logging"
	"github.com/ritzau/resultgraph/pkg/model"
	"github.com/ritzau/resultgraph/pkg/network"
	"github.com/ritzau/resultgraph/pkg/property"
	"github.com/ritzau/resultgraph/pkg/result"
)

var (
	ErrInvalidPathShape       = errors.New("path must start and end on a vertex")
	ErrVertexPatternMismatch  = errors.New("vertex pattern token aligned with an edge")
	ErrEdgePatternMismatch    = errors.New("edge pattern token aligned with a vertex")
	ErrAmbiguousEdgeDirection = errors.New("ambiguous edge direction")
	ErrInvalidResultShape     = errors.New("result is not a sequence")
	ErrInvalidPattern         = errors.New("invalid path pattern")
)

// Options configures the adapter. Zero values select the defaults.
type Options struct {
	Nodes        property.Options
	Edges        property.Options
	GroupByDepth bool
	Pattern      Pattern // Empty selects unguided path handling
}

// Network adds traversal results to a graph through a Mutator.
type Network struct {
	net          network.Mutator
	nodes        *property.Resolver
	edges        *property.Resolver
	groupByDepth bool
	pattern      Pattern
	logger       *slog.Logger
}

// New creates an adapter writing to m.
func New(m network.Mutator, opts Options) *Network {
	return &Network{
		net:          m,
		nodes:        property.NewResolver(opts.Nodes.WithDefaultLength()),
		edges:        property.NewResolver(opts.Edges.WithDefaultLength()),
		groupByDepth: opts.GroupByDepth,
		pattern:      opts.Pattern,
		logger:       logging.New("gremlin"),
	}
}

// AddResults adds a decoded result set. The top level must be a list of
// results (or a Path, which is a list of elements); every item is added in
// order. Items already added stay in the graph when a later item fails.
func (n *Network) AddResults(v any) error {
	var items []result.Element
	switch val := v.(type) {
	case []result.Element:
		items = val
	case []any:
		items = make([]result.Element, 0, len(val))
		for _, item := range val {
			items = append(items, result.FromValue(item))
		}
	case result.Path:
		items = []result.Element{val}
	default:
		return fmt.Errorf("%w: got %T", ErrInvalidResultShape, v)
	}

	for i, item := range items {
		if err := n.AddElement(item); err != nil {
			return fmt.Errorf("result %d: %w", i, err)
		}
	}
	n.logger.Debug("Added results", "count", len(items))
	return nil
}

// AddElement adds a single result item according to its shape.
func (n *Network) AddElement(e result.Element) error {
	switch val := e.(type) {
	case result.Path:
		return n.AddPath(val)
	case result.Vertex, result.Scalar:
		_, err := n.addVertex(val, 0)
		return err
	case result.Edge:
		return n.addEdgeElement(val)
	case result.Map:
		switch result.ClassifyMap(val.Entries) {
		case result.MapEdgeElement:
			edge, ok := result.EdgeFromMap(val.Entries)
			if !ok {
				return fmt.Errorf("%w: edge map without endpoints", ErrInvalidResultShape)
			}
			return n.addEdgeElement(edge)
		case result.MapVertexElement, result.MapVertexValueMap:
			_, err := n.addVertex(val, 0)
			return err
		default:
			return n.AddPath(result.Path{Objects: []result.Element{val}})
		}
	default:
		return fmt.Errorf("%w: unsupported element %T", ErrInvalidResultShape, e)
	}
}

// AddPath adds a traversal path using the configured pattern, or unguided
// inference when none is configured.
func (n *Network) AddPath(p result.Path) error {
	if len(n.pattern) > 0 {
		return n.addGuidedPath(p, n.pattern)
	}
	return n.addUnguidedPath(p)
}

// AddPathWithPattern adds a path guided by an explicit pattern.
func (n *Network) AddPathWithPattern(p result.Path, pattern Pattern) error {
	if len(pattern) == 0 {
		return n.addUnguidedPath(p)
	}
	return n.addGuidedPath(p, pattern)
}

// vertex is the identity of a vertex-like element before insertion
type vertex struct {
	entity property.Entity
	// reserved marks maps, which keep their raw identity and label as
	// properties for later lookup
	reserved bool
}

func describeVertex(e result.Element) (vertex, error) {
	switch val := e.(type) {
	case result.Vertex:
		return vertex{entity: property.Entity{
			ID:            val.IDString(),
			Discriminator: val.Label,
			Properties:    copyProperties(val.Properties),
			Raw:           val.String(),
		}}, nil
	case result.Scalar:
		text := model.FormatValue(val.Value)
		return vertex{entity: property.Entity{
			ID:            text,
			Discriminator: text,
			Raw:           text,
		}}, nil
	case result.Map:
		m := val.Entries
		ent := property.Entity{Raw: rawJSON(m)}
		if result.HasMarkers(m) {
			ent.ID = model.FormatValue(m[result.KeyID])
			ent.Discriminator = model.FormatValue(m[result.KeyLabel])
			ent.Properties = make(map[string]any, len(m))
			for k, v := range m {
				if !result.IsReservedKey(k) {
					ent.Properties[k] = v
				}
			}
		} else {
			ent.ID = ident.ContentID(m)
			ent.Discriminator = ident.ConcatValues(m)
			ent.Properties = copyProperties(m)
		}
		return vertex{entity: ent, reserved: true}, nil
	default:
		return vertex{}, fmt.Errorf("%w: %s is not vertex-like", ErrInvalidPathShape, e.Kind())
	}
}

// addVertex inserts a vertex-like element and returns its node id.
func (n *Network) addVertex(e result.Element, depth int) (string, error) {
	v, err := describeVertex(e)
	if err != nil {
		return "", err
	}

	ent := v.entity
	label, title := n.nodes.LabelTitle(ent, ent.Discriminator)
	group := n.nodes.Group(ent)
	if n.groupByDepth {
		group = n.nodes.DepthGroup(depth)
	}

	props := ent.Properties
	if props == nil {
		props = map[string]any{}
	}
	if v.reserved {
		props[result.KeyID] = ent.ID
		props[result.KeyLabel] = ent.Discriminator
	}

	data := map[string]any{
		model.AttrLabel:      label,
		model.AttrTitle:      title,
		model.AttrGroup:      group,
		model.AttrProperties: props,
	}
	if err := n.net.AddNode(ent.ID, data); err != nil {
		return "", err
	}
	return ent.ID, nil
}

// addEdgeElement inserts a standalone edge. Endpoints that do not exist yet
// get placeholder nodes; existing nodes are left untouched.
func (n *Network) addEdgeElement(e result.Edge) error {
	if !e.HasEndpoints() {
		return fmt.Errorf("%w: edge %s has no endpoints", ErrInvalidResultShape, e.IDString())
	}
	from, to := e.OutV.IDString(), e.InV.IDString()
	for _, end := range []result.Vertex{e.OutV, e.InV} {
		if err := n.addPlaceholder(end); err != nil {
			return err
		}
	}
	return n.insertEdge(from, to, e, true)
}

func (n *Network) addPlaceholder(v result.Vertex) error {
	id := v.IDString()
	if n.net.HasNode(id) {
		return nil
	}
	discriminator := v.Label
	if discriminator == "" {
		discriminator = id
	}
	ent := property.Entity{ID: id, Discriminator: discriminator, Raw: v.String()}
	label, title := n.nodes.LabelTitle(ent, discriminator)
	return n.net.AddNode(id, map[string]any{
		model.AttrLabel:      label,
		model.AttrTitle:      title,
		model.AttrGroup:      n.nodes.Group(ent),
		model.AttrProperties: map[string]any{},
	})
}

// insertEdge adds e between from and to with resolved display attributes.
func (n *Network) insertEdge(from, to string, e result.Edge, directed bool) error {
	key := e.IDString()
	ent := property.Entity{
		ID:            key,
		Discriminator: e.Label,
		Properties:    copyProperties(e.Properties),
		Raw:           e.String(),
	}
	label, title := n.edges.LabelTitle(ent, e.Label)

	props := ent.Properties
	if props == nil {
		props = map[string]any{}
	}
	data := map[string]any{
		model.AttrProperties: props,
		model.AttrDirected:   directed,
	}
	if !n.edges.Options().Group.IsDefault() {
		data[model.AttrGroup] = n.edges.Group(ent)
	}
	return n.net.AddEdge(from, to, key, label, title, data)
}

// insertUnlabeledEdge connects two vertices with an anonymous, non-directed
// edge whose key is derived from its endpoints.
func (n *Network) insertUnlabeledEdge(from, to string) (string, error) {
	key := ident.ContentID([]string{from, to})
	err := n.net.AddEdge(from, to, key, "", "", map[string]any{
		model.AttrProperties: map[string]any{},
		model.AttrDirected:   false,
	})
	return key, err
}

// insertFallbackEdge connects two vertices the edge could not be matched to
// and records the edge's own identity on it.
func (n *Network) insertFallbackEdge(from, to string, e result.Edge) error {
	key := e.IDString()
	if key == "" {
		key = ident.ContentID([]string{from, to})
	}
	if err := n.net.AddEdge(from, to, key, "", "", map[string]any{
		model.AttrProperties: map[string]any{},
		model.AttrDirected:   false,
	}); err != nil {
		return err
	}
	return n.net.AddEdgeData(from, to, key, map[string]any{
		model.AttrTitle: e.Label,
		model.AttrProperties: map[string]any{
			result.KeyID:    key,
			result.KeyLabel: e.Label,
		},
	})
}

func copyProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func rawJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
