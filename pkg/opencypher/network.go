// Package opencypher populates a graph from openCypher results whose
// elements are tagged as nodes or relationships.
package opencypher

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ritzau/resultgraph/pkg/logging"
	"github.com/ritzau/resultgraph/pkg/model"
	"github.com/ritzau/resultgraph/pkg/network"
	"github.com/ritzau/resultgraph/pkg/property"
)

// ErrInvalidResultShape is returned when a document has no results list
var ErrInvalidResultShape = errors.New("openCypher results must be a list of rows")

// Reserved keys of tagged elements
const (
	KeyID         = "~id"
	KeyEntityType = "~entityType"
	KeyLabels     = "~labels"
	KeyProperties = "~properties"
	KeyStart      = "~start"
	KeyEnd        = "~end"
	KeyType       = "~type"

	EntityNode         = "node"
	EntityRelationship = "relationship"
)

// Row maps result variables to elements, lists of elements or scalars
type Row map[string]any

// Results is an openCypher result document
type Results struct {
	Results []Row `json:"results"`
}

// ParseResults decodes an openCypher result document
func ParseResults(data []byte) (*Results, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse openCypher results: %w", err)
	}
	raw, ok := doc["results"]
	if !ok {
		return nil, ErrInvalidResultShape
	}
	var r Results
	if err := json.Unmarshal(raw, &r.Results); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResultShape, err)
	}
	return &r, nil
}

// Options configures the adapter. Zero values select the defaults.
type Options struct {
	Nodes        property.Options
	Edges        property.Options
	GroupByDepth bool // Group nodes by their position in the enclosing list
}

// Network adds openCypher results to a graph through a Mutator.
type Network struct {
	net          network.Mutator
	nodes        *property.Resolver
	edges        *property.Resolver
	groupByDepth bool
	logger       *slog.Logger
}

// New creates an adapter writing to m.
func New(m network.Mutator, opts Options) *Network {
	return &Network{
		net:          m,
		nodes:        property.NewResolver(opts.Nodes.WithDefaultLength()),
		edges:        property.NewResolver(opts.Edges.WithDefaultLength()),
		groupByDepth: opts.GroupByDepth,
		logger:       logging.New("opencypher"),
	}
}

// tagged is a node or relationship found in a row, with its position in
// the enclosing list
type tagged struct {
	m     map[string]any
	depth int
}

// AddResults adds every row. Within a row, nodes are added before
// relationships so edges never create blank endpoints for nodes the row
// carries.
func (n *Network) AddResults(r *Results) error {
	var nodeCount, relCount int
	for i, row := range r.Results {
		var nodes, rels []tagged
		for _, name := range sortedKeys(row) {
			collect(row[name], 0, &nodes, &rels)
		}

		for _, t := range nodes {
			if err := n.addNode(t); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		for _, t := range rels {
			if err := n.addRelationship(t); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		nodeCount += len(nodes)
		relCount += len(rels)
	}
	n.logger.Debug("Added rows", "rows", len(r.Results), "nodes", nodeCount, "relationships", relCount)
	return nil
}

func collect(v any, depth int, nodes, rels *[]tagged) {
	switch val := v.(type) {
	case []any:
		for i, item := range val {
			collect(item, i, nodes, rels)
		}
	case map[string]any:
		switch val[KeyEntityType] {
		case EntityNode:
			*nodes = append(*nodes, tagged{m: val, depth: depth})
		case EntityRelationship:
			*rels = append(*rels, tagged{m: val, depth: depth})
		}
	}
}

func (n *Network) addNode(t tagged) error {
	id := model.FormatValue(t.m[KeyID])
	ent := property.Entity{
		ID:            id,
		Discriminator: firstLabel(t.m[KeyLabels]),
		Properties:    properties(t.m),
		Raw:           rawJSON(t.m),
	}
	label, title := n.nodes.LabelTitle(ent, ent.Discriminator)
	group := n.nodes.Group(ent)
	if n.groupByDepth {
		group = n.nodes.DepthGroup(t.depth)
	}

	return n.net.AddNode(id, map[string]any{
		model.AttrLabel:      label,
		model.AttrTitle:      title,
		model.AttrGroup:      group,
		model.AttrProperties: ent.Properties,
	})
}

func (n *Network) addRelationship(t tagged) error {
	key := model.FormatValue(t.m[KeyID])
	from := model.FormatValue(t.m[KeyStart])
	to := model.FormatValue(t.m[KeyEnd])
	ent := property.Entity{
		ID:            key,
		Discriminator: model.FormatValue(t.m[KeyType]),
		Properties:    properties(t.m),
		Raw:           rawJSON(t.m),
	}
	label, title := n.edges.LabelTitle(ent, ent.Discriminator)

	data := map[string]any{
		model.AttrProperties: ent.Properties,
		model.AttrDirected:   true,
	}
	if !n.edges.Options().Group.IsDefault() {
		data[model.AttrGroup] = n.edges.Group(ent)
	}
	return n.net.AddEdge(from, to, key, label, title, data)
}

func firstLabel(v any) string {
	switch labels := v.(type) {
	case []any:
		if len(labels) > 0 {
			return model.FormatValue(labels[0])
		}
	case []string:
		if len(labels) > 0 {
			return labels[0]
		}
	case string:
		return labels
	}
	return ""
}

func properties(m map[string]any) map[string]any {
	props, _ := m[KeyProperties].(map[string]any)
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func sortedKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func rawJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
