package graph

import (
	"encoding/json"
	"fmt"

	"github.com/ritzau/resultgraph/pkg/model"
)

// ToSnapshot produces the node-link form of the graph. Nodes and links are
// listed in insertion order; attribute maps are copied.
func (g *Graph) ToSnapshot() model.Snapshot {
	data := model.NodeLinkData{
		Directed:   true,
		Multigraph: true,
		Graph:      map[string]any{},
		Nodes:      make([]map[string]any, 0, len(g.nodeOrder)),
		Links:      make([]map[string]any, 0, len(g.edgeOrder)),
	}

	for _, id := range g.nodeOrder {
		entry := map[string]any(g.nodes[id].attrs.Clone())
		entry[model.AttrID] = id
		data.Nodes = append(data.Nodes, entry)
	}

	for _, eid := range g.edgeOrder {
		entry := map[string]any(g.edges[eid].attrs.Clone())
		entry[model.LinkSource] = eid.from
		entry[model.LinkTarget] = eid.to
		entry[model.LinkKey] = eid.key
		data.Links = append(data.Links, entry)
	}

	return model.Snapshot{Graph: data}
}

// MarshalJSON encodes the graph as its node-link snapshot.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToSnapshot())
}

// FromSnapshot rebuilds a graph from its node-link form.
func FromSnapshot(s model.Snapshot) (*Graph, error) {
	g := New()

	for i, entry := range s.Graph.Nodes {
		rawID, ok := entry[model.AttrID]
		if !ok {
			return nil, fmt.Errorf("snapshot node %d: missing %q", i, model.AttrID)
		}
		attrs := make(map[string]any, len(entry))
		for k, v := range entry {
			if k != model.AttrID {
				attrs[k] = v
			}
		}
		g.AddNode(model.FormatValue(rawID), attrs)
	}

	for i, entry := range s.Graph.Links {
		source, sok := entry[model.LinkSource]
		target, tok := entry[model.LinkTarget]
		if !sok || !tok {
			return nil, fmt.Errorf("snapshot link %d: missing source or target", i)
		}
		key := model.FormatValue(entry[model.LinkKey])

		attrs := make(map[string]any, len(entry))
		for k, v := range entry {
			switch k {
			case model.LinkSource, model.LinkTarget, model.LinkKey:
			default:
				attrs[k] = v
			}
		}
		label, _ := attrs[model.AttrLabel].(string)
		g.AddEdge(model.FormatValue(source), model.FormatValue(target), key, label, "", attrs)
	}

	return g, nil
}

// UnmarshalSnapshot decodes a JSON node-link snapshot into a new graph.
func UnmarshalSnapshot(data []byte) (*Graph, error) {
	var s model.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return FromSnapshot(s)
}
