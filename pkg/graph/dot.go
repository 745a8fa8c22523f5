package graph

import (
	"strconv"

	"github.com/ritzau/resultgraph/pkg/model"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
)

// DOTID implements dot.Node
func (v *vertex) DOTID() string { return v.name }

// Attributes implements encoding.Attributer
func (v *vertex) Attributes() []encoding.Attribute {
	return displayAttributes(v.attrs)
}

// Attributes implements encoding.Attributer
func (l *link) Attributes() []encoding.Attribute {
	attrs := displayAttributes(l.attrs)
	if d, ok := l.attrs[model.AttrDirected].(bool); ok && !d {
		attrs = append(attrs, encoding.Attribute{Key: "dir", Value: "none"})
	}
	return attrs
}

func displayAttributes(a model.Attrs) []encoding.Attribute {
	var attrs []encoding.Attribute
	if label := a.String(model.AttrLabel); label != "" {
		attrs = append(attrs, encoding.Attribute{Key: "label", Value: strconv.Quote(label)})
	}
	if title := a.String(model.AttrTitle); title != "" {
		attrs = append(attrs, encoding.Attribute{Key: "tooltip", Value: strconv.Quote(title)})
	}
	return attrs
}

// MarshalDOT renders the multigraph in Graphviz DOT format for offline
// rendering.
func (g *Graph) MarshalDOT(name string) ([]byte, error) {
	return dot.MarshalMulti(g.graph, name, "", "  ")
}
