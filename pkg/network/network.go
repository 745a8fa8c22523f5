// Package network composes a graph store with an event dispatcher. Result
// adapters populate a graph through the Mutator interface so every insertion
// is followed by a notification.
package network

import (
	"github.com/ritzau/resultgraph/pkg/events"
	"github.com/ritzau/resultgraph/pkg/graph"
	"github.com/ritzau/resultgraph/pkg/model"
)

// Mutator is the mutate-and-notify surface shared by all result adapters.
type Mutator interface {
	AddNode(id string, data map[string]any) error
	AddNodeProperty(id, key string, value any) error
	AddNodeData(id string, data any) error
	AddEdge(from, to, key, label, title string, data map[string]any) error
	AddEdgeData(from, to, key string, data any) error

	HasNode(id string) bool
	HasEdge(from, to, key string) bool
}

// Network is a graph store whose mutations are published to an event
// dispatcher held by reference.
type Network struct {
	graph  *graph.Graph
	events *events.Dispatcher
}

// New creates a network over an empty graph with its own dispatcher.
func New() *Network {
	return Wrap(graph.New(), events.NewDispatcher())
}

// Wrap composes an existing graph and dispatcher. A nil dispatcher gets a
// fresh one.
func Wrap(g *graph.Graph, d *events.Dispatcher) *Network {
	if d == nil {
		d = events.NewDispatcher()
	}
	return &Network{graph: g, events: d}
}

// Graph returns the underlying store for read access.
func (n *Network) Graph() *graph.Graph { return n.graph }

// Events returns the dispatcher so callers can register observers.
func (n *Network) Events() *events.Dispatcher { return n.events }

// AddNode implements Mutator
func (n *Network) AddNode(id string, data map[string]any) error {
	n.graph.AddNode(id, data)
	return n.events.Dispatch(n.graph, events.NodeAdded, events.Payload{NodeID: id, Data: data})
}

// AddNodeProperty implements Mutator
func (n *Network) AddNodeProperty(id, key string, value any) error {
	n.graph.AddNodeProperty(id, key, value)
	return n.events.Dispatch(n.graph, events.NodePropertySet, events.Payload{NodeID: id, Key: key, Value: value})
}

// AddNodeData implements Mutator
func (n *Network) AddNodeData(id string, data any) error {
	if err := n.graph.AddNodeData(id, data); err != nil {
		return err
	}
	m, _ := data.(map[string]any)
	if attrs, ok := data.(model.Attrs); ok {
		m = attrs
	}
	return n.events.Dispatch(n.graph, events.NodeDataMerged, events.Payload{NodeID: id, Data: m})
}

// AddEdge implements Mutator
func (n *Network) AddEdge(from, to, key, label, title string, data map[string]any) error {
	n.graph.AddEdge(from, to, key, label, title, data)
	return n.events.Dispatch(n.graph, events.EdgeAdded, events.Payload{
		FromID: from, ToID: to, EdgeKey: key, Label: label, Title: title, Data: data,
	})
}

// AddEdgeData implements Mutator
func (n *Network) AddEdgeData(from, to, key string, data any) error {
	if err := n.graph.AddEdgeData(from, to, key, data); err != nil {
		return err
	}
	m, _ := data.(map[string]any)
	if attrs, ok := data.(model.Attrs); ok {
		m = attrs
	}
	return n.events.Dispatch(n.graph, events.EdgeDataMerged, events.Payload{
		FromID: from, ToID: to, EdgeKey: key, Data: m,
	})
}

// HasNode implements Mutator
func (n *Network) HasNode(id string) bool { return n.graph.HasNode(id) }

// HasEdge implements Mutator
func (n *Network) HasEdge(from, to, key string) bool { return n.graph.HasEdge(from, to, key) }

// Snapshot returns the node-link form of the current graph.
func (n *Network) Snapshot() model.Snapshot { return n.graph.ToSnapshot() }
