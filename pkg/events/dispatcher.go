// Package events notifies registered observers after each mutation of a graph
// store. Dispatch is synchronous: callbacks run inline, in registration
// order, on the goroutine performing the mutation.
package events

import (
	"errors"
	"fmt"

	"github.com/ritzau/resultgraph/pkg/graph"
)

// Kind identifies a graph mutation
type Kind string

const (
	NodeAdded       Kind = "add_node"
	NodeDataMerged  Kind = "add_node_data"
	NodePropertySet Kind = "add_node_property"
	EdgeAdded       Kind = "add_edge"
	EdgeDataMerged  Kind = "add_edge_data"
)

// Kinds lists every recognized event kind
var Kinds = []Kind{NodeAdded, NodeDataMerged, NodePropertySet, EdgeAdded, EdgeDataMerged}

var (
	// ErrInvalidCallback is returned when registering a nil callback.
	ErrInvalidCallback = errors.New("callback is not invocable")
	// ErrUnknownEventKind is returned when registering for an unrecognized kind.
	ErrUnknownEventKind = errors.New("unknown event kind")
)

// Payload mirrors the arguments of the mutating operation. Only the fields
// relevant to the event kind are set.
type Payload struct {
	NodeID  string         `json:"node_id,omitempty"`
	FromID  string         `json:"from_id,omitempty"`
	ToID    string         `json:"to_id,omitempty"`
	EdgeKey string         `json:"edge_id,omitempty"`
	Label   string         `json:"label,omitempty"`
	Title   string         `json:"title,omitempty"`
	Key     string         `json:"key,omitempty"`
	Value   any            `json:"value,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Callback observes one completed mutation of g. A returned error propagates
// to the caller of the mutating operation.
type Callback func(g *graph.Graph, kind Kind, payload Payload) error

// Dispatcher holds callbacks per event kind
type Dispatcher struct {
	callbacks map[Kind][]Callback
}

// NewDispatcher creates a dispatcher with no registered callbacks
func NewDispatcher() *Dispatcher {
	return &Dispatcher{callbacks: make(map[Kind][]Callback)}
}

func known(kind Kind) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Register subscribes cb to one event kind
func (d *Dispatcher) Register(kind Kind, cb Callback) error {
	if cb == nil {
		return ErrInvalidCallback
	}
	if !known(kind) {
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, kind)
	}
	d.callbacks[kind] = append(d.callbacks[kind], cb)
	return nil
}

// RegisterAll subscribes cb to every recognized event kind
func (d *Dispatcher) RegisterAll(cb Callback) error {
	if cb == nil {
		return ErrInvalidCallback
	}
	for _, kind := range Kinds {
		d.callbacks[kind] = append(d.callbacks[kind], cb)
	}
	return nil
}

// Dispatch invokes every callback registered for kind. The first callback
// error stops dispatch and is returned.
func (d *Dispatcher) Dispatch(g *graph.Graph, kind Kind, payload Payload) error {
	for _, cb := range d.callbacks[kind] {
		if err := cb(g, kind, payload); err != nil {
			return fmt.Errorf("%s callback: %w", kind, err)
		}
	}
	return nil
}
