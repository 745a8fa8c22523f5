package pubsub

import (
	"github.com/ritzau/resultgraph/pkg/events"
	"github.com/ritzau/resultgraph/pkg/graph"
)

// ForwardEvents publishes every graph mutation dispatched by d on the graph
// events topic. Publishing never blocks; a closed publisher surfaces as a
// callback error.
func ForwardEvents(d *events.Dispatcher, p Publisher) error {
	return d.RegisterAll(func(_ *graph.Graph, kind events.Kind, payload events.Payload) error {
		return p.Publish(TopicGraphEvents, string(kind), GraphEvent{
			NodeID:  payload.NodeID,
			From:    payload.FromID,
			To:      payload.ToID,
			EdgeKey: payload.EdgeKey,
			Label:   payload.Label,
			Title:   payload.Title,
			Key:     payload.Key,
			Value:   payload.Value,
			Data:    payload.Data,
		})
	})
}
