package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the application
const (
	TopicGraphEvents = "graph_events" // One event per graph mutation
	TopicGraphStatus = "graph_status" // Ingestion progress and totals
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "graph_events", "graph_status")
	Type    string          `json:"type"`    // Event type (e.g., "add_node", "add_edge", "ingested")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// GraphEvent is the payload of a graph mutation event
type GraphEvent struct {
	NodeID  string         `json:"node_id,omitempty"`
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`
	EdgeKey string         `json:"edge_key,omitempty"`
	Label   string         `json:"label,omitempty"`
	Title   string         `json:"title,omitempty"`
	Key     string         `json:"key,omitempty"`
	Value   any            `json:"value,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// GraphStatus summarizes the graph after an ingestion
type GraphStatus struct {
	State  string `json:"state"`  // ingested, failed, reset
	Source string `json:"source"` // File name or request path
	Format string `json:"format"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
	Error  string `json:"error,omitempty"`
}
