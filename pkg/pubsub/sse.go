package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ritzau/resultgraph/pkg/logging"
)

// ErrPublisherClosed is returned by Subscribe and Publish after Close
var ErrPublisherClosed = errors.New("publisher is closed")

// TopicConfig configures buffering behavior for a topic
type TopicConfig struct {
	BufferSize int  // Number of events kept for late subscribers (0 = none)
	ReplayAll  bool // Replay the whole buffer rather than the last event only
}

// subscriptionBuffer bounds the events queued per subscriber. One ingestion
// emits an event per graph mutation, so it is sized for bursts.
const subscriptionBuffer = 1024

// topicState is everything the publisher tracks for one topic
type topicState struct {
	config  TopicConfig
	version int
	history []Event
	subs    map[*sseSubscription]struct{}
}

// replay returns the buffered events a new subscriber receives
func (t *topicState) replay() []Event {
	if len(t.history) == 0 {
		return nil
	}
	if t.config.ReplayAll {
		return t.history
	}
	return t.history[len(t.history)-1:]
}

func (t *topicState) record(e Event) {
	if t.config.BufferSize <= 0 {
		return
	}
	t.history = append(t.history, e)
	if over := len(t.history) - t.config.BufferSize; over > 0 {
		t.history = append([]Event(nil), t.history[over:]...)
	}
}

// SSEPublisher is an in-process Publisher feeding Server-Sent Event streams.
// Events are JSON-encoded when published.
type SSEPublisher struct {
	mu     sync.Mutex
	topics map[string]*topicState
	closed bool
	logger *slog.Logger
}

// NewSSEPublisher creates a publisher with no configured topics
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{
		topics: make(map[string]*topicState),
		logger: logging.New("pubsub"),
	}
}

// topic returns the state of name, creating it. Caller holds p.mu.
func (p *SSEPublisher) topic(name string) *topicState {
	t, ok := p.topics[name]
	if !ok {
		t = &topicState{subs: make(map[*sseSubscription]struct{})}
		p.topics[name] = t
	}
	return t
}

// ConfigureTopic sets buffering for a topic. Already buffered events are
// trimmed to the new size.
func (p *SSEPublisher) ConfigureTopic(name string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.topic(name)
	t.config = config
	if config.BufferSize <= 0 {
		t.history = nil
	} else if over := len(t.history) - config.BufferSize; over > 0 {
		t.history = t.history[over:]
	}
}

// Subscribe registers a subscriber and queues the topic's replay for it
// before any later event. The subscription ends when ctx is done.
func (p *SSEPublisher) Subscribe(ctx context.Context, name string) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPublisherClosed
	}

	sub := &sseSubscription{
		topic:     name,
		events:    make(chan Event, subscriptionBuffer),
		publisher: p,
	}
	t := p.topic(name)
	t.subs[sub] = struct{}{}

	if replay := t.replay(); len(replay) > 0 {
		for _, e := range replay {
			sub.offer(e)
		}
		p.logger.Debug("Replayed events to subscriber", "topic", name, "count", len(replay))
	}

	context.AfterFunc(ctx, func() { sub.Close() })
	return sub, nil
}

// Publish encodes data and delivers it to every subscriber of the topic
// without blocking. A subscriber whose queue is full misses the event.
func (p *SSEPublisher) Publish(name string, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}

	t := p.topic(name)
	t.version++
	event := Event{
		Topic:   name,
		Type:    eventType,
		Data:    payload,
		Version: t.version,
	}
	t.record(event)

	for sub := range t.subs {
		if !sub.offer(event) {
			p.logger.Warn("Subscriber queue full, dropping event", "topic", name, "type", eventType, "version", event.Version)
		}
	}
	return nil
}

// Close ends every subscription; their event channels are closed.
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, t := range p.topics {
		for sub := range t.subs {
			close(sub.events)
		}
		t.subs = nil
	}
	return nil
}

func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[sub.topic]; ok && t.subs != nil {
		delete(t.subs, sub)
	}
}

// sseSubscription implements Subscription
type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	once      sync.Once
}

// offer queues e unless the queue is full. Caller holds the publisher lock.
func (s *sseSubscription) offer(e Event) bool {
	select {
	case s.events <- e:
		return true
	default:
		return false
	}
}

func (s *sseSubscription) Topic() string { return s.topic }

func (s *sseSubscription) Events() <-chan Event { return s.events }

// Close stops delivery to the subscription. The channel stays open, so
// readers also watch their own context.
func (s *sseSubscription) Close() error {
	s.once.Do(func() { s.publisher.unsubscribe(s) })
	return nil
}

// WriteSSE writes an event as one unnamed SSE frame, "data: <json>" and a
// blank line, so browsers deliver it to onmessage.
func WriteSSE(w io.Writer, event Event) error {
	frame, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", frame)
	return err
}
