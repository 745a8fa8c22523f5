package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ritzau/resultgraph/pkg/network"
)

func TestEventBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Configure topic with buffer size 3, replay all
	pub.ConfigureTopic(TopicGraphStatus, TopicConfig{
		BufferSize: 3,
		ReplayAll:  true,
	})

	// Publish 5 events
	for i := 1; i <= 5; i++ {
		err := pub.Publish(TopicGraphStatus, "ingested", GraphStatus{State: "ingested", Nodes: i})
		if err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	// Subscribe and verify we get last 3 events
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicGraphStatus)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive last 3 events (3, 4, 5)
	receivedCount := 0
	for receivedCount < 3 {
		select {
		case event := <-sub.Events():
			receivedCount++
			t.Logf("Received replayed event version %d", event.Version)
			// Events should be 3, 4, 5 (last 3 of 5)
			expectedVersion := receivedCount + 2
			if event.Version != expectedVersion {
				t.Errorf("Expected version %d, got %d", expectedVersion, event.Version)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for event %d", receivedCount+1)
		}
	}

	if receivedCount != 3 {
		t.Errorf("Expected 3 replayed events, got %d", receivedCount)
	}
}

func TestReplayLastOnly(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Configure topic with buffer size 5, replay only last
	pub.ConfigureTopic(TopicGraphStatus, TopicConfig{
		BufferSize: 5,
		ReplayAll:  false,
	})

	// Publish 3 events
	for i := 1; i <= 3; i++ {
		err := pub.Publish(TopicGraphStatus, "ingested", GraphStatus{State: "ingested", Nodes: i})
		if err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	// Subscribe and verify we get only last event
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicGraphStatus)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive only last event (version 3)
	select {
	case event := <-sub.Events():
		if event.Version != 3 {
			t.Errorf("Expected version 3, got %d", event.Version)
		}
		t.Logf("Received last event version %d", event.Version)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}

	// Verify no more events are sent
	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected extra event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
		// Good, no extra events
	}
}

func TestNoBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Configure topic with no buffer
	pub.ConfigureTopic(TopicGraphStatus, TopicConfig{
		BufferSize: 0,
		ReplayAll:  false,
	})

	// Publish events before subscribing
	for i := 1; i <= 3; i++ {
		err := pub.Publish(TopicGraphStatus, "ingested", GraphStatus{State: "ingested", Nodes: i})
		if err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	// Subscribe - should not receive any replayed events
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicGraphStatus)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Verify no events are received (because none were buffered)
	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected replayed event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
		// Good, no events replayed
		t.Log("Correctly received no events (buffer disabled)")
	}

	// Now publish a new event - subscriber should receive it
	err = pub.Publish(TopicGraphStatus, "ingested", GraphStatus{State: "ingested", Nodes: 4})
	if err != nil {
		t.Fatalf("Failed to publish new event: %v", err)
	}

	select {
	case event := <-sub.Events():
		if event.Version != 4 {
			t.Errorf("Expected version 4, got %d", event.Version)
		}
		t.Logf("Received new event version %d", event.Version)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for new event")
	}
}

func TestForwardEvents(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	net := network.New()
	if err := ForwardEvents(net.Events(), pub); err != nil {
		t.Fatalf("Failed to forward events: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicGraphEvents)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	if err := net.AddNode("22", map[string]any{"label": "SJC"}); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	if err := net.AddEdge("22", "1102", "7527", "route", "", nil); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}

	wantTypes := []string{"add_node", "add_edge"}
	for i, want := range wantTypes {
		select {
		case event := <-sub.Events():
			if event.Type != want {
				t.Errorf("Event %d: expected type %s, got %s", i, want, event.Type)
			}
			if event.Version != i+1 {
				t.Errorf("Event %d: expected version %d, got %d", i, i+1, event.Version)
			}
			var payload GraphEvent
			if err := json.Unmarshal(event.Data, &payload); err != nil {
				t.Fatalf("Failed to decode payload: %v", err)
			}
			if i == 0 && payload.NodeID != "22" {
				t.Errorf("Expected node id 22, got %q", payload.NodeID)
			}
			if i == 1 && (payload.From != "22" || payload.To != "1102" || payload.EdgeKey != "7527") {
				t.Errorf("Unexpected edge payload: %+v", payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for %s", want)
		}
	}
}

func TestForwardToClosedPublisher(t *testing.T) {
	pub := NewSSEPublisher()
	net := network.New()
	if err := ForwardEvents(net.Events(), pub); err != nil {
		t.Fatalf("Failed to forward events: %v", err)
	}
	pub.Close()

	err := net.AddNode("1", nil)
	if err == nil {
		t.Fatal("Expected publish error to surface from the mutation")
	}
	if !net.HasNode("1") {
		t.Error("Expected the node to be stored before the callback failed")
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	event := Event{Topic: TopicGraphEvents, Type: "add_node", Data: json.RawMessage(`{"node_id":"1"}`), Version: 1}
	if err := WriteSSE(&buf, event); err != nil {
		t.Fatalf("WriteSSE failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "data: ") || !strings.HasSuffix(out, "\n\n") {
		t.Errorf("Expected SSE framing, got %q", out)
	}
	if !strings.Contains(out, `"type":"add_node"`) {
		t.Errorf("Expected event type in payload, got %q", out)
	}
}

func TestReplayPrecedesLaterEvents(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()
	pub.ConfigureTopic(TopicGraphEvents, TopicConfig{BufferSize: 2, ReplayAll: true})

	for i := 1; i <= 3; i++ {
		if err := pub.Publish(TopicGraphEvents, "add_node", GraphEvent{NodeID: "n"}); err != nil {
			t.Fatalf("Failed to publish: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicGraphEvents)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if err := pub.Publish(TopicGraphEvents, "add_edge", GraphEvent{From: "a", To: "b"}); err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}

	// Buffer of two keeps versions 2 and 3; version 4 follows them
	for _, want := range []int{2, 3, 4} {
		select {
		case event := <-sub.Events():
			if event.Version != want {
				t.Errorf("Expected version %d, got %d", want, event.Version)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for version %d", want)
		}
	}
}

func TestCancelledSubscriptionStopsDelivery(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := pub.Subscribe(ctx, TopicGraphStatus)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for {
		pub.mu.Lock()
		n := len(pub.topics[TopicGraphStatus].subs)
		pub.mu.Unlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Subscription still registered after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := pub.Publish(TopicGraphStatus, "reset", GraphStatus{State: "reset"}); err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}
	select {
	case event := <-sub.Events():
		t.Errorf("Received event after cancel: %+v", event)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestClosedPublisher(t *testing.T) {
	pub := NewSSEPublisher()
	sub, err := pub.Subscribe(context.Background(), TopicGraphEvents)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	pub.Close()

	if _, ok := <-sub.Events(); ok {
		t.Error("Expected subscription channel to be closed")
	}
	if err := pub.Publish(TopicGraphEvents, "add_node", nil); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("Expected ErrPublisherClosed from Publish, got %v", err)
	}
	if _, err := pub.Subscribe(context.Background(), TopicGraphEvents); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("Expected ErrPublisherClosed from Subscribe, got %v", err)
	}
}
