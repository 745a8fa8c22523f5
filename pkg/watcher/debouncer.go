package watcher

import (
	"context"
	"time"

	"github.com/ritzau/resultgraph/pkg/logging"
)

// Debouncer batches rapid file system events to avoid re-ingesting a file
// once per write while it is still being produced.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. Accumulated events are flushed
// after quietPeriod without input, or at the latest maxWait after the first
// accumulated event.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

// run processes events and applies debouncing logic
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet       = newStoppedTimer()
		maxWait     = newStoppedTimer()
		accumulated = make(map[ChangeType][]string)
		seen        = make(map[string]bool)
		eventCount  int
	)
	defer quiet.Stop()
	defer maxWait.Stop()

	flush := func() {
		quiet.Stop()
		maxWait.Stop()
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount)

		// Removals first since they force a full reseed that covers the rest
		for _, t := range []ChangeType{ChangeTypeRemoved, ChangeTypeQueryFile, ChangeTypeResultFile} {
			if paths := accumulated[t]; len(paths) > 0 {
				d.output <- ChangeEvent{Type: t, Paths: paths, Timestamp: time.Now()}
			}
		}

		accumulated = make(map[ChangeType][]string)
		seen = make(map[string]bool)
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			for _, p := range event.Paths {
				key := event.Type.String() + ":" + p
				if !seen[key] {
					seen[key] = true
					accumulated[event.Type] = append(accumulated[event.Type], p)
				}
			}
			if eventCount == 0 {
				maxWait.Reset(d.maxWait)
			}
			eventCount++
			quiet.Reset(d.quietPeriod)

		case <-quiet.C:
			flush()

		case <-maxWait.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
