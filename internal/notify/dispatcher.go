package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

// PublishFunc delivers one event to the broker.
type PublishFunc func(ctx context.Context, ev Event) error

// Dispatcher decouples lifecycle operations from notification I/O. Emit
// enqueues without blocking; a single worker drains the queue and
// publishes. A full queue drops the event with a log line rather than
// stalling a booking, and publish failures are logged and swallowed —
// a reservation must never fail because a notification could not be
// sent.
type Dispatcher struct {
	publish PublishFunc
	ch      chan Event
	wg      sync.WaitGroup
	once    sync.Once
}

// NewDispatcher starts a dispatcher with the given buffer size and
// publish function.
func NewDispatcher(buffer int, publish PublishFunc) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &Dispatcher{
		publish: publish,
		ch:      make(chan Event, buffer),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Emit queues an event for delivery. It never blocks.
func (d *Dispatcher) Emit(ev Event) {
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	select {
	case d.ch <- ev:
	default:
		log.Printf("notify: queue full, dropping %s for tenant %d", ev.Type, ev.TenantID)
	}
}

// Close stops the worker after draining queued events.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.ch) })
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := d.publish(ctx, ev); err != nil {
			log.Printf("notify: publish %s for tenant %d failed: %v", ev.Type, ev.TenantID, err)
		}
		cancel()
	}
}
