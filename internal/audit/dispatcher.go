// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// # Persistence Contract

// Sink persists audit events. The PostgreSQL implementation lives in
// [NewPostgresStore]; tests inject in-memory sinks.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// # Async Dispatch

const defaultBufferSize = 256

// Dispatcher forwards audit events to a sink from a background worker.
//
// Submit never blocks the request path: when the buffer is full the event is
// dropped and counted. A nil *Dispatcher is valid and discards everything,
// which lets callers skip nil checks when auditing is disabled.
type Dispatcher struct {
	sink   Sink
	logger *slog.Logger

	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the background worker.
//
// # Parameters
//   - sink: Where events are persisted.
//   - bufferSize: Channel capacity; values <= 0 fall back to the default.
//   - logger: Structured logger for drop and persistence failures.
func NewDispatcher(sink Sink, bufferSize int, logger *slog.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	dispatcher := &Dispatcher{
		sink:   sink,
		logger: logger.With(slog.String("component", "audit")),
		ch:     make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}

	dispatcher.wg.Add(1)
	go dispatcher.run()

	return dispatcher
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.persist(event)
		case <-d.done:
			// Drain whatever is buffered before exiting.
			for {
				select {
				case event := <-d.ch:
					d.persist(event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) persist(event Event) {
	if err := d.sink.Emit(context.Background(), event); err != nil {
		d.logger.Warn("audit_write_failed",
			slog.String("event_type", string(event.Type)),
			slog.Any("error", err),
		)
	}
}

// Submit queues an event for persistence. It never blocks: a full buffer
// drops the event and increments the drop counter.
func (d *Dispatcher) Submit(event Event) {
	if d == nil || d.closed.Load() {
		return
	}

	select {
	case d.ch <- event:
	case <-d.done:
	default:
		d.dropped.Add(1)
	}
}

// Close stops accepting events, drains the buffer, and waits for the worker.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()

		if dropped := d.dropped.Load(); dropped > 0 {
			d.logger.Warn("audit_events_dropped", slog.Uint64("count", dropped))
		}
	})
}

// Dropped returns the number of events discarded due to a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
