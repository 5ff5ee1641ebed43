package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"revoice/internal/logging"
)

// Handler consumes domain events. Handle must reject events it cannot handle
// with a validation error rather than silently ignoring them.
type Handler interface {
	CanHandle(eventType Type) bool
	Handle(ctx context.Context, event Event) error
	Priority() int
	Async() bool
}

// Dispatcher routes events to registered handlers in ascending priority
// order. A failing handler does not stop delivery to the remaining handlers.
type Dispatcher struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers []Handler

	asyncQueue chan asyncTask
	workerWG   sync.WaitGroup
	closeOnce  sync.Once
}

type asyncTask struct {
	ctx     context.Context
	handler Handler
	event   Event
}

// NewDispatcher constructs a dispatcher with the given async worker lane
// sizing. Workers and queue sizes below 1 are raised to 1.
func NewDispatcher(logger *slog.Logger, workers, queueSize int) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		logger:     logging.NewComponentLogger(logger, "event-dispatcher"),
		asyncQueue: make(chan asyncTask, queueSize),
	}
	d.workerWG.Add(workers)
	for i := 0; i < workers; i++ {
		go d.runWorker()
	}
	return d
}

// Register adds a handler. Handlers are re-sorted by ascending priority.
func (d *Dispatcher) Register(handler Handler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
	sort.SliceStable(d.handlers, func(i, j int) bool {
		return d.handlers[i].Priority() < d.handlers[j].Priority()
	})
}

// Dispatch delivers the event to every handler that can handle it.
// Synchronous handler errors are aggregated into the returned error;
// asynchronous handlers report failures through the dispatcher log only.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if !handler.CanHandle(event.Type) {
			continue
		}
		if handler.Async() {
			d.enqueue(ctx, handler, event)
			continue
		}
		if err := handler.Handle(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				logging.Error(err),
				logging.String("event_id", event.ID),
				logging.String("event", string(event.Type)),
				logging.String(logging.FieldEventType, "handler_failed"),
			)
			errs = append(errs, fmt.Errorf("handler priority %d: %w", handler.Priority(), err))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) enqueue(ctx context.Context, handler Handler, event Event) {
	task := asyncTask{ctx: context.WithoutCancel(ctx), handler: handler, event: event}
	select {
	case d.asyncQueue <- task:
	default:
		// Lane full. Run inline rather than dropping the event.
		d.logger.Warn("async event lane full, handling inline",
			logging.String("event", string(event.Type)),
			logging.String(logging.FieldEventType, "async_lane_full"),
		)
		d.runTask(task)
	}
}

func (d *Dispatcher) runWorker() {
	defer d.workerWG.Done()
	for task := range d.asyncQueue {
		d.runTask(task)
	}
}

func (d *Dispatcher) runTask(task asyncTask) {
	if err := task.handler.Handle(task.ctx, task.event); err != nil {
		d.logger.Warn("async event handler failed",
			logging.Error(err),
			logging.String("event_id", task.event.ID),
			logging.String("event", string(task.event.Type)),
			logging.String(logging.FieldEventType, "handler_failed"),
		)
	}
}

// Close drains the async lane and stops the workers.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.asyncQueue)
	})
	d.workerWG.Wait()
}
