package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Dispatcher writes login audit events on a fixed set of workers. Events are
// sharded by source key, so the events of one source are written in order.
type Dispatcher struct {
	workers []chan domain.LoginEvent
	repo    ports.LoginEventRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
	onDrop  func(domain.LoginEvent)
}

var _ ports.LoginAuditor = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.LoginEventRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.LoginEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.LoginEvent, channelBuffer)
	}
	return d
}

// OnDrop registers a callback invoked for every event dropped on a full queue.
func (d *Dispatcher) OnDrop(fn func(domain.LoginEvent)) {
	d.onDrop = fn
}

// Start launches all worker goroutines. Workers drain their queue and stop
// when ctx is cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands event to the worker responsible for its source. It never
// blocks: when that worker's queue is full the event is dropped and logged.
func (d *Dispatcher) Enqueue(event domain.LoginEvent) {
	select {
	case d.workers[d.shardIndex(event.SourceKey)] <- event:
	default:
		d.log.Warn().
			Str("source", event.SourceKey).
			Str("outcome", string(event.Outcome)).
			Msg("login audit queue full, event dropped")
		if d.onDrop != nil {
			d.onDrop(event)
		}
	}
}

// shardIndex maps a source key deterministically to a worker index.
func (d *Dispatcher) shardIndex(sourceKey string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sourceKey))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.LoginEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			d.write(context.WithoutCancel(ctx), id, event)
		}
	}
}

func (d *Dispatcher) drain(id int, ch <-chan domain.LoginEvent) {
	for {
		select {
		case event := <-ch:
			d.write(context.Background(), id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, event domain.LoginEvent) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := d.repo.InsertLoginEvent(ctx, &event); err != nil {
		d.log.Error().Err(err).
			Str("source", event.SourceKey).
			Int("worker_id", id).
			Msg("login event write failed")
	}
}
