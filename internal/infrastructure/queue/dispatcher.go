package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
	"github.com/tasktracker/task-api/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher persists task activity in the background. Entries are routed to
// a fixed set of workers by hashing the task id, so entries for one task are
// written in the order they were recorded.
type Dispatcher struct {
	workers []chan domain.TaskActivity
	repo    ports.ActivityRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.TaskActivity, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.TaskActivity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Writes use ctx; workers exit when
// their channel is closed by Stop and drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an entry without blocking. When the worker's buffer is
// full, or the dispatcher is stopped, the entry is dropped.
func (d *Dispatcher) Record(a domain.TaskActivity) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(a, "dispatcher stopped")
		return
	}

	idx := d.shardIndex(a.TaskID)
	select {
	case d.workers[idx] <- a:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(a, "queue full")
	}
}

// Stop closes the worker channels and waits for the remaining entries to be
// written. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) drop(a domain.TaskActivity, reason string) {
	metrics.ActivityDroppedTotal.Inc()
	d.log.Warn().
		Str("task_id", a.TaskID).
		Str("action", string(a.Action)).
		Str("reason", reason).
		Msg("activity entry dropped")
}

// shardIndex maps a task id deterministically to a worker index.
func (d *Dispatcher) shardIndex(taskID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(taskID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.TaskActivity) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for entry := range ch {
		metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		start := time.Now()
		err := d.repo.Insert(ctx, &entry)
		metrics.ActivityWriteDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ActivityErrorsTotal.Inc()
			d.log.Error().Err(err).
				Str("task_id", entry.TaskID).
				Int("worker_id", id).
				Msg("activity write failed")
		}
	}
}
