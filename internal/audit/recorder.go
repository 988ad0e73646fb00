package audit

import (
	"context"
	"sync"

	"github.com/nerrad567/ventsim-core/internal/unit"
)

// DefaultQueueSize is the Recorder queue length used when none is given.
const DefaultQueueSize = 256

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// Recorder journals write reports on a single background goroutine so that
// register writes never wait on SQLite. It implements unit.Journal.
//
// Batches beyond the queue length are dropped with ErrQueueFull.
type Recorder struct {
	repo   Repository
	queue  chan *WriteBatch
	logger Logger

	mu       sync.RWMutex
	stopped  bool
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewRecorder creates a recorder writing to repo. size <= 0 selects
// DefaultQueueSize; logger may be nil.
func NewRecorder(repo Repository, size int, logger Logger) *Recorder {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = noopLogger{}
	}
	r := &Recorder{
		repo:   repo,
		queue:  make(chan *WriteBatch, size),
		logger: logger,
		done:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.drain()
	return r
}

// Record enqueues report for writing.
func (r *Recorder) Record(_ context.Context, report unit.WriteReport) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return ErrRecorderStopped
	}

	select {
	case r.queue <- FromReport(report):
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop writes the batches still queued and stops the writer goroutine.
// Safe to call multiple times.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()

		close(r.done)
		r.wg.Wait()
	})
}

func (r *Recorder) drain() {
	defer r.wg.Done()

	for {
		select {
		case batch := <-r.queue:
			r.write(batch)
		case <-r.done:
			for {
				select {
				case batch := <-r.queue:
					r.write(batch)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(batch *WriteBatch) {
	// Batches are written after the originating request has returned, so
	// its context is not used.
	if err := r.repo.Create(context.Background(), batch); err != nil {
		r.logger.Error("register write journal failed",
			"source", batch.Source,
			"request_id", batch.RequestID,
			"error", err,
		)
	}
}
