package violations

import (
	"context"
	"sync"
	"time"

	"response-guard/internal/common/logger"
	"response-guard/internal/common/metrics"
	"response-guard/internal/response"
)

const saveTimeout = 2 * time.Second

// Saver persists one violation.
type Saver interface {
	Save(ctx context.Context, v response.Violation) error
}

// Recorder hands violations to a background writer. ObserveViolation never
// blocks the response path: when the buffer is full the violation is dropped
// and counted.
type Recorder struct {
	store   Saver
	logger  logger.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	queue  chan response.Violation
	done   chan struct{}
}

func NewRecorder(store Saver, bufferSize int, log logger.Logger, m *metrics.Metrics) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	r := &Recorder{
		store:   store,
		logger:  log.WithFields(map[string]interface{}{"component": "violation-recorder"}),
		metrics: m,
		queue:   make(chan response.Violation, bufferSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Recorder) ObserveViolation(_ context.Context, v response.Violation) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.drop(v, "recorder closed")
		return
	}

	select {
	case r.queue <- v:
	default:
		r.drop(v, "buffer full")
	}
}

// Close stops accepting violations and waits for the queue to drain or ctx
// to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	for v := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := r.store.Save(ctx, v)
		cancel()

		if err != nil {
			r.logger.WithError(err).Warn("failed to store violation", map[string]interface{}{
				"handler": v.HandlerID,
				"id":      v.ID,
			})
			if r.metrics != nil {
				r.metrics.RecordViolationDropped()
			}
			continue
		}
		if r.metrics != nil {
			r.metrics.RecordViolationStored()
		}
	}
}

func (r *Recorder) drop(v response.Violation, why string) {
	r.logger.Debug("violation dropped", map[string]interface{}{
		"handler": v.HandlerID,
		"id":      v.ID,
		"cause":   why,
	})
	if r.metrics != nil {
		r.metrics.RecordViolationDropped()
	}
}
