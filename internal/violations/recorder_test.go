package violations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"response-guard/internal/common/logger"
	"response-guard/internal/common/metrics"
	"response-guard/internal/response"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type memorySaver struct {
	mu    sync.Mutex
	saved []response.Violation
	err   error
	gate  chan struct{}
}

func (s *memorySaver) Save(_ context.Context, v response.Violation) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, v)
	return nil
}

func (s *memorySaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func TestRecorder_StoresAndDrainsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	saver := &memorySaver{}
	m := metrics.New()
	rec := NewRecorder(saver, 8, logger.NewNoOpLogger(), m)

	for i := 0; i < 5; i++ {
		rec.ObserveViolation(context.Background(), sampleViolation("issues.get", i))
	}

	require.NoError(t, rec.Close(context.Background()))
	assert.Equal(t, 5, saver.count())
	assert.Equal(t, float64(5), testutil.ToFloat64(m.ViolationsRecorded))
}

func TestRecorder_DropsWhenBufferFull(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	saver := &memorySaver{gate: make(chan struct{})}
	m := metrics.New()
	rec := NewRecorder(saver, 1, logger.NewNoOpLogger(), m)

	// The writer takes the first violation and blocks on the gate; the
	// second fills the buffer; the rest are dropped without blocking.
	rec.ObserveViolation(context.Background(), sampleViolation("h", 0))
	require.Eventually(t, func() bool { return len(rec.queue) == 0 }, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		for i := 1; i <= 4; i++ {
			rec.ObserveViolation(context.Background(), sampleViolation("h", i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ObserveViolation blocked")
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.ViolationsDropped))

	close(saver.gate)
	require.NoError(t, rec.Close(context.Background()))
	assert.Equal(t, 2, saver.count())
}

func TestRecorder_StoreFailureCountsAsDropped(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	saver := &memorySaver{err: errors.New("redis down")}
	m := metrics.New()
	rec := NewRecorder(saver, 4, logger.NewNoOpLogger(), m)

	rec.ObserveViolation(context.Background(), sampleViolation("h", 1))
	require.NoError(t, rec.Close(context.Background()))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ViolationsDropped))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ViolationsRecorded))
}

func TestRecorder_ObserveAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	saver := &memorySaver{}
	m := metrics.New()
	rec := NewRecorder(saver, 4, logger.NewNoOpLogger(), m)
	require.NoError(t, rec.Close(context.Background()))
	require.NoError(t, rec.Close(context.Background()))

	assert.NotPanics(t, func() {
		rec.ObserveViolation(context.Background(), sampleViolation("h", 1))
	})
	assert.Equal(t, 0, saver.count())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ViolationsDropped))
}

func TestRecorder_CloseHonoursContext(t *testing.T) {
	saver := &memorySaver{gate: make(chan struct{})}
	rec := NewRecorder(saver, 4, logger.NewNoOpLogger(), nil)
	rec.ObserveViolation(context.Background(), sampleViolation("h", 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rec.Close(ctx), context.DeadlineExceeded)

	close(saver.gate)
	require.NoError(t, rec.Close(context.Background()))
}

func TestRecorder_ImplementsObserver(t *testing.T) {
	var _ response.ViolationObserver = (*Recorder)(nil)
}
