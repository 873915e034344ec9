package concat

import "time"

// ProgressSink receives (bytesWritten, bytesTotal) updates during a run.
// The core guarantees a final update with written == total on success and
// assumes nothing about rendering.
type ProgressSink interface {
	Update(written, total int64)
}

// ProgressFunc adapts a plain function to a ProgressSink.
type ProgressFunc func(written, total int64)

// Update implements ProgressSink.
func (f ProgressFunc) Update(written, total int64) { f(written, total) }

// NopSink discards all progress updates.
type NopSink struct{}

// Update implements ProgressSink.
func (NopSink) Update(int64, int64) {}

// throttledSink bounds the update rate seen by the wrapped sink to one
// update per interval. The final update (written >= total) always passes
// through so completion is never missed.
type throttledSink struct {
	sink     ProgressSink
	interval time.Duration
	last     time.Time
}

func newThrottledSink(sink ProgressSink, interval time.Duration) *throttledSink {
	return &throttledSink{sink: sink, interval: interval}
}

// Update implements ProgressSink.
func (t *throttledSink) Update(written, total int64) {
	now := time.Now()
	if written < total && now.Sub(t.last) < t.interval {
		return
	}

	t.last = now
	t.sink.Update(written, total)
}
