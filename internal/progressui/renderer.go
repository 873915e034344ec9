// Package progressui renders the core's progress updates as a live
// terminal progress bar. The core only emits (written, total) counter
// pairs; everything visual lives here.
package progressui

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/Sumatoshi-tech/replicat/internal/concat"
)

// renderPollInterval is how often Stop polls for the final render flush.
const renderPollInterval = 10 * time.Millisecond

// trackerLength is the progress bar width in characters.
const trackerLength = 30

// Renderer is a concat.ProgressSink that draws a byte-unit progress bar
// with speed and ETA. It owns a background render goroutine; call Stop
// once the run is over.
type Renderer struct {
	pw      progress.Writer
	tracker *progress.Tracker
	stopped bool
}

var _ concat.ProgressSink = (*Renderer)(nil)

// NewRenderer starts a renderer writing to out (normally stderr, keeping
// stdout clean for piped output).
func NewRenderer(out io.Writer) *Renderer {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(trackerLength)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(renderPollInterval)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Speed = true
	pw.Style().Visibility.Value = true

	go pw.Render()

	return &Renderer{pw: pw}
}

// Update implements concat.ProgressSink. The tracker is created on the
// first update, once the total is known.
func (r *Renderer) Update(written, total int64) {
	if r.stopped {
		return
	}

	if r.tracker == nil {
		r.tracker = &progress.Tracker{
			Message: "writing",
			Total:   total,
			Units:   progress.UnitsBytes,
		}
		r.pw.AppendTracker(r.tracker)
	}

	r.tracker.SetValue(written)
}

// Stop finishes the bar and shuts the render goroutine down, blocking
// until the final frame is flushed.
func (r *Renderer) Stop() {
	if r.stopped {
		return
	}

	r.stopped = true

	if r.tracker != nil {
		r.tracker.MarkAsDone()
	}

	r.pw.Stop()

	for r.pw.IsRenderInProgress() {
		time.Sleep(renderPollInterval)
	}
}
