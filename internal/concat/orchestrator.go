package concat

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// State is the orchestrator lifecycle state.
type State int

// Lifecycle states. Failed is terminal and reachable only from Running.
const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultProgressInterval bounds how often the progress sink is invoked.
const DefaultProgressInterval = 100 * time.Millisecond

// Config holds the orchestrator's resource knobs. Zero values select the
// package defaults.
type Config struct {
	// ChunkCapacity is the size of each of the two chunk buffers.
	ChunkCapacity int

	// CacheThreshold is the per-file size limit for the FullyCached
	// policy. Total cache memory is bounded by threshold * file count.
	CacheThreshold int64

	// Pipelined overlaps reads and writes on two goroutines.
	Pipelined bool

	// Preallocate sizes the output file to the final length before the
	// first write, when the destination supports truncation.
	Preallocate bool

	// Progress receives throttled (written, total) updates. Nil disables
	// reporting.
	Progress ProgressSink

	// ProgressInterval bounds the progress update rate.
	ProgressInterval time.Duration

	// Logger receives per-file and per-task diagnostics. Nil discards.
	Logger *slog.Logger
}

// Job describes one concatenation run: which files, how often, and where
// the bytes go. The output writer is created and closed by the caller; the
// orchestrator only writes to it.
type Job struct {
	Paths      []string
	RepeatAll  int
	RepeatEach []int
	Out        io.Writer
	OutPath    string
}

// truncater is the optional destination capability used for preallocation.
type truncater interface {
	Truncate(size int64) error
}

// Orchestrator drives a run end to end: it validates the plan, opens one
// SourceReader per file for the whole run, feeds the WriteEngine task by
// task and reports progress. An orchestrator runs exactly one job.
type Orchestrator struct {
	cfg Config

	state        State
	bytesWritten int64
	bytesTotal   int64
}

// New fills configuration defaults and returns an idle orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.ChunkCapacity <= 0 {
		cfg.ChunkCapacity = DefaultChunkCapacity
	}

	if cfg.CacheThreshold <= 0 {
		cfg.CacheThreshold = DefaultCacheThreshold
	}

	if cfg.Progress == nil {
		cfg.Progress = NopSink{}
	}

	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return &Orchestrator{cfg: cfg, state: StateIdle}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// BytesWritten returns the cumulative bytes written so far.
func (o *Orchestrator) BytesWritten() int64 { return o.bytesWritten }

// BytesTotal returns the precomputed output size. Zero until Running.
func (o *Orchestrator) BytesTotal() int64 { return o.bytesTotal }

// Run executes the job. Configuration errors surface before the output is
// touched; I/O errors abort immediately and leave the partial output in
// place. Errors propagate unmodified from the component that raised them.
func (o *Orchestrator) Run(job Job) error {
	if o.state != StateIdle {
		return fmt.Errorf("orchestrator already %s", o.state)
	}

	err := o.run(job)
	if err != nil {
		o.state = StateFailed

		return err
	}

	o.state = StateCompleted

	return nil
}

func (o *Orchestrator) run(job Job) error {
	plan, err := NewRepeatPlan(len(job.Paths), job.RepeatAll, job.RepeatEach)
	if err != nil {
		return err
	}

	sources, err := o.openSources(job.Paths)
	if err != nil {
		return err
	}

	defer func() {
		for _, src := range sources {
			if closeErr := src.Close(); closeErr != nil {
				o.cfg.Logger.Warn("closing source", "path", src.Path(), "error", closeErr)
			}
		}
	}()

	sizes := make([]int64, len(sources))
	for i, src := range sources {
		sizes[i] = src.Size()
	}

	o.state = StateRunning
	o.bytesTotal = plan.TotalBytes(sizes)

	o.cfg.Logger.Info("run started",
		"files", len(sources),
		"tasks", plan.TaskCount(),
		"bytes_total", o.bytesTotal,
		"chunk_capacity", o.cfg.ChunkCapacity,
		"pipelined", o.cfg.Pipelined,
	)

	if err := o.preallocate(job); err != nil {
		return err
	}

	sink := newThrottledSink(o.cfg.Progress, o.cfg.ProgressInterval)
	sink.Update(0, o.bytesTotal)

	engine, err := NewWriteEngine(EngineConfig{
		Out:           job.Out,
		OutPath:       job.OutPath,
		ChunkCapacity: o.cfg.ChunkCapacity,
		Pipelined:     o.cfg.Pipelined,
		OnChunk: func(written int64) {
			o.bytesWritten = written
			sink.Update(written, o.bytesTotal)
		},
	})
	if err != nil {
		return err
	}

	for task := range plan.Tasks() {
		src := sources[task.File]

		taskBytes, err := engine.WriteTask(src)
		if err != nil {
			return err
		}

		o.bytesWritten = engine.BytesWritten()

		o.cfg.Logger.Debug("task done",
			"file", src.Path(),
			"pass", task.Pass,
			"policy", src.Policy().String(),
			"task_bytes", taskBytes,
			"bytes_written", o.bytesWritten,
		)
	}

	// Final update is unconditional: written == total on success.
	sink.Update(o.bytesWritten, o.bytesTotal)

	o.cfg.Logger.Info("run completed", "bytes_written", o.bytesWritten)

	return nil
}

// openSources opens every input up front so bytesTotal can be computed
// before the first write. Cache buffers are still populated lazily, on the
// first pass over each cached file.
func (o *Orchestrator) openSources(paths []string) ([]*SourceReader, error) {
	sources := make([]*SourceReader, 0, len(paths))

	for _, path := range paths {
		src, err := OpenSource(path, o.cfg.CacheThreshold)
		if err != nil {
			for _, opened := range sources {
				opened.Close()
			}

			return nil, err
		}

		o.cfg.Logger.Debug("source opened",
			"path", src.Path(),
			"size", src.Size(),
			"policy", src.Policy().String(),
		)

		sources = append(sources, src)
	}

	return sources, nil
}

// preallocate sizes the destination to the final output length, the moral
// equivalent of ftruncate before a known-size sequential write. Skipped
// when disabled or when the destination cannot truncate (stdout, pipes).
func (o *Orchestrator) preallocate(job Job) error {
	if !o.cfg.Preallocate {
		return nil
	}

	dst, ok := job.Out.(truncater)
	if !ok {
		return nil
	}

	if err := dst.Truncate(o.bytesTotal); err != nil {
		return ioError("write", job.OutPath, 0, err)
	}

	return nil
}
