package concat

import (
	"fmt"
	"iter"
)

// Task names one write unit: one full pass over one input file. File is an
// index into the plan's file list; Pass counts passes over that file
// within one outer repetition, starting at zero.
type Task struct {
	File int
	Pass int
}

// RepeatPlan resolves repeat semantics into an ordered sequence of tasks.
// Within one outer repetition files are visited in declaration order, and
// all passes over a file run consecutively before the next file starts.
// That ordering is the byte-order contract for the output.
type RepeatPlan struct {
	fileCount  int
	repeatAll  int
	repeatEach []int
}

// NewRepeatPlan validates the repeat configuration. repeatEach may be nil
// (every file once per outer repetition) or must carry one positive count
// per file. Validation happens here, before any I/O.
func NewRepeatPlan(fileCount, repeatAll int, repeatEach []int) (*RepeatPlan, error) {
	if fileCount <= 0 {
		return nil, ErrEmptyFileList
	}

	if repeatAll < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRepeatAll, repeatAll)
	}

	if repeatEach != nil && len(repeatEach) != fileCount {
		return nil, fmt.Errorf("%w: %d counts for %d files", ErrInvalidRepeatEach, len(repeatEach), fileCount)
	}

	for i, n := range repeatEach {
		if n < 1 {
			return nil, fmt.Errorf("%w: file %d got %d", ErrInvalidRepeatEach, i, n)
		}
	}

	return &RepeatPlan{
		fileCount:  fileCount,
		repeatAll:  repeatAll,
		repeatEach: repeatEach,
	}, nil
}

// FileCount returns the number of distinct input files.
func (p *RepeatPlan) FileCount() int { return p.fileCount }

// PassCount returns how many passes one outer repetition makes over file i.
func (p *RepeatPlan) PassCount(i int) int {
	if p.repeatEach == nil {
		return 1
	}

	return p.repeatEach[i]
}

// TaskCount returns the total number of tasks the plan will produce.
func (p *RepeatPlan) TaskCount() int {
	perRepetition := 0
	for i := range p.fileCount {
		perRepetition += p.PassCount(i)
	}

	return p.repeatAll * perRepetition
}

// TotalBytes computes the output size for the given per-file sizes. Sizes
// must be indexed like the plan's files.
func (p *RepeatPlan) TotalBytes(sizes []int64) int64 {
	var perRepetition int64
	for i := range p.fileCount {
		perRepetition += sizes[i] * int64(p.PassCount(i))
	}

	return int64(p.repeatAll) * perRepetition
}

// Tasks yields the plan's tasks in order. Generation is lazy: only the
// current task exists at any time, so memory stays flat no matter how many
// files or repetitions the plan covers.
func (p *RepeatPlan) Tasks() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for range p.repeatAll {
			for file := range p.fileCount {
				for pass := range p.PassCount(file) {
					if !yield(Task{File: file, Pass: pass}) {
						return
					}
				}
			}
		}
	}
}
