package concat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTasks(t *testing.T, plan *RepeatPlan) []Task {
	t.Helper()

	var tasks []Task
	for task := range plan.Tasks() {
		tasks = append(tasks, task)
	}

	return tasks
}

func TestRepeatPlan_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		fileCount  int
		repeatAll  int
		repeatEach []int
		wantErr    error
	}{
		{"empty file list", 0, 1, nil, ErrEmptyFileList},
		{"zero repeat-all", 2, 0, nil, ErrInvalidRepeatAll},
		{"negative repeat-all", 2, -3, nil, ErrInvalidRepeatAll},
		{"zero per-file repeat", 2, 1, []int{1, 0}, ErrInvalidRepeatEach},
		{"negative per-file repeat", 1, 1, []int{-1}, ErrInvalidRepeatEach},
		{"per-file count mismatch", 3, 1, []int{1, 1}, ErrInvalidRepeatEach},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRepeatPlan(tt.fileCount, tt.repeatAll, tt.repeatEach)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRepeatPlan_OrderIsSequenceMajor(t *testing.T) {
	t.Parallel()

	// Files [A, B] repeated twice must interleave as A B A B, never A A B B.
	plan, err := NewRepeatPlan(2, 2, nil)
	require.NoError(t, err)

	tasks := collectTasks(t, plan)
	want := []Task{
		{File: 0, Pass: 0},
		{File: 1, Pass: 0},
		{File: 0, Pass: 0},
		{File: 1, Pass: 0},
	}
	assert.Equal(t, want, tasks)
}

func TestRepeatPlan_PerFilePassesAreConsecutive(t *testing.T) {
	t.Parallel()

	plan, err := NewRepeatPlan(2, 1, []int{3, 2})
	require.NoError(t, err)

	tasks := collectTasks(t, plan)
	want := []Task{
		{File: 0, Pass: 0},
		{File: 0, Pass: 1},
		{File: 0, Pass: 2},
		{File: 1, Pass: 0},
		{File: 1, Pass: 1},
	}
	assert.Equal(t, want, tasks)
}

func TestRepeatPlan_TaskCount(t *testing.T) {
	t.Parallel()

	plan, err := NewRepeatPlan(3, 4, []int{1, 2, 5})
	require.NoError(t, err)
	assert.Equal(t, 4*(1+2+5), plan.TaskCount())
}

func TestRepeatPlan_TotalBytes(t *testing.T) {
	t.Parallel()

	plan, err := NewRepeatPlan(2, 3, []int{2, 1})
	require.NoError(t, err)

	// 3 * (10*2 + 7*1) = 81.
	assert.Equal(t, int64(81), plan.TotalBytes([]int64{10, 7}))
}

func TestRepeatPlan_TasksAreLazy(t *testing.T) {
	t.Parallel()

	// A plan far too large to materialize must still yield its first
	// tasks immediately; breaking out stops generation.
	plan, err := NewRepeatPlan(1000000, 1000000, nil)
	require.NoError(t, err)

	seen := 0
	for range plan.Tasks() {
		seen++
		if seen == 10 {
			break
		}
	}

	assert.Equal(t, 10, seen)
}

func TestRepeatPlan_DefaultPassCountIsOne(t *testing.T) {
	t.Parallel()

	plan, err := NewRepeatPlan(5, 1, nil)
	require.NoError(t, err)

	for i := range 5 {
		assert.Equal(t, 1, plan.PassCount(i))
	}
}
