package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    uint64
		expected int64
	}{
		{name: "zero", input: 0, expected: 0},
		{name: "normal_value", input: 42, expected: 42},
		{name: "max_int64", input: uint64(math.MaxInt64), expected: math.MaxInt64},
		{name: "overflow_clamps", input: math.MaxUint64, expected: math.MaxInt64},
		{name: "just_above_max_int64", input: uint64(math.MaxInt64) + 1, expected: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SafeInt64(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMustInt64ToUint64(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		got := MustInt64ToUint64(42)
		assert.Equal(t, uint64(42), got)
	})

	t.Run("zero", func(t *testing.T) {
		t.Parallel()

		got := MustInt64ToUint64(0)
		assert.Equal(t, uint64(0), got)
	})

	t.Run("negative_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: negative int64 to uint64 conversion", func() {
			MustInt64ToUint64(-1)
		})
	})
}
