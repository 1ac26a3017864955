package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToInt32Clamped(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int32
	}{
		{"zero", 0, 0},
		{"in range", 42, 42},
		{"negative", -7, -7},
		{"above max", math.MaxInt32 + 1, math.MaxInt32},
		{"below min", math.MinInt32 - 1, math.MinInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IntToInt32Clamped(tt.in))
		})
	}
}

func TestIntToUintSafe(t *testing.T) {
	assert.Equal(t, uint(3), IntToUintSafe(3))
	assert.Panics(t, func() { IntToUintSafe(-1) })
}

func TestInt64ToIntClamped(t *testing.T) {
	assert.Equal(t, 12, Int64ToIntClamped(12))
	assert.Equal(t, -12, Int64ToIntClamped(-12))
}
