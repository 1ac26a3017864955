// Package convert provides overflow-safe integer conversions.
package convert

import (
	"fmt"
	"math"
)

// IntToInt32Clamped converts an int to int32, clamping at the int32 bounds.
func IntToInt32Clamped(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// IntToUintSafe converts an int to uint and panics on negative input. Use it
// only where the caller guarantees v >= 0.
func IntToUintSafe(v int) uint {
	if v < 0 {
		panic(fmt.Sprintf("cannot convert negative int to uint: %d", v))
	}
	return uint(v)
}

// Int64ToIntClamped converts an int64 to int, clamping at the int bounds.
func Int64ToIntClamped(v int64) int {
	if v > math.MaxInt {
		return math.MaxInt
	}
	if v < math.MinInt {
		return math.MinInt
	}
	return int(v)
}
