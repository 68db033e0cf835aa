package count

import (
	"errors"
	"math"

	"github.com/sketchlab/cusketch-go/internal"
	"golang.org/x/exp/constraints"
)

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// SuggestMemoryBytes returns the smallest memory budget whose table width is
// at least e/relativeError for the given number of rows.
func SuggestMemoryBytes(relativeError float64, numRows int) (int, error) {
	if relativeError <= 0 {
		return 0, errors.New("relative error must be greater than 0.0")
	}
	if numRows <= 0 {
		return 0, errors.New("number of rows must be positive")
	}
	width := int(math.Ceil(math.E / relativeError))
	floor := internal.FloorPowerOf2(width)
	if floor < width {
		floor <<= 1
	}
	return bytesPerCounter * 2 * numRows * floor, nil
}

func SuggestNumRows(confidence float64) (int, error) {
	if confidence < 0 || confidence >= 1.0 {
		return 0, errors.New("confidence must be in [0, 1.0)")
	}
	return Max(int(math.Ceil(math.Log(1.0/(1.0-confidence)))), 1), nil
}
