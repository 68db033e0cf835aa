package count

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestMemoryBytes(t *testing.T) {
	_, err := SuggestMemoryBytes(0, 4)
	assert.Error(t, err)
	_, err = SuggestMemoryBytes(0.1, 0)
	assert.Error(t, err)

	// e/0.1 rounds up to a width of 32
	mem, err := SuggestMemoryBytes(0.1, 4)
	require.NoError(t, err)
	assert.Equal(t, 1024, mem)

	s, err := NewCUSketch(mem, 4, SumMerge, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, 32, s.Width())
}

func TestSuggestNumRows(t *testing.T) {
	_, err := SuggestNumRows(-0.1)
	assert.Error(t, err)
	_, err = SuggestNumRows(1.0)
	assert.Error(t, err)

	rows, err := SuggestNumRows(0.99)
	require.NoError(t, err)
	assert.Equal(t, 5, rows)

	rows, err = SuggestNumRows(0)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 3, Min(3, 7))
	assert.Equal(t, uint32(7), Max(uint32(3), uint32(7)))
}
