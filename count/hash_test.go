package count

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashFamilies(t *testing.T) {
	families := []HashFamily{Murmur3Family{}, XXHashFamily{}, MetroFamily{}}
	const buckets = 16
	const n = 16000

	for _, family := range families {
		h1 := family.New(1)
		h2 := family.New(2)
		again := family.New(1)

		k := key32(12345)
		assert.Equal(t, h1.Sum32(k), again.Sum32(k), "%T", family)
		// repeated calls do not carry state between keys
		assert.Equal(t, h1.Sum32(k), h1.Sum32(k), "%T", family)
		assert.NotEqual(t, h1.Sum32(k), h2.Sum32(k), "%T", family)

		// the top bits are used as indices, so they must spread evenly
		var counts [buckets]int
		for i := uint32(0); i < n; i++ {
			counts[h1.Sum32(key32(i))>>28]++
		}
		for b, c := range counts {
			assert.InDelta(t, n/buckets, c, 200, "%T bucket %d", family, b)
		}
	}
}
