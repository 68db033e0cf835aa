package count

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"
)

// DefaultNumRows is the number of rows used when WithRows is not given.
const DefaultNumRows = 4

type cuSketchOptions struct {
	numRows   int
	seed      int64
	seeded    bool
	hashSeeds []uint32
	family    HashFamily
}

// CUSketchOption is a functional option for configuring a CUSketch.
type CUSketchOption func(*cuSketchOptions)

// WithRows sets the number of rows, one hash function each.
func WithRows(numRows int) CUSketchOption {
	return func(opts *cuSketchOptions) {
		opts.numRows = numRows
	}
}

// WithSeed makes the row seeds a deterministic function of seed.
func WithSeed(seed int64) CUSketchOption {
	return func(opts *cuSketchOptions) {
		opts.seed = seed
		opts.seeded = true
	}
}

// WithHashSeeds sets the row seeds explicitly. The list length must match the
// number of rows and every seed must be below MaxPrime32.
func WithHashSeeds(seeds []uint32) CUSketchOption {
	return func(opts *cuSketchOptions) {
		opts.hashSeeds = append([]uint32(nil), seeds...)
	}
}

// WithHashFamily replaces the default murmur3 hash family.
func WithHashFamily(family HashFamily) CUSketchOption {
	return func(opts *cuSketchOptions) {
		opts.family = family
	}
}

// GenerateRandomSeed generates a cryptographically random seed value.
func GenerateRandomSeed() (int64, error) {
	buf := make([]byte, 8)
	_, err := rand.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("failed to generate random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(buf)), nil
}

// rowSeeds returns one hash seed per row, either the explicit list or values
// drawn from the seed source.
func (o *cuSketchOptions) rowSeeds() ([]uint32, error) {
	if o.hashSeeds != nil {
		if len(o.hashSeeds) != o.numRows {
			return nil, fmt.Errorf("got %d hash seeds for %d rows", len(o.hashSeeds), o.numRows)
		}
		for _, s := range o.hashSeeds {
			if s >= MaxPrime32 {
				return nil, fmt.Errorf("hash seed %d is not below %d", s, MaxPrime32)
			}
		}
		return o.hashSeeds, nil
	}

	seed := o.seed
	if !o.seeded {
		var err error
		if seed, err = GenerateRandomSeed(); err != nil {
			return nil, err
		}
	}
	rng := mathrand.New(mathrand.NewSource(seed))
	seeds := make([]uint32, o.numRows)
	for i := range seeds {
		seeds[i] = uint32(rng.Int63n(int64(MaxPrime32)))
	}
	return seeds, nil
}
