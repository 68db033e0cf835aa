package count

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-metro"
	"github.com/twmb/murmur3"
)

// MaxPrime32 bounds the per-row hash seeds: every seed lies in [0, MaxPrime32).
const MaxPrime32 = uint32(4294967291)

// Hash32 maps a key to a uniformly distributed 32-bit value.
// Sketch indices are taken from the top bits of the result.
type Hash32 interface {
	Sum32(key []byte) uint32
}

// HashFamily builds hash functions that are independent for distinct seeds.
type HashFamily interface {
	New(seed uint32) Hash32
}

// Murmur3Family hashes with 32-bit murmur3. It is the default family.
type Murmur3Family struct{}

func (Murmur3Family) New(seed uint32) Hash32 {
	return murmur3Hash(seed)
}

type murmur3Hash uint32

func (h murmur3Hash) Sum32(key []byte) uint32 {
	return murmur3.SeedSum32(uint32(h), key)
}

// XXHashFamily hashes with seeded xxhash64 and keeps the upper 32 bits.
type XXHashFamily struct{}

func (XXHashFamily) New(seed uint32) Hash32 {
	return &xxHash{seed: uint64(seed), digest: xxhash.NewWithSeed(uint64(seed))}
}

// xxHash reuses one digest, so it must not be shared between goroutines.
type xxHash struct {
	seed   uint64
	digest *xxhash.Digest
}

func (h *xxHash) Sum32(key []byte) uint32 {
	h.digest.ResetWithSeed(h.seed)
	_, _ = h.digest.Write(key)
	return uint32(h.digest.Sum64() >> 32)
}

// MetroFamily hashes with metro64 and keeps the upper 32 bits.
type MetroFamily struct{}

func (MetroFamily) New(seed uint32) Hash32 {
	return metroHash(seed)
}

type metroHash uint32

func (h metroHash) Sum32(key []byte) uint32 {
	return uint32(metro.Hash64(key, uint64(h)) >> 32)
}
