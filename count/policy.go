package count

import "fmt"

// CompressPolicy selects how a CUSketch shrinks when Compress is called.
// It is fixed at construction.
type CompressPolicy int

const (
	// Hierarchical keeps every coarser resolution up to date on insert and
	// compresses by moving the query level; no counter is ever rewritten.
	Hierarchical CompressPolicy = iota
	// SumMerge folds groups of adjacent counters into one by summation.
	SumMerge
	// MaxMerge folds groups of adjacent counters into one by taking the maximum.
	MaxMerge
)

func (p CompressPolicy) String() string {
	switch p {
	case Hierarchical:
		return "Hierarchical"
	case SumMerge:
		return "SumMerge"
	case MaxMerge:
		return "MaxMerge"
	default:
		return fmt.Sprintf("CompressPolicy(%d)", int(p))
	}
}

// ParseCompressPolicy returns the policy named by s, as printed by String.
func ParseCompressPolicy(s string) (CompressPolicy, error) {
	for _, p := range []CompressPolicy{Hierarchical, SumMerge, MaxMerge} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown compress policy %q", s)
}

func (p CompressPolicy) valid() bool {
	switch p {
	case Hierarchical, SumMerge, MaxMerge:
		return true
	default:
		return false
	}
}

// merges reports whether the policy rewrites counters on Compress.
func (p CompressPolicy) merges() bool {
	return p == SumMerge || p == MaxMerge
}
