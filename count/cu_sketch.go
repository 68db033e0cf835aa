package count

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sketchlab/cusketch-go/internal"
)

const bytesPerCounter = 4

// ErrKeyLength is returned when a key does not have the configured key length.
var ErrKeyLength = errors.New("key length does not match the sketch key length")

// cuTable holds one resolution level for every row, row-major.
type cuTable struct {
	level    int
	width    int
	counters []uint32
}

func newCUTable(level, width, numRows int) cuTable {
	return cuTable{
		level:    level,
		width:    width,
		counters: make([]uint32, width*numRows),
	}
}

func (t *cuTable) row(i int) []uint32 {
	return t.counters[i*t.width : (i+1)*t.width]
}

// merge returns a table 2^rate times narrower where every group of 2^rate
// adjacent counters of a row collapses into one.
func (t *cuTable) merge(rate int, policy CompressPolicy, numRows int) cuTable {
	group := 1 << rate
	merged := newCUTable(t.level, t.width>>rate, numRows)
	for i := 0; i < numRows; i++ {
		src := t.row(i)
		dst := merged.row(i)
		for j := range dst {
			var acc uint32
			for _, c := range src[j*group : (j+1)*group] {
				switch policy {
				case SumMerge:
					acc += c
				case MaxMerge:
					acc = Max(acc, c)
				}
			}
			dst[j] = acc
		}
	}
	return merged
}

// CUSketch is a conservative-update count-min sketch over fixed-length keys.
//
// Every key hashes to one counter per row. Insert only increments the counters
// that hold the current minimum, so Query (the minimum over rows) never
// underestimates the true count before any lossy compression.
//
// A CUSketch is not safe for concurrent use.
type CUSketch struct {
	memBytes int
	keyLen   int
	policy   CompressPolicy
	numRows  int
	width    int // w
	logWidth int // k
	level    int // r, hierarchical only

	seeds  []uint32
	hashes []Hash32
	tables []cuTable

	// per-row hash values of the key being processed
	scratch []uint32
}

// NewCUSketch creates a sketch that fits memBytes. The width is the largest
// power of two w with 4*d*2*w <= memBytes, which leaves room for the extra
// levels a Hierarchical sketch keeps.
func NewCUSketch(memBytes, keyLen int, policy CompressPolicy, opts ...CUSketchOption) (*CUSketch, error) {
	options := &cuSketchOptions{
		numRows: DefaultNumRows,
		family:  Murmur3Family{},
	}
	for _, opt := range opts {
		opt(options)
	}

	if keyLen <= 0 {
		return nil, fmt.Errorf("key length must be positive, got %d", keyLen)
	}
	if !policy.valid() {
		return nil, fmt.Errorf("unknown compress policy %v", policy)
	}
	if options.numRows <= 0 {
		return nil, fmt.Errorf("number of rows must be positive, got %d", options.numRows)
	}
	if options.family == nil {
		return nil, errors.New("hash family must not be nil")
	}

	width := internal.FloorPowerOf2(memBytes / (bytesPerCounter * 2 * options.numRows))
	if width < 1 {
		return nil, fmt.Errorf("%d bytes cannot hold %d rows of at least one counter", memBytes, options.numRows)
	}
	if width*options.numRows >= 1<<30 {
		return nil, errors.New("these parameters generate a sketch that exceeds 2^30 counters")
	}
	logWidth, err := internal.ExactLog2(width)
	if err != nil {
		return nil, err
	}
	if policy == Hierarchical && logWidth < 2 {
		return nil, fmt.Errorf("hierarchical sketch needs a width of at least 4, got %d", width)
	}

	seeds, err := options.rowSeeds()
	if err != nil {
		return nil, err
	}
	hashes := make([]Hash32, options.numRows)
	for i, seed := range seeds {
		hashes[i] = options.family.New(seed)
	}

	s := &CUSketch{
		memBytes: memBytes,
		keyLen:   keyLen,
		policy:   policy,
		numRows:  options.numRows,
		width:    width,
		logWidth: logWidth,
		seeds:    seeds,
		hashes:   hashes,
		scratch:  make([]uint32, options.numRows),
	}

	switch policy {
	case SumMerge, MaxMerge:
		s.tables = []cuTable{newCUTable(0, width, s.numRows)}
	case Hierarchical:
		s.level = 1
		s.tables = make([]cuTable, 0, logWidth-1)
		for l := 1; l < logWidth; l++ {
			s.tables = append(s.tables, newCUTable(l, width>>l, s.numRows))
		}
	}
	return s, nil
}

// Name identifies the sketch and its memory budget, e.g. "CUSketch@1024".
func (s *CUSketch) Name() string {
	return "CUSketch@" + strconv.Itoa(s.memBytes)
}

// Insert counts one occurrence of key.
func (s *CUSketch) Insert(key []byte) error {
	if err := s.hashKey(key); err != nil {
		return err
	}
	for i := range s.tables {
		s.conservativeUpdate(&s.tables[i])
	}
	return nil
}

// conservativeUpdate increments the counters of the hashed key that are tied
// for the minimum. The minimum must be known before any write.
func (s *CUSketch) conservativeUpdate(t *cuTable) {
	minimum := uint32(math.MaxUint32)
	for i, h := range s.scratch {
		minimum = Min(minimum, t.counters[i*t.width+s.index(t, h)])
	}
	for i, h := range s.scratch {
		c := &t.counters[i*t.width+s.index(t, h)]
		if *c == minimum {
			*c++
		}
	}
}

// Query returns the estimated number of occurrences of key. The estimate is
// never below the true count unless a merge has discarded information.
func (s *CUSketch) Query(key []byte) (uint32, error) {
	if err := s.hashKey(key); err != nil {
		return 0, err
	}
	t := s.activeTable()
	estimate := uint32(math.MaxUint32)
	for i, h := range s.scratch {
		estimate = Min(estimate, t.counters[i*t.width+s.index(t, h)])
	}
	return estimate, nil
}

// Compress shrinks the queried table by a factor of 2^rate.
//
// SumMerge and MaxMerge rebuild the table and discard the finer counters.
// Hierarchical only moves the query level to a coarser table.
func (s *CUSketch) Compress(rate int) error {
	if rate < 0 {
		return fmt.Errorf("compress rate must not be negative, got %d", rate)
	}

	switch s.policy {
	case SumMerge, MaxMerge:
		if rate > s.logWidth {
			return fmt.Errorf("compress rate %d exceeds the %d remaining halvings", rate, s.logWidth)
		}
		if rate == 0 {
			return nil
		}
		s.tables[0] = s.tables[0].merge(rate, s.policy, s.numRows)
		s.width >>= rate
		s.logWidth -= rate
	case Hierarchical:
		if s.level+rate > s.logWidth-1 {
			return fmt.Errorf("compress rate %d exceeds the %d remaining levels", rate, s.logWidth-1-s.level)
		}
		s.level += rate
	default:
		return fmt.Errorf("unknown compress policy %v", s.policy)
	}
	return nil
}

// MemoryUse is the log2 width of the queried table plus 4, the log2 size of a
// counter in bits. For Hierarchical sketches this is the logical footprint of
// the current level; the other levels remain allocated.
func (s *CUSketch) MemoryUse() int {
	if s.policy == Hierarchical {
		return s.logWidth - s.level + 4
	}
	return s.logWidth + 4
}

// Width returns the width of the queried table.
func (s *CUSketch) Width() int {
	return s.activeTable().width
}

func (s *CUSketch) NumRows() int {
	return s.numRows
}

func (s *CUSketch) KeyLength() int {
	return s.keyLen
}

func (s *CUSketch) Policy() CompressPolicy {
	return s.policy
}

// Level returns the query level of a Hierarchical sketch, 0 otherwise.
func (s *CUSketch) Level() int {
	return s.level
}

// MemoryBytes returns the budget the sketch was sized for.
func (s *CUSketch) MemoryBytes() int {
	return s.memBytes
}

// Seeds returns a copy of the per-row hash seeds.
func (s *CUSketch) Seeds() []uint32 {
	return append([]uint32(nil), s.seeds...)
}

func (s *CUSketch) String() string {
	var sb strings.Builder
	sb.WriteString("### CU sketch summary:")
	sb.WriteString("\n")
	sb.WriteString("  Name           : " + s.Name())
	sb.WriteString("\n")
	sb.WriteString("  Policy         : " + s.policy.String())
	sb.WriteString("\n")
	sb.WriteString("  Key length     : " + strconv.Itoa(s.keyLen))
	sb.WriteString("\n")
	sb.WriteString("  Rows           : " + strconv.Itoa(s.numRows))
	sb.WriteString("\n")
	sb.WriteString("  Width          : " + strconv.Itoa(s.Width()))
	sb.WriteString("\n")
	sb.WriteString("  Level          : " + strconv.Itoa(s.level))
	sb.WriteString("\n")
	sb.WriteString("  Memory use     : " + strconv.Itoa(s.MemoryUse()))
	sb.WriteString("\n")
	sb.WriteString("### End sketch summary")
	sb.WriteString("\n")
	return sb.String()
}

func (s *CUSketch) activeTable() *cuTable {
	if s.policy == Hierarchical {
		return &s.tables[s.level-1]
	}
	return &s.tables[0]
}

// index takes the top k-level bits of h.
func (s *CUSketch) index(t *cuTable, h uint32) int {
	return int(h >> uint(32-s.logWidth+t.level))
}

func (s *CUSketch) hashKey(key []byte) error {
	if len(key) != s.keyLen {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrKeyLength, len(key), s.keyLen)
	}
	for i, h := range s.hashes {
		s.scratch[i] = h.Sum32(key)
	}
	return nil
}
