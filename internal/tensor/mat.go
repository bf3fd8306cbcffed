// Package tensor implements the dense float32 matrix type and the numerical
// primitives of the encoder: multiplication (naive and cache-blocked),
// elementwise operations, row-wise softmax and the dual-path equivalence
// check.
//
// Every operation that can usefully run on multiple workers takes a `par`
// flag. The flag selects the parallel dispatch strategy only; the arithmetic
// is written once and shared by both paths.
package tensor

import (
	"math/rand"

	"github.com/8arry/micro-transformer/internal/parallel"
)

// parallelOpThreshold is the minimum number of scalar operations before a
// primitive engages the worker pool. Below it, dispatch overhead dominates.
const parallelOpThreshold = 1000

// Mat is a dense row-major matrix of float32 values.
//
// Data always holds exactly R*C elements; element (i, j) lives at i*C + j.
// The shape is fixed at creation. Operations allocate fresh result matrices
// and never mutate their inputs unless documented otherwise.
//
// Mat performs no bounds checking beyond Go's slice semantics; out-of-range
// indices panic.
type Mat struct {
	R, C int
	Data []float32
}

// NewMat allocates a zero-initialised r×c matrix.
func NewMat(r, c int) Mat {
	if r < 0 || c < 0 {
		panic("tensor: negative matrix dimension")
	}
	return Mat{R: r, C: c, Data: make([]float32, r*c)}
}

// NewMatFilled allocates an r×c matrix with every element set to v.
func NewMatFilled(r, c int, v float32) Mat {
	m := NewMat(r, c)
	m.Fill(v)
	return m
}

// NewMatFromData wraps existing data as an r×c matrix. The slice is owned by
// the returned matrix afterwards.
func NewMatFromData(r, c int, data []float32) Mat {
	if r*c != len(data) {
		panic("tensor: data length mismatch")
	}
	return Mat{R: r, C: c, Data: data}
}

// At returns element (i, j).
func (m *Mat) At(i, j int) float32 { return m.Data[i*m.C+j] }

// Set stores v at element (i, j).
func (m *Mat) Set(i, j int, v float32) { m.Data[i*m.C+j] = v }

// Row returns a view of the i-th row. Writes through the returned slice
// update the matrix.
func (m *Mat) Row(i int) []float32 {
	start := i * m.C
	return m.Data[start : start+m.C]
}

// SameShape reports whether m and other have identical dimensions.
func (m *Mat) SameShape(other *Mat) bool {
	return m.R == other.R && m.C == other.C
}

// Clone returns an independent copy of m.
func (m *Mat) Clone() Mat {
	out := NewMat(m.R, m.C)
	copy(out.Data, m.Data)
	return out
}

// Fill sets every element to v.
func (m *Mat) Fill(v float32) {
	for i := range m.Data {
		m.Data[i] = v
	}
}

// Zero clears the matrix. With par set and enough elements the clear is
// chunked over the pool.
func (m *Mat) Zero(par bool) {
	if par && len(m.Data) > parallelOpThreshold {
		parallel.For(len(m.Data), func(start, end int) {
			clear(m.Data[start:end])
		})
		return
	}
	clear(m.Data)
}

// Randomize fills the matrix with independent uniform samples from [lo, hi).
// Each worker chunk draws from its own generator, seeded distinctly, so the
// streams are uncorrelated and no generator state is shared. Values are not
// reproducible across runs.
func (m *Mat) Randomize(lo, hi float32, par bool) {
	base := rand.Int63()
	span := hi - lo
	fill := func(start, end int) {
		rng := rand.New(rand.NewSource(base + int64(start)))
		for i := start; i < end; i++ {
			m.Data[i] = lo + rng.Float32()*span
		}
	}
	if par && len(m.Data) > parallelOpThreshold {
		parallel.For(len(m.Data), fill)
		return
	}
	fill(0, len(m.Data))
}

// Scale multiplies every element by s in place.
func (m *Mat) Scale(s float32) {
	for i := range m.Data {
		m.Data[i] *= s
	}
}
