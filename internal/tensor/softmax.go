package tensor

import (
	"math"

	"github.com/8arry/micro-transformer/internal/parallel"
)

// Softmax returns the row-wise softmax of m. Each row is shifted by its
// maximum before exponentiation so large positive scores cannot overflow;
// a -Inf entry comes out as probability zero. Rows are independent, so the
// parallel path chunks rows over the pool.
func Softmax(m *Mat, par bool) Mat {
	out := NewMat(m.R, m.C)
	rows := func(start, end int) {
		for i := start; i < end; i++ {
			softmaxRow(out.Row(i), m.Row(i))
		}
	}
	if par && m.R > 1 {
		parallel.For(m.R, rows)
		return out
	}
	rows(0, m.R)
	return out
}

func softmaxRow(dst, src []float32) {
	if len(src) == 0 {
		return
	}
	maxv := src[0]
	for _, v := range src[1:] {
		if v > maxv {
			maxv = v
		}
	}
	var sum float32
	for j, v := range src {
		e := float32(math.Exp(float64(v - maxv)))
		dst[j] = e
		sum += e
	}
	if sum == 0 {
		return
	}
	inv := 1 / sum
	for j := range dst {
		dst[j] *= inv
	}
}

// ReLU returns max(0, x) applied elementwise.
func ReLU(m *Mat, par bool) Mat {
	out := NewMat(m.R, m.C)
	run := func(start, end int) {
		for i := start; i < end; i++ {
			if v := m.Data[i]; v > 0 {
				out.Data[i] = v
			}
		}
	}
	if par && len(m.Data) > parallelOpThreshold {
		parallel.For(len(m.Data), run)
		return out
	}
	run(0, len(m.Data))
	return out
}
