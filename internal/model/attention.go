package model

import (
	"math"

	"github.com/8arry/micro-transformer/internal/parallel"
	"github.com/8arry/micro-transformer/internal/tensor"
)

// Attention is scaled dot-product multi-head self-attention over a fixed
// (seq_length, embed_dim) input.
//
// The projection weights are exported so tests and tools can overwrite them;
// they are initialised once with Xavier uniform values and treated as frozen
// during forward passes, which makes them safe to read from any worker.
type Attention struct {
	cfg     Config
	headDim int

	WQ tensor.Mat // (D, D) query projection
	WK tensor.Mat // (D, D) key projection
	WV tensor.Mat // (D, D) value projection
	WO tensor.Mat // (D, D) output projection
}

func newAttention(cfg Config) *Attention {
	d := cfg.EmbedDim
	return &Attention{
		cfg:     cfg,
		headDim: cfg.HeadDim(),
		WQ:      newXavierMat(d, d, d, d),
		WK:      newXavierMat(d, d, d, d),
		WV:      newXavierMat(d, d, d, d),
		WO:      newXavierMat(d, d, d, d),
	}
}

// Forward computes multi-head self-attention of x, shape (S, D) in and out.
//
// Parallel path: the Q, K and V projections run as three concurrent sections
// using the blocked multiply, and the heads are dispatched over the pool when
// there is more than one. Inner kernels called from those tasks degrade to
// sequential through the pool's nesting guard.
func (a *Attention) Forward(x *tensor.Mat, par bool) tensor.Mat {
	var q, k, v tensor.Mat
	if par {
		parallel.Sections(
			func() { q = tensor.MatMulBlocked(x, &a.WQ, true) },
			func() { k = tensor.MatMulBlocked(x, &a.WK, true) },
			func() { v = tensor.MatMulBlocked(x, &a.WV, true) },
		)
	} else {
		q = tensor.MatMul(x, &a.WQ, false)
		k = tensor.MatMul(x, &a.WK, false)
		v = tensor.MatMul(x, &a.WV, false)
	}

	qh := splitHeads(&q, a.cfg.NumHeads, par)
	kh := splitHeads(&k, a.cfg.NumHeads, par)
	vh := splitHeads(&v, a.cfg.NumHeads, par)

	heads := make([]tensor.Mat, a.cfg.NumHeads)
	if par && a.cfg.NumHeads > 1 {
		parallel.For(a.cfg.NumHeads, func(start, end int) {
			for h := start; h < end; h++ {
				heads[h] = a.attendHead(&qh[h], &kh[h], &vh[h], true)
			}
		})
	} else {
		for h := range heads {
			heads[h] = a.attendHead(&qh[h], &kh[h], &vh[h], par)
		}
	}

	concat := concatHeads(heads, par)
	if par {
		return tensor.MatMulBlocked(&concat, &a.WO, true)
	}
	return tensor.MatMul(&concat, &a.WO, false)
}

// attendHead runs scaled dot-product attention for one head:
// softmax(Q·Kᵀ / sqrt(d)) · V. The scale is applied to the scores before
// softmax.
func (a *Attention) attendHead(q, k, v *tensor.Mat, par bool) tensor.Mat {
	kT := tensor.Transpose(k, par)
	scores := tensor.MatMul(q, &kT, par)
	scores.Scale(float32(1.0 / math.Sqrt(float64(a.headDim))))
	weights := tensor.Softmax(&scores, par)
	return tensor.MatMul(&weights, v, par)
}

// splitHeads slices an (S, H·d) matrix into H contiguous (S, d) matrices:
// head h holds columns [h·d, (h+1)·d).
func splitHeads(m *tensor.Mat, numHeads int, par bool) []tensor.Mat {
	headDim := m.C / numHeads
	heads := make([]tensor.Mat, numHeads)
	for h := range heads {
		heads[h] = tensor.NewMat(m.R, headDim)
	}
	copyRows := func(start, end int) {
		for idx := start; idx < end; idx++ {
			h := idx / m.R
			i := idx % m.R
			src := m.Row(i)[h*headDim : (h+1)*headDim]
			copy(heads[h].Row(i), src)
		}
	}
	if par {
		parallel.For(numHeads*m.R, copyRows)
	} else {
		copyRows(0, numHeads*m.R)
	}
	return heads
}

// concatHeads is the inverse of splitHeads.
func concatHeads(heads []tensor.Mat, par bool) tensor.Mat {
	numHeads := len(heads)
	rows := heads[0].R
	headDim := heads[0].C
	out := tensor.NewMat(rows, numHeads*headDim)
	copyRows := func(start, end int) {
		for idx := start; idx < end; idx++ {
			h := idx / rows
			i := idx % rows
			dst := out.Row(i)[h*headDim : (h+1)*headDim]
			copy(dst, heads[h].Row(i))
		}
	}
	if par {
		parallel.For(numHeads*rows, copyRows)
	} else {
		copyRows(0, numHeads*rows)
	}
	return out
}
