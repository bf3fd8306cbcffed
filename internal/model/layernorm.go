package model

import (
	"math"

	"github.com/8arry/micro-transformer/internal/parallel"
	"github.com/8arry/micro-transformer/internal/tensor"
)

// LayerNorm normalises each row to zero mean and unit variance (biased
// estimator), then applies the learnable scale and shift. Gamma starts at 1
// and Beta at 0.
type LayerNorm struct {
	Gamma   tensor.Mat // (1, D)
	Beta    tensor.Mat // (1, D)
	epsilon float32
}

func newLayerNorm(cfg Config) *LayerNorm {
	return &LayerNorm{
		Gamma:   tensor.NewMatFilled(1, cfg.EmbedDim, 1),
		Beta:    tensor.NewMat(1, cfg.EmbedDim),
		epsilon: cfg.Epsilon,
	}
}

// Forward normalises x row by row. Rows are independent; the parallel path
// chunks them over the pool.
func (l *LayerNorm) Forward(x *tensor.Mat, par bool) tensor.Mat {
	out := tensor.NewMat(x.R, x.C)
	rows := func(start, end int) {
		for i := start; i < end; i++ {
			l.normalizeRow(out.Row(i), x.Row(i))
		}
	}
	if par && x.R > 1 {
		parallel.For(x.R, rows)
		return out
	}
	rows(0, x.R)
	return out
}

func (l *LayerNorm) normalizeRow(dst, src []float32) {
	n := float32(len(src))

	var mean float32
	for _, v := range src {
		mean += v
	}
	mean /= n

	var variance float32
	for _, v := range src {
		diff := v - mean
		variance += diff * diff
	}
	variance /= n

	stdDev := float32(math.Sqrt(float64(variance + l.epsilon)))
	for j, v := range src {
		dst[j] = l.Gamma.Data[j]*((v-mean)/stdDev) + l.Beta.Data[j]
	}
}
