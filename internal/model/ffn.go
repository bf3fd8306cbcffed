package model

import "github.com/8arry/micro-transformer/internal/tensor"

// FFN is the position-wise feed-forward network: two affine transforms with a
// ReLU between them. The hidden width is ff_dim; biases are broadcast along
// rows.
type FFN struct {
	W1 tensor.Mat // (D, F)
	B1 tensor.Mat // (1, F)
	W2 tensor.Mat // (F, D)
	B2 tensor.Mat // (1, D)
}

func newFFN(cfg Config) *FFN {
	d, f := cfg.EmbedDim, cfg.FFDim
	return &FFN{
		W1: newXavierMat(d, f, d, f),
		B1: newBiasMat(f),
		W2: newXavierMat(f, d, f, d),
		B2: newBiasMat(d),
	}
}

// Forward computes ReLU(x·W1 + b1)·W2 + b2, shape (S, D) in and out.
func (f *FFN) Forward(x *tensor.Mat, par bool) tensor.Mat {
	hidden := tensor.MatMul(x, &f.W1, par)
	hidden = tensor.AddBias(&hidden, &f.B1, par)
	activated := tensor.ReLU(&hidden, par)
	out := tensor.MatMul(&activated, &f.W2, par)
	return tensor.AddBias(&out, &f.B2, par)
}
