package model

import (
	"math"

	"github.com/8arry/micro-transformer/internal/tensor"
)

// biasInitBound is the half-width of the uniform noise used for bias rows.
const biasInitBound = 0.01

// xavierBound returns the Xavier/Glorot uniform limit sqrt(6/(fanIn+fanOut)).
func xavierBound(fanIn, fanOut int) float32 {
	return float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
}

// newXavierMat allocates an r×c weight matrix initialised from the uniform
// Xavier distribution for the given fan sizes.
func newXavierMat(r, c, fanIn, fanOut int) tensor.Mat {
	m := tensor.NewMat(r, c)
	bound := xavierBound(fanIn, fanOut)
	m.Randomize(-bound, bound, true)
	return m
}

// newBiasMat allocates a 1×c bias row with small uniform noise.
func newBiasMat(c int) tensor.Mat {
	m := tensor.NewMat(1, c)
	m.Randomize(-biasInitBound, biasInitBound, true)
	return m
}
