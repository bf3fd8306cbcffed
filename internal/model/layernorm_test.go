package model

import (
	"math"
	"testing"
)

func TestLayerNormRowStatistics(t *testing.T) {
	t.Parallel()
	cfg := testConfig(32, 64, 4, 128, 1)
	ln := newLayerNorm(cfg)
	x := RandomInput(32, 64, -2, 2)

	for _, par := range []bool{false, true} {
		out := ln.Forward(&x, par)
		for i := 0; i < out.R; i++ {
			row := out.Row(i)
			var mean float64
			for _, v := range row {
				mean += float64(v)
			}
			mean /= float64(len(row))
			if math.Abs(mean) > 1e-5 {
				t.Fatalf("par=%v row %d mean %g, want ~0", par, i, mean)
			}

			var variance float64
			for _, v := range row {
				d := float64(v) - mean
				variance += d * d
			}
			variance /= float64(len(row))
			if math.Abs(variance-1) > 1e-4 {
				t.Fatalf("par=%v row %d variance %g, want ~1", par, i, variance)
			}
		}
	}
}

func TestLayerNormScaleShift(t *testing.T) {
	t.Parallel()
	cfg := testConfig(4, 8, 2, 16, 1)
	ln := newLayerNorm(cfg)
	ln.Gamma.Fill(2)
	ln.Beta.Fill(0.5)

	x := RandomInput(4, 8, -1, 1)
	base := newLayerNorm(cfg).Forward(&x, false)
	out := ln.Forward(&x, false)

	for i := range out.Data {
		want := 2*base.Data[i] + 0.5
		if math.Abs(float64(out.Data[i]-want)) > 1e-6 {
			t.Fatalf("element %d: got %v, want %v", i, out.Data[i], want)
		}
	}
}

func TestLayerNormConstantRow(t *testing.T) {
	t.Parallel()
	// A constant row has zero variance; epsilon keeps the denominator
	// finite and the normalised values at zero.
	cfg := testConfig(2, 8, 2, 16, 1)
	ln := newLayerNorm(cfg)
	x := RandomInput(2, 8, 0, 1)
	for j := 0; j < 8; j++ {
		x.Set(0, j, 3.25)
	}
	out := ln.Forward(&x, false)
	for j := 0; j < 8; j++ {
		if v := out.At(0, j); v != 0 {
			t.Fatalf("column %d: got %v, want 0", j, v)
		}
	}
}
