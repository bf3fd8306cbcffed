package tensor

import (
	"math"
	"math/rand"
	"testing"
)

func TestSoftmaxRowsSumToOne(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	m := NewMat(16, 33)
	fillRandom(&m, rng)

	for _, par := range []bool{false, true} {
		out := Softmax(&m, par)
		for i := 0; i < out.R; i++ {
			var sum float64
			for _, v := range out.Row(i) {
				if v < 0 || v > 1 {
					t.Fatalf("row %d: probability out of [0,1]: %v", i, v)
				}
				sum += float64(v)
			}
			if math.Abs(sum-1) > 1e-6 {
				t.Fatalf("par=%v row %d sums to %v", par, i, sum)
			}
		}
	}
}

func TestSoftmaxUniformRow(t *testing.T) {
	t.Parallel()
	m := NewMatFilled(3, 8, 4.2)
	out := Softmax(&m, false)
	want := float32(1.0 / 8.0)
	for i, v := range out.Data {
		if math.Abs(float64(v-want)) > 1e-6 {
			t.Fatalf("element %d: got %v, want %v", i, v, want)
		}
	}
}

func TestSoftmaxNegInfEntry(t *testing.T) {
	t.Parallel()
	m := NewMatFromData(1, 3, []float32{1, float32(math.Inf(-1)), 2})
	out := Softmax(&m, false)
	if out.Data[1] != 0 {
		t.Fatalf("-Inf entry should have probability 0, got %v", out.Data[1])
	}
	sum := out.Data[0] + out.Data[2]
	if math.Abs(float64(sum)-1) > 1e-6 {
		t.Fatalf("remaining mass %v, want 1", sum)
	}
}

func TestSoftmaxLargeInputsStable(t *testing.T) {
	t.Parallel()
	m := NewMatFromData(1, 4, []float32{1000, 1001, 1002, 1003})
	out := Softmax(&m, false)
	for i, v := range out.Data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("element %d not finite: %v", i, v)
		}
	}
}

func TestReLU(t *testing.T) {
	t.Parallel()
	m := NewMatFromData(2, 3, []float32{-1, 0, 2, -0.5, 3, -7})
	want := []float32{0, 0, 2, 0, 3, 0}
	for _, par := range []bool{false, true} {
		out := ReLU(&m, par)
		for i, v := range out.Data {
			if v != want[i] {
				t.Fatalf("par=%v element %d: got %v, want %v", par, i, v, want[i])
			}
		}
	}
}

func TestMaxDeviationAndEquivalent(t *testing.T) {
	t.Parallel()
	a := NewMatFilled(4, 4, 1)
	b := a.Clone()
	b.Data[5] = 1.0003

	dev := MaxDeviation(&a, &b)
	if math.Abs(dev-0.0003) > 1e-6 {
		t.Fatalf("MaxDeviation = %v", dev)
	}
	if !Equivalent(&a, &b, 1e-3) {
		t.Fatal("expected equivalence at 1e-3")
	}
	if Equivalent(&a, &b, 1e-5) {
		t.Fatal("expected non-equivalence at 1e-5")
	}

	c := NewMat(4, 5)
	if Equivalent(&a, &c, 1) {
		t.Fatal("shape mismatch must not be equivalent")
	}
}

func TestEquivalentRejectsNaN(t *testing.T) {
	t.Parallel()
	a := NewMatFilled(2, 2, 1)
	b := a.Clone()
	b.Data[0] = float32(math.NaN())
	if Equivalent(&a, &b, 1) {
		t.Fatal("NaN must fail the equivalence check")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	m := NewMatFromData(2, 2, []float32{-1, 0, 1, 4})
	s := Summarize(&m)
	if s.Rows != 2 || s.Cols != 2 {
		t.Fatalf("shape: %dx%d", s.Rows, s.Cols)
	}
	if s.Min != -1 || s.Max != 4 || s.Mean != 1 {
		t.Fatalf("stats: min=%v max=%v mean=%v", s.Min, s.Max, s.Mean)
	}
}
