package tensor

import "math"

// MaxDeviation returns the largest absolute elementwise difference between a
// and b. Panics if shapes differ; use Equivalent for a total check.
func MaxDeviation(a, b *Mat) float64 {
	if !a.SameShape(b) {
		panic("tensor: deviation shape mismatch")
	}
	var maxDev float64
	for i := range a.Data {
		d := math.Abs(float64(a.Data[i]) - float64(b.Data[i]))
		if d > maxDev {
			maxDev = d
		}
	}
	return maxDev
}

// Equivalent reports whether a and b have the same shape and agree elementwise
// within tol. NaN anywhere fails the check.
func Equivalent(a, b *Mat, tol float64) bool {
	if !a.SameShape(b) {
		return false
	}
	for i := range a.Data {
		d := math.Abs(float64(a.Data[i]) - float64(b.Data[i]))
		if !(d <= tol) {
			return false
		}
	}
	return true
}

// Stats summarises a matrix for reports and CLI output.
type Stats struct {
	Rows int     `json:"rows"`
	Cols int     `json:"cols"`
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Summarize computes shape, mean, min and max of m.
func Summarize(m *Mat) Stats {
	s := Stats{Rows: m.R, Cols: m.C}
	if len(m.Data) == 0 {
		return s
	}
	s.Min = float64(m.Data[0])
	s.Max = float64(m.Data[0])
	var sum float64
	for _, v := range m.Data {
		f := float64(v)
		sum += f
		if f < s.Min {
			s.Min = f
		}
		if f > s.Max {
			s.Max = f
		}
	}
	s.Mean = sum / float64(len(m.Data))
	return s
}
