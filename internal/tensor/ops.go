package tensor

import "github.com/8arry/micro-transformer/internal/parallel"

// Add returns a + b elementwise. Panics if shapes differ.
func Add(a, b *Mat, par bool) Mat {
	if !a.SameShape(b) {
		panic("tensor: add shape mismatch")
	}
	out := NewMat(a.R, a.C)
	run := func(start, end int) {
		for i := start; i < end; i++ {
			out.Data[i] = a.Data[i] + b.Data[i]
		}
	}
	if par && len(a.Data) > parallelOpThreshold {
		parallel.For(len(a.Data), run)
		return out
	}
	run(0, len(a.Data))
	return out
}

// Transpose returns the c×r transpose of an r×c matrix.
func Transpose(a *Mat, par bool) Mat {
	out := NewMat(a.C, a.R)
	rows := func(start, end int) {
		for i := start; i < end; i++ {
			arow := a.Data[i*a.C : (i+1)*a.C]
			for j, v := range arow {
				out.Data[j*a.R+i] = v
			}
		}
	}
	if par && a.R*a.C > parallelOpThreshold {
		parallel.For(a.R, rows)
		return out
	}
	rows(0, a.R)
	return out
}

// AddBias returns m with the 1×C bias row added to every row. Panics if bias
// is not a single row of matching width.
func AddBias(m, bias *Mat, par bool) Mat {
	if bias.R != 1 || bias.C != m.C {
		panic("tensor: bias shape mismatch")
	}
	out := NewMat(m.R, m.C)
	rows := func(start, end int) {
		for i := start; i < end; i++ {
			mrow := m.Row(i)
			orow := out.Row(i)
			for j, v := range mrow {
				orow[j] = v + bias.Data[j]
			}
		}
	}
	if par && m.R*m.C > parallelOpThreshold {
		parallel.For(m.R, rows)
		return out
	}
	rows(0, m.R)
	return out
}
