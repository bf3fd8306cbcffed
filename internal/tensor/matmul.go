package tensor

import "github.com/8arry/micro-transformer/internal/parallel"

// blockSize is the tile edge of the cache-blocked multiply. 64 keeps one
// float32 tile of A and B inside L1 on common cores.
const blockSize = 64

// MatMul computes a×b with the straightforward i-j-k loop, accumulating each
// output element in a register. Panics if a.C != b.R.
//
// With par set and enough work (rows*cols*inner above the dispatch
// threshold), output rows are chunked over the worker pool.
func MatMul(a, b *Mat, par bool) Mat {
	if a.C != b.R {
		panic("tensor: matmul dimension mismatch")
	}
	out := NewMat(a.R, b.C)

	rows := func(start, end int) {
		matMulRows(&out, a, b, start, end)
	}
	if par && a.R*b.C*a.C > parallelOpThreshold {
		parallel.For(a.R, rows)
		return out
	}
	rows(0, a.R)
	return out
}

func matMulRows(out, a, b *Mat, rs, re int) {
	n := b.C
	k := a.C
	for i := rs; i < re; i++ {
		arow := a.Data[i*k : (i+1)*k]
		orow := out.Data[i*n : (i+1)*n]
		for j := 0; j < n; j++ {
			var sum float32
			for kk := 0; kk < k; kk++ {
				sum += arow[kk] * b.Data[kk*n+j]
			}
			orow[j] = sum
		}
	}
}

// MatMulBlocked computes a×b with a cache-blocked kernel that tiles i, j and
// k in blockSize steps. Matrices with every dimension below blockSize fall
// back to the naive kernel. The result matches MatMul up to float addition
// order.
func MatMulBlocked(a, b *Mat, par bool) Mat {
	if a.C != b.R {
		panic("tensor: matmul dimension mismatch")
	}
	if a.R < blockSize && b.C < blockSize && a.C < blockSize {
		return MatMul(a, b, par)
	}
	out := NewMat(a.R, b.C)

	// One task per row tile; each task walks the full j and k tile grids for
	// its rows, so tasks never write the same output element.
	rowTiles := (a.R + blockSize - 1) / blockSize
	tiles := func(start, end int) {
		for t := start; t < end; t++ {
			rs := t * blockSize
			re := min(rs+blockSize, a.R)
			matMulTileRows(&out, a, b, rs, re)
		}
	}
	if par && a.R*b.C*a.C > parallelOpThreshold {
		parallel.For(rowTiles, tiles)
		return out
	}
	tiles(0, rowTiles)
	return out
}

func matMulTileRows(out, a, b *Mat, rs, re int) {
	n := b.C
	k := a.C
	for j0 := 0; j0 < n; j0 += blockSize {
		jMax := min(j0+blockSize, n)
		for k0 := 0; k0 < k; k0 += blockSize {
			kMax := min(k0+blockSize, k)
			for i := rs; i < re; i++ {
				arow := a.Data[i*k : (i+1)*k]
				orow := out.Data[i*n : (i+1)*n]
				for j := j0; j < jMax; j++ {
					sum := orow[j]
					for kk := k0; kk < kMax; kk++ {
						sum += arow[kk] * b.Data[kk*n+j]
					}
					orow[j] = sum
				}
			}
		}
	}
}
