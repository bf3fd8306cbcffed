package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversRange(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	n := 1000
	seen := make([]int32, n)
	p.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times", i, v)
		}
	}
}

func TestForSingleWorkerRunsInline(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	var calls int
	p.For(64, func(start, end int) {
		calls++
		if start != 0 || end != 64 {
			t.Fatalf("expected single chunk [0,64), got [%d,%d)", start, end)
		}
	})
	if calls != 1 {
		t.Fatalf("expected one inline chunk, got %d", calls)
	}
}

func TestNestedForRunsInline(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var innerChunks atomic.Int32
	p.For(4, func(start, end int) {
		for i := start; i < end; i++ {
			if !p.InRegion() {
				t.Error("expected to be inside a region")
			}
			p.For(128, func(s, e int) {
				innerChunks.Add(1)
				if s != 0 || e != 128 {
					t.Errorf("nested loop partitioned: [%d,%d)", s, e)
				}
			})
		}
	})
	if innerChunks.Load() != 4 {
		t.Fatalf("expected 4 inline inner loops, got %d", innerChunks.Load())
	}
}

func TestSections(t *testing.T) {
	p := NewPool(3)
	defer p.Close()

	var a, b, c atomic.Bool
	p.Sections(
		func() { a.Store(true) },
		func() { b.Store(true) },
		func() { c.Store(true) },
	)
	if !a.Load() || !b.Load() || !c.Load() {
		t.Fatal("not all sections ran")
	}
}

func TestSectionsNestedLoops(t *testing.T) {
	// Sections whose bodies run chunked loops must not deadlock or
	// re-partition.
	p := NewPool(2)
	defer p.Close()

	var total atomic.Int64
	p.Sections(
		func() {
			p.For(500, func(start, end int) {
				for i := start; i < end; i++ {
					total.Add(1)
				}
			})
		},
		func() {
			p.For(500, func(start, end int) {
				for i := start; i < end; i++ {
					total.Add(1)
				}
			})
		},
	)
	if total.Load() != 1000 {
		t.Fatalf("expected 1000 iterations, got %d", total.Load())
	}
}

func TestSetWorkers(t *testing.T) {
	old := Workers()
	defer SetWorkers(old)

	SetWorkers(2)
	if got := Workers(); got != 2 {
		t.Fatalf("Workers() = %d, want 2", got)
	}

	// The replacement pool must still execute work.
	var count atomic.Int32
	For(256, func(start, end int) {
		count.Add(int32(end - start))
	})
	if count.Load() != 256 {
		t.Fatalf("loop covered %d of 256 indices", count.Load())
	}

	SetWorkers(0)
	if got := Workers(); got != 1 {
		t.Fatalf("Workers() after SetWorkers(0) = %d, want 1", got)
	}
}

func BenchmarkFor(b *testing.B) {
	p := NewPool(4)
	defer p.Close()
	buf := make([]float32, 1<<16)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.For(len(buf), func(start, end int) {
			for j := start; j < end; j++ {
				buf[j] = float32(j)
			}
		})
	}
}
