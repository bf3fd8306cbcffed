package bench

import (
	"runtime"

	"github.com/8arry/micro-transformer/internal/model"
	"github.com/8arry/micro-transformer/internal/parallel"
	"github.com/8arry/micro-transformer/internal/tensor"
)

type SweepOptions struct {
	Options
	// ThreadCounts are the parallel worker counts to sweep. Defaults to
	// powers of two up to the CPU count.
	ThreadCounts []int
	// SeqLens are the sequence lengths to sweep. Defaults to the base
	// config's sequence length.
	SeqLens []int
}

// Sweep runs a scalability study: for every sequence length it times the
// serial path once, then the parallel path at every thread count, checking
// each parallel output against that serial reference.
func Sweep(base model.Config, opts SweepOptions) ([]Result, error) {
	opts.normalize()
	threadCounts := opts.ThreadCounts
	if len(threadCounts) == 0 {
		threadCounts = defaultThreadCounts()
	}
	seqLens := opts.SeqLens
	if len(seqLens) == 0 {
		seqLens = []int{base.SeqLen}
	}

	var results []Result
	for _, seqLen := range seqLens {
		cfg := base
		cfg.SeqLen = seqLen
		enc, err := model.NewEncoder(cfg)
		if err != nil {
			return nil, err
		}
		input := model.RandomInput(cfg.SeqLen, cfg.EmbedDim, inputLo, inputHi)

		opts.Log.Info("sweep: serial reference", "seq_len", seqLen)
		ref, serialMs, err := timeForward(enc, &input, false, opts.Warmup, opts.Runs)
		if err != nil {
			return nil, err
		}
		results = append(results, newResult(cfg, 1, ImplSerial, serialMs, true, 0))

		for _, threads := range threadCounts {
			parallel.SetWorkers(threads)
			opts.Log.Info("sweep: parallel run", "seq_len", seqLen, "threads", threads)
			out, parallelMs, err := timeForward(enc, &input, true, opts.Warmup, opts.Runs)
			if err != nil {
				return nil, err
			}
			dev := tensor.MaxDeviation(&out, &ref)
			results = append(results,
				newResult(cfg, threads, ImplParallel, parallelMs, dev <= EquivTolerance, dev))
		}
	}
	return results, nil
}

func defaultThreadCounts() []int {
	cpus := runtime.NumCPU()
	var counts []int
	for n := 1; n <= cpus; n *= 2 {
		counts = append(counts, n)
	}
	if counts[len(counts)-1] != cpus {
		counts = append(counts, cpus)
	}
	return counts
}
