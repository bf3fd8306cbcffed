// Package bench times encoder forward passes and verifies that the parallel
// path stays numerically equivalent to the serial reference.
package bench

import (
	"time"

	"github.com/8arry/micro-transformer/internal/logger"
	"github.com/8arry/micro-transformer/internal/model"
	"github.com/8arry/micro-transformer/internal/parallel"
	"github.com/8arry/micro-transformer/internal/tensor"
)

const (
	ImplSerial   = "serial"
	ImplParallel = "parallel"

	// EquivTolerance is the max absolute deviation under which a parallel
	// run counts as numerically correct.
	EquivTolerance = 1e-4

	inputLo = -1.0
	inputHi = 1.0
)

// Result is one timed run configuration. Field order matches the CSV layout.
type Result struct {
	SeqLen       int     `json:"seq_length"`
	EmbedDim     int     `json:"embed_dim"`
	NumHeads     int     `json:"num_heads"`
	FFDim        int     `json:"ff_dim"`
	NumLayers    int     `json:"num_layers"`
	Threads      int     `json:"thread_count"`
	Impl         string  `json:"implementation_type"`
	Millis       float64 `json:"execution_time_ms"`
	Correct      bool    `json:"numerical_correctness"`
	MaxDeviation float64 `json:"max_deviation"`
}

type Options struct {
	Warmup  int
	Runs    int
	Threads int
	Log     logger.Logger
}

func (o *Options) normalize() {
	if o.Warmup < 0 {
		o.Warmup = 0
	}
	if o.Runs <= 0 {
		o.Runs = 1
	}
	if o.Threads <= 0 {
		o.Threads = parallel.Workers()
	}
	if o.Log == nil {
		o.Log = logger.Discard()
	}
}

// Measure times the serial and parallel paths for one configuration and
// returns a serial result followed by a parallel one. The parallel output is
// checked against the serial output of the same weights and input.
func Measure(cfg model.Config, opts Options) ([]Result, error) {
	opts.normalize()

	enc, err := model.NewEncoder(cfg)
	if err != nil {
		return nil, err
	}
	input := model.RandomInput(cfg.SeqLen, cfg.EmbedDim, inputLo, inputHi)

	opts.Log.Info("measuring serial path",
		"seq_len", cfg.SeqLen, "embed_dim", cfg.EmbedDim, "runs", opts.Runs)
	ref, serialMs, err := timeForward(enc, &input, false, opts.Warmup, opts.Runs)
	if err != nil {
		return nil, err
	}

	parallel.SetWorkers(opts.Threads)
	opts.Log.Info("measuring parallel path", "threads", opts.Threads, "runs", opts.Runs)
	out, parallelMs, err := timeForward(enc, &input, true, opts.Warmup, opts.Runs)
	if err != nil {
		return nil, err
	}

	dev := tensor.MaxDeviation(&out, &ref)
	results := []Result{
		newResult(cfg, 1, ImplSerial, serialMs, true, 0),
		newResult(cfg, opts.Threads, ImplParallel, parallelMs, dev <= EquivTolerance, dev),
	}
	opts.Log.Info("measurement complete",
		"serial_ms", serialMs, "parallel_ms", parallelMs, "max_deviation", dev)
	return results, nil
}

func newResult(cfg model.Config, threads int, impl string, millis float64, correct bool, dev float64) Result {
	return Result{
		SeqLen:       cfg.SeqLen,
		EmbedDim:     cfg.EmbedDim,
		NumHeads:     cfg.NumHeads,
		FFDim:        cfg.FFDim,
		NumLayers:    cfg.NumLayers,
		Threads:      threads,
		Impl:         impl,
		Millis:       millis,
		Correct:      correct,
		MaxDeviation: dev,
	}
}

// timeForward averages wall time over runs and returns the last output.
func timeForward(enc *model.Encoder, x *tensor.Mat, par bool, warmup, runs int) (tensor.Mat, float64, error) {
	for range warmup {
		if _, err := enc.Forward(x, par); err != nil {
			return tensor.Mat{}, 0, err
		}
	}

	var out tensor.Mat
	var total time.Duration
	for range runs {
		start := time.Now()
		y, err := enc.Forward(x, par)
		if err != nil {
			return tensor.Mat{}, 0, err
		}
		total += time.Since(start)
		out = y
	}
	return out, total.Seconds() * 1000 / float64(runs), nil
}
