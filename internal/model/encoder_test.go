package model

import (
	"errors"
	"math"
	"testing"

	"github.com/8arry/micro-transformer/internal/parallel"
	"github.com/8arry/micro-transformer/internal/tensor"
)

func TestEncoderTinyDegenerate(t *testing.T) {
	cfg := testConfig(4, 8, 2, 16, 1)
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	x := tensor.NewMatFilled(4, 8, 0.25)
	serial, err := enc.Forward(&x, false)
	if err != nil {
		t.Fatalf("serial forward: %v", err)
	}
	par, err := enc.Forward(&x, true)
	if err != nil {
		t.Fatalf("parallel forward: %v", err)
	}

	if serial.R != 4 || serial.C != 8 {
		t.Fatalf("output shape %dx%d, want 4x8", serial.R, serial.C)
	}
	if dev := tensor.MaxDeviation(&serial, &par); dev > 1e-5 {
		t.Fatalf("paths deviate by %g", dev)
	}
	// Post-norm output: every row is normalised, so its mean is ~0.
	for i := 0; i < serial.R; i++ {
		var mean float64
		for _, v := range serial.Row(i) {
			mean += float64(v)
		}
		mean /= float64(serial.C)
		if math.Abs(mean) > 1e-5 {
			t.Fatalf("row %d mean %g, want ~0", i, mean)
		}
	}
}

func TestEncoderShapeAndDeterminism(t *testing.T) {
	cfg := testConfig(16, 32, 4, 64, 2)
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	x := RandomInput(16, 32, -0.5, 0.5)
	first, err := enc.Forward(&x, false)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if first.R != 16 || first.C != 32 {
		t.Fatalf("output shape %dx%d, want 16x32", first.R, first.C)
	}

	// Weights are frozen, so re-running the serial path is bit-identical.
	second, err := enc.Forward(&x, false)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	compareMats(t, &second, &first, 0)
}

func TestEncoderShapeMismatch(t *testing.T) {
	t.Parallel()
	cfg := testConfig(32, 64, 4, 128, 1)
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	for _, dims := range [][2]int{{31, 64}, {32, 63}} {
		x := tensor.NewMat(dims[0], dims[1])
		_, err := enc.Forward(&x, true)
		var shapeErr *ShapeError
		if !errors.As(err, &shapeErr) {
			t.Fatalf("input %dx%d: expected ShapeError, got %v", dims[0], dims[1], err)
		}
	}
}

func TestEncoderInvalidDivisibility(t *testing.T) {
	t.Parallel()
	cfg := testConfig(32, 10, 3, 40, 1)
	enc, err := NewEncoder(cfg)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if enc != nil {
		t.Fatal("no encoder must be returned on config error")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	valid := testConfig(16, 64, 4, 128, 2)
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero seq", func(c *Config) { c.SeqLen = 0 }},
		{"zero dim", func(c *Config) { c.EmbedDim = 0 }},
		{"zero heads", func(c *Config) { c.NumHeads = 0 }},
		{"zero ff", func(c *Config) { c.FFDim = 0 }},
		{"zero layers", func(c *Config) { c.NumLayers = 0 }},
		{"negative epsilon", func(c *Config) { c.Epsilon = -1 }},
		{"indivisible", func(c *Config) { c.EmbedDim = 10; c.NumHeads = 3 }},
	}
	for _, tc := range cases {
		cfg := valid
		tc.mutate(&cfg)
		var cfgErr *ConfigError
		if err := cfg.Validate(); !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected ConfigError, got %v", tc.name, err)
		}
	}
}

func TestEncoderDualPathEquivalenceGrid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping equivalence grid in short mode")
	}
	cases := []Config{
		testConfig(16, 64, 2, 128, 1),
		testConfig(64, 64, 4, 128, 2),
		testConfig(64, 128, 8, 256, 2),
		testConfig(128, 128, 4, 256, 1),
	}
	for _, cfg := range cases {
		enc, err := NewEncoder(cfg)
		if err != nil {
			t.Fatalf("NewEncoder(%+v): %v", cfg, err)
		}
		x := RandomInput(cfg.SeqLen, cfg.EmbedDim, -1, 1)

		serial, err := enc.Forward(&x, false)
		if err != nil {
			t.Fatalf("serial: %v", err)
		}
		par, err := enc.Forward(&x, true)
		if err != nil {
			t.Fatalf("parallel: %v", err)
		}
		if dev := tensor.MaxDeviation(&serial, &par); dev > 1e-4 {
			t.Fatalf("S=%d D=%d H=%d L=%d: paths deviate by %g",
				cfg.SeqLen, cfg.EmbedDim, cfg.NumHeads, cfg.NumLayers, dev)
		}
	}
}

func TestEncoderParallelEquivalenceAtScale(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large equivalence run in short mode")
	}
	old := parallel.Workers()
	defer parallel.SetWorkers(old)
	parallel.SetWorkers(4)

	cfg := testConfig(128, 256, 8, 1024, 3)
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	x := RandomInput(128, 256, -1, 1)

	serial, err := enc.Forward(&x, false)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	par, err := enc.Forward(&x, true)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if dev := tensor.MaxDeviation(&serial, &par); dev > 1e-4 {
		t.Fatalf("paths deviate by %g", dev)
	}
}

func TestSerialOutputIndependentOfWorkerCount(t *testing.T) {
	old := parallel.Workers()
	defer parallel.SetWorkers(old)

	cfg := testConfig(16, 32, 4, 64, 1)
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	x := RandomInput(16, 32, -1, 1)

	parallel.SetWorkers(1)
	base, err := enc.Forward(&x, false)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}

	for _, workers := range []int{2, 4, 8} {
		parallel.SetWorkers(workers)
		out, err := enc.Forward(&x, false)
		if err != nil {
			t.Fatalf("forward with %d workers: %v", workers, err)
		}
		compareMats(t, &out, &base, 0)
	}
}

// With the attention output projection and the second FFN transform zeroed,
// both sublayers contribute nothing and the layer reduces to two successive
// layer normalizations.
func TestEncoderLayerResidualIdentity(t *testing.T) {
	t.Parallel()
	cfg := testConfig(8, 16, 2, 32, 1)
	layer := newEncoderLayer(cfg)
	layer.Attention.WO.Zero(false)
	layer.FFN.W2.Zero(false)
	layer.FFN.B2.Zero(false)

	x := RandomInput(8, 16, -1, 1)
	got := layer.Forward(&x, false)

	ln := newLayerNorm(cfg)
	once := ln.Forward(&x, false)
	want := ln.Forward(&once, false)
	compareMats(t, &got, &want, 1e-6)
}

// With epsilon = 0 the double normalization degenerates to plain
// row-normalization of the input.
func TestEncoderLayerRowNormalizationDegenerate(t *testing.T) {
	t.Parallel()
	cfg := testConfig(8, 16, 2, 32, 1)
	cfg.Epsilon = 0
	layer := newEncoderLayer(cfg)
	layer.Attention.WO.Zero(false)
	layer.FFN.W2.Zero(false)
	layer.FFN.B2.Zero(false)

	x := RandomInput(8, 16, -1, 1)
	got := layer.Forward(&x, false)

	want := newLayerNorm(cfg).Forward(&x, false)
	compareMats(t, &got, &want, 1e-5)
}

func BenchmarkEncoderForward(b *testing.B) {
	cfg := testConfig(64, 128, 8, 512, 2)
	enc, err := NewEncoder(cfg)
	if err != nil {
		b.Fatalf("NewEncoder: %v", err)
	}
	x := RandomInput(64, 128, -1, 1)

	b.Run("serial", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := enc.Forward(&x, false); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := enc.Forward(&x, true); err != nil {
				b.Fatal(err)
			}
		}
	})
}
