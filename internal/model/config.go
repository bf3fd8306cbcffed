// Package model implements the transformer encoder blocks: multi-head
// self-attention, the position-wise feed-forward network, layer
// normalization and the post-norm encoder stack. Every block offers a single
// forward algorithm; a parallel flag selects whether its loops are dispatched
// over the worker pool or run on the calling goroutine.
package model

import "github.com/8arry/micro-transformer/internal/tensor"

// Config bundles the encoder hyperparameters. It is captured by value into
// every block at construction and never changes afterwards.
type Config struct {
	SeqLen    int     `json:"seq_length" yaml:"seq_length"`
	EmbedDim  int     `json:"embed_dim" yaml:"embed_dim"`
	NumHeads  int     `json:"num_heads" yaml:"num_heads"`
	FFDim     int     `json:"ff_dim" yaml:"ff_dim"`
	NumLayers int     `json:"num_layers" yaml:"num_layers"`
	Epsilon   float32 `json:"epsilon" yaml:"epsilon"`
}

// DefaultConfig mirrors a small BERT-style encoder and is the CLI default.
func DefaultConfig() Config {
	return Config{
		SeqLen:    128,
		EmbedDim:  512,
		NumHeads:  8,
		FFDim:     2048,
		NumLayers: 6,
		Epsilon:   1e-6,
	}
}

// HeadDim returns the per-head feature width EmbedDim / NumHeads.
func (c Config) HeadDim() int { return c.EmbedDim / c.NumHeads }

// Validate checks the hyperparameter combination. It returns a *ConfigError
// describing the first violation found.
func (c Config) Validate() error {
	switch {
	case c.SeqLen <= 0:
		return &ConfigError{Field: "seq_length", Reason: "must be positive"}
	case c.EmbedDim <= 0:
		return &ConfigError{Field: "embed_dim", Reason: "must be positive"}
	case c.NumHeads <= 0:
		return &ConfigError{Field: "num_heads", Reason: "must be positive"}
	case c.FFDim <= 0:
		return &ConfigError{Field: "ff_dim", Reason: "must be positive"}
	case c.NumLayers <= 0:
		return &ConfigError{Field: "num_layers", Reason: "must be positive"}
	case c.Epsilon < 0:
		return &ConfigError{Field: "epsilon", Reason: "must not be negative"}
	case c.EmbedDim%c.NumHeads != 0:
		return &ConfigError{Field: "embed_dim", Reason: "must be divisible by num_heads"}
	}
	return nil
}

// RandomInput builds a rows×cols matrix of uniform samples in [lo, hi),
// suitable as encoder input.
func RandomInput(rows, cols int, lo, hi float32) tensor.Mat {
	m := tensor.NewMat(rows, cols)
	m.Randomize(lo, hi, true)
	return m
}
