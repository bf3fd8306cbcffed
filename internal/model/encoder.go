package model

import "github.com/8arry/micro-transformer/internal/tensor"

// EncoderLayer is one post-norm encoder repetition: attention, residual add,
// norm, feed-forward, residual add, norm. Each layer exclusively owns its
// sublayers.
type EncoderLayer struct {
	Attention *Attention
	FFN       *FFN
	Norm1     *LayerNorm
	Norm2     *LayerNorm
}

func newEncoderLayer(cfg Config) *EncoderLayer {
	return &EncoderLayer{
		Attention: newAttention(cfg),
		FFN:       newFFN(cfg),
		Norm1:     newLayerNorm(cfg),
		Norm2:     newLayerNorm(cfg),
	}
}

// Forward applies the post-norm composition
// LN2(LN1(x + Attn(x)) + FFN(LN1(x + Attn(x)))).
func (e *EncoderLayer) Forward(x *tensor.Mat, par bool) tensor.Mat {
	attnOut := e.Attention.Forward(x, par)
	residual1 := tensor.Add(x, &attnOut, par)
	normed1 := e.Norm1.Forward(&residual1, par)

	ffnOut := e.FFN.Forward(&normed1, par)
	residual2 := tensor.Add(&normed1, &ffnOut, par)
	return e.Norm2.Forward(&residual2, par)
}

// Encoder stacks NumLayers identical encoder layers. Layers run strictly in
// sequence; all parallelism lives inside each layer.
type Encoder struct {
	cfg    Config
	Layers []*EncoderLayer
}

// NewEncoder validates cfg and constructs all weights and sublayers. An
// invalid configuration returns a *ConfigError and no encoder.
func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	layers := make([]*EncoderLayer, cfg.NumLayers)
	for i := range layers {
		layers[i] = newEncoderLayer(cfg)
	}
	return &Encoder{cfg: cfg, Layers: layers}, nil
}

// Config returns the hyperparameters the encoder was built with.
func (e *Encoder) Config() Config { return e.cfg }

// Forward propagates x through every layer and returns the final output,
// shape (seq_length, embed_dim). Inputs of any other shape return a
// *ShapeError. The parallel flag selects the worker-pool path; both paths
// compute the same function up to float addition order.
func (e *Encoder) Forward(x *tensor.Mat, parallel bool) (tensor.Mat, error) {
	if x.R != e.cfg.SeqLen || x.C != e.cfg.EmbedDim {
		return tensor.Mat{}, &ShapeError{
			Op:    "encoder forward",
			WantR: e.cfg.SeqLen, WantC: e.cfg.EmbedDim,
			GotR: x.R, GotC: x.C,
		}
	}
	current := *x
	for _, layer := range e.Layers {
		current = layer.Forward(&current, parallel)
	}
	return current, nil
}
