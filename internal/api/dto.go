package api

import (
	"github.com/8arry/micro-transformer/internal/model"
	"github.com/8arry/micro-transformer/internal/tensor"
)

// ForwardRequest configures one encoder forward pass. Input is optional; when
// omitted the server generates a random input of the configured shape.
type ForwardRequest struct {
	Config   *model.Config `json:"config,omitempty"`
	Input    [][]float32   `json:"input,omitempty"`
	Parallel bool          `json:"parallel"`
	Workers  int           `json:"workers,omitempty"`
}

type ForwardResponse struct {
	ID       string       `json:"id"`
	Rows     int          `json:"rows"`
	Cols     int          `json:"cols"`
	Parallel bool         `json:"parallel"`
	Workers  int          `json:"workers"`
	Millis   float64      `json:"execution_time_ms"`
	Stats    tensor.Stats `json:"stats"`
	Output   [][]float32  `json:"output,omitempty"`

	// Set on parallel runs, which are checked against a serial pass over
	// the same weights and input.
	MaxDeviation *float64 `json:"max_deviation,omitempty"`
	Equivalent   *bool    `json:"equivalent,omitempty"`
}

type BenchmarkRequest struct {
	Config       *model.Config `json:"config,omitempty"`
	Warmup       int           `json:"warmup,omitempty"`
	Runs         int           `json:"runs,omitempty"`
	Threads      int           `json:"threads,omitempty"`
	ThreadCounts []int         `json:"thread_counts,omitempty"`
	SeqLens      []int         `json:"seq_lens,omitempty"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}
