// Package api exposes the encoder and benchmark harness over HTTP.
package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/8arry/micro-transformer/internal/bench"
	"github.com/8arry/micro-transformer/internal/logger"
	"github.com/8arry/micro-transformer/internal/model"
	"github.com/8arry/micro-transformer/internal/parallel"
	"github.com/8arry/micro-transformer/internal/tensor"
	"github.com/8arry/micro-transformer/internal/version"
)

type Server struct {
	log logger.Logger

	// mu serializes runs that change the shared worker count.
	mu sync.Mutex
}

func NewServer(log logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/forward", s.handleForward)
	e.POST("/v1/benchmark", s.handleBenchmark)
	e.GET("/v1/healthz", s.handleHealthz)
	e.GET("/v1/version", s.handleVersion)
}

func (s *Server) handleForward(c *echo.Context) error {
	req, err := decodeJSON[ForwardRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	cfg := resolveConfig(req.Config)
	var input tensor.Mat
	if len(req.Input) > 0 {
		m, ok := rowsToMat(req.Input)
		if !ok {
			return writeBadRequest(c, "input rows must be non-empty and of equal length")
		}
		if m.C != cfg.EmbedDim {
			return writeError(c, http.StatusBadRequest, "invalid_request_error",
				"input column count does not match embed_dim", "input")
		}
		cfg.SeqLen = m.R
		input = m
	}

	enc, err := model.NewEncoder(cfg)
	if err != nil {
		return writeModelError(c, err)
	}
	if input.Data == nil {
		input = model.RandomInput(cfg.SeqLen, cfg.EmbedDim, -1, 1)
	}

	s.mu.Lock()
	if req.Parallel && req.Workers > 0 {
		parallel.SetWorkers(req.Workers)
	}
	workers := parallel.Workers()
	start := time.Now()
	out, err := enc.Forward(&input, req.Parallel)
	millis := time.Since(start).Seconds() * 1000

	resp := ForwardResponse{
		ID:       "fwd_" + uuid.NewString(),
		Parallel: req.Parallel,
		Workers:  workers,
		Millis:   millis,
	}
	if err == nil && req.Parallel {
		// Parallel runs are verified against a serial pass with the same
		// weights and input.
		var ref tensor.Mat
		ref, err = enc.Forward(&input, false)
		if err == nil {
			dev := tensor.MaxDeviation(&out, &ref)
			eq := dev <= bench.EquivTolerance
			resp.MaxDeviation = &dev
			resp.Equivalent = &eq
		}
	}
	s.mu.Unlock()
	if err != nil {
		return writeModelError(c, err)
	}

	resp.Rows = out.R
	resp.Cols = out.C
	resp.Stats = tensor.Summarize(&out)
	resp.Output = matToRows(&out)

	s.log.Info("forward pass served",
		"rows", out.R, "cols", out.C, "parallel", req.Parallel, "ms", millis)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleBenchmark(c *echo.Context) error {
	req, err := decodeJSON[BenchmarkRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	cfg := resolveConfig(req.Config)
	opts := bench.Options{
		Warmup:  req.Warmup,
		Runs:    req.Runs,
		Threads: req.Threads,
		Log:     s.log,
	}

	s.mu.Lock()
	var results []bench.Result
	if len(req.ThreadCounts) > 0 || len(req.SeqLens) > 0 {
		results, err = bench.Sweep(cfg, bench.SweepOptions{
			Options:      opts,
			ThreadCounts: req.ThreadCounts,
			SeqLens:      req.SeqLens,
		})
	} else {
		results, err = bench.Measure(cfg, opts)
	}
	s.mu.Unlock()
	if err != nil {
		return writeModelError(c, err)
	}

	return c.JSON(http.StatusOK, bench.NewReport(results))
}

func (s *Server) handleHealthz(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(c *echo.Context) error {
	return c.JSON(http.StatusOK, version.Resolve())
}

// resolveConfig fills a request config with defaults for omitted fields.
func resolveConfig(req *model.Config) model.Config {
	cfg := model.DefaultConfig()
	if req == nil {
		return cfg
	}
	if req.SeqLen > 0 {
		cfg.SeqLen = req.SeqLen
	}
	if req.EmbedDim > 0 {
		cfg.EmbedDim = req.EmbedDim
	}
	if req.NumHeads > 0 {
		cfg.NumHeads = req.NumHeads
	}
	if req.FFDim > 0 {
		cfg.FFDim = req.FFDim
	}
	if req.NumLayers > 0 {
		cfg.NumLayers = req.NumLayers
	}
	if req.Epsilon > 0 {
		cfg.Epsilon = req.Epsilon
	}
	return cfg
}

func writeModelError(c *echo.Context, err error) error {
	var cfgErr *model.ConfigError
	if errors.As(err, &cfgErr) {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", cfgErr.Error(), cfgErr.Field)
	}
	var shapeErr *model.ShapeError
	if errors.As(err, &shapeErr) {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", shapeErr.Error(), "input")
	}
	return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
}
