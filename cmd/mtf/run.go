package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/8arry/micro-transformer/internal/bench"
	"github.com/8arry/micro-transformer/internal/model"
	"github.com/8arry/micro-transformer/internal/parallel"
	"github.com/8arry/micro-transformer/internal/tensor"
)

func runCmd() *cli.Command {
	flags := append(modelFlags(), workerFlags()...)

	return &cli.Command{
		Name:  "run",
		Usage: "Run one encoder forward pass on both paths and compare",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger()
			applyModelConfig(cmd, LoadConfig())
			cfg := modelConfig()

			enc, err := model.NewEncoder(cfg)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: build encoder: %v", err), 1)
			}
			if workers > 0 {
				parallel.SetWorkers(int(workers))
			}
			input := model.RandomInput(cfg.SeqLen, cfg.EmbedDim, -1, 1)

			log.Info("serial forward pass", "seq_len", cfg.SeqLen, "embed_dim", cfg.EmbedDim)
			serialStart := time.Now()
			serialOut, err := enc.Forward(&input, false)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: serial forward: %v", err), 1)
			}
			serialDur := time.Since(serialStart)

			log.Info("parallel forward pass", "workers", parallel.Workers())
			parallelStart := time.Now()
			parallelOut, err := enc.Forward(&input, true)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: parallel forward: %v", err), 1)
			}
			parallelDur := time.Since(parallelStart)

			dev := tensor.MaxDeviation(&parallelOut, &serialOut)
			stats := tensor.Summarize(&parallelOut)

			fmt.Println("=== Encoder Forward Pass ===")
			fmt.Printf("Config:   seq=%d dim=%d heads=%d ff=%d layers=%d\n",
				cfg.SeqLen, cfg.EmbedDim, cfg.NumHeads, cfg.FFDim, cfg.NumLayers)
			fmt.Printf("Workers:  %d\n", parallel.Workers())
			fmt.Printf("Serial:   %s\n", serialDur.Round(time.Microsecond))
			speedup := float64(serialDur) / float64(parallelDur)
			fmt.Printf("Parallel: %s (%.2fx)\n", parallelDur.Round(time.Microsecond), speedup)
			fmt.Printf("Output:   %dx%d mean=%.6f min=%.6f max=%.6f\n",
				stats.Rows, stats.Cols, stats.Mean, stats.Min, stats.Max)
			fmt.Printf("Max deviation: %.3e (tolerance %.0e)\n", dev, bench.EquivTolerance)

			if dev > bench.EquivTolerance {
				return cli.Exit("error: parallel output deviates from serial reference", 1)
			}
			fmt.Println("Paths are numerically equivalent.")
			return nil
		},
	}
}
