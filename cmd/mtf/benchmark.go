package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/8arry/micro-transformer/internal/bench"
	"github.com/8arry/micro-transformer/internal/parallel"
)

func benchmarkCmd() *cli.Command {
	var (
		warmupRuns int64
		benchRuns  int64
		output     string
		format     string
	)

	flags := append(modelFlags(), workerFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of warmup runs",
			Value:       1,
			Destination: &warmupRuns,
		},
		&cli.Int64Flag{
			Name:        "runs",
			Aliases:     []string{"n"},
			Usage:       "number of timed runs",
			Value:       3,
			Destination: &benchRuns,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "write results to file instead of stdout",
			Destination: &output,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "output format (table, csv, json)",
			Value:       "table",
			Destination: &format,
		},
	)

	return &cli.Command{
		Name:  "benchmark",
		Usage: "Time the serial and parallel paths for one configuration",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger()
			applyModelConfig(cmd, LoadConfig())
			cfg := modelConfig()

			fmt.Println("=== mtf Benchmark ===")
			fmt.Printf("Config:   seq=%d dim=%d heads=%d ff=%d layers=%d\n",
				cfg.SeqLen, cfg.EmbedDim, cfg.NumHeads, cfg.FFDim, cfg.NumLayers)
			fmt.Printf("CPUs:       %d\n", runtime.NumCPU())
			fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
			fmt.Printf("Warmup:   %d runs\n", warmupRuns)
			fmt.Printf("Runs:     %d\n", benchRuns)
			fmt.Println()

			threads := int(workers)
			if threads <= 0 {
				threads = parallel.Workers()
			}
			results, err := bench.Measure(cfg, bench.Options{
				Warmup:  int(warmupRuns),
				Runs:    int(benchRuns),
				Threads: threads,
				Log:     log,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: benchmark: %v", err), 1)
			}

			return emitResults(results, output, format)
		},
	}
}

// emitResults writes results in the requested format, to a file when output
// is set and to stdout otherwise.
func emitResults(results []bench.Result, output, format string) error {
	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return cli.Exit(fmt.Sprintf("error: create %s: %v", output, err), 1)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	switch format {
	case "csv":
		if err := bench.WriteCSV(w, results); err != nil {
			return cli.Exit(fmt.Sprintf("error: write csv: %v", err), 1)
		}
	case "json":
		if err := bench.WriteJSON(w, bench.NewReport(results)); err != nil {
			return cli.Exit(fmt.Sprintf("error: write json: %v", err), 1)
		}
	case "table":
		printResultTable(w, results)
	default:
		return cli.Exit(fmt.Sprintf("error: unknown format %q", format), 1)
	}
	return nil
}

func printResultTable(w *os.File, results []bench.Result) {
	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "%-8s %-10s %8s %10s %10s %12s\n",
		"SeqLen", "Impl", "Threads", "Time(ms)", "Correct", "MaxDev")
	var serialMs float64
	for _, r := range results {
		if r.Impl == bench.ImplSerial {
			serialMs = r.Millis
		}
		fmt.Fprintf(w, "%-8d %-10s %8d %10.3f %10t %12.3e\n",
			r.SeqLen, r.Impl, r.Threads, r.Millis, r.Correct, r.MaxDeviation)
	}
	if serialMs > 0 {
		for _, r := range results {
			if r.Impl == bench.ImplParallel && r.Millis > 0 {
				fmt.Fprintf(w, "\nSpeedup at %d threads: %.2fx\n", r.Threads, serialMs/r.Millis)
			}
		}
	}
}
