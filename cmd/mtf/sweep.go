package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/8arry/micro-transformer/internal/bench"
)

func sweepCmd() *cli.Command {
	var (
		warmupRuns int64
		benchRuns  int64
		threadList string
		seqLenList string
		output     string
		format     string
	)

	flags := append([]cli.Flag{}, modelFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of warmup runs per point",
			Value:       1,
			Destination: &warmupRuns,
		},
		&cli.Int64Flag{
			Name:        "runs",
			Aliases:     []string{"n"},
			Usage:       "number of timed runs per point",
			Value:       3,
			Destination: &benchRuns,
		},
		&cli.StringFlag{
			Name:        "threads",
			Usage:       "comma-separated thread counts (default: powers of two up to CPU count)",
			Destination: &threadList,
		},
		&cli.StringFlag{
			Name:        "seq-lens",
			Usage:       "comma-separated sequence lengths (default: --seq-len)",
			Destination: &seqLenList,
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
			Value:       "csv",
			Destination: &format,
		},
	)

	return &cli.Command{
		Name:  "sweep",
		Usage: "Run a scalability study over thread counts and sequence lengths",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger()
			applyModelConfig(cmd, LoadConfig())
			cfg := modelConfig()

			threadCounts, err := parseIntList(threadList)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: --threads: %v", err), 1)
			}
			seqLens, err := parseIntList(seqLenList)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: --seq-lens: %v", err), 1)
			}

			results, err := bench.Sweep(cfg, bench.SweepOptions{
				Options: bench.Options{
					Warmup: int(warmupRuns),
					Runs:   int(benchRuns),
					Log:    log,
				},
				ThreadCounts: threadCounts,
				SeqLens:      seqLens,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: sweep: %v", err), 1)
			}

			return emitResults(results, output, format)
		},
	}
}

func parseIntList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", part)
		}
		if n <= 0 {
			return nil, fmt.Errorf("value %d must be positive", n)
		}
		out = append(out, n)
	}
	return out, nil
}
