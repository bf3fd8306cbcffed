package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/8arry/micro-transformer/internal/logger"
	"github.com/8arry/micro-transformer/internal/model"
)

var (
	seqLen    int64
	embedDim  int64
	numHeads  int64
	ffDim     int64
	numLayers int64
	epsilon   float64
	workers   int64
	logLevel  string
	logFormat string
	debug     bool
)

func modelFlags() []cli.Flag {
	defaults := model.DefaultConfig()
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "seq-len",
			Aliases:     []string{"s"},
			Usage:       "input sequence length (rows)",
			Value:       int64(defaults.SeqLen),
			Destination: &seqLen,
		},
		&cli.Int64Flag{
			Name:        "embed-dim",
			Aliases:     []string{"d"},
			Usage:       "embedding dimension",
			Value:       int64(defaults.EmbedDim),
			Destination: &embedDim,
		},
		&cli.Int64Flag{
			Name:        "heads",
			Aliases:     []string{"H"},
			Usage:       "number of attention heads",
			Value:       int64(defaults.NumHeads),
			Destination: &numHeads,
		},
		&cli.Int64Flag{
			Name:        "ff-dim",
			Aliases:     []string{"f"},
			Usage:       "feed-forward hidden dimension",
			Value:       int64(defaults.FFDim),
			Destination: &ffDim,
		},
		&cli.Int64Flag{
			Name:        "layers",
			Aliases:     []string{"l"},
			Usage:       "number of encoder layers",
			Value:       int64(defaults.NumLayers),
			Destination: &numLayers,
		},
		&cli.Float64Flag{
			Name:        "epsilon",
			Usage:       "layer normalization epsilon",
			Value:       float64(defaults.Epsilon),
			Destination: &epsilon,
		},
	}
}

func workerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "workers",
			Aliases:     []string{"w"},
			Usage:       "parallel worker count (0 = number of CPUs)",
			Destination: &workers,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func modelConfig() model.Config {
	return model.Config{
		SeqLen:    int(seqLen),
		EmbedDim:  int(embedDim),
		NumHeads:  int(numHeads),
		FFDim:     int(ffDim),
		NumLayers: int(numLayers),
		Epsilon:   float32(epsilon),
	}
}

func newLogger() logger.Logger {
	level := slog.LevelInfo
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if debug {
		level = slog.LevelDebug
	}
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	default:
		return logger.Pretty(os.Stderr, level)
	}
}
