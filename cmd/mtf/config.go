package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the mtf configuration file (~/.config/mtf/config.yaml).
// All numeric fields are pointers so "not set" is distinguishable from zero.
type FileConfig struct {
	SeqLen    *int64   `yaml:"seq_length"`
	EmbedDim  *int64   `yaml:"embed_dim"`
	NumHeads  *int64   `yaml:"num_heads"`
	FFDim     *int64   `yaml:"ff_dim"`
	NumLayers *int64   `yaml:"num_layers"`
	Epsilon   *float64 `yaml:"epsilon"`
	Workers   *int64   `yaml:"workers"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mtf", "config.yaml")
}

// applyModelConfig applies config file defaults to the model and worker flag
// variables when the corresponding CLI flag was not explicitly set.
func applyModelConfig(c *cli.Command, cfg FileConfig) {
	if cfg.SeqLen != nil && !c.IsSet("seq-len") {
		seqLen = *cfg.SeqLen
	}
	if cfg.EmbedDim != nil && !c.IsSet("embed-dim") {
		embedDim = *cfg.EmbedDim
	}
	if cfg.NumHeads != nil && !c.IsSet("heads") {
		numHeads = *cfg.NumHeads
	}
	if cfg.FFDim != nil && !c.IsSet("ff-dim") {
		ffDim = *cfg.FFDim
	}
	if cfg.NumLayers != nil && !c.IsSet("layers") {
		numLayers = *cfg.NumLayers
	}
	if cfg.Epsilon != nil && !c.IsSet("epsilon") {
		epsilon = *cfg.Epsilon
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg FileConfig, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// LoadConfig reads the config file. Returns a zero FileConfig if the file
// doesn't exist or doesn't parse.
func LoadConfig() FileConfig {
	path := configPath()
	if path == "" {
		return FileConfig{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}
	}
	return cfg
}
