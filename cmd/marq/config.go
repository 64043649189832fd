package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// projectConfig is the small YAML document the driver accepts as an
// alternative to a bare file path: a project root, an entry file relative
// to it, and an optional override for the evaluator's recursion limit.
type projectConfig struct {
	Root           string `yaml:"root"`
	Entry          string `yaml:"entry"`
	RecursionLimit int    `yaml:"recursion_limit,omitempty"`
}

func loadProjectConfig(path string) (*projectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg projectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Entry == "" {
		return nil, fmt.Errorf("%s: missing required \"entry\" field", path)
	}
	return &cfg, nil
}
