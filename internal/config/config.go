package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from codegraph.yml.
type ProjectConfig struct {
	Languages      []string `yaml:"languages,omitempty"`
	ExcludeDirs    []string `yaml:"excludeDirs,omitempty"`
	HonorGitignore bool     `yaml:"honorGitignore,omitempty"`
	MaxDepth       int      `yaml:"maxDepth,omitempty"`
	MaxNodes       int      `yaml:"maxNodes,omitempty"`
	Concurrency    int      `yaml:"concurrency,omitempty"`
	ExtraBuiltins  []string `yaml:"extraBuiltins,omitempty"`
	GraphDBPath    string   `yaml:"graphDBPath,omitempty"`
	Verbose        bool     `yaml:"verbose,omitempty"`
}

// Load attempts to read codegraph.yml or codegraph.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"codegraph.yml", "codegraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
