package bridge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults are invocation defaults loaded from a YAML file via -config.
// Explicit flags always win over file values; merging happens in main, which
// knows which flags the user actually set.
type Defaults struct {
	Address       string   `yaml:"address"`
	DocumentRoot  string   `yaml:"document_root"`
	ScriptName    string   `yaml:"script_name"`
	RequestMethod string   `yaml:"request_method"`
	OutputDir     string   `yaml:"output_dir"`
	PassEnv       []string `yaml:"pass_env"`
}

// LoadDefaults reads and parses a defaults file.
func LoadDefaults(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("read config file: %w", err)
	}

	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("parse config file: %w", err)
	}
	return d, nil
}
