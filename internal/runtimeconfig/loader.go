package runtimeconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// settingsFile is the on-disk shape of a settings file: currently just the
// "runtime" section spec.md §6 names, left open for future top-level keys.
type settingsFile struct {
	Runtime RuntimeSettings `yaml:"runtime"`
}

// LoadSettingsFile reads a YAML settings file and merges its "runtime"
// section into cfg. A missing file is not an error — an absent settings
// file simply means this tier of the precedence chain falls through to the
// next one.
func LoadSettingsFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrConfigFileNotFound, err)
	}

	var parsed settingsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParseFailed, err)
	}

	cfg.Runtime = parsed.Runtime
	return nil
}
