package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the optional on-disk shape of config.yaml (spec.md
// §4.H): every field is optional, and anything left unset falls back to
// Default(). TimeoutSeconds is plain seconds rather than a duration string
// so the file stays as close as possible to the original's plain integer.
type fileConfig struct {
	Locale                  string `yaml:"locale"`
	TimeoutSeconds          int    `yaml:"timeout_seconds"`
	DefaultWorkingDirectory string `yaml:"default_working_directory"`
}

// Load reads an optional YAML config file at path, layering it over
// Default(). A missing file is not an error — it simply means "use the
// defaults" (there was never a mandatory config file in the original CFTI
// daemon; this is new ambient behavior this port adds, since every pack
// repo that ships a config struct also ships an optional file to source it
// from).
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, &LoadError{Path: path, Err: err}
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, &LoadError{Path: path, Err: err}
	}

	if fc.Locale != "" {
		cfg.Locale = fc.Locale
	}
	if fc.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	if fc.DefaultWorkingDirectory != "" {
		cfg.DefaultWorkingDirectory = fc.DefaultWorkingDirectory
	}

	return cfg, nil
}
