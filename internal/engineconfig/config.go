// Package engineconfig is the quadreactor engine's layered configuration:
// YAML file defaults merged with command-line flags (via spf13/viper in
// cmd/quadreactor), producing a single Config struct.
//
// Grounded on config/config.go (teacher): a flat Config struct plus a
// ParseConfigFromFile/ParseConfigFromFlagsAndFile pair that fills in
// flag defaults for anything the file left zero. Rewired here onto
// gopkg.in/yaml.v3 for the file format (SPEC_FULL.md §1.2), since the
// teacher's hand-rolled JSON duration shim has no analogue worth keeping
// once a real YAML library is in the dependency surface.
package engineconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the engine's ambient stack reads at startup.
type Config struct {
	ListenHost string `yaml:"listen_host"`
	ListenPort string `yaml:"listen_port"`

	// LogLevel is a clog verbosity level (the scale clog.SetV takes).
	// cmd/quadreactor sets clog's verbosity from its --log-level flag, not
	// from this field.
	LogLevel int `yaml:"log_level"`

	// InitialLoadPath, if set and no --load flag is given, is the dump file
	// cmd/quadreactor's buildStore replays through engine.Store.Append at
	// startup (the format of SPEC_FULL.md §4's Dump/Load pair).
	InitialLoadPath string `yaml:"initial_load_path"`

	// CallbackTimeout is informational only: nothing in the engine or the
	// CLI reads it, and no deadline or warning is applied to callbacks.
	CallbackTimeout time.Duration `yaml:"callback_timeout"`
}

// Default returns the engine's built-in defaults, used whenever a setting
// is absent from both the config file and the command line.
func Default() Config {
	return Config{
		ListenHost:      "127.0.0.1",
		ListenPort:      "8421",
		LogLevel:        0,
		CallbackTimeout: 30 * time.Second,
	}
}

// Load reads a YAML config file, overlaying Default for any zero field
// left unset by the file. An empty path returns Default unchanged,
// matching the teacher's ParseConfigFromFile("") early return.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("engineconfig: open %s: %w", path, err)
	}
	defer f.Close()

	var fromFile Config
	if err := yaml.NewDecoder(f).Decode(&fromFile); err != nil {
		return Config{}, fmt.Errorf("engineconfig: decode %s: %w", path, err)
	}
	mergeNonZero(&cfg, fromFile)
	return cfg, nil
}

func mergeNonZero(dst *Config, src Config) {
	if src.ListenHost != "" {
		dst.ListenHost = src.ListenHost
	}
	if src.ListenPort != "" {
		dst.ListenPort = src.ListenPort
	}
	if src.LogLevel != 0 {
		dst.LogLevel = src.LogLevel
	}
	if src.InitialLoadPath != "" {
		dst.InitialLoadPath = src.InitialLoadPath
	}
	if src.CallbackTimeout != 0 {
		dst.CallbackTimeout = src.CallbackTimeout
	}
}
