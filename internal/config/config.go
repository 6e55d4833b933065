// Package config loads the core's optional `.neutronrc.toml`: module
// search paths, the initial GC threshold, and a NEUTRON_HOME override
// that the CLI exports into the process environment (module search does
// not consult it).
//
// Grounded on stackedboxes-romualdo/pkg/test/testing.go's config-struct +
// toml.Unmarshal pattern, narrowed from that package's test-suite manifest
// to the core's own runtime settings.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config mirrors a .neutronrc.toml file.
type Config struct {
	// ModuleSearchPaths lists extra directories use()/using() search for
	// source and native modules, appended after the VM's own built-in
	// defaults (".", "lib", "libs", "box", ".box/modules").
	ModuleSearchPaths []string `toml:"module_search_paths"`

	// GCThreshold overrides the VM's initial collection threshold (object
	// count). Zero means "use the VM's built-in default".
	GCThreshold int `toml:"gc_threshold"`

	// Home overrides NEUTRON_HOME: when set, the CLI exports it into the
	// process environment. Module search paths do not include it.
	Home string `toml:"home"`
}

// DefaultFileName is the file Load looks for when no explicit path is given.
const DefaultFileName = ".neutronrc.toml"

// Load reads and parses path. A missing file is not an error — it returns
// a zero-value Config, since .neutronrc.toml is entirely optional.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault loads DefaultFileName from the current directory.
func LoadDefault() (*Config, error) {
	return Load(DefaultFileName)
}

// Env returns NEUTRON_HOME, preferring the config file's Home field over
// the process environment variable of the same name.
func (c *Config) Env() string {
	if c != nil && c.Home != "" {
		return c.Home
	}
	return os.Getenv("NEUTRON_HOME")
}
