// Package config loads the esm.toml configuration file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/livebud/esm/internal/formatter"
	"github.com/livebud/esm/internal/module"
	"github.com/pelletier/go-toml/v2"
)

// File is the default configuration file name
const File = "esm.toml"

// Config for a conversion
type Config struct {
	// Format is the output format
	Format string `toml:"format"`
	// Out is the output directory, or a .js file for a single output file
	Out string `toml:"out"`
	// Paths are searched for imports that aren't relative
	Paths   []string `toml:"paths"`
	Globals Globals  `toml:"globals"`
}

// Globals configures the globals format
type Globals struct {
	Root  string            `toml:"root"`
	Names map[string]string `toml:"names"`
}

// Default configuration
func Default() *Config {
	return &Config{
		Format: "commonjs",
		Out:    "dist",
	}
}

// Load the configuration at path. A missing file loads the defaults.
func Load(fsys fs.FS, path string) (*Config, error) {
	cfg := Default()
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: unable to read %q. %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, column := derr.Position()
			return nil, &module.Error{
				Kind:    module.Configuration,
				Path:    path,
				Line:    row,
				Column:  column,
				Message: derr.Error(),
				Err:     module.ErrConfig,
			}
		}
		return nil, module.Errorf(module.Configuration, module.ErrConfig, path, "unable to parse config. %s", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads a configuration file from disk
func LoadFile(path string) (*Config, error) {
	return Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// Validate checks that the configuration can be used
func (c *Config) Validate() error {
	if _, err := formatter.New(c.Format, c.Options()); err != nil {
		return err
	}
	if c.Out == "" {
		return module.Errorf(module.Configuration, module.ErrConfig, "", "config needs an output path")
	}
	return nil
}

// Options for the formatter
func (c *Config) Options() *formatter.Options {
	return &formatter.Options{
		Root:  c.Globals.Root,
		Names: c.Globals.Names,
	}
}

// Formatter for the configured format
func (c *Config) Formatter() (formatter.Interface, error) {
	return formatter.New(c.Format, c.Options())
}
