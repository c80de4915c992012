// Package config provides the file-based configuration layer for icoforge.
//
// Configuration is read from a TOML file and overridden by CLI flags, so
// precedence is flag > file > built-in default. The file is searched in:
//
//  1. the path given via --config
//  2. icoforge.toml in the working directory
//  3. $XDG_CONFIG_HOME/icoforge/icoforge.toml (or ~/.config/icoforge/)
//
// A missing file is not an error; defaults apply.
//
// # Example
//
//	src = "assets/png"
//	dst = "assets/icons"
//	size = 512
//	overwrite = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[serve]
//	addr = "localhost:8473"
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/icoforge/icoforge/pkg/errors"
	"github.com/icoforge/icoforge/pkg/icon"
)

// FileName is the config file basename searched for in the working
// directory and the XDG config directory.
const FileName = "icoforge.toml"

// Cache backend names accepted in [cache] backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config holds all settings for a conversion run.
type Config struct {
	Src       string `toml:"src"`       // source directory with PNGs
	Dst       string `toml:"dst"`       // destination directory for icons
	Size      int    `toml:"size"`      // output dimension (square)
	Overwrite bool   `toml:"overwrite"` // replace existing outputs
	Quiet     bool   `toml:"quiet"`     // suppress informational output

	Cache CacheConfig `toml:"cache"`
	Serve ServeConfig `toml:"serve"`
}

// CacheConfig selects and configures the conversion cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"`    // file (default), redis, none
	RedisAddr string `toml:"redis_addr"` // host:port, redis backend only
	RedisDB   int    `toml:"redis_db"`   // logical database, redis backend only
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `toml:"addr"` // listen address
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Src:  "img",
		Dst:  "icons",
		Size: icon.DefaultSize,
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
		Serve: ServeConfig{
			Addr: "localhost:8473",
		},
	}
}

// Load reads the config file at path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDefault searches the standard locations and loads the first config
// file found. It returns the defaults (and an empty path) when no file
// exists.
func LoadDefault() (Config, string, error) {
	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		return cfg, path, err
	}
	return Default(), "", nil
}

// Validate checks the configuration for errors that should fail startup.
func (c Config) Validate() error {
	if c.Src == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "src directory cannot be empty")
	}
	if c.Dst == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "dst directory cannot be empty")
	}
	if err := errors.ValidateSize(c.Size); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid cache backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr required for redis backend")
	}
	if err := errors.ValidateAddr(c.Serve.Addr); err != nil {
		return err
	}
	return nil
}

// searchPaths returns config file candidates in precedence order.
func searchPaths() []string {
	paths := []string{FileName}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		paths = append(paths, filepath.Join(configHome, "icoforge", FileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "icoforge", FileName))
	}
	return paths
}
