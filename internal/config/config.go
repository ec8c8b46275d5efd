// Package config loads the optional sctk configuration file and builds
// the logger shared by all commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Config is the content of config.toml. Command line flags override it.
type Config struct {
	LogLevel        string   `toml:"log_level"`
	CacheDir        string   `toml:"cache_dir"`
	ContentsURLs    []string `toml:"contents_urls"`
	DownloadTimeout Duration `toml:"download_timeout"`
	LicenseData     string   `toml:"license_data"`
	WebPort         int      `toml:"web_port"`
}

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:        "info",
		DownloadTimeout: Duration(5 * time.Minute),
		WebPort:         8080,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/sctk/config.toml or its platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sctk", "config.toml"), nil
}

// Load decodes a configuration on top of Default.
func Load(r io.Reader) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return c, nil
}

// LoadFile loads a configuration file. A missing file yields Default
// unless required is set.
func LoadFile(path string, required bool) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// NewLogger returns a stderr text logger at level. An empty level means info.
func NewLogger(level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if level == "" {
		log.SetLevel(logrus.InfoLevel)
		return log, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("unable to parse logging level: %s", level)
	}
	log.SetLevel(lvl)
	return log, nil
}
