// Package config provides YAML-based configuration for replicat, layered
// under CLI flags: file settings and REPLICAT_* environment variables fill
// in whatever the command line leaves unset.
package config

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/replicat/pkg/safeconv"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidSize is returned when a size string does not parse.
	ErrInvalidSize = errors.New("invalid size format")

	// ErrZeroSize is returned when a size setting resolves to zero bytes.
	ErrZeroSize = errors.New("size must be positive")
)

// Config is the top-level configuration struct for replicat.
// Field tags use mapstructure for viper unmarshalling.
// All size fields use humanize format (e.g. "4MiB", "256MB").
type Config struct {
	ChunkCapacity  string `mapstructure:"chunk_capacity"`
	CacheThreshold string `mapstructure:"cache_threshold"`
	MaxMemUsage    string `mapstructure:"max_mem_usage"`
	Pipeline       string `mapstructure:"pipeline"`
	Progress       bool   `mapstructure:"progress"`
	NoColor        bool   `mapstructure:"no_color"`
}

// Validate checks every setting without resolving it, so a broken config
// file fails at load time rather than mid-run.
func (c *Config) Validate() error {
	if _, err := parseSize("chunk_capacity", c.ChunkCapacity, true); err != nil {
		return err
	}

	if _, err := parseSize("cache_threshold", c.CacheThreshold, true); err != nil {
		return err
	}

	if _, err := parseSize("max_mem_usage", c.MaxMemUsage, false); err != nil {
		return err
	}

	if _, err := ParsePipelineMode(c.Pipeline); err != nil {
		return err
	}

	return nil
}

// ChunkCapacityBytes resolves the chunk capacity setting.
func (c *Config) ChunkCapacityBytes() (int64, error) {
	return parseSize("chunk_capacity", c.ChunkCapacity, true)
}

// CacheThresholdBytes resolves the cache threshold setting.
func (c *Config) CacheThresholdBytes() (int64, error) {
	return parseSize("cache_threshold", c.CacheThreshold, true)
}

// MaxMemUsageBytes resolves the memory ceiling. Zero means no ceiling.
func (c *Config) MaxMemUsageBytes() (int64, error) {
	return parseSize("max_mem_usage", c.MaxMemUsage, false)
}

// PipelineMode resolves the pipeline setting.
func (c *Config) PipelineMode() (PipelineMode, error) {
	return ParsePipelineMode(c.Pipeline)
}

// parseSize parses a humanize size string. Empty strings resolve to zero;
// requirePositive additionally rejects zero values.
func parseSize(key, value string, requirePositive bool) (int64, error) {
	if value == "" {
		if requirePositive {
			return 0, fmt.Errorf("%w: %s is empty", ErrZeroSize, key)
		}

		return 0, nil
	}

	parsed, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %q", ErrInvalidSize, key, value)
	}

	size := safeconv.SafeInt64(parsed)
	if requirePositive && size == 0 {
		return 0, fmt.Errorf("%w: %s", ErrZeroSize, key)
	}

	return size, nil
}
