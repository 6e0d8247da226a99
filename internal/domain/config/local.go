package config

import (
	"fmt"
	"strings"
	"time"
)

// LocalConfig is the per-checkout override file read before flags and environment
type LocalConfig struct {
	Network     string `json:"network,omitempty"`
	Timeout     string `json:"timeout,omitempty"`
	MetricsFile string `json:"metrics_file,omitempty"`
}

// ConfigKey represents a configuration key
type ConfigKey string

const (
	ConfigKeyNetwork     ConfigKey = "network"
	ConfigKeyTimeout     ConfigKey = "timeout"
	ConfigKeyMetricsFile ConfigKey = "metrics-file"
)

// ValidConfigKeys returns all valid configuration keys
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{
		ConfigKeyNetwork,
		ConfigKeyTimeout,
		ConfigKeyMetricsFile,
	}
}

// NormalizeConfigKey maps aliases such as "metrics_file" to their key
func NormalizeConfigKey(key string) (ConfigKey, bool) {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "_", "-")
	for _, valid := range ValidConfigKeys() {
		if string(valid) == key {
			return valid, true
		}
	}
	return "", false
}

// Get returns the stored value of a key
func (c *LocalConfig) Get(key ConfigKey) string {
	switch key {
	case ConfigKeyNetwork:
		return c.Network
	case ConfigKeyTimeout:
		return c.Timeout
	case ConfigKeyMetricsFile:
		return c.MetricsFile
	}
	return ""
}

// Set validates and stores a value. An empty value clears the key.
func (c *LocalConfig) Set(key ConfigKey, value string) error {
	switch key {
	case ConfigKeyNetwork:
		c.Network = value
	case ConfigKeyTimeout:
		if value != "" {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid timeout %q: %w", value, err)
			}
			if d < 0 {
				return fmt.Errorf("timeout must not be negative")
			}
		}
		c.Timeout = value
	case ConfigKeyMetricsFile:
		c.MetricsFile = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
