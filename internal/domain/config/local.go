package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
)

// LocalConfig holds per-checkout defaults stored in .tally/config.local.json.
// Field names match the settings keys so the file is read directly as settings.
type LocalConfig struct {
	Network        string `json:"network,omitempty"`
	PlanFormat     string `json:"plan_format,omitempty"`
	Timeout        string `json:"timeout,omitempty"`
	NonInteractive bool   `json:"non_interactive,omitempty"`
}

// ConfigKey represents a configuration key
type ConfigKey string

const (
	ConfigKeyNetwork        ConfigKey = "network"
	ConfigKeyPlanFormat     ConfigKey = "plan.format"
	ConfigKeyTimeout        ConfigKey = "timeout"
	ConfigKeyNonInteractive ConfigKey = "non-interactive"
)

// ValidConfigKeys returns all valid configuration keys
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{
		ConfigKeyNetwork,
		ConfigKeyPlanFormat,
		ConfigKeyTimeout,
		ConfigKeyNonInteractive,
	}
}

// NormalizeConfigKey maps accepted spellings to their key ("plan_format" -> "plan.format")
func NormalizeConfigKey(key string) (ConfigKey, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "plan_format", "plan-format":
		return ConfigKeyPlanFormat, nil
	case "non_interactive":
		return ConfigKeyNonInteractive, nil
	}
	if slices.Contains(ValidConfigKeys(), ConfigKey(key)) {
		return ConfigKey(key), nil
	}

	names := make([]string, 0, len(ValidConfigKeys()))
	for _, k := range ValidConfigKeys() {
		names = append(names, string(k))
	}
	return "", fmt.Errorf("unknown config key: %s\nAvailable keys: %s", key, strings.Join(names, ", "))
}

// Get returns the stored value of key, empty when unset
func (c *LocalConfig) Get(key ConfigKey) string {
	switch key {
	case ConfigKeyNetwork:
		return c.Network
	case ConfigKeyPlanFormat:
		return c.PlanFormat
	case ConfigKeyTimeout:
		return c.Timeout
	case ConfigKeyNonInteractive:
		if c.NonInteractive {
			return "true"
		}
	}
	return ""
}

// Set validates value and stores it under key
func (c *LocalConfig) Set(key ConfigKey, value string) error {
	switch key {
	case ConfigKeyNetwork:
		if _, err := cardano.ParseNetwork(value); err != nil {
			return err
		}
		c.Network = value
	case ConfigKeyPlanFormat:
		value = strings.ToLower(value)
		if value != "json" && value != "yaml" {
			return fmt.Errorf("unsupported plan format %q (valid: json, yaml)", value)
		}
		c.PlanFormat = value
	case ConfigKeyTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		c.Timeout = value
	case ConfigKeyNonInteractive:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("non-interactive takes true or false, got %q", value)
		}
		c.NonInteractive = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Unset clears key and returns the value it held
func (c *LocalConfig) Unset(key ConfigKey) string {
	old := c.Get(key)
	switch key {
	case ConfigKeyNetwork:
		c.Network = ""
	case ConfigKeyPlanFormat:
		c.PlanFormat = ""
	case ConfigKeyTimeout:
		c.Timeout = ""
	case ConfigKeyNonInteractive:
		c.NonInteractive = false
	}
	return old
}
