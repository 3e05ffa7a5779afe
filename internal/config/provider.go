package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
)

const (
	defaultMinOutputLovelace = 2_000_000
	defaultTxValidity        = 10 * time.Minute
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	project, err := loadProjectConfig(projectRoot)
	if err != nil {
		return nil, err
	}

	cfg := &RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".tally"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		Project:        project,
	}

	// Flag or env wins over the project file
	cfg.NetworkName = v.GetString("network")
	if cfg.NetworkName == "" {
		cfg.NetworkName = project.Network
	}
	if cfg.Network, err = cardano.ParseNetwork(cfg.NetworkName); err != nil {
		return nil, err
	}

	if now := v.GetString("now"); now != "" {
		if cfg.Now, err = time.Parse(time.RFC3339, now); err != nil {
			return nil, fmt.Errorf("invalid now %q: %w", now, err)
		}
	}

	cfg.PlanFormat = strings.ToLower(v.GetString("plan_format"))
	if cfg.PlanFormat == "" {
		cfg.PlanFormat = strings.ToLower(project.Plan.Format)
	}
	switch cfg.PlanFormat {
	case "":
		cfg.PlanFormat = "json"
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("unsupported plan format %q (valid: json, yaml)", cfg.PlanFormat)
	}

	cfg.MinOutputLovelace = project.Plan.MinOutputLovelace
	if cfg.MinOutputLovelace == 0 {
		cfg.MinOutputLovelace = defaultMinOutputLovelace
	}
	cfg.TxValidity = project.Plan.TxValidity.Duration
	if cfg.TxValidity <= 0 {
		cfg.TxValidity = defaultTxValidity
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find tally.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a tally project (%s not found)", ProjectFile)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".tally"))

	// Set up environment variables
	v.SetEnvPrefix("TALLY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "2m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if !f.Changed {
				return
			}
			_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
	}

	return v
}
