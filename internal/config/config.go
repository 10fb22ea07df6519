package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tabloom/internal/assoc"
	"github.com/KaramelBytes/tabloom/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid configuration")

// Global configuration structure.
type Global struct {
	// Type correction
	Seed              int64   `mapstructure:"seed" yaml:"seed"`
	SampleFraction    float64 `mapstructure:"sample_fraction" yaml:"sample_fraction"`
	DateTimeThreshold float64 `mapstructure:"datetime_threshold" yaml:"datetime_threshold"`

	// Association matrix
	DefaultMethod string `mapstructure:"default_method" yaml:"default_method"`

	// Loading
	MaxRows   int    `mapstructure:"max_rows" yaml:"max_rows"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Output
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	BatchJobs    int    `mapstructure:"batch_jobs" yaml:"batch_jobs"`
}

// Default returns the built-in defaults.
func Default() *Global {
	return &Global{
		Seed:              42,
		SampleFraction:    0.05,
		DateTimeThreshold: 0.70,
		DefaultMethod:     "pearson",
		MaxRows:           100000,
		LogLevel:          "warn",
		OutputFormat:      "markdown",
		BatchJobs:         4,
	}
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABLOOM")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("seed", d.Seed)
	v.SetDefault("sample_fraction", d.SampleFraction)
	v.SetDefault("datetime_threshold", d.DateTimeThreshold)
	v.SetDefault("default_method", d.DefaultMethod)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("delimiter", "")
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("batch_jobs", d.BatchJobs)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.DefaultMethod = strings.ToLower(strings.TrimSpace(c.DefaultMethod))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the pipeline cannot honor.
func (c *Global) Validate() error {
	if c.SampleFraction <= 0 || c.SampleFraction > 1 {
		return fmt.Errorf("%w: sample_fraction %v must be in (0,1]", ErrInvalid, c.SampleFraction)
	}
	if c.DateTimeThreshold <= 0 || c.DateTimeThreshold > 1 {
		return fmt.Errorf("%w: datetime_threshold %v must be in (0,1]", ErrInvalid, c.DateTimeThreshold)
	}
	if _, err := assoc.ParseMethod(c.DefaultMethod); err != nil {
		return fmt.Errorf("%w: default_method: %v", ErrInvalid, err)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("%w: max_rows %d must be >= 0", ErrInvalid, c.MaxRows)
	}
	switch c.OutputFormat {
	case "markdown", "csv":
	default:
		return fmt.Errorf("%w: output_format %q (use markdown|csv)", ErrInvalid, c.OutputFormat)
	}
	if c.BatchJobs < 1 {
		return fmt.Errorf("%w: batch_jobs %d must be >= 1", ErrInvalid, c.BatchJobs)
	}
	return nil
}
