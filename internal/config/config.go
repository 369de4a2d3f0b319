package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. TICKETSYNTH_GENERATOR_COUNT.
const EnvPrefix = "TICKETSYNTH"

// Config represents the application configuration
type Config struct {
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

type GeneratorConfig struct {
	Count    int64  `mapstructure:"count" yaml:"count" validate:"min=1"`
	Seed     int64  `mapstructure:"seed" yaml:"seed"`
	IDScheme string `mapstructure:"id_scheme" yaml:"id_scheme" validate:"oneof=yearly sequential"`
	IDPrefix string `mapstructure:"id_prefix" yaml:"id_prefix" validate:"required,alphanum"`
	YearTag  string `mapstructure:"year_tag" yaml:"year_tag" validate:"omitempty,numeric"`
	IDWidth  int    `mapstructure:"id_width" yaml:"id_width" validate:"min=1,max=18"`
}

type OutputConfig struct {
	Format      string      `mapstructure:"format" yaml:"format" validate:"oneof=jsonl sql xlsx redis"`
	Path        string      `mapstructure:"path" yaml:"path"`
	Compression string      `mapstructure:"compression" yaml:"compression" validate:"oneof=auto none gzip zstd"`
	BatchSize   int         `mapstructure:"batch_size" yaml:"batch_size" validate:"min=1"`
	SQL         SQLConfig   `mapstructure:"sql" yaml:"sql"`
	Redis       RedisConfig `mapstructure:"redis" yaml:"redis"`
}

type SQLConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver" validate:"oneof=sqlite3 postgres mysql"`
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	Truncate bool   `mapstructure:"truncate" yaml:"truncate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db" validate:"min=0"`
	Stream   string `mapstructure:"stream" yaml:"stream"`
	MaxLen   int64  `mapstructure:"max_len" yaml:"max_len" validate:"min=0"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

type MetricsConfig struct {
	// Textfile is a node-exporter textfile path; empty disables the dump.
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// SetDefaults registers the built-in values. They reproduce the original
// fixed run: 50000 tickets to data/synthetic_tickets_50k.jsonl.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generator.count", 50000)
	v.SetDefault("generator.seed", 0)
	v.SetDefault("generator.id_scheme", "yearly")
	v.SetDefault("generator.id_prefix", "TICKET")
	v.SetDefault("generator.year_tag", "2024")
	v.SetDefault("generator.id_width", 6)

	v.SetDefault("output.format", "jsonl")
	v.SetDefault("output.path", "data/synthetic_tickets_50k.jsonl")
	v.SetDefault("output.compression", "auto")
	v.SetDefault("output.batch_size", 1000)
	v.SetDefault("output.sql.driver", "sqlite3")
	v.SetDefault("output.sql.dsn", "")
	v.SetDefault("output.sql.truncate", true)
	v.SetDefault("output.redis.addr", "localhost:6379")
	v.SetDefault("output.redis.password", "")
	v.SetDefault("output.redis.db", 0)
	v.SetDefault("output.redis.stream", "synthetic_tickets")
	v.SetDefault("output.redis.max_len", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.textfile", "")
}

// Load resolves configuration into v and unmarshals it. Precedence, lowest
// first: defaults, YAML file, .env, TICKETSYNTH_* environment, then any flags
// the caller bound into v beforehand.
//
// An explicit configFile must exist; otherwise ticketsynth.yaml is looked up
// in ./configs and . and skipped when absent.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("ticketsynth")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// .env only fills variables that are not already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with nothing but built-in defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// ResolvedDSN returns the SQL DSN, falling back to the output path for sqlite3.
func (c *OutputConfig) ResolvedDSN() string {
	if c.SQL.DSN != "" {
		return c.SQL.DSN
	}
	if c.SQL.Driver == "sqlite3" {
		return c.Path
	}
	return ""
}
