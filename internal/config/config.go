// Package config loads zegraphql settings from .env, an optional config file,
// ZEGRAPHQL_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by zegraphql
const EnvPrefix = "ZEGRAPHQL"

// Config is the resolved runtime configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Query    QueryConfig    `mapstructure:"query"`
}

type DatabaseConfig struct {
	Path   string `mapstructure:"path"`
	Schema string `mapstructure:"schema"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type AuthConfig struct {
	RolePrefix   string `mapstructure:"role_prefix"`
	EnforceRoles bool   `mapstructure:"enforce_roles"`
	ZeAuthURL    string `mapstructure:"zeauth_url"`
}

type QueryConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
}

// Options tells Load where to look
type Options struct {
	ConfigFile string         // Explicit config file, overrides discovery
	EnvFile    string         // .env file; missing files are ignored
	Flags      *pflag.FlagSet // Flags bound over everything else
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "zegraphql.db")
	v.SetDefault("database.schema", "main")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("auth.role_prefix", "cybernetic-karari")
	v.SetDefault("auth.enforce_roles", true)
	v.SetDefault("auth.zeauth_url", "")
	v.SetDefault("query.default_page_size", 20)
}

// Load resolves the configuration. Precedence, highest first: flags,
// environment (including values loaded from the .env file), config file, defaults.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	SetDefaults(v)

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("zegraphql")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.zegraphql")
		v.AddConfigPath("/etc/zegraphql")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagKeys maps command line flags to config keys
var flagKeys = map[string]string{
	"db":          "database.path",
	"schema":      "database.schema",
	"addr":        "server.addr",
	"log-level":   "log.level",
	"pretty":      "log.pretty",
	"role-prefix": "auth.role_prefix",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Validate rejects settings the rest of the program cannot run with
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.Schema == "" {
		return fmt.Errorf("database.schema must not be empty")
	}
	if c.Query.DefaultPageSize <= 0 {
		return fmt.Errorf("query.default_page_size must be positive, got %d", c.Query.DefaultPageSize)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	return nil
}
