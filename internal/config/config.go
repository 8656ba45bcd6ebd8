// Package config resolves rivebrain settings from defaults, config.toml and
// RIVEBRAIN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all settings.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Parser  ParserConfig  `mapstructure:"parser"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Log     LogConfig     `mapstructure:"log"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type ParserConfig struct {
	SupportedVersion float64 `mapstructure:"supported_version"`
}

type LoaderConfig struct {
	BeginFile  string   `mapstructure:"begin_file"`
	Extensions []string `mapstructure:"extensions"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultDir is where config.toml and the database live unless overridden.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".rivebrain")
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{DBPath: filepath.Join(DefaultDir(), "brain.db")},
		Parser:  ParserConfig{SupportedVersion: 2.0},
		Loader:  LoaderConfig{BeginFile: "begin.rs"},
		Log:     LogConfig{Level: "info"},
		Watch:   WatchConfig{Debounce: 500 * time.Millisecond},
	}
}

// InitViper returns a viper instance with defaults registered, config.toml
// read from dir (if present) and environment variables bound.
//
// Precedence (highest first): flags bound by the caller, RIVEBRAIN_*
// environment variables, config.toml, defaults.
func InitViper(dir string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	if dir == "" {
		dir = DefaultDir()
	}
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("RIVEBRAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Short alias kept for scripts.
	if err := v.BindEnv("storage.db_path", "RIVEBRAIN_STORAGE_DB_PATH", "RIVEBRAIN_DB"); err != nil {
		return nil, err
	}

	return v, nil
}

// Load reads the configuration rooted at dir.
func Load(dir string) (*Config, error) {
	v, err := InitViper(dir)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes v into a Config.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("storage.db_path", d.Storage.DBPath)
	v.SetDefault("parser.supported_version", d.Parser.SupportedVersion)
	v.SetDefault("loader.begin_file", d.Loader.BeginFile)
	v.SetDefault("loader.extensions", d.Loader.Extensions)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}
