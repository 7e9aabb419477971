// Package config loads ichurn settings from defaults, an optional config file, .env files,
// ICHURN_ environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pinpt/ichurn/ichurn"
	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/filefilter"
	"github.com/pinpt/ichurn/ichurn/output"
	"github.com/pinpt/ichurn/ichurn/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName = ".ichurn"
	configType = "yaml"
	envPrefix  = "ICHURN"
)

// envFiles are loaded in order. Variables already set are not overridden.
var envFiles = []string{".env.local", ".env"}

type Config struct {
	GitCommand   string        `mapstructure:"git_command"`
	Workers      int           `mapstructure:"workers"`
	Extensions   []string      `mapstructure:"extensions"`
	Globs        []string      `mapstructure:"globs"`
	Languages    []string      `mapstructure:"languages"`
	SkipVendored bool          `mapstructure:"skip_vendored"`
	PatchMode    string        `mapstructure:"patch_mode"`
	AuthorMatch  string        `mapstructure:"author_match"`
	BlameTimeout time.Duration `mapstructure:"blame_timeout"`
	CacheFile    string        `mapstructure:"cache_file"`
	Format       string        `mapstructure:"format"`
	DB           string        `mapstructure:"db"`
	LogLevel     string        `mapstructure:"log_level"`
	LogJSON      bool          `mapstructure:"log_json"`
	MetricsAddr  string        `mapstructure:"metrics_addr"`
}

// Keys lists every config key. Flags named like the key with dashes instead of
// underscores are bound to it.
var Keys = []string{
	"git_command",
	"workers",
	"extensions",
	"globs",
	"languages",
	"skip_vendored",
	"patch_mode",
	"author_match",
	"blame_timeout",
	"cache_file",
	"format",
	"db",
	"log_level",
	"log_json",
	"metrics_addr",
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("git_command", "git")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("extensions", filefilter.DefaultExtensions)
	v.SetDefault("globs", []string{})
	v.SetDefault("languages", []string{})
	v.SetDefault("skip_vendored", false)
	v.SetDefault("patch_mode", string(ichurn.PatchModeFile))
	v.SetDefault("author_match", string(churn.MatchSubstring))
	v.SetDefault("blame_timeout", time.Duration(0))
	v.SetDefault("cache_file", "")
	v.SetDefault("format", string(output.FormatJSONL))
	v.SetDefault("db", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("metrics_addr", "")
}

// Load reads the configuration. configPath is optional; when empty .ichurn.yaml is
// searched in the current and home directories and a missing file is not an error.
// flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for _, key := range Keys {
			f := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %v: %w", f.Name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func loadEnvFiles() {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		_ = godotenv.Load(file)
	}
}

func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %v", c.Workers)
	}
	if c.BlameTimeout < 0 {
		return fmt.Errorf("blame_timeout can't be negative, got %v", c.BlameTimeout)
	}
	if _, err := ichurn.ParsePatchMode(c.PatchMode); err != nil {
		return err
	}
	if _, err := churn.ParseAuthorMatch(c.AuthorMatch); err != nil {
		return err
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return c.Filter().Validate()
}

func (c *Config) Filter() filefilter.Filter {
	return filefilter.Filter{
		Extensions:   c.Extensions,
		Globs:        c.Globs,
		Languages:    c.Languages,
		SkipVendored: c.SkipVendored,
	}
}

// Logger returns a logger writing to wr with the configured level and format.
func (c *Config) Logger(wr io.Writer) (logger.Logger, error) {
	return logger.New(wr, logger.Opts{Level: c.LogLevel, JSON: c.LogJSON})
}

// IchurnOpts converts the config into driver options. Logger, Cache and Observer are
// left for the caller.
func (c *Config) IchurnOpts(repoDir string) ichurn.Opts {
	patchMode, _ := ichurn.ParsePatchMode(c.PatchMode)
	match, _ := churn.ParseAuthorMatch(c.AuthorMatch)
	return ichurn.Opts{
		RepoDir:      repoDir,
		GitCommand:   c.GitCommand,
		Workers:      c.Workers,
		Filter:       c.Filter(),
		PatchMode:    patchMode,
		AuthorMatch:  match,
		BlameTimeout: c.BlameTimeout,
	}
}
