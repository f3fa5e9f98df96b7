// Package config loads recipebook settings from an optional YAML file,
// RECIPEBOOK_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/storage"
)

// EnvPrefix is prepended to every environment override, with dots in
// keys replaced by underscores: store.s3.bucket -> RECIPEBOOK_STORE_S3_BUCKET.
const EnvPrefix = "RECIPEBOOK"

// Config is the resolved application configuration.
type Config struct {
	LogLevel    logger.Level
	LogFile     string
	Key         string
	Store       storage.Options
	MetricsFile string
	// File is the config file that was read, empty if none.
	File string
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"log-file":  "log.file",
	"log-level": "log.level",
	"store":     "store.driver",
	"store-dir": "store.dir",
	"key":       "store.key",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "normal")
	v.SetDefault("log.file", ".recipebook/recipebook.log")
	v.SetDefault("store.driver", string(storage.DriverFile))
	v.SetDefault("store.key", "recipes")
	v.SetDefault("store.dir", ".recipebook")
	v.SetDefault("store.sqlite_path", ".recipebook/recipes.db")
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("store.s3.bucket", "")
	v.SetDefault("store.s3.region", "us-east-1")
	v.SetDefault("store.s3.endpoint", "")
	v.SetDefault("store.s3.path_style", false)
	v.SetDefault("store.s3.prefix", "")
	v.SetDefault("store.retry_max_elapsed", 10*time.Second)
	v.SetDefault("metrics.file", "")
}

// Load resolves the configuration. path may be empty, in which case
// recipebook.yaml in the working directory is read if present. flags may
// be nil; only flags the user actually set override file and env values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = "recipebook.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	level, err := logger.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	driver := storage.Driver(strings.ToLower(v.GetString("store.driver")))
	if !driver.Valid() {
		return nil, fmt.Errorf("store.driver: unknown driver %q", driver)
	}

	key := strings.TrimSpace(v.GetString("store.key"))
	if key == "" {
		return nil, errors.New("store.key must not be empty")
	}

	cfg := &Config{
		LogLevel:    level,
		LogFile:     v.GetString("log.file"),
		Key:         key,
		MetricsFile: v.GetString("metrics.file"),
		File:        v.ConfigFileUsed(),
		Store: storage.Options{
			Driver:          driver,
			Dir:             v.GetString("store.dir"),
			SQLitePath:      v.GetString("store.sqlite_path"),
			PostgresDSN:     v.GetString("store.postgres_dsn"),
			RetryMaxElapsed: v.GetDuration("store.retry_max_elapsed"),
			S3: storage.S3Config{
				Bucket:    v.GetString("store.s3.bucket"),
				Region:    v.GetString("store.s3.region"),
				Endpoint:  v.GetString("store.s3.endpoint"),
				PathStyle: v.GetBool("store.s3.path_style"),
				Prefix:    v.GetString("store.s3.prefix"),
			},
		},
	}
	if driver == storage.DriverS3 && cfg.Store.S3.Bucket == "" {
		return nil, errors.New("store.s3.bucket is required for the s3 driver")
	}
	return cfg, nil
}
