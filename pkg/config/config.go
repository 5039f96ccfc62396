package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Storage  StorageConfig
	Log      LogConfig
	Accounts AccountsConfig
	Reports  ReportsConfig
	Metrics  MetricsConfig
}

// StorageConfig points at the directory holding one record file per entity kind.
type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level  string
	Format string
}

// AccountsConfig tunes password hashing and the first-run dataset.
type AccountsConfig struct {
	BcryptCost      int
	DefaultPassword string
}

// ReportsConfig configures where generated camp reports are written.
type ReportsConfig struct {
	Dir string
}

// MetricsConfig enables dumping the metrics registry to a textfile on exit.
type MetricsConfig struct {
	TextfilePath string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Storage = StorageConfig{DataDir: v.GetString("DATA_DIR")}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cost := v.GetInt("BCRYPT_COST")
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	cfg.Accounts = AccountsConfig{
		BcryptCost:      cost,
		DefaultPassword: v.GetString("DEFAULT_PASSWORD"),
	}

	cfg.Reports = ReportsConfig{Dir: v.GetString("REPORTS_DIR")}

	cfg.Metrics = MetricsConfig{TextfilePath: v.GetString("METRICS_TEXTFILE")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("DEFAULT_PASSWORD", "password")
	v.SetDefault("REPORTS_DIR", "./reports")
	v.SetDefault("METRICS_TEXTFILE", "")
}
