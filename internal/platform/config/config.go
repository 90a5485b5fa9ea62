package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "PLANNER"

	DefaultAddr        = ":8080"
	DefaultUIOrigin    = "http://localhost:8080"
	DefaultTokenSecret = "dev-insecure-change-me"
)

type Config struct {
	Addr            string        `mapstructure:"addr"`
	UIOrigin        string        `mapstructure:"ui_origin"`
	TokenSecret     string        `mapstructure:"token_secret"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	LoginRate       float64       `mapstructure:"login_rate"`
	LoginBurst      int           `mapstructure:"login_burst"`
}

// New returns a viper instance with defaults and PLANNER_* environment
// lookups in place. Callers may bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("ui_origin", DefaultUIOrigin)
	v.SetDefault("token_secret", DefaultTokenSecret)
	v.SetDefault("session_ttl", 12*time.Hour)
	v.SetDefault("sweep_interval", time.Minute)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("login_rate", 5.0)
	v.SetDefault("login_burst", 10)
	return v
}

// LoadDotEnv reads .env files into the process environment. Missing files
// are ignored.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load dotenv: %w", err)
}

func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr is required")
	}
	if strings.TrimSpace(c.TokenSecret) == "" {
		return errors.New("token_secret is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("sweep_interval must be positive")
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return errors.New("login_rate and login_burst must be positive")
	}
	return nil
}
