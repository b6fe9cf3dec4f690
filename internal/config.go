package internal

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds client settings. Values come from defaults, then an
// optional config file (./config.yaml or ~/.config/rag-chatbot/config.yaml),
// then RAGCHAT_* environment variables.
type Config struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	TopK           int    `mapstructure:"top_k"`
	UseRAG         bool   `mapstructure:"use_rag"`
	StatePath      string `mapstructure:"state_path"`
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig reads the configuration. A missing config file is fine; the
// defaults describe a local backend.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "rag-chatbot"))
	}

	v.SetDefault("base_url", "http://localhost:8000")
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("top_k", 8)
	v.SetDefault("use_rag", false)
	v.SetDefault("state_path", "")

	v.SetEnvPrefix("RAGCHAT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
