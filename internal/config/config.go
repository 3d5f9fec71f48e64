package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Translator TranslatorConfig `mapstructure:"translator"`
	Database   DatabaseConfig   `mapstructure:"database"`
	History    HistoryConfig    `mapstructure:"history"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

type TranslatorConfig struct {
	Provider       string        `mapstructure:"provider"`
	Temperature    float64       `mapstructure:"temperature"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Gemini         GeminiConfig  `mapstructure:"gemini"`
	Ollama         OllamaConfig  `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OllamaConfig struct {
	Host   string  `mapstructure:"host"`
	Model  string  `mapstructure:"model"`
	TopP   float64 `mapstructure:"top_p"`
	NumCtx int     `mapstructure:"num_ctx"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	NoColor bool   `mapstructure:"no_color"`
}

// Load reads configuration from configPath (or ./config.yaml,
// $HOME/.dialect-translator/config.yaml), then DIALECT_* environment variables.
// A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.dialect-translator")
	}

	v.SetEnvPrefix("DIALECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Same variables the hosted build of the web app reads
	if cfg.Translator.Gemini.APIKey == "" {
		cfg.Translator.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Translator.Gemini.APIKey == "" {
		cfg.Translator.Gemini.APIKey = os.Getenv("API_KEY")
	}

	if !filepath.IsAbs(cfg.Database.Path) {
		cwd, _ := os.Getwd()
		cfg.Database.Path = filepath.Join(cwd, cfg.Database.Path)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("translator.provider", "gemini")
	v.SetDefault("translator.temperature", 0.3)
	v.SetDefault("translator.request_timeout", "60s")
	v.SetDefault("translator.gemini.api_key", "")
	v.SetDefault("translator.gemini.model", "gemini-2.5-flash")
	v.SetDefault("translator.gemini.base_url", "")
	v.SetDefault("translator.ollama.host", "http://localhost:11434")
	v.SetDefault("translator.ollama.model", "gemma2:9b")
	v.SetDefault("translator.ollama.top_p", 0.9)
	v.SetDefault("translator.ollama.num_ctx", 4096)
	v.SetDefault("database.path", "./dialect-translator.db")
	v.SetDefault("history.enabled", true)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.session_idle_timeout", "2h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.no_color", false)
}
