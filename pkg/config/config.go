package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/sipeed/tgfilters/pkg/filters"
	"github.com/sipeed/tgfilters/pkg/logger"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_users can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Filters  FiltersConfig  `json:"filters"`
	Log      LogConfig      `json:"log"`
}

type TelegramConfig struct {
	Token string `json:"token" env:"TGFILTERS_TELEGRAM_TOKEN"`
	Proxy string `json:"proxy" env:"TGFILTERS_TELEGRAM_PROXY"`
}

type FiltersConfig struct {
	// Workers bounds the pool that runs blocking predicates; 0 means GOMAXPROCS.
	Workers    int                 `json:"workers" env:"TGFILTERS_FILTERS_WORKERS"`
	AllowUsers FlexibleStringSlice `json:"allow_users" env:"TGFILTERS_FILTERS_ALLOW_USERS"`
	AllowChats FlexibleStringSlice `json:"allow_chats" env:"TGFILTERS_FILTERS_ALLOW_CHATS"`
	// Require lists built-in filter names that must all pass; "!name" negates.
	Require FlexibleStringSlice `json:"require" env:"TGFILTERS_FILTERS_REQUIRE"`
}

type LogConfig struct {
	Level string `json:"level" env:"TGFILTERS_LOG_LEVEL"`
	File  string `json:"file" env:"TGFILTERS_LOG_FILE"`
}

func DefaultConfig() *Config {
	return &Config{
		Filters: FiltersConfig{
			Workers:    0,
			AllowUsers: FlexibleStringSlice{},
			AllowChats: FlexibleStringSlice{},
			Require:    FlexibleStringSlice{},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads path over the defaults and then applies TGFILTERS_*
// environment variables. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// NewExecutor returns the worker pool sized by Workers.
func (c FiltersConfig) NewExecutor() *filters.Executor {
	return filters.NewExecutor(c.Workers)
}

// BuildFilter composes the configured gate: sender in AllowUsers, chat in
// AllowChats and every Require filter passing. Empty sections are skipped;
// with nothing configured the result is nil.
func (c FiltersConfig) BuildFilter() (filters.Filter, error) {
	var parts []filters.Filter
	if len(c.AllowUsers) > 0 {
		parts = append(parts, filters.User(c.AllowUsers...))
	}
	if len(c.AllowChats) > 0 {
		parts = append(parts, filters.Chat(c.AllowChats...))
	}
	if len(c.Require) > 0 {
		required, err := filters.All(c.Require...)
		if err != nil {
			return nil, fmt.Errorf("filters.require: %w", err)
		}
		parts = append(parts, required)
	}

	switch len(parts) {
	case 0:
		return nil, nil
	case 1:
		return parts[0], nil
	default:
		return filters.And(parts[0], parts[1], parts[2:]...), nil
	}
}

// Apply sets the logger level and file sink.
func (c LogConfig) Apply() error {
	if c.Level != "" {
		level, err := logger.ParseLevel(c.Level)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}
	if c.File != "" {
		return logger.EnableFileLogging(expandHome(c.File))
	}
	return nil
}
