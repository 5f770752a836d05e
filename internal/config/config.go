package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DataConfig points at the dataset to load.
type DataConfig struct {
	// Path to a .csv or .xlsx file. Empty means the built-in sample.
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
	// Watch reloads the dataset when the file changes.
	Watch bool `yaml:"watch"`
}

// WeightsConfig tunes the relevance scorer.
type WeightsConfig struct {
	Field                float64 `yaml:"field"`
	IdentifierBonus      float64 `yaml:"identifier_bonus"`
	ExactIdentifierBonus float64 `yaml:"exact_identifier_bonus"`
	Numeric              float64 `yaml:"numeric"`
}

// ThresholdConfig bounds the "high"/"low" cues of one numeric column.
type ThresholdConfig struct {
	High float64 `yaml:"high"`
	Low  float64 `yaml:"low"`
}

// SearchConfig configures ranking.
type SearchConfig struct {
	TopK    int           `yaml:"top_k"`
	Weights WeightsConfig `yaml:"weights"`
	// Thresholds are keyed by column name, e.g. ApplicantIncome.
	Thresholds map[string]ThresholdConfig `yaml:"thresholds,omitempty"`
}

// OpenAIConfig holds configuration for an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	MaxRetries  int     `yaml:"max_retries"`
}

// AssistantConfig selects and configures the answer generator.
type AssistantConfig struct {
	Type         string        `yaml:"type"`
	MaxSentences int           `yaml:"max_sentences"`
	OpenAI       *OpenAIConfig `yaml:"openai,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data      DataConfig      `yaml:"data"`
	Search    SearchConfig    `yaml:"search"`
	Assistant AssistantConfig `yaml:"assistant"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/loanrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/loanrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "loanrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Data:      DataConfig{Sheet: "Sheet1"},
		Search:    SearchConfig{TopK: 5, Weights: defaultWeights()},
		Assistant: AssistantConfig{Type: "offline", MaxSentences: 10},
		Server:    ServerConfig{Addr: ":8080"},
		Log:       LogConfig{Level: "info"},
	}
	return cfg
}

func defaultWeights() WeightsConfig {
	return WeightsConfig{Field: 1, IdentifierBonus: 1, ExactIdentifierBonus: 1, Numeric: 1}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Data.Sheet == "" {
		cfg.Data.Sheet = "Sheet1"
	}
	if cfg.Search.TopK <= 0 {
		cfg.Search.TopK = 5
	}
	def := defaultWeights()
	if cfg.Search.Weights.Field == 0 {
		cfg.Search.Weights.Field = def.Field
	}
	if cfg.Search.Weights.IdentifierBonus == 0 {
		cfg.Search.Weights.IdentifierBonus = def.IdentifierBonus
	}
	if cfg.Search.Weights.ExactIdentifierBonus == 0 {
		cfg.Search.Weights.ExactIdentifierBonus = def.ExactIdentifierBonus
	}
	if cfg.Search.Weights.Numeric == 0 {
		cfg.Search.Weights.Numeric = def.Numeric
	}
	if cfg.Assistant.Type == "" {
		cfg.Assistant.Type = "offline"
	}
	if cfg.Assistant.MaxSentences <= 0 {
		cfg.Assistant.MaxSentences = 10
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Assistant.Type == "openai" && cfg.Assistant.OpenAI != nil {
		if cfg.Assistant.OpenAI.BaseURL == "" {
			cfg.Assistant.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Assistant.OpenAI.APIKeyEnv == "" {
			cfg.Assistant.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Assistant.OpenAI.Model == "" {
			cfg.Assistant.OpenAI.Model = "gpt-4o-mini"
		}
		if cfg.Assistant.OpenAI.TimeoutSecs == 0 {
			cfg.Assistant.OpenAI.TimeoutSecs = 30
		}
		if cfg.Assistant.OpenAI.Temperature == 0 {
			cfg.Assistant.OpenAI.Temperature = 0.7
		}
		if cfg.Assistant.OpenAI.MaxTokens == 0 {
			cfg.Assistant.OpenAI.MaxTokens = 2048
		}
		if cfg.Assistant.OpenAI.MaxRetries == 0 {
			cfg.Assistant.OpenAI.MaxRetries = 5
		}
	}
}
