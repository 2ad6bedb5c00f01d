package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "ARTICLEFORGE_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	serverAddrEnv     = "SERVER_ADDR"
	searchAPIKeyEnv   = "GOOGLE_SEARCH_API_KEY"
	searchEngineIDEnv = "GOOGLE_SEARCH_ENGINE_ID"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Crawler  CrawlerConfig  `yaml:"crawler"`
	Bot      BotConfig      `yaml:"bot"`
	Search   SearchConfig   `yaml:"search"`
	LLM      LLMConfig      `yaml:"llm"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ServerConfig describes the CRUD API listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CrawlerConfig bounds a single crawl of the source blog.
type CrawlerConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	MaxPages       int    `yaml:"maxPages"`
	Limit          int    `yaml:"limit"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout resolves the per-request HTTP timeout.
func (c CrawlerConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BotConfig bounds a single augmentation run.
type BotConfig struct {
	MaxPerRun       int `yaml:"maxPerRun"`
	SearchCount     int `yaml:"searchCount"`
	ReferenceCount  int `yaml:"referenceCount"`
	TimeoutSeconds  int `yaml:"timeoutSeconds"`
	IntervalMinutes int `yaml:"intervalMinutes"`
}

// Timeout resolves the per-request HTTP timeout for reference fetches.
func (c BotConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Interval resolves the optional recurring-run interval; zero means one-shot.
func (c BotConfig) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// SearchConfig defines how to contact the web search provider.
type SearchConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	EngineID string `yaml:"engineId"`
}

// LLMConfig defines how to contact the rewrite model API.
type LLMConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	Temperature float64 `yaml:"temperature"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// ValidateStore checks settings required to reach the article store.
func (c Config) ValidateStore() error {
	if c.Database.DSN == "" {
		return errors.New("config: database dsn is required")
	}
	return nil
}

// ValidateCrawler checks settings required for a crawl run.
func (c Config) ValidateCrawler() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	if c.Crawler.BaseURL == "" {
		return errors.New("config: crawler base url is required")
	}
	return nil
}

// ValidateBot checks provider credentials required for an augmentation run.
// Missing credentials fail startup here rather than mid-run.
func (c Config) ValidateBot() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	var missing []string
	if c.Search.APIKey == "" {
		missing = append(missing, searchAPIKeyEnv)
	}
	if c.Search.EngineID == "" {
		missing = append(missing, searchEngineIDEnv)
	}
	if c.LLM.APIKey == "" {
		missing = append(missing, openAIAPIKeyEnv)
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required credentials: %v", missing)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(searchAPIKeyEnv); v != "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv(searchEngineIDEnv); v != "" {
		c.Search.EngineID = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.LLM.Model = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Crawler.BaseURL != "" {
		base.Crawler.BaseURL = override.Crawler.BaseURL
	}
	if override.Crawler.MaxPages > 0 {
		base.Crawler.MaxPages = override.Crawler.MaxPages
	}
	if override.Crawler.Limit > 0 {
		base.Crawler.Limit = override.Crawler.Limit
	}
	if override.Crawler.TimeoutSeconds > 0 {
		base.Crawler.TimeoutSeconds = override.Crawler.TimeoutSeconds
	}

	if override.Bot.MaxPerRun > 0 {
		base.Bot.MaxPerRun = override.Bot.MaxPerRun
	}
	if override.Bot.SearchCount > 0 {
		base.Bot.SearchCount = override.Bot.SearchCount
	}
	if override.Bot.ReferenceCount > 0 {
		base.Bot.ReferenceCount = override.Bot.ReferenceCount
	}
	if override.Bot.TimeoutSeconds > 0 {
		base.Bot.TimeoutSeconds = override.Bot.TimeoutSeconds
	}
	if override.Bot.IntervalMinutes > 0 {
		base.Bot.IntervalMinutes = override.Bot.IntervalMinutes
	}

	if override.Search.Endpoint != "" {
		base.Search.Endpoint = override.Search.Endpoint
	}
	if override.Search.APIKey != "" {
		base.Search.APIKey = override.Search.APIKey
	}
	if override.Search.EngineID != "" {
		base.Search.EngineID = override.Search.EngineID
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Temperature > 0 {
		base.LLM.Temperature = override.LLM.Temperature
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: ""},
		Server:   ServerConfig{Addr: ":4000"},
		Crawler: CrawlerConfig{
			BaseURL:        "https://beyondchats.com/blogs/",
			MaxPages:       20,
			Limit:          5,
			TimeoutSeconds: 20,
		},
		Bot: BotConfig{
			MaxPerRun:      5,
			SearchCount:    6,
			ReferenceCount: 2,
			TimeoutSeconds: 20,
		},
		Search: SearchConfig{
			Endpoint: "https://customsearch.googleapis.com/customsearch/v1",
		},
		LLM: LLMConfig{
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-4.1-mini",
			Temperature: 0.6,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
