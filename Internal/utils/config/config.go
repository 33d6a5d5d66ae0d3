package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	datafeed "github.com/fazecat/niftyscreener/Internal/database"
	"github.com/fazecat/niftyscreener/Internal/strategy/sectors"
	"github.com/fazecat/niftyscreener/Internal/strategy/signals"
	"github.com/fazecat/niftyscreener/Internal/utils/formatting"
	"github.com/fazecat/niftyscreener/Internal/utils/scanner"
)

type Config struct {
	Scan       ScanConfig          `yaml:"scan"`
	Thresholds signals.Thresholds  `yaml:"thresholds"`
	Swing      signals.SwingFilter `yaml:"swing"`
	// Sectors overrides or extends the built-in classification, e.g. RELIANCE: "Energy🔥".
	Sectors   map[string]string `yaml:"sectors"`
	Provider  ProviderConfig    `yaml:"provider"`
	Universe  UniverseConfig    `yaml:"universe"`
	Cache     CacheConfig       `yaml:"cache"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	API       APIConfig         `yaml:"api"`

	Secrets Secrets `yaml:"-"`
}

type ScanConfig struct {
	Workers           int           `yaml:"workers"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
	LookbackDays      int           `yaml:"lookback_days"`
	MinBars           int           `yaml:"min_bars"`
	MinCompositeScore int           `yaml:"min_composite_score"`
	MinSwingFilters   int           `yaml:"min_swing_filters"`
	TailBars          int           `yaml:"tail_bars"`
	CompositeLimit    int           `yaml:"composite_limit"`
	SwingLimit        int           `yaml:"swing_limit"`
	SignalsLimit      int           `yaml:"signals_limit"`
}

type ProviderConfig struct {
	Name                    string `yaml:"name"`
	datafeed.ProviderConfig `yaml:",inline"`
}

type UniverseConfig struct {
	Source string `yaml:"source"` // csv or postgres
	Path   string `yaml:"path"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

type SchedulerConfig struct {
	Timezone    string   `yaml:"timezone"`
	MarketOpen  string   `yaml:"market_open"`
	Signals     string   `yaml:"signals"`
	MarketClose string   `yaml:"market_close"`
	Weekend     string   `yaml:"weekend"`
	Holidays    []string `yaml:"holidays"`
}

type APIConfig struct {
	Addr       string `yaml:"addr"`
	TokenHours int    `yaml:"token_hours"`
}

// Secrets come only from the environment.
type Secrets struct {
	UpstoxAccessToken string
	TelegramBotToken  string
	TelegramChatID    string
	AlpacaAPIKey      string
	AlpacaAPISecret   string
	DatabaseURL       string
	RedisAddr         string
	RedisPassword     string
	JWTSecretKey      string
}

func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Workers:           10,
			FetchTimeout:      8 * time.Second,
			LookbackDays:      100,
			MinBars:           20,
			MinCompositeScore: 5,
			MinSwingFilters:   4,
			TailBars:          50,
			CompositeLimit:    200,
			SwingLimit:        500,
			SignalsLimit:      200,
		},
		Thresholds: signals.DefaultThresholds(),
		Swing:      *signals.NewSwingFilter(),
		Provider: ProviderConfig{
			Name:           datafeed.ProviderUpstox,
			ProviderConfig: datafeed.DefaultProviderConfig(),
		},
		Universe: UniverseConfig{Source: "csv", Path: datafeed.DefaultUniverseFile},
		Cache:    CacheConfig{Enabled: true, TTL: 5 * time.Minute},
		Scheduler: SchedulerConfig{
			Timezone:    "Asia/Kolkata",
			MarketOpen:  "09:15",
			Signals:     "15:00",
			MarketClose: "15:30",
			Weekend:     "10:00",
			Holidays: []string{
				"2024-01-26", "2024-03-08", "2024-03-29", "2024-04-11", "2024-04-17",
				"2024-05-01", "2024-06-17", "2024-08-15", "2024-08-26", "2024-10-02",
				"2024-10-31", "2024-11-01", "2024-11-15", "2024-12-25",
			},
		},
		API: APIConfig{Addr: ":8080", TokenHours: 24},
	}
}

// LoadConfig reads the YAML file at path over the defaults and then loads
// secrets from the environment (and .env when present). An empty path searches
// the usual locations; finding none keeps the defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Secrets = SecretsFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return data, nil
	}

	possiblePaths := []string{"config.yaml", filepath.Join("Internal", "utils", "config", "config.yaml")}
	if _, filePath, _, ok := runtime.Caller(0); ok {
		possiblePaths = append(possiblePaths, filepath.Join(filepath.Dir(filePath), "config.yaml"))
	}
	for _, p := range possiblePaths {
		if data, err := os.ReadFile(p); err == nil {
			return data, nil
		}
	}
	return nil, nil
}

func SecretsFromEnv() Secrets {
	return Secrets{
		UpstoxAccessToken: os.Getenv("UPSTOX_ACCESS_TOKEN"),
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:    os.Getenv("TELEGRAM_CHAT_ID"),
		AlpacaAPIKey:      os.Getenv("ALPACA_API_KEY"),
		AlpacaAPISecret:   os.Getenv("ALPACA_API_SECRET"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTSecretKey:      os.Getenv("JWT_SECRET_KEY"),
	}
}

func (c *Config) Validate() error {
	var problems []string
	if c.Scan.Workers <= 0 {
		problems = append(problems, "scan.workers must be positive")
	}
	if c.Scan.LookbackDays <= 0 {
		problems = append(problems, "scan.lookback_days must be positive")
	}
	if c.Thresholds.RSIMin >= c.Thresholds.RSIMax {
		problems = append(problems, "thresholds.rsi_min must be below rsi_max")
	}
	if c.Swing.MinPrice > c.Swing.MaxPrice {
		problems = append(problems, "swing.min_price must not exceed max_price")
	}
	switch strings.ToLower(c.Provider.Name) {
	case datafeed.ProviderUpstox, datafeed.ProviderAlpaca:
	default:
		problems = append(problems, fmt.Sprintf("provider.name %q is not upstox or alpaca", c.Provider.Name))
	}
	switch c.Universe.Source {
	case "csv", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("universe.source %q is not csv or postgres", c.Universe.Source))
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("scheduler.timezone: %v", err))
	}
	for _, day := range c.Scheduler.Holidays {
		if formatting.ParseDate(day).IsZero() {
			problems = append(problems, fmt.Sprintf("scheduler.holidays: cannot parse %q", day))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Credential is the market data credential for the configured provider.
func (c *Config) Credential() string {
	if strings.EqualFold(c.Provider.Name, datafeed.ProviderAlpaca) {
		return c.Secrets.AlpacaAPIKey
	}
	return c.Secrets.UpstoxAccessToken
}

func (c *Config) Classifier() *sectors.Classifier {
	return sectors.DefaultClassifier().WithOverrides(c.Sectors)
}

// ScanOptions maps the scan, threshold and swing sections onto scanner options.
func (c *Config) ScanOptions(recorder scanner.Recorder) scanner.Options {
	swing := c.Swing
	if c.Scan.MinSwingFilters > 0 {
		swing.MinFiltersPassed = c.Scan.MinSwingFilters
	}
	return scanner.Options{
		Workers:           c.Scan.Workers,
		FetchTimeout:      c.Scan.FetchTimeout,
		LookbackDays:      c.Scan.LookbackDays,
		MinBars:           c.Scan.MinBars,
		MinCompositeScore: c.Scan.MinCompositeScore,
		TailBars:          c.Scan.TailBars,
		Thresholds:        c.Thresholds,
		Swing:             &swing,
		Classifier:        c.Classifier(),
		Recorder:          recorder,
	}
}

// HolidaySet returns the configured holidays keyed by YYYY-MM-DD.
func (c *Config) HolidaySet() map[string]bool {
	set := make(map[string]bool, len(c.Scheduler.Holidays))
	for _, day := range c.Scheduler.Holidays {
		if t := formatting.ParseDate(day); !t.IsZero() {
			set[t.Format("2006-01-02")] = true
		}
	}
	return set
}

func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
