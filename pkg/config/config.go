package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"MarketPulse/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		RateLimitRPS    float64       `yaml:"rate_limit_rps"`
		RateLimitBurst  int           `yaml:"rate_limit_burst"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Exchange struct {
		RESTURL          string        `yaml:"rest_url"`
		WebSocketURL     string        `yaml:"websocket_url"`
		Token            string        `yaml:"token"`
		Depth            int           `yaml:"depth"`
		MaxSubscriptions int           `yaml:"max_subscriptions"`
		ReconnectTimeout time.Duration `yaml:"reconnect_timeout"`
		RequestTimeout   time.Duration `yaml:"request_timeout"`
		RateLimitRPS     int           `yaml:"rate_limit_rps"`
		RetryMaxElapsed  time.Duration `yaml:"retry_max_elapsed"`
	} `yaml:"exchange"`
	Directory struct {
		ReloadInterval time.Duration `yaml:"reload_interval"`
		VolumeProbe    int           `yaml:"volume_probe"`
	} `yaml:"directory"`
	Cache struct {
		CandleTTL time.Duration `yaml:"candle_ttl"`
		Redis     struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Model struct {
		RetrainInterval  time.Duration `yaml:"retrain_interval"`
		TrainingDays     int           `yaml:"training_days"`
		TrainingInterval string        `yaml:"training_interval"`
		SampleSize       int           `yaml:"sample_size"`
	} `yaml:"model"`
	DefaultMode string                     `yaml:"default_mode"`
	Strategies  map[string]StrategyProfile `yaml:"strategies"`
}

// StrategyProfile bundles interval, lookback, indicator lengths, and risk
// multipliers selected by analysis mode.
type StrategyProfile struct {
	Interval             string  `yaml:"interval"`
	LookbackDays         int     `yaml:"lookback_days"`
	MinCandles           int     `yaml:"min_candles"`
	EMALength            int     `yaml:"ema_length"`
	RSILength            int     `yaml:"rsi_length"`
	ATRLength            int     `yaml:"atr_length"`
	StopLossMultiplier   float64 `yaml:"stop_loss_multiplier"`
	TakeProfitMultiplier float64 `yaml:"take_profit_multiplier"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	return &c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables,
// then validates.
func LoadWithEnv(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("EXCHANGE_TOKEN"); v != "" {
		c.Exchange.Token = v
	}
	if v := os.Getenv("EXCHANGE_REST_URL"); v != "" {
		c.Exchange.RESTURL = v
	}
	if v := os.Getenv("EXCHANGE_WS_URL"); v != "" {
		c.Exchange.WebSocketURL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.Cache.Redis.Port = util.ParseIntDefault(v, c.Cache.Redis.Port)
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitRPS <= 0 {
		c.Server.RateLimitRPS = 10
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 20
	}
	if c.Exchange.Depth <= 0 {
		c.Exchange.Depth = 10
	}
	if c.Exchange.MaxSubscriptions <= 0 {
		c.Exchange.MaxSubscriptions = 50
	}
	if c.Exchange.ReconnectTimeout <= 0 {
		c.Exchange.ReconnectTimeout = 5 * time.Second
	}
	if c.Exchange.RequestTimeout <= 0 {
		c.Exchange.RequestTimeout = 10 * time.Second
	}
	if c.Exchange.RateLimitRPS <= 0 {
		c.Exchange.RateLimitRPS = 5
	}
	if c.Exchange.RetryMaxElapsed <= 0 {
		c.Exchange.RetryMaxElapsed = 30 * time.Second
	}
	if c.Directory.ReloadInterval <= 0 {
		c.Directory.ReloadInterval = time.Hour
	}
	if c.Directory.VolumeProbe <= 0 {
		c.Directory.VolumeProbe = 25
	}
	if c.Cache.CandleTTL <= 0 {
		c.Cache.CandleTTL = 5 * time.Minute
	}
	if c.Cache.Redis.Port <= 0 {
		c.Cache.Redis.Port = 6379
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "marketpulse"
	}
	if c.Model.RetrainInterval <= 0 {
		c.Model.RetrainInterval = 6 * time.Hour
	}
	if c.Model.TrainingDays <= 0 {
		c.Model.TrainingDays = 30
	}
	if c.Model.TrainingInterval == "" {
		c.Model.TrainingInterval = "1h"
	}
	if c.Model.SampleSize <= 0 {
		c.Model.SampleSize = 5
	}
	if c.DefaultMode == "" {
		c.DefaultMode = "short_term"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Exchange.Token == "" {
		return fmt.Errorf("exchange.token is required")
	}
	if c.Exchange.RESTURL == "" {
		return fmt.Errorf("exchange.rest_url is required")
	}
	if c.Exchange.WebSocketURL == "" {
		return fmt.Errorf("exchange.websocket_url is required")
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy profile is required")
	}
	if _, ok := c.Strategies[c.DefaultMode]; !ok {
		return fmt.Errorf("default_mode '%s' has no strategy profile", c.DefaultMode)
	}
	for mode, p := range c.Strategies {
		if p.MinCandles <= p.EMALength || p.MinCandles <= p.RSILength || p.MinCandles <= p.ATRLength {
			return fmt.Errorf("strategy '%s': min_candles must exceed every indicator length", mode)
		}
		if p.StopLossMultiplier <= 0 || p.TakeProfitMultiplier <= 0 {
			return fmt.Errorf("strategy '%s': risk multipliers must be positive", mode)
		}
	}
	return nil
}
