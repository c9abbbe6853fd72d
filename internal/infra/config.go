package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all SDK settings. Loaded from a yaml file; sensitive values
// may be overridden through environment variables afterwards.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		Mode string `yaml:"mode"` // PAPER or LIVE
	} `yaml:"trading"`

	Clob struct {
		RestURL   string `yaml:"rest_url"`
		WSURL     string `yaml:"ws_url"`
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"clob"`

	Execution struct {
		OrderRateBurst     int     `yaml:"order_rate_burst"`
		OrderRatePerSecond float64 `yaml:"order_rate_per_second"`
		SubmitTimeoutMS    int     `yaml:"submit_timeout_ms"`
		WaitTimeoutMS      int     `yaml:"wait_timeout_ms"`
		IdempotencyTTLMS   int     `yaml:"idempotency_ttl_ms"`
	} `yaml:"execution"`

	Paper struct {
		FillProbability float64 `yaml:"fill_probability"`
		SlippageBps     int64   `yaml:"slippage_bps"`
		MaxOrderAgeMS   int     `yaml:"max_order_age_ms"`
		MaxFillHistory  int     `yaml:"max_fill_history"`
		UseQueueModel   bool    `yaml:"use_queue_model"`

		Queue struct {
			BaseFillRate           float64 `yaml:"base_fill_rate"`
			DecayRatePerMS         float64 `yaml:"decay_rate_per_ms"`
			SizePenalty            float64 `yaml:"size_penalty"`
			AdverseSelectionFactor float64 `yaml:"adverse_selection_factor"`
		} `yaml:"queue"`
	} `yaml:"paper"`

	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	mode := strings.ToUpper(c.Trading.Mode)
	if mode != "PAPER" && mode != "LIVE" {
		return fmt.Errorf("unknown trading mode: %q", c.Trading.Mode)
	}

	if mode == "LIVE" {
		if !strings.HasPrefix(c.Clob.RestURL, "http://") && !strings.HasPrefix(c.Clob.RestURL, "https://") {
			return fmt.Errorf("invalid CLOB REST URL: %s", c.Clob.RestURL)
		}
		if c.Clob.WSURL != "" && !strings.HasPrefix(c.Clob.WSURL, "ws://") && !strings.HasPrefix(c.Clob.WSURL, "wss://") {
			return fmt.Errorf("invalid CLOB WS URL: %s", c.Clob.WSURL)
		}
		if c.Execution.OrderRatePerSecond <= 0 {
			return fmt.Errorf("order rate must be positive")
		}
	}

	if c.Paper.FillProbability < 0 || c.Paper.FillProbability > 1 {
		return fmt.Errorf("fill probability must be in [0,1]: %f", c.Paper.FillProbability)
	}
	if c.Paper.SlippageBps < 0 {
		return fmt.Errorf("slippage bps must not be negative")
	}

	return nil
}

// overrideWithEnv applies environment variables over file values.
// Environment always wins for secrets.
func overrideWithEnv(cfg *Config) {
	if cfg.Clob.APISecret != "" {
		fmt.Println("⚠️  SECURITY WARNING: API secret found in config file.")
		fmt.Println("   Recommendation: use PREDICT_CLOB_KEY / PREDICT_CLOB_SECRET instead.")
	}

	if key := os.Getenv("PREDICT_CLOB_KEY"); key != "" {
		cfg.Clob.APIKey = key
	}
	if secret := os.Getenv("PREDICT_CLOB_SECRET"); secret != "" {
		cfg.Clob.APISecret = secret
	}
	if mode := os.Getenv("PREDICT_TRADING_MODE"); mode != "" {
		cfg.Trading.Mode = mode
	}
}
