// Package config loads the pipeline configuration from YAML with
// environment overrides for credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the pairs trading pipeline.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Windows   WindowsConfig   `yaml:"windows"`
	Selection SelectionConfig `yaml:"selection"`
	Filter    FilterConfig    `yaml:"filter"`
	Backtest  BacktestConfig  `yaml:"backtest"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Server    ServerConfig    `yaml:"server"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
}

// DataConfig configures the daily-bar provider and fetch range.
type DataConfig struct {
	BaseURL      string        `yaml:"base_url"`
	TickerSuffix string        `yaml:"ticker_suffix"`
	Start        string        `yaml:"start"` // YYYY-MM-DD
	End          string        `yaml:"end"`
	RateRPS      float64       `yaml:"rate_rps"`
	RateBurst    int           `yaml:"rate_burst"`
	Timeout      time.Duration `yaml:"timeout"`
	UniverseFile string        `yaml:"universe_file"`
	FrameFile    string        `yaml:"frame_file"`
	CleanFile    string        `yaml:"clean_file"`
}

// WindowsConfig drives the walk-forward partitioning.
type WindowsConfig struct {
	FormationDays  int     `yaml:"formation_days"`
	ValidationDays int     `yaml:"validation_days"`
	TradingDays    int     `yaml:"trading_days"`
	StepDays       int     `yaml:"step_days"`
	EmbargoPct     float64 `yaml:"embargo_pct"`
}

// SelectionConfig holds the formation-window acceptance thresholds and
// strategy parameters.
type SelectionConfig struct {
	Strategies           []string  `yaml:"strategies"` // none, theme, optics
	CorrelationMin       float64   `yaml:"correlation_min"`
	CointPValueMax       float64   `yaml:"coint_pvalue_max"`
	HurstMax             float64   `yaml:"hurst_max"`
	HalfLifeMinDays      float64   `yaml:"half_life_min_days"`
	Significance         float64   `yaml:"significance"`
	HurstLags            []int     `yaml:"hurst_lags"`
	Workers              int       `yaml:"workers"`
	PCAComponents        int       `yaml:"pca_components"`
	OpticsMinPts         int       `yaml:"optics_min_pts"`
	OpticsXi             float64   `yaml:"optics_xi"`
	OpticsMinClusterFrac float64   `yaml:"optics_min_cluster_frac"`
}

// FilterConfig holds the strict best-pairs post-filter thresholds.
type FilterConfig struct {
	CorrelationMin  float64 `yaml:"correlation_min"`
	CointTStatMax   float64 `yaml:"coint_tstat_max"`
	HurstMax        float64 `yaml:"hurst_max"`
	HalfLifeMinDays float64 `yaml:"half_life_min_days"`
	HalfLifeMaxDays float64 `yaml:"half_life_max_days"`
}

// BacktestConfig holds the z-score strategy and accounting parameters.
type BacktestConfig struct {
	EntryZ             float64 `yaml:"entry_z"`
	ExitZ              float64 `yaml:"exit_z"`
	TradingDaysPerYear int     `yaml:"trading_days_per_year"`
	RiskFreeRate       float64 `yaml:"risk_free_rate"`
}

// DatabaseConfig configures optional result persistence.
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Driver          string        `yaml:"driver"` // postgres or sqlite
	DSN             string        `yaml:"dsn" env:"PAIRS_DB_DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
}

// RedisConfig configures the optional provider response cache.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password" env:"PAIRS_REDIS_PASSWORD"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ServerConfig configures the monitoring HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ArtifactsConfig configures where run outputs land.
type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the configuration matching the reference research setup.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			BaseURL:      "https://stooq.com/q/d/l/",
			TickerSuffix: ".us",
			Start:        "2015-01-01",
			End:          "2024-11-30",
			RateRPS:      2,
			RateBurst:    4,
			Timeout:      30 * time.Second,
			UniverseFile: "config/universe.yaml",
			FrameFile:    "data/prices.csv",
			CleanFile:    "data/adj_close.csv",
		},
		Windows: WindowsConfig{
			FormationDays:  730,
			ValidationDays: 90,
			TradingDays:    182,
			StepDays:       182,
			EmbargoPct:     0.01,
		},
		Selection: SelectionConfig{
			Strategies:           []string{"none", "theme", "optics"},
			CorrelationMin:       0.8,
			CointPValueMax:       0.05,
			HurstMax:             0.5,
			HalfLifeMinDays:      5,
			Significance:         0.05,
			HurstLags:            []int{20, 50, 100, 200},
			Workers:              4,
			PCAComponents:        10,
			OpticsMinPts:         2,
			OpticsXi:             0.05,
			OpticsMinClusterFrac: 0.1,
		},
		Filter: FilterConfig{
			CorrelationMin:  0.9,
			CointTStatMax:   -3.5,
			HurstMax:        0.5,
			HalfLifeMinDays: 30,
			HalfLifeMaxDays: 60,
		},
		Backtest: BacktestConfig{
			EntryZ:             2.0,
			ExitZ:              0.5,
			TradingDaysPerYear: 252,
		},
		Database: DatabaseConfig{
			Enabled:         false,
			Driver:          "sqlite",
			DSN:             "data/pairs.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    30 * time.Second,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			TTL:     24 * time.Hour,
		},
		Server: ServerConfig{
			Addr: ":8089",
		},
		Artifacts: ArtifactsConfig{
			Dir: "out/pairs",
		},
	}
}

// Load reads a YAML config over the defaults. An empty path returns the
// defaults. Credentials honor PAIRS_DB_DSN and PAIRS_REDIS_PASSWORD.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if dsn := os.Getenv("PAIRS_DB_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if pw := os.Getenv("PAIRS_REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Windows.FormationDays <= 0 || c.Windows.TradingDays <= 0 || c.Windows.StepDays <= 0 {
		return fmt.Errorf("config: window lengths must be positive")
	}
	if c.Windows.EmbargoPct < 0 || c.Windows.EmbargoPct >= 1 {
		return fmt.Errorf("config: embargo_pct must be in [0, 1)")
	}
	if c.Selection.CorrelationMin < -1 || c.Selection.CorrelationMin > 1 {
		return fmt.Errorf("config: correlation_min out of range")
	}
	for _, s := range c.Selection.Strategies {
		switch s {
		case "none", "theme", "optics":
		default:
			return fmt.Errorf("config: unknown strategy %q", s)
		}
	}
	if c.Backtest.EntryZ <= c.Backtest.ExitZ {
		return fmt.Errorf("config: entry_z must exceed exit_z")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD config date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return t, nil
}
