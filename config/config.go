package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	sm "github.com/simon-0215/advanced-data-project/service/models"
)

const (
	EnvPrefix         = "EDA"
	DefaultConfigFile = "eda.yaml"
	configFileEnv     = "EDA_CONFIG_FILE"
)

// Config is the full set of run parameters. Defaults reproduce the fixed analysis.
type Config struct {
	DataPath  string         `yaml:"data_path" envconfig:"DATA_PATH"`
	Sheet     string         `yaml:"sheet" envconfig:"SHEET"`
	OutputDir string         `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	Analysis  AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Render    RenderConfig   `yaml:"render" envconfig:"RENDER"`
	Logging   LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// AnalysisConfig holds the statistical constants of the pipeline
type AnalysisConfig struct {
	TradingDays           int      `yaml:"trading_days" envconfig:"TRADING_DAYS"`
	RollingWindow         int      `yaml:"rolling_window" envconfig:"ROLLING_WINDOW"`
	RiskFreeRate          float64  `yaml:"risk_free_rate" envconfig:"RISK_FREE_RATE"`
	RepresentativeTickers []string `yaml:"representative_tickers" envconfig:"REPRESENTATIVE_TICKERS"`
	SpotlightTicker       string   `yaml:"spotlight_ticker" envconfig:"SPOTLIGHT_TICKER"`
}

type RenderConfig struct {
	DPI           int `yaml:"dpi" envconfig:"DPI"`
	Workers       int `yaml:"workers" envconfig:"WORKERS"`
	HistogramBins int `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS"`
	GridColumns   int `yaml:"grid_columns" envconfig:"GRID_COLUMNS"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

func Default() Config {
	return Config{
		DataPath:  "data/Prices.csv",
		OutputDir: "outputs/figs",
		Analysis: AnalysisConfig{
			TradingDays:           sm.Daily,
			RollingWindow:         21,
			RiskFreeRate:          0,
			RepresentativeTickers: []string{"AAPL", "AMZN", "NVDA", "JNJ", "XOM", "META"},
			SpotlightTicker:       "AAPL",
		},
		Render: RenderConfig{
			DPI:           150,
			Workers:       1,
			HistogramBins: 50,
			GridColumns:   5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load layers the optional YAML file and then EDA_ environment variables over the defaults
func Load() (*Config, error) {
	cfg := Default()

	configFile := os.Getenv(configFileEnv)
	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}

	if err := cfg.mergeFile(configFile); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// no default tags, unset variables leave the layered values alone
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("error parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DataPath) == "" {
		errs = append(errs, errors.New("data path is required"))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output dir is required"))
	}
	if c.Analysis.TradingDays <= 0 {
		errs = append(errs, fmt.Errorf("trading days must be positive, got %d", c.Analysis.TradingDays))
	}
	if c.Analysis.RollingWindow < 2 {
		errs = append(errs, fmt.Errorf("rolling window must be at least 2, got %d", c.Analysis.RollingWindow))
	}
	if strings.TrimSpace(c.Analysis.SpotlightTicker) == "" {
		errs = append(errs, errors.New("spotlight ticker is required"))
	}
	if c.Render.DPI <= 0 {
		errs = append(errs, fmt.Errorf("dpi must be positive, got %d", c.Render.DPI))
	}
	if c.Render.Workers <= 0 {
		errs = append(errs, fmt.Errorf("render workers must be positive, got %d", c.Render.Workers))
	}
	if c.Render.HistogramBins <= 0 {
		errs = append(errs, fmt.Errorf("histogram bins must be positive, got %d", c.Render.HistogramBins))
	}
	if c.Render.GridColumns <= 0 {
		errs = append(errs, fmt.Errorf("grid columns must be positive, got %d", c.Render.GridColumns))
	}

	return errors.Join(errs...)
}
