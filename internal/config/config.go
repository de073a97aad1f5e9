package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abcbank/ledger/internal/analytics"
	"github.com/abcbank/ledger/internal/model"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "abcbank.yaml"

// Config represents the top-level abcbank.yaml configuration.
type Config struct {
	DataFile string                 `yaml:"data_file"`
	Loan     LoanConfig             `yaml:"loan"`
	Goal     GoalConfig             `yaml:"goal"`
	Ranges   []model.FinancialRange `yaml:"ranges,omitempty"`
	Log      LogConfig              `yaml:"log"`
}

// LoanConfig controls loan scoring and pricing.
type LoanConfig struct {
	ApprovalCutoff    int     `yaml:"approval_cutoff"`
	BaseRate          float64 `yaml:"base_rate"`  // percent
	RateScale         float64 `yaml:"rate_scale"` // repeat-borrower multiplier
	ScoreHorizonYears int     `yaml:"score_horizon_years"`
}

// GoalConfig bounds the savings goal search.
type GoalConfig struct {
	MaxYears int `yaml:"max_years"`
}

// LogConfig controls diagnostics and the transaction log.
type LogConfig struct {
	Level          string `yaml:"level"`
	TransactionLog string `yaml:"transaction_log"` // empty disables
}

// Load reads a config file from disk. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the standard configuration.
func Default() *Config {
	p := analytics.DefaultPolicy()
	return &Config{
		DataFile: "data/client_data_1.txt",
		Loan: LoanConfig{
			ApprovalCutoff:    p.ApprovalCutoff,
			BaseRate:          p.BaseRate,
			RateScale:         p.RateScale,
			ScoreHorizonYears: p.ScoreHorizonYears,
		},
		Goal: GoalConfig{MaxYears: p.MaxGoalYears},
		Log: LogConfig{
			Level:          "warn",
			TransactionLog: "logs/transactions.csv",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Loan.BaseRate < 0 || c.Loan.BaseRate > 100:
		return fmt.Errorf("config: loan.base_rate %v is outside [0, 100]", c.Loan.BaseRate)
	case c.Loan.RateScale <= 0:
		return fmt.Errorf("config: loan.rate_scale %v must be positive", c.Loan.RateScale)
	case c.Loan.ScoreHorizonYears < 0:
		return fmt.Errorf("config: loan.score_horizon_years %d is negative", c.Loan.ScoreHorizonYears)
	case c.Goal.MaxYears < 0:
		return fmt.Errorf("config: goal.max_years %d is negative", c.Goal.MaxYears)
	}
	for _, r := range c.Ranges {
		if r.Low > r.High {
			return fmt.Errorf("config: range %s has low above high", r)
		}
	}
	return nil
}

// Policy converts the loan and goal settings to an analytics.Policy.
func (c *Config) Policy() analytics.Policy {
	return analytics.Policy{
		ApprovalCutoff:    c.Loan.ApprovalCutoff,
		BaseRate:          c.Loan.BaseRate,
		RateScale:         c.Loan.RateScale,
		ScoreHorizonYears: c.Loan.ScoreHorizonYears,
		MaxGoalYears:      c.Goal.MaxYears,
	}
}
