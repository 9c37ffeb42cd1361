package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level simaudit.yaml configuration.
type Config struct {
	Tolerance string         `yaml:"tolerance"`
	Calendar  CalendarConfig `yaml:"calendar"`
	Monthly   MonthlyConfig  `yaml:"monthly"`
	Crash     CrashConfig    `yaml:"crash"`
}

// CalendarConfig maps iteration numbers onto simulated time.
type CalendarConfig struct {
	IterationsPerDay int `yaml:"iterations_per_day"`
	DaysPerMonth     int `yaml:"days_per_month"`
}

// MonthlyConfig controls the monthly-accounting check.
type MonthlyConfig struct {
	ExpectedKinds []string `yaml:"expected_kinds"`
}

// CrashConfig controls crash diagnosis output.
type CrashConfig struct {
	LastEvents int `yaml:"last_events"`
}

// Load reads a simaudit.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
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

// Default returns a Config matching the simulation's calendar: 24 iterations
// per day, 30-day months, settlement at iterations 720, 1440, and so on.
func Default() *Config {
	return &Config{
		Tolerance: "0.01",
		Calendar: CalendarConfig{
			IterationsPerDay: 24,
			DaysPerMonth:     30,
		},
		Monthly: MonthlyConfig{
			ExpectedKinds: []string{"rent", "subsidy", "tax"},
		},
		Crash: CrashConfig{
			LastEvents: 20,
		},
	}
}

// ToleranceDecimal parses the configured tolerance.
func (c *Config) ToleranceDecimal() (decimal.Decimal, error) {
	tol, err := decimal.NewFromString(c.Tolerance)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing tolerance %q: %w", c.Tolerance, err)
	}
	return tol, nil
}

// Period returns the month length in iterations.
func (c *Config) Period() int {
	return c.Calendar.IterationsPerDay * c.Calendar.DaysPerMonth
}
