package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := Default()
	if err = toml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	DB      DBConfig      `toml:"db"`
	Feed    FeedConfig    `toml:"feed"`
	Archive ArchiveConfig `toml:"archive"`
	Economy EconomyConfig `toml:"economy"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type FeedConfig struct {
	GoldURL     string `toml:"gold_url"`
	CryptoURL   string `toml:"crypto_url"`
	ForexURL    string `toml:"forex_url"`
	TimeoutSec  int    `toml:"timeout_sec"`
	CacheSize   int    `toml:"cache_size"`
	MaxStaleSec int64  `toml:"max_stale_sec"`
}

type ArchiveConfig struct {
	Enabled bool   `toml:"enabled"`
	Key     string `toml:"key"`
	Secret  string `toml:"secret"`
	Region  string `toml:"region"`
	Bucket  string `toml:"bucket"`
	Root    string `toml:"root"`
}

// EconomyConfig carries every tunable coefficient of the simulation. The
// catalogs (jobs, items, crimes, investment types, shock kinds) live with
// their components; this struct holds the cross-cutting formula parameters.
type EconomyConfig struct {
	StartingCash int64 `toml:"starting_cash"`

	// Class brackets: ascending upper bounds for Lower..Elite. Oligarch is
	// everything above the last bound.
	ClassUpperBounds []int64 `toml:"class_upper_bounds"`
	// Per-class tables, indexed Lower..Oligarch.
	TaxRates       []float64 `toml:"tax_rates"`
	LoanInterest   []float64 `toml:"loan_interest"`
	LoanMax        []int64   `toml:"loan_max"`
	PoliticalPower []int     `toml:"political_power"`

	// Labor market.
	MinimumWage          int64   `toml:"minimum_wage"`
	NaturalUnemployment  float64 `toml:"natural_unemployment"`
	SupplyModifierCap    float64 `toml:"supply_modifier_cap"`
	SkillModifierCap     float64 `toml:"skill_modifier_cap"`
	GDPModifierCap       float64 `toml:"gdp_modifier_cap"`
	GDPBaseline          float64 `toml:"gdp_baseline"`
	SkillUpChance        float64 `toml:"skill_up_chance"`
	SkillProgressPerWork int     `toml:"skill_progress_per_work"`
	WorkCooldownSec      int64   `toml:"work_cooldown_sec"`

	// Market.
	Spread float64 `toml:"spread"`

	// Crime.
	CrimeCooldownSec int64   `toml:"crime_cooldown_sec"`
	RobCooldownSec   int64   `toml:"rob_cooldown_sec"`
	PoliceStrength   float64 `toml:"police_strength"`
	RobCapFraction   float64 `toml:"rob_cap_fraction"`

	// Investments.
	MaturitySec     int64   `toml:"maturity_sec"`
	MaxEarlyPenalty float64 `toml:"max_early_penalty"`

	// Fiscal.
	WelfareThreshold int64 `toml:"welfare_threshold"`
	WelfareBase      int64 `toml:"welfare_base"`
	TermDays         int   `toml:"term_days"`
	LoanTermDays     int   `toml:"loan_term_days"`

	// Macro.
	Velocity              float64 `toml:"velocity"`
	InflationDamping      float64 `toml:"inflation_damping"`
	GDPWindowDays         int     `toml:"gdp_window_days"`
	CycleDays             int     `toml:"cycle_days"`
	PhaseJitterFrac       float64 `toml:"phase_jitter_frac"`
	GiniThreshold         float64 `toml:"gini_threshold"`
	InequalityCooldownSec int64   `toml:"inequality_cooldown_sec"`
	RedistributionRate    float64 `toml:"redistribution_rate"`
	InterestRate          float64 `toml:"interest_rate"`
}

func (c EconomyConfig) WorkCooldown() time.Duration {
	return time.Duration(c.WorkCooldownSec) * time.Second
}

func (c EconomyConfig) CrimeCooldown() time.Duration {
	return time.Duration(c.CrimeCooldownSec) * time.Second
}

func (c EconomyConfig) RobCooldown() time.Duration {
	return time.Duration(c.RobCooldownSec) * time.Second
}

func (c EconomyConfig) Maturity() time.Duration {
	return time.Duration(c.MaturitySec) * time.Second
}

func (c EconomyConfig) InequalityCooldown() time.Duration {
	return time.Duration(c.InequalityCooldownSec) * time.Second
}

// Default mirrors the long-standing tuning of the simulation. Every value can
// be overridden from the TOML file.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: slog.LevelInfo},
		DB: DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "economica",
			Database: "economica",
			PoolSize: 10,
		},
		Feed: FeedConfig{
			GoldURL:     "https://api.metalpriceapi.com/v1/latest?base=USD&currencies=XAU",
			CryptoURL:   "https://api.coingecko.com/api/v3/simple/price",
			ForexURL:    "https://api.exchangerate-api.com/v4/latest/USD",
			TimeoutSec:  5,
			CacheSize:   256,
			MaxStaleSec: 6 * 60 * 60,
		},
		Economy: EconomyConfig{
			StartingCash: 1000,

			ClassUpperBounds: []int64{10_000, 50_000, 200_000, 1_000_000},
			TaxRates:         []float64{0.05, 0.15, 0.28, 0.37, 0.45},
			LoanInterest:     []float64{0.12, 0.08, 0.05, 0.03, 0.02},
			LoanMax:          []int64{5_000, 25_000, 100_000, 500_000, 2_000_000},
			PoliticalPower:   []int{1, 3, 7, 15, 30},

			MinimumWage:          1500,
			NaturalUnemployment:  0.05,
			SupplyModifierCap:    2.0,
			SkillModifierCap:     1.5,
			GDPModifierCap:       2.0,
			GDPBaseline:          1_000_000,
			SkillUpChance:        0.10,
			SkillProgressPerWork: 5,
			WorkCooldownSec:      8 * 60 * 60,

			Spread: 0.05,

			CrimeCooldownSec: 6 * 60 * 60,
			RobCooldownSec:   12 * 60 * 60,
			PoliceStrength:   0.5,
			RobCapFraction:   0.25,

			MaturitySec:     7 * 24 * 60 * 60,
			MaxEarlyPenalty: 0.10,

			WelfareThreshold: 5000,
			WelfareBase:      500,
			TermDays:         14,
			LoanTermDays:     7,

			Velocity:              1.5,
			InflationDamping:      0.3,
			GDPWindowDays:         7,
			CycleDays:             28,
			PhaseJitterFrac:       0.15,
			GiniThreshold:         0.45,
			InequalityCooldownSec: 24 * 60 * 60,
			RedistributionRate:    0.01,
			InterestRate:          0.05,
		},
	}
}
