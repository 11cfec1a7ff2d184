// Package strategy holds the scan strategy as data: filter thresholds,
// allocation tables and indicator selection live in a YAML file, not
// in code branches.
package strategy

import (
	"github.com/wonny/momentum/internal/allocation"
	"github.com/wonny/momentum/internal/indicator"
	"github.com/wonny/momentum/internal/screen"
)

// Config is the full strategy configuration.
type Config struct {
	Meta       Meta            `yaml:"meta" json:"meta"`
	Scan       Scan            `yaml:"scan" json:"scan"`
	RSI        RSIConfig       `yaml:"rsi" json:"rsi"`
	Filters    Filters         `yaml:"filters" json:"filters"`
	Allocation AllocationTable `yaml:"allocation" json:"allocation"`
}

// Meta identifies the strategy.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id" validate:"required"`
	Version    string `yaml:"version" json:"version" default:"1.0"`
}

// Scan holds default scan parameters. LookbackDays overrides the
// month-derived window when set.
type Scan struct {
	TimeHorizonMonths int    `yaml:"time_horizon_months" json:"time_horizon_months" default:"3" validate:"min=1,max=6"`
	LookbackDays      int    `yaml:"lookback_days" json:"lookback_days" validate:"omitempty,oneof=30 60 90 180"`
	RiskTier          string `yaml:"risk_tier" json:"risk_tier" default:"medium" validate:"oneof=low medium high"`
}

// RSIConfig selects the RSI implementation.
type RSIConfig struct {
	Mode   string `yaml:"mode" json:"mode" default:"legacy" validate:"oneof=legacy wilder"`
	Period int    `yaml:"period" json:"period" default:"14" validate:"min=2,max=50"`
}

// Filters holds the hard-cut thresholds. Zero disables a filter.
type Filters struct {
	MinMomentumPct float64 `yaml:"min_momentum_pct" json:"min_momentum_pct"`
	MinPE          float64 `yaml:"min_pe" json:"min_pe" validate:"gte=0"`
	MinROEPct      float64 `yaml:"min_roe_pct" json:"min_roe_pct" validate:"gte=0"`
	MaxDebtEquity  float64 `yaml:"max_debt_equity" json:"max_debt_equity" validate:"gte=0"`
	MinMarketCapB  float64 `yaml:"min_market_cap_b" json:"min_market_cap_b" validate:"gte=0"`
	MinRSI         float64 `yaml:"min_rsi" json:"min_rsi" validate:"omitempty,gte=20,lte=70"`
	MinVolumeM     float64 `yaml:"min_volume_m" json:"min_volume_m" validate:"gte=0"`
}

// AllocationTable holds per-tier sizing. FlatPositionCap, when set,
// replaces every per-tier cap with one value.
type AllocationTable struct {
	BasePct         TierFloats `yaml:"base_pct" json:"base_pct"`
	MaxPositions    TierInts   `yaml:"max_positions" json:"max_positions"`
	FlatPositionCap int        `yaml:"flat_position_cap" json:"flat_position_cap" validate:"gte=0"`
}

// TierFloats is a per-tier float table.
type TierFloats struct {
	Low    float64 `yaml:"low" json:"low" default:"5" validate:"gt=0,lte=100"`
	Medium float64 `yaml:"medium" json:"medium" default:"8" validate:"gt=0,lte=100"`
	High   float64 `yaml:"high" json:"high" default:"12" validate:"gt=0,lte=100"`
}

// TierInts is a per-tier int table.
type TierInts struct {
	Low    int `yaml:"low" json:"low" default:"20" validate:"gt=0"`
	Medium int `yaml:"medium" json:"medium" default:"12" validate:"gt=0"`
	High   int `yaml:"high" json:"high" default:"8" validate:"gt=0"`
}

// LookbackDays returns the momentum window: the explicit override when
// set, otherwise 30 days per horizon month.
func (c *Config) LookbackDays() int {
	if c.Scan.LookbackDays > 0 {
		return c.Scan.LookbackDays
	}
	return c.Scan.TimeHorizonMonths * 30
}

// ScreenFilters converts the filter section for the screen package.
func (c *Config) ScreenFilters() screen.FiltersConfig {
	return screen.FiltersConfig{
		MinMomentumPct: c.Filters.MinMomentumPct,
		MinPE:          c.Filters.MinPE,
		MinROEPct:      c.Filters.MinROEPct,
		MaxDebtEquity:  c.Filters.MaxDebtEquity,
		MinMarketCapB:  c.Filters.MinMarketCapB,
		MinRSI:         c.Filters.MinRSI,
		MinVolumeM:     c.Filters.MinVolumeM,
	}
}

// AllocationPolicy converts the allocation section.
func (c *Config) AllocationPolicy() allocation.Policy {
	maxPositions := map[allocation.RiskTier]int{
		allocation.Low:    c.Allocation.MaxPositions.Low,
		allocation.Medium: c.Allocation.MaxPositions.Medium,
		allocation.High:   c.Allocation.MaxPositions.High,
	}

	if flat := c.Allocation.FlatPositionCap; flat > 0 {
		for tier := range maxPositions {
			maxPositions[tier] = flat
		}
	}

	return allocation.Policy{
		BasePct: map[allocation.RiskTier]float64{
			allocation.Low:    c.Allocation.BasePct.Low,
			allocation.Medium: c.Allocation.BasePct.Medium,
			allocation.High:   c.Allocation.BasePct.High,
		},
		MaxPositions: maxPositions,
	}
}

// RSIImpl returns the configured RSI implementation.
func (c *Config) RSIImpl() indicator.RSI {
	if c.RSI.Mode == "wilder" {
		return indicator.WilderRSI{Period: c.RSI.Period}
	}
	return indicator.LegacyRSI{}
}

// DefaultTier returns the configured default risk tier.
func (c *Config) DefaultTier() allocation.RiskTier {
	tier, err := allocation.ParseRiskTier(c.Scan.RiskTier)
	if err != nil {
		return allocation.Medium
	}
	return tier
}
