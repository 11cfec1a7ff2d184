// Package allocation maps a risk tier and a survivor count to a
// position-sizing plan.
package allocation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCandidates means no candidates survived the screen, so there is
// nothing to allocate. Callers surface this as a warning to the user,
// never as a crash.
var ErrNoCandidates = errors.New("no candidates to allocate")

// RiskTier is the coarse user-selected risk category. Higher risk
// concentrates capital in fewer, larger positions.
type RiskTier int

const (
	Low RiskTier = iota
	Medium
	High
)

// String implements fmt.Stringer.
func (t RiskTier) String() string {
	switch t {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("RiskTier(%d)", int(t))
	}
}

// ParseRiskTier parses a tier name, case-insensitively.
func ParseRiskTier(s string) (RiskTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium", "med":
		return Medium, nil
	case "high":
		return High, nil
	default:
		return Low, fmt.Errorf("unknown risk tier %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t RiskTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *RiskTier) UnmarshalText(text []byte) error {
	tier, err := ParseRiskTier(string(text))
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// Plan is the derived position-sizing suggestion.
// Invariant: PerPositionPct * PositionCount <= 100.
type Plan struct {
	PerPositionPct float64 `json:"per_position_pct"`
	PositionCount  int     `json:"position_count"`
}

// TotalPct is the total portfolio allocation of the plan.
func (p Plan) TotalPct() float64 {
	return p.PerPositionPct * float64(p.PositionCount)
}

// Policy holds the per-tier allocation tables. Both tables are
// configuration, not code: the strategy file can reshape them, or set
// a flat position cap across tiers.
type Policy struct {
	BasePct      map[RiskTier]float64
	MaxPositions map[RiskTier]int
}

// DefaultPolicy returns the standard tier tables: diversified small
// positions at low risk, concentrated bets at high risk.
func DefaultPolicy() Policy {
	return Policy{
		BasePct: map[RiskTier]float64{
			Low:    5,
			Medium: 8,
			High:   12,
		},
		MaxPositions: map[RiskTier]int{
			Low:    20,
			Medium: 12,
			High:   8,
		},
	}
}

// Plan derives the allocation for a tier given the number of
// surviving candidates. The per-position percentage is capped at
// 100/count so the total can never exceed 100%.
func (p Policy) Plan(tier RiskTier, survivorCount int) (Plan, error) {
	if survivorCount <= 0 {
		return Plan{}, ErrNoCandidates
	}

	base, ok := p.BasePct[tier]
	if !ok {
		return Plan{}, fmt.Errorf("no base allocation for tier %s", tier)
	}

	maxPositions, ok := p.MaxPositions[tier]
	if !ok || maxPositions <= 0 {
		return Plan{}, fmt.Errorf("no position cap for tier %s", tier)
	}

	count := maxPositions
	if survivorCount < count {
		count = survivorCount
	}

	perPosition := base
	if ceiling := 100 / float64(count); perPosition > ceiling {
		perPosition = ceiling
	}

	return Plan{
		PerPositionPct: perPosition,
		PositionCount:  count,
	}, nil
}
