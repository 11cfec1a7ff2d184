package screen

import "github.com/wonny/momentum/internal/indicator"

// FiltersConfig holds the hard-cut thresholds. A zero value disables
// the corresponding predicate, so an empty config screens nothing.
type FiltersConfig struct {
	MinMomentumPct float64 // momentum % floor
	MinPE          float64 // P/E floor
	MinROEPct      float64 // ROE % floor
	MaxDebtEquity  float64 // debt/equity ceiling
	MinMarketCapB  float64 // market cap floor, billions
	MinRSI         float64 // RSI floor
	MinVolumeM     float64 // average volume floor, millions
}

// Build turns the config into the active predicate set. Predicates
// over nullable indicators reject candidates whose value is missing —
// a row with unknown P/E never passes a P/E filter.
func (c FiltersConfig) Build() []Predicate {
	var predicates []Predicate

	if c.MinMomentumPct != 0 {
		min := c.MinMomentumPct
		predicates = append(predicates, Predicate{
			Name: "momentum",
			Keep: func(cd indicator.Candidate) bool {
				return cd.MomentumPct >= min
			},
		})
	}

	if c.MinPE != 0 {
		min := c.MinPE
		predicates = append(predicates, Predicate{
			Name: "pe",
			Keep: func(cd indicator.Candidate) bool {
				return cd.PE != nil && *cd.PE >= min
			},
		})
	}

	if c.MinROEPct != 0 {
		min := c.MinROEPct
		predicates = append(predicates, Predicate{
			Name: "roe",
			Keep: func(cd indicator.Candidate) bool {
				return cd.ROEPct != nil && *cd.ROEPct >= min
			},
		})
	}

	if c.MaxDebtEquity != 0 {
		max := c.MaxDebtEquity
		predicates = append(predicates, Predicate{
			Name: "debt_equity",
			Keep: func(cd indicator.Candidate) bool {
				return cd.DebtEquity != nil && *cd.DebtEquity <= max
			},
		})
	}

	if c.MinMarketCapB != 0 {
		min := c.MinMarketCapB * 1e9
		predicates = append(predicates, Predicate{
			Name: "market_cap",
			Keep: func(cd indicator.Candidate) bool {
				return cd.MarketCap != nil && *cd.MarketCap >= min
			},
		})
	}

	if c.MinRSI != 0 {
		min := c.MinRSI
		predicates = append(predicates, Predicate{
			Name: "rsi",
			Keep: func(cd indicator.Candidate) bool {
				return cd.RSI != nil && *cd.RSI >= min
			},
		})
	}

	if c.MinVolumeM != 0 {
		min := c.MinVolumeM
		predicates = append(predicates, Predicate{
			Name: "volume",
			Keep: func(cd indicator.Candidate) bool {
				return cd.AvgVolumeM >= min
			},
		})
	}

	return predicates
}
