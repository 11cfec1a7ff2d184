package marketdata

import "time"

// Sample is one daily observation for a ticker.
type Sample struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is a time-ordered price/volume series, oldest first.
// An empty series signals unavailable data.
type Series []Sample

// First returns the oldest sample.
func (s Series) First() Sample {
	return s[0]
}

// Last returns the most recent sample.
func (s Series) Last() Sample {
	return s[len(s)-1]
}

// Fundamentals is a sparse snapshot of fundamental attributes taken at
// scan time. A nil field means the provider did not report the value;
// nil is never coerced to zero.
type Fundamentals struct {
	PE         *float64 `json:"pe,omitempty"`          // trailing P/E
	ROE        *float64 `json:"roe,omitempty"`         // return on equity, fraction (0.18 = 18%)
	DebtEquity *float64 `json:"debt_equity,omitempty"` // total debt / equity
	MarketCap  *float64 `json:"market_cap,omitempty"`  // absolute currency units
}
