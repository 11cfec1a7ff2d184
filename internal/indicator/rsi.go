package indicator

// RSI computes a relative strength value from a close series. Both
// implementations return nil when the series is too short, and the
// screen stage treats nil as a filter failure, never a pass.
type RSI interface {
	// Compute returns the RSI of the series, or nil when it cannot be
	// computed.
	Compute(closes []float64) *float64

	// Name identifies the implementation in logs and reports.
	Name() string
}

// LegacyRSI reproduces the approximation the original screener
// shipped: 70 - mean(pctChange) * 100. This is not a real RSI — no
// gain/loss separation, no smoothing window. It is kept behind the
// RSI interface so callers never depend on which formula is active.
type LegacyRSI struct{}

// Name implements RSI.
func (LegacyRSI) Name() string { return "legacy" }

// Compute implements RSI.
func (LegacyRSI) Compute(closes []float64) *float64 {
	if len(closes) < 2 {
		return nil
	}

	var sum float64
	n := 0
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		sum += closes[i]/closes[i-1] - 1
		n++
	}
	if n == 0 {
		return nil
	}

	v := 70 - (sum/float64(n))*100
	return &v
}

// WilderRSI is the standard 14-period RSI with Wilder smoothing.
type WilderRSI struct {
	Period int
}

// NewWilderRSI creates a WilderRSI with the conventional period.
func NewWilderRSI() WilderRSI {
	return WilderRSI{Period: 14}
}

// Name implements RSI.
func (w WilderRSI) Name() string { return "wilder" }

// Compute implements RSI.
func (w WilderRSI) Compute(closes []float64) *float64 {
	period := w.Period
	if period <= 0 {
		period = 14
	}
	if len(closes) < period+1 {
		return nil
	}

	// Seed averages over the first period
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remainder
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		v := 100.0
		return &v
	}

	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	return &v
}
