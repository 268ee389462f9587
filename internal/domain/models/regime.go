package models

// Regime is a label describing the market's current qualitative behavior.
// The set is fixed at build time and shared by the classifier output space
// and the subscriber preference schema.
type Regime string

const (
	RegimeStrongTrend     Regime = "STRONG_TREND"
	RegimeWeakTrend       Regime = "WEAK_TREND"
	RegimeRange           Regime = "RANGE"
	RegimeSqueeze         Regime = "SQUEEZE"
	RegimeChoppyHighVol   Regime = "CHOPPY_HIGH_VOL"
	RegimeVolatilitySpike Regime = "VOLATILITY_SPIKE"
)

// AllRegimes returns the closed set of regimes in stable order.
func AllRegimes() []Regime {
	return []Regime{
		RegimeStrongTrend,
		RegimeWeakTrend,
		RegimeRange,
		RegimeSqueeze,
		RegimeChoppyHighVol,
		RegimeVolatilitySpike,
	}
}

// IsValidRegime returns true if r is a member of the regime set.
func IsValidRegime(r Regime) bool {
	switch r {
	case RegimeStrongTrend, RegimeWeakTrend, RegimeRange,
		RegimeSqueeze, RegimeChoppyHighVol, RegimeVolatilitySpike:
		return true
	default:
		return false
	}
}

// ParseRegime converts a raw string to a Regime, reporting membership.
func ParseRegime(s string) (Regime, bool) {
	r := Regime(s)
	return r, IsValidRegime(r)
}

// Display returns the human-readable regime name used in notifications.
func (r Regime) Display() string {
	switch r {
	case RegimeStrongTrend:
		return "Strong Trend"
	case RegimeWeakTrend:
		return "Weak Trend"
	case RegimeRange:
		return "Range"
	case RegimeSqueeze:
		return "Squeeze"
	case RegimeChoppyHighVol:
		return "Choppy High-Vol"
	case RegimeVolatilitySpike:
		return "Volatility Spike"
	default:
		return string(r)
	}
}

// ClassificationResult is one classifier decision over the regime set.
// Invariants: Distribution[Regime] == Confidence, Regime is the argmax of
// Distribution, and the distribution values sum to ~1 after rounding.
type ClassificationResult struct {
	Regime       Regime             `json:"regime"`
	Confidence   float64            `json:"confidence"`
	Distribution map[Regime]float64 `json:"distribution"`
}

// Valid reports whether the result satisfies the argmax and confidence
// invariants within eps.
func (c ClassificationResult) Valid(eps float64) bool {
	if !IsValidRegime(c.Regime) || len(c.Distribution) == 0 {
		return false
	}
	p, ok := c.Distribution[c.Regime]
	if !ok || absDiff(p, c.Confidence) > eps {
		return false
	}
	for _, v := range c.Distribution {
		if v > c.Confidence+eps {
			return false
		}
	}
	return true
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
