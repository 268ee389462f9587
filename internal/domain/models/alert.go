package models

// AlertKind identifies a notification-worthy event type.
type AlertKind string

const (
	AlertStrongTrendConfirmed AlertKind = "STRONG_TREND_CONFIRMED"
	AlertChoppyMarketWarning  AlertKind = "CHOPPY_MARKET_WARNING"
	AlertRegimeChange         AlertKind = "REGIME_CHANGE"
)

// AllAlertKinds returns the closed set of alert kinds in stable order.
func AllAlertKinds() []AlertKind {
	return []AlertKind{
		AlertStrongTrendConfirmed,
		AlertChoppyMarketWarning,
		AlertRegimeChange,
	}
}

// IsValidAlertKind returns true if k is a member of the alert kind set.
func IsValidAlertKind(k AlertKind) bool {
	switch k {
	case AlertStrongTrendConfirmed, AlertChoppyMarketWarning, AlertRegimeChange:
		return true
	default:
		return false
	}
}

// ParseAlertKind converts a raw string to an AlertKind, reporting membership.
func ParseAlertKind(s string) (AlertKind, bool) {
	k := AlertKind(s)
	return k, IsValidAlertKind(k)
}

// Display returns the human-readable alert name used in notifications.
func (k AlertKind) Display() string {
	switch k {
	case AlertStrongTrendConfirmed:
		return "Strong Trend Confirmed"
	case AlertChoppyMarketWarning:
		return "Choppy Market Warning"
	case AlertRegimeChange:
		return "Regime Change"
	default:
		return string(k)
	}
}

// AlertEvent is a single alert produced by comparing consecutive cycles.
// From/To are populated only for REGIME_CHANGE.
type AlertEvent struct {
	Kind       AlertKind `json:"kind"`
	From       Regime    `json:"from,omitempty"`
	To         Regime    `json:"to,omitempty"`
	Confidence float64   `json:"confidence"`
}

// EngineState carries the previous cycle's decision between evaluations.
// Nil pointers mean cold start: no previous cycle has completed.
type EngineState struct {
	PreviousRegime     *Regime
	PreviousConfidence *float64
}
