package models

// Snapshot is the single latest classification result plus the alerts it
// produced, as seen by external readers. One snapshot exists per symbol;
// every cycle overwrites it wholesale (last write wins, no history).
type Snapshot struct {
	Symbol       string             `json:"symbol"`
	Timestamp    *int64             `json:"timestamp"`
	Regime       *Regime            `json:"current_regime"`
	Confidence   *float64           `json:"confidence"`
	Distribution map[Regime]float64 `json:"probabilities"`
	Alerts       []AlertEvent       `json:"alerts"`
}

// DefaultSnapshot is what readers observe before the first successful cycle.
func DefaultSnapshot(symbol string) *Snapshot {
	return &Snapshot{
		Symbol: symbol,
		Alerts: []AlertEvent{},
	}
}

// NewSnapshot builds the snapshot for one completed cycle.
func NewSnapshot(symbol string, ts int64, res ClassificationResult, alerts []AlertEvent) *Snapshot {
	if alerts == nil {
		alerts = []AlertEvent{}
	}
	regime := res.Regime
	conf := res.Confidence
	return &Snapshot{
		Symbol:       symbol,
		Timestamp:    &ts,
		Regime:       &regime,
		Confidence:   &conf,
		Distribution: res.Distribution,
		Alerts:       alerts,
	}
}
