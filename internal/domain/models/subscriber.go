package models

// Subscriber holds one chat's notification preferences. All flags default
// to off; records are created lazily on first interaction and never deleted.
type Subscriber struct {
	ID                string            `json:"id"`
	AlertPrefs        map[AlertKind]bool `json:"alerts"`
	RegimeNotifyPrefs map[Regime]bool    `json:"regime_notify"`
}

// NewSubscriber returns a subscriber with every flag off.
func NewSubscriber(id string) Subscriber {
	s := Subscriber{ID: id}
	s.Normalize()
	return s
}

// Normalize backfills missing alert and regime entries with false. Records
// written before a new AlertKind or Regime existed stay loadable; this is a
// forward-compatible schema migration, not an error. Idempotent.
func (s *Subscriber) Normalize() {
	if s.AlertPrefs == nil {
		s.AlertPrefs = make(map[AlertKind]bool, len(AllAlertKinds()))
	}
	for _, k := range AllAlertKinds() {
		if _, ok := s.AlertPrefs[k]; !ok {
			s.AlertPrefs[k] = false
		}
	}
	if s.RegimeNotifyPrefs == nil {
		s.RegimeNotifyPrefs = make(map[Regime]bool, len(AllRegimes()))
	}
	for _, r := range AllRegimes() {
		if _, ok := s.RegimeNotifyPrefs[r]; !ok {
			s.RegimeNotifyPrefs[r] = false
		}
	}
}

// WantsAlert reports whether the subscriber opted into the alert kind.
func (s *Subscriber) WantsAlert(k AlertKind) bool {
	return s.AlertPrefs[k]
}

// WantsRegime reports whether the subscriber opted into entry notifications
// for the regime.
func (s *Subscriber) WantsRegime(r Regime) bool {
	return s.RegimeNotifyPrefs[r]
}
