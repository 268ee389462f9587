package features

import (
	"RegimeWatch/internal/domain/models"
)

// MergeTimeframes aligns two candle series onto the fine-grained timeline
// with a backward as-of join: each fine bar is paired with the most recent
// coarse bar at or before it. Fine bars preceding the first coarse bar are
// dropped. Both inputs must be ascending by time.
func MergeTimeframes(fine, coarse []models.Candle) []models.MergedBar {
	if len(fine) == 0 || len(coarse) == 0 {
		return nil
	}

	out := make([]models.MergedBar, 0, len(fine))
	j := 0
	for _, f := range fine {
		// advance coarse pointer to the last bar at or before f
		for j+1 < len(coarse) && !coarse[j+1].Bucket.After(f.Bucket) {
			j++
		}
		if coarse[j].Bucket.After(f.Bucket) {
			continue // no coarse context yet
		}
		out = append(out, models.MergedBar{
			Bucket: f.Bucket,
			Fine:   f,
			Coarse: coarse[j],
		})
	}
	return out
}
