package features

import (
	"fmt"
	"math"
	"strings"

	"RegimeWatch/internal/domain/models"
)

// rolling window length shared by the volume z-score, realized volatility
// and SMA-distance features. Must match what the model was trained on.
const rollWindow = 20

// BuildWindow computes the named feature columns over the merged series and
// returns the last timeSteps rows in exactly the given column order, ready
// for the classifier. Feature names carry an interval suffix resolved
// against fineTF/coarseTF (e.g. "ret_5m", "vol_z_15m").
// Returns models.ErrDataUnavailable when the series is too short to fill
// the window after warmup.
func BuildWindow(merged []models.MergedBar, names []string, timeSteps int, fineTF, coarseTF string) ([][]float64, error) {
	if timeSteps <= 0 {
		return nil, fmt.Errorf("invalid time steps %d", timeSteps)
	}

	cols := make([][]float64, len(names))
	warmup := 0
	for i, name := range names {
		series, w, err := computeSeries(merged, name, fineTF, coarseTF)
		if err != nil {
			return nil, err
		}
		cols[i] = series
		if w > warmup {
			warmup = w
		}
	}

	usable := len(merged) - warmup
	if usable < timeSteps {
		return nil, fmt.Errorf("%w: need %d feature rows, have %d",
			models.ErrDataUnavailable, timeSteps, usable)
	}

	window := make([][]float64, timeSteps)
	offset := len(merged) - timeSteps
	for r := 0; r < timeSteps; r++ {
		row := make([]float64, len(names))
		for c := range names {
			row[c] = cols[c][offset+r]
		}
		window[r] = row
	}
	return window, nil
}

func computeSeries(merged []models.MergedBar, name, fineTF, coarseTF string) ([]float64, int, error) {
	idx := strings.LastIndex(name, "_")
	if idx <= 0 || idx == len(name)-1 {
		return nil, 0, fmt.Errorf("malformed feature name %q", name)
	}
	stat, tf := name[:idx], name[idx+1:]

	var pick func(models.MergedBar) models.Candle
	switch tf {
	case fineTF:
		pick = func(b models.MergedBar) models.Candle { return b.Fine }
	case coarseTF:
		pick = func(b models.MergedBar) models.Candle { return b.Coarse }
	default:
		return nil, 0, fmt.Errorf("feature %q references unknown timeframe %q", name, tf)
	}

	bars := make([]models.Candle, len(merged))
	for i, b := range merged {
		bars[i] = pick(b)
	}

	switch stat {
	case "ret":
		return logReturns(bars), 1, nil
	case "range":
		return rangePct(bars), 0, nil
	case "body":
		return bodyPct(bars), 0, nil
	case "vol_z":
		return volumeZScore(bars, rollWindow), rollWindow, nil
	case "rv":
		return realizedVol(bars, rollWindow), rollWindow + 1, nil
	case "sma_dist":
		return smaDistance(bars, rollWindow), rollWindow, nil
	default:
		return nil, 0, fmt.Errorf("unknown feature stat %q in %q", stat, name)
	}
}

// logReturns computes r_t = ln(C_t / C_{t-1}); index 0 is zero-filled.
func logReturns(bars []models.Candle) []float64 {
	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Close, bars[i].Close
		if prev <= 0 || cur <= 0 {
			continue
		}
		out[i] = math.Log(cur / prev)
	}
	return out
}

// rangePct is the bar's high-low span relative to close.
func rangePct(bars []models.Candle) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if b.Close > 0 {
			out[i] = (b.High - b.Low) / b.Close
		}
	}
	return out
}

// bodyPct is the signed candle body relative to close.
func bodyPct(bars []models.Candle) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if b.Close > 0 {
			out[i] = (b.Close - b.Open) / b.Close
		}
	}
	return out
}

// volumeZScore standardizes volume against a trailing window.
func volumeZScore(bars []models.Candle, window int) []float64 {
	out := make([]float64, len(bars))
	for i := window; i < len(bars); i++ {
		mean, std := meanStd(func(j int) float64 { return bars[j].Volume }, i-window, i)
		if std > 0 {
			out[i] = (bars[i].Volume - mean) / std
		}
	}
	return out
}

// realizedVol is the trailing standard deviation of log returns.
func realizedVol(bars []models.Candle, window int) []float64 {
	rets := logReturns(bars)
	out := make([]float64, len(bars))
	for i := window + 1; i < len(bars); i++ {
		_, std := meanStd(func(j int) float64 { return rets[j] }, i-window, i)
		out[i] = std
	}
	return out
}

// smaDistance is close relative to its trailing simple moving average.
func smaDistance(bars []models.Candle, window int) []float64 {
	out := make([]float64, len(bars))
	for i := window; i < len(bars); i++ {
		sum := 0.0
		for j := i - window; j < i; j++ {
			sum += bars[j].Close
		}
		sma := sum / float64(window)
		if sma > 0 {
			out[i] = bars[i].Close/sma - 1
		}
	}
	return out
}

func meanStd(at func(int) float64, from, to int) (float64, float64) {
	n := float64(to - from)
	if n <= 1 {
		return 0, 0
	}
	sum, sum2 := 0.0, 0.0
	for j := from; j < to; j++ {
		v := at(j)
		sum += v
		sum2 += v * v
	}
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}
