package models

import "errors"

// Closed error taxonomy for the monitoring pipeline. Call sites wrap these
// with fmt.Errorf("...: %w", Err...) so the cycle boundary can classify any
// failure while keeping the full cause chain.
var (
	// ErrDataUnavailable - the market data provider could not serve bars.
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrShapeMismatch - the feature window does not match the model's
	// expected (time_steps, n_features) dimensions.
	ErrShapeMismatch = errors.New("feature window shape mismatch")
	// ErrModelFailure - the classification call errored.
	ErrModelFailure = errors.New("model classification failed")
	// ErrStoreFailure - a read or write of a persisted store failed.
	ErrStoreFailure = errors.New("store operation failed")
	// ErrDeliveryFailure - one subscriber's message could not be sent.
	ErrDeliveryFailure = errors.New("notification delivery failed")
)

// ErrorKind maps an error to its taxonomy label for logs and metrics.
// Unrecognized errors are reported as "unknown", never swallowed.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, ErrModelFailure):
		return "model_failure"
	case errors.Is(err, ErrStoreFailure):
		return "store_failure"
	case errors.Is(err, ErrDeliveryFailure):
		return "delivery_failure"
	default:
		return "unknown"
	}
}
