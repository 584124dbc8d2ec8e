package ml

import "errors"

var (
	// ErrInvalidModel is returned when an artifact cannot be turned into a usable classifier.
	ErrInvalidModel = errors.New("invalid model artifact")
	// ErrFeatureCount is returned when a vector does not match the model's input width.
	ErrFeatureCount = errors.New("feature count mismatch")
)

// Classifier is a loaded, read-only classification model.
// Implementations are safe for concurrent use once constructed.
type Classifier interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([]float64, error)
	NumFeatures() int
	Classes() []int
}
