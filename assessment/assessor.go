package assessment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"heartcheck/monitoring"
)

var ErrInference = errors.New("inference failed")

// Classifier is the part of a loaded model the assessor needs.
type Classifier interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([]float64, error)
}

type prediction struct {
	label             int
	probabilityAtRisk float64
}

// Assessor turns submissions into risk results against one loaded classifier.
// It holds no per-request state and is safe for concurrent use.
type Assessor struct {
	model   Classifier
	cache   *lru.Cache[FeatureVector, prediction]
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

type Option func(*Assessor) error

// WithCache memoizes predictions per feature vector. A size of zero disables caching.
func WithCache(size int) Option {
	return func(a *Assessor) error {
		if size <= 0 {
			a.cache = nil
			return nil
		}
		cache, err := lru.New[FeatureVector, prediction](size)
		if err != nil {
			return err
		}
		a.cache = cache
		return nil
	}
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(a *Assessor) error {
		a.metrics = m
		return nil
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Assessor) error {
		a.logger = logger
		return nil
	}
}

func NewAssessor(model Classifier, opts ...Option) (*Assessor, error) {
	if model == nil {
		return nil, errors.New("classifier is required")
	}
	a := &Assessor{model: model, logger: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Assess validates and encodes the submission, then runs one prediction.
// Validation failures wrap ErrInvalidSubmission; classifier failures wrap ErrInference.
func (a *Assessor) Assess(ctx context.Context, s Submission) (Result, error) {
	start := time.Now()
	if err := s.Validate(); err != nil {
		a.metrics.ObserveFailure()
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		a.metrics.ObserveFailure()
		return Result{}, err
	}

	features := Encode(s)
	p, cached, err := a.predict(features)
	if err != nil {
		a.metrics.ObserveFailure()
		a.logger.Error("inference failed", zap.Error(err), zap.Float64s("features", features[:]))
		return Result{}, err
	}

	result := newResult(p.label, p.probabilityAtRisk, features)
	a.metrics.ObserveAssessment(start, result.AtRisk(), cached)
	a.logger.Debug("assessment complete",
		zap.Int("label", result.Label),
		zap.Float64("probability_at_risk", result.ProbabilityAtRisk),
		zap.Bool("cached", cached),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (a *Assessor) predict(features FeatureVector) (prediction, bool, error) {
	if a.cache != nil {
		if p, ok := a.cache.Get(features); ok {
			return p, true, nil
		}
	}

	input := features.Slice()
	label, err := a.model.Predict(input)
	if err != nil {
		return prediction{}, false, fmt.Errorf("%w: predict: %v", ErrInference, err)
	}
	if label != LabelAtRisk && label != LabelNotAtRisk {
		return prediction{}, false, fmt.Errorf("%w: unexpected class %d", ErrInference, label)
	}
	proba, err := a.model.PredictProba(input)
	if err != nil {
		return prediction{}, false, fmt.Errorf("%w: predict_proba: %v", ErrInference, err)
	}
	if len(proba) != 2 {
		return prediction{}, false, fmt.Errorf("%w: expected 2 class probabilities, got %d", ErrInference, len(proba))
	}
	pAtRisk := proba[LabelAtRisk]
	if math.IsNaN(pAtRisk) || pAtRisk < 0 || pAtRisk > 1 {
		return prediction{}, false, fmt.Errorf("%w: probability %v out of range", ErrInference, pAtRisk)
	}

	p := prediction{label: label, probabilityAtRisk: pAtRisk}
	if a.cache != nil {
		a.cache.Add(features, p)
	}
	return p, false, nil
}
