package assessment

import "fmt"

const (
	LabelNotAtRisk = 0
	LabelAtRisk    = 1
)

const (
	VerdictAtRisk    = "AT RISK"
	VerdictNotAtRisk = "NOT at risk"
)

type Result struct {
	Label             int           `json:"label"`
	Verdict           string        `json:"verdict"`
	ProbabilityAtRisk float64       `json:"probability_at_risk"`
	Confidence        float64       `json:"confidence"`
	ConfidenceText    string        `json:"confidence_text"`
	Features          FeatureVector `json:"features"`
}

// Confidence is the probability of the predicted class: P(at risk) when the
// label is at-risk, its complement otherwise. The result is clamped to [0,1].
func Confidence(label int, probabilityAtRisk float64) float64 {
	c := probabilityAtRisk
	if label != LabelAtRisk {
		c = 1 - probabilityAtRisk
	}
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

func newResult(label int, probabilityAtRisk float64, features FeatureVector) Result {
	verdict := VerdictNotAtRisk
	if label == LabelAtRisk {
		verdict = VerdictAtRisk
	}
	confidence := Confidence(label, probabilityAtRisk)
	return Result{
		Label:             label,
		Verdict:           verdict,
		ProbabilityAtRisk: probabilityAtRisk,
		Confidence:        confidence,
		ConfidenceText:    FormatPercent(confidence),
		Features:          features,
	}
}

func (r Result) AtRisk() bool {
	return r.Label == LabelAtRisk
}

// Message is the one-line verdict shown to the user.
func (r Result) Message() string {
	return fmt.Sprintf("The patient is %s. Confidence: %s", r.Verdict, r.ConfidenceText)
}

func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}
