package denial_extractor

import (
	"math"

	"github.com/careloop/appealgen/internal/domain/denial"
)

// ---------------------------------------------------------------------------
// Confidence scoring
// ---------------------------------------------------------------------------

// ScoreWeights assigns a non-negative contribution to each signal field.  The
// values are a tunable policy, not a contract: only the ordering property
// matters (adding a previously-missing signal never decreases the score).
type ScoreWeights struct {
	PayerName      float64
	DenialDate     float64
	ReasonResolved float64
	ReasonText     float64
	ProcedureCodes float64
	DiagnosisCodes float64
	ClaimNumber    float64
	AppealDeadline float64
}

// DefaultScoreWeights returns the production weighting.  Resolving the reason
// to a real category carries the most weight; the claim number the least,
// since it is the easiest field to recover.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		PayerName:      1.0,
		DenialDate:     1.0,
		ReasonResolved: 1.5,
		ReasonText:     1.0,
		ProcedureCodes: 1.0,
		DiagnosisCodes: 1.0,
		ClaimNumber:    0.5,
		AppealDeadline: 1.0,
	}
}

func (w ScoreWeights) total() float64 {
	return w.PayerName + w.DenialDate + w.ReasonResolved + w.ReasonText +
		w.ProcedureCodes + w.DiagnosisCodes + w.ClaimNumber + w.AppealDeadline
}

// Scorer computes the extraction-confidence heuristic.  The score is a proxy
// for how much structured signal was recovered from the raw text, not a
// statistical confidence interval.
type Scorer struct {
	weights ScoreWeights
	max     float64
}

// NewScorer builds a scorer with the given weights; zero-valued weights fall
// back to the defaults.
func NewScorer(weights ScoreWeights) *Scorer {
	if weights.total() == 0 {
		weights = DefaultScoreWeights()
	}
	return &Scorer{weights: weights, max: weights.total()}
}

// Score sums the weight of every present signal field, normalises by the
// weight total, clamps to [0,1], and rounds to two decimal places.
func (s *Scorer) Score(ex *denial.Extraction) float64 {
	if ex == nil {
		return 0
	}

	score := 0.0
	if ex.PayerName != "" {
		score += s.weights.PayerName
	}
	if ex.DenialDate != nil {
		score += s.weights.DenialDate
	}
	if ex.Reason != denial.ReasonOther {
		score += s.weights.ReasonResolved
	}
	if ex.ReasonText != "" {
		score += s.weights.ReasonText
	}
	if len(ex.ProcedureCodes) > 0 {
		score += s.weights.ProcedureCodes
	}
	if len(ex.DiagnosisCodes) > 0 {
		score += s.weights.DiagnosisCodes
	}
	if ex.ClaimNumber != "" {
		score += s.weights.ClaimNumber
	}
	if ex.AppealDeadline != nil {
		score += s.weights.AppealDeadline
	}

	normalised := score / s.max
	if normalised > 1 {
		normalised = 1
	}
	if normalised < 0 {
		normalised = 0
	}
	// Half-to-even keeps 5.0/8 at 0.62 rather than 0.63.
	return math.RoundToEven(normalised*100) / 100
}
