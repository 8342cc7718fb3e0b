package matching

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/emberlyapp/emberly-backend/internal/config"
)

var errNilCandidate = errors.New("cannot score nil candidate")

// Engine combines the six factor scorers into a single MatchScore using
// the fixed weight vector from ScoringConfig. Scoring a candidate is
// read-only with respect to the viewer snapshot, so one Engine is safe
// for concurrent use.
type Engine struct {
	cfg     config.ScoringConfig
	scorers []Scorer
	weights map[string]float64
	log     *zap.Logger
}

// NewEngine builds an engine with the standard scorer set. The
// engagement source is the only impure dependency; hand in a cached
// variant to avoid per-candidate store reads.
func NewEngine(cfg config.ScoringConfig, engagement EngagementSource, log *zap.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		scorers: []Scorer{
			preferenceScorer{},
			interestScorer{},
			distanceScorer{},
			newActivityScorer(),
			newEngagementScorer(engagement, log),
			verificationScorer{},
		},
		weights: map[string]float64{
			FactorPreferenceMatch: cfg.WeightPreferenceMatch,
			FactorInterestOverlap: cfg.WeightInterestOverlap,
			FactorDistance:        cfg.WeightDistance,
			FactorActivity:        cfg.WeightActivity,
			FactorEngagement:      cfg.WeightEngagement,
			FactorVerification:    cfg.WeightVerification,
		},
		log: log,
	}
}

// ScoreCandidate runs every factor scorer and produces the weighted
// overall score at full precision, together with the per-factor values
// and the explanations the scorers chose to emit.
func (e *Engine) ScoreCandidate(ctx context.Context, viewer *Viewer, candidate *UserProfile) (*MatchScore, error) {
	if candidate == nil {
		return nil, errNilCandidate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	score := &MatchScore{
		CandidateID:  candidate.ID,
		Factors:      make(map[string]float64, len(e.scorers)),
		Explanations: []string{},
	}

	for _, scorer := range e.scorers {
		value, explanation := scorer.Score(ctx, viewer, candidate)
		score.Factors[scorer.Name()] = value
		score.OverallScore += e.weights[scorer.Name()] * value
		if explanation != "" {
			score.Explanations = append(score.Explanations, explanation)
		}
	}

	score.Tier = e.Tier(score.OverallScore)
	RecordMatchScore(score.OverallScore)

	return score, nil
}

// Tier maps an overall score onto its informational tier.
func (e *Engine) Tier(score float64) string {
	switch {
	case score >= e.cfg.ExcellentScore:
		return TierExcellent
	case score >= e.cfg.GoodScore:
		return TierGood
	default:
		return TierFair
	}
}

// Round2 rounds a score to two decimal places for presentation.
// Filtering and sorting always use the full-precision value so rounding
// can never invert an ordering.
func Round2(score float64) float64 {
	return math.Round(score*100) / 100
}
