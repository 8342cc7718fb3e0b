package matching

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Calculator computes the symmetric compatibility score between two
// specific users by scoring in both directions, each with the viewer's
// own preferences, and averaging. Inputs are asymmetric; the output is
// one shared number.
type Calculator struct {
	repo   Repository
	engine *Engine
	log    *zap.Logger
	now    func() time.Time
}

func NewCalculator(repo Repository, engine *Engine, log *zap.Logger) *Calculator {
	return &Calculator{
		repo:   repo,
		engine: engine,
		log:    log,
		now:    time.Now,
	}
}

// Compatibility returns a 0-100 percentage and the deduplicated union
// of both directions' explanations. Failing to load either user is
// fatal.
func (c *Calculator) Compatibility(ctx context.Context, userIDA, userIDB int64) (*CompatibilityResult, error) {
	viewerA, err := c.loadViewer(ctx, userIDA)
	if err != nil {
		return nil, err
	}
	viewerB, err := c.loadViewer(ctx, userIDB)
	if err != nil {
		return nil, err
	}

	scoreAB, err := c.engine.ScoreCandidate(ctx, viewerA, viewerB.Profile)
	if err != nil {
		return nil, fmt.Errorf("score %d viewing %d: %w", userIDA, userIDB, err)
	}
	scoreBA, err := c.engine.ScoreCandidate(ctx, viewerB, viewerA.Profile)
	if err != nil {
		return nil, fmt.Errorf("score %d viewing %d: %w", userIDB, userIDA, err)
	}

	// Average at full precision, round only the final percentage.
	average := (scoreAB.OverallScore + scoreBA.OverallScore) / 2

	return &CompatibilityResult{
		Percentage:    int(math.Round(average * 100)),
		SharedFactors: dedupeStrings(scoreAB.Explanations, scoreBA.Explanations),
	}, nil
}

func (c *Calculator) loadViewer(ctx context.Context, userID int64) (*Viewer, error) {
	rec, err := c.repo.GetUserRecord(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	return &Viewer{
		Profile:     NormalizeProfile(rec, c.now()),
		Preferences: NormalizePreferences(rec.PreferencesRaw),
	}, nil
}

// dedupeStrings merges lists preserving first-seen order.
func dedupeStrings(lists ...[]string) []string {
	seen := make(map[string]bool)
	merged := []string{}
	for _, list := range lists {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				merged = append(merged, s)
			}
		}
	}
	return merged
}
