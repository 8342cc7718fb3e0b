package matching

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/emberlyapp/emberly-backend/internal/config"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		WeightPreferenceMatch: 0.25,
		WeightInterestOverlap: 0.20,
		WeightDistance:        0.15,
		WeightActivity:        0.15,
		WeightEngagement:      0.15,
		WeightVerification:    0.10,
		MinScore:              0.30,
		GoodScore:             0.60,
		ExcellentScore:        0.80,
		CandidatePoolSize:     100,
		ScoreConcurrency:      4,
		EngagementCacheTTL:    time.Minute,
	}
}

func TestScoringConfigWeightSum(t *testing.T) {
	assert.InDelta(t, 1.0, testScoringConfig().WeightSum(), 1e-12)
}

func TestEngineScoreCandidate(t *testing.T) {
	cfg := testScoringConfig()

	t.Run("strong candidate", func(t *testing.T) {
		engagement := &stubEngagement{stats: map[int64]*EngagementStats{
			2: {LikesReceived: 10, MatchesFormed: 4, MessagesSent: 4},
		}}
		engine := NewEngine(cfg, engagement, zaptest.NewLogger(t))

		lastActive := time.Now().Add(-30 * time.Minute)
		viewer := &Viewer{
			Profile: &UserProfile{
				ID:        1,
				Interests: []string{"music", "hiking", "art"},
				Location:  &Location{Latitude: 0, Longitude: 0},
			},
			Preferences: &UserPreferences{
				MinAge: 25, MaxAge: 35, MaxDistanceKm: 50,
				GenderPreference: strPtr("FEMALE"),
			},
		}
		candidate := &UserProfile{
			ID:     2,
			Age:    30,
			Gender: strPtr("FEMALE"),
			// 2 shared of 5 distinct interests: jaccard 0.4
			Interests: []string{"music", "hiking", "cooking", "travel"},
			// roughly 10km east along the equator
			Location:     &Location{Latitude: 0, Longitude: 10.0 / haversineKm(0, 0, 0, 1)},
			IsVerified:   true,
			LastActiveAt: &lastActive,
		}

		score, err := engine.ScoreCandidate(context.Background(), viewer, candidate)
		require.NoError(t, err)

		assert.Equal(t, 1.0, score.Factors[FactorPreferenceMatch])
		assert.InDelta(t, 1/(1+math.Exp(-0.6)), score.Factors[FactorInterestOverlap], 1e-9)
		assert.InDelta(t, 0.9, score.Factors[FactorDistance], 1e-3)
		assert.Equal(t, 1.0, score.Factors[FactorActivity])
		assert.Equal(t, 1.0, score.Factors[FactorEngagement])
		assert.Equal(t, 1.0, score.Factors[FactorVerification])

		expected := 0.25*score.Factors[FactorPreferenceMatch] +
			0.20*score.Factors[FactorInterestOverlap] +
			0.15*score.Factors[FactorDistance] +
			0.15*score.Factors[FactorActivity] +
			0.15*score.Factors[FactorEngagement] +
			0.10*score.Factors[FactorVerification]
		assert.InDelta(t, expected, score.OverallScore, 1e-12)
		assert.Greater(t, score.OverallScore, cfg.ExcellentScore)
		assert.Equal(t, TierExcellent, score.Tier)
		assert.NotEmpty(t, score.Explanations)
	})

	t.Run("missing optional data never zeroes or errors the score", func(t *testing.T) {
		engagement := &stubEngagement{err: errors.New("unavailable")}
		engine := NewEngine(cfg, engagement, zaptest.NewLogger(t))

		viewer := &Viewer{
			Profile: &UserProfile{ID: 1, Interests: []string{"music"}, Location: &Location{Latitude: 1, Longitude: 1}},
			Preferences: &UserPreferences{
				MinAge: 25, MaxAge: 35, MaxDistanceKm: 50,
			},
		}
		// No location, no interests, never active
		candidate := &UserProfile{ID: 2, Age: 30}

		score, err := engine.ScoreCandidate(context.Background(), viewer, candidate)
		require.NoError(t, err)

		assert.Equal(t, neutralScore, score.Factors[FactorDistance])
		assert.Equal(t, neutralScore, score.Factors[FactorInterestOverlap])
		assert.Equal(t, 0.3, score.Factors[FactorActivity])
		assert.Equal(t, neutralScore, score.Factors[FactorEngagement])
		assert.Greater(t, score.OverallScore, 0.0)
	})

	t.Run("overall score stays in range", func(t *testing.T) {
		engine := NewEngine(cfg, &stubEngagement{err: errors.New("down")}, zap.NewNop())

		candidates := []*UserProfile{
			{ID: 2},
			{ID: 3, Age: 30, IsVerified: true, Interests: []string{"music"}},
		}
		viewer := &Viewer{
			Profile:     &UserProfile{ID: 1, Interests: []string{"music"}},
			Preferences: &UserPreferences{MinAge: 18, MaxAge: 99, MaxDistanceKm: 100},
		}

		for _, candidate := range candidates {
			score, err := engine.ScoreCandidate(context.Background(), viewer, candidate)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, score.OverallScore, 0.0)
			assert.LessOrEqual(t, score.OverallScore, 1.0)
		}
	})

	t.Run("nil candidate is an error", func(t *testing.T) {
		engine := NewEngine(cfg, &stubEngagement{}, zap.NewNop())
		_, err := engine.ScoreCandidate(context.Background(), viewerWith(nil, nil), nil)
		assert.Error(t, err)
	})

	t.Run("cancelled context is an error", func(t *testing.T) {
		engine := NewEngine(cfg, &stubEngagement{}, zap.NewNop())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.ScoreCandidate(ctx, viewerWith(nil, nil), &UserProfile{ID: 2})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEngineTier(t *testing.T) {
	engine := NewEngine(testScoringConfig(), &stubEngagement{}, zap.NewNop())

	assert.Equal(t, TierExcellent, engine.Tier(0.80))
	assert.Equal(t, TierExcellent, engine.Tier(0.95))
	assert.Equal(t, TierGood, engine.Tier(0.60))
	assert.Equal(t, TierGood, engine.Tier(0.79))
	assert.Equal(t, TierFair, engine.Tier(0.59))
	assert.Equal(t, TierFair, engine.Tier(0.0))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.88, Round2(0.8792))
	assert.Equal(t, 0.5, Round2(0.5))
	assert.Equal(t, 0.66, Round2(0.664))
	assert.Equal(t, 0.67, Round2(0.666))
	assert.Equal(t, 0.0, Round2(0.0))
	assert.Equal(t, 1.0, Round2(0.9999))
}
