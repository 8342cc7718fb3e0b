package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap/zaptest"
)

func newTestPicksGenerator(t *testing.T, repo *fakeRepo, perUser int) *PicksGenerator {
	log := zaptest.NewLogger(t)
	engine := NewEngine(testScoringConfig(), repo, log)
	ranker := NewRanker(repo, engine, testScoringConfig(), log)
	return NewPicksGenerator(ranker, repo, log, perUser, 24*time.Hour, 7)
}

func TestGeneratePicksForUser(t *testing.T) {
	repo := &fakeRepo{
		users: map[int64]*UserRecord{1: viewerRecord(1)},
		candidates: []*UserRecord{
			candidateRecord(10, 25, "FEMALE", true),
			candidateRecord(11, 25, "FEMALE", true),
			candidateRecord(12, 25, "FEMALE", false),
		},
	}

	gen := newTestPicksGenerator(t, repo, 2)
	require.NoError(t, gen.GeneratePicksForUser(context.Background(), 1))

	// Capped at picksPerUser, best candidates first
	require.Len(t, repo.picks, 2)
	assert.Equal(t, int64(10), repo.picks[0].RecommendedUserID)
	assert.Equal(t, int64(11), repo.picks[1].RecommendedUserID)

	for _, pick := range repo.picks {
		assert.Equal(t, int64(1), pick.UserID)
		assert.Greater(t, pick.Score, 0.0)
		require.NotNil(t, pick.Reason)
		assert.NotEmpty(t, *pick.Reason)
		require.NotNil(t, pick.ExpiresAt)
		assert.True(t, pick.ExpiresAt.After(time.Now()))
		assert.NotEmpty(t, pick.Factors)
	}
}

func TestGenerateDailyPicksBatch(t *testing.T) {
	repo := &fakeRepo{
		users: map[int64]*UserRecord{1: viewerRecord(1)},
		candidates: []*UserRecord{
			candidateRecord(10, 25, "FEMALE", true),
		},
	}

	gen := newTestPicksGenerator(t, repo, 5)
	require.NoError(t, gen.GenerateDailyPicks(context.Background()))

	require.Len(t, repo.picks, 1)
	assert.Equal(t, int64(10), repo.picks[0].RecommendedUserID)
}

func TestGeneratePicksForMissingUser(t *testing.T) {
	gen := newTestPicksGenerator(t, &fakeRepo{users: map[int64]*UserRecord{}}, 5)

	err := gen.GeneratePicksForUser(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPickReason(t *testing.T) {
	withReasons := &RankedCandidate{
		Profile: &UserProfile{DisplayName: "Ada"},
		Score:   &MatchScore{Explanations: []string{"verified profile", "lives nearby"}},
	}
	assert.Equal(t, "Ada verified profile", pickReason(withReasons))

	bare := &RankedCandidate{
		Profile: &UserProfile{DisplayName: "Ben"},
		Score:   &MatchScore{},
	}
	assert.Equal(t, "Recommended for you", pickReason(bare))
}
