package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PicksGenerator precomputes daily picks: for each recently active
// user it runs the ranker and persists the top candidates with their
// factor breakdown and a short reason for the UI.
type PicksGenerator struct {
	ranker *Ranker
	repo   Repository
	log    *zap.Logger

	picksPerUser int
	expiry       time.Duration
	activeWindow int // days
}

func NewPicksGenerator(ranker *Ranker, repo Repository, log *zap.Logger, picksPerUser int, expiry time.Duration, activeWindowDays int) *PicksGenerator {
	return &PicksGenerator{
		ranker:       ranker,
		repo:         repo,
		log:          log,
		picksPerUser: picksPerUser,
		expiry:       expiry,
		activeWindow: activeWindowDays,
	}
}

// GenerateDailyPicks generates picks for every active user that does
// not have a batch for today yet. A failure for one user is logged and
// skipped so the batch run keeps going.
func (g *PicksGenerator) GenerateDailyPicks(ctx context.Context) error {
	activeUsers, err := g.repo.GetActiveUsers(ctx, g.activeWindow)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}

	for _, user := range activeUsers {
		if err := ctx.Err(); err != nil {
			return err
		}

		hasToday, err := g.repo.HasTodayPicks(ctx, user.ID)
		if err != nil || hasToday {
			continue
		}

		if err := g.GeneratePicksForUser(ctx, user.ID); err != nil {
			g.log.Warn("daily picks generation failed for user",
				zap.Int64("user_id", user.ID),
				zap.Error(err))
		}
	}

	return nil
}

// GeneratePicksForUser ranks the user's candidate pool and persists the
// top picks.
func (g *PicksGenerator) GeneratePicksForUser(ctx context.Context, userID int64) error {
	ranked, _, err := g.ranker.Rank(ctx, userID, g.picksPerUser, 0)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(g.expiry)
	for _, candidate := range ranked {
		factorsJSON, err := json.Marshal(candidate.Score.Factors)
		if err != nil {
			factorsJSON = nil
		}

		reason := pickReason(candidate)
		pick := &DailyPick{
			UserID:            userID,
			RecommendedUserID: candidate.Profile.ID,
			Score:             candidate.Score.OverallScore,
			Reason:            &reason,
			Factors:           factorsJSON,
			ExpiresAt:         &expiresAt,
		}

		if err := g.repo.CreateDailyPick(ctx, pick); err != nil {
			g.log.Warn("failed to persist daily pick",
				zap.Int64("user_id", userID),
				zap.Int64("recommended_user_id", candidate.Profile.ID),
				zap.Error(err))
			continue
		}
		RecordPickGenerated()
	}

	return nil
}

// pickReason turns the first explanation into a display string.
func pickReason(candidate *RankedCandidate) string {
	if len(candidate.Score.Explanations) == 0 {
		return "Recommended for you"
	}
	return candidate.Profile.DisplayName + " " + candidate.Score.Explanations[0]
}
