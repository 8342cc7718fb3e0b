package matching

import (
	"context"
)

// Service is the inbound boundary of the matching engine, consumed by
// the HTTP layer and the scheduler.
type Service interface {
	// Discover returns a ranked page of candidates for the user plus
	// the total count of candidates passing the score threshold.
	Discover(ctx context.Context, userID int64, limit, offset int) (*DiscoverResult, error)

	// Compatibility computes the bidirectional score between two users.
	Compatibility(ctx context.Context, userIDA, userIDB int64) (*CompatibilityResult, error)

	// Daily picks
	GetDailyPicks(ctx context.Context, userID int64, limit int) ([]*DailyPick, error)
	GenerateDailyPicks(ctx context.Context) error
	CleanupExpiredPicks(ctx context.Context) error
}

// DiscoverResult is one ranked page with its pagination total.
type DiscoverResult struct {
	Profiles []*RankedCandidate `json:"profiles"`
	Total    int                `json:"total"`
}

type service struct {
	repo       Repository
	ranker     *Ranker
	calculator *Calculator
	picks      *PicksGenerator
}

func NewService(repo Repository, ranker *Ranker, calculator *Calculator, picks *PicksGenerator) Service {
	return &service{
		repo:       repo,
		ranker:     ranker,
		calculator: calculator,
		picks:      picks,
	}
}

func (s *service) Discover(ctx context.Context, userID int64, limit, offset int) (*DiscoverResult, error) {
	profiles, total, err := s.ranker.Rank(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &DiscoverResult{
		Profiles: profiles,
		Total:    total,
	}, nil
}

func (s *service) Compatibility(ctx context.Context, userIDA, userIDB int64) (*CompatibilityResult, error) {
	return s.calculator.Compatibility(ctx, userIDA, userIDB)
}

func (s *service) GetDailyPicks(ctx context.Context, userID int64, limit int) ([]*DailyPick, error) {
	return s.repo.GetDailyPicks(ctx, userID, limit)
}

func (s *service) GenerateDailyPicks(ctx context.Context) error {
	return s.picks.GenerateDailyPicks(ctx)
}

func (s *service) CleanupExpiredPicks(ctx context.Context) error {
	return s.repo.DeleteExpiredPicks(ctx)
}
