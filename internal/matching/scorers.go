package matching

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// neutralScore is returned whenever a factor has no information to work
// with. It is a non-signal, never an error.
const neutralScore = 0.5

// Scorer produces one factor score in [0,1] for a candidate as seen by
// a viewer, plus an explanation string emitted only when the scorer
// judges its own signal notable (empty otherwise).
//
// All implementations are pure except engagementScorer, which reads
// aggregate interaction counts through an EngagementSource. It is kept
// behind the same interface so it can be swapped for a cached or
// precomputed variant without touching the engine or ranker.
type Scorer interface {
	Name() string
	Score(ctx context.Context, viewer *Viewer, candidate *UserProfile) (float64, string)
}

// EngagementSource supplies aggregate interaction counts for a user.
type EngagementSource interface {
	GetEngagementStats(ctx context.Context, userID int64) (*EngagementStats, error)
}

// Preference match: 50 points for age fit, 50 for gender fit.

type preferenceScorer struct{}

func (preferenceScorer) Name() string { return FactorPreferenceMatch }

func (preferenceScorer) Score(_ context.Context, viewer *Viewer, candidate *UserProfile) (float64, string) {
	prefs := viewer.Preferences

	points := 0
	if candidate.Age >= prefs.MinAge && candidate.Age <= prefs.MaxAge {
		points += 50
	}
	if prefs.GenderPreference == nil ||
		(candidate.Gender != nil && *candidate.Gender == *prefs.GenderPreference) {
		points += 50
	}

	score := float64(points) / 100
	if score == 1.0 {
		return score, "matches what you're looking for"
	}
	return score, ""
}

// Interest overlap: Jaccard similarity over case-folded tokens, pushed
// through a sigmoid so a small shared core still registers while
// near-zero overlap is heavily discounted.

type interestScorer struct{}

func (interestScorer) Name() string { return FactorInterestOverlap }

func (interestScorer) Score(_ context.Context, viewer *Viewer, candidate *UserProfile) (float64, string) {
	a, b := viewer.Profile.Interests, candidate.Interests
	if len(a) == 0 || len(b) == 0 {
		return neutralScore, ""
	}

	set := make(map[string]bool, len(a))
	for _, interest := range a {
		set[interest] = true
	}

	shared := 0
	for _, interest := range b {
		if set[interest] {
			shared++
		}
	}

	union := len(a) + len(b) - shared
	jaccard := float64(shared) / float64(union)
	score := 1 / (1 + math.Exp(-(4*jaccard - 1)))

	if shared > 0 {
		return score, fmt.Sprintf("you share %d interests", shared)
	}
	return score, ""
}

// Geographic distance: haversine, linearly decaying from 1.0 at zero
// distance to 0.5 at the viewer's max radius, hard 0 beyond it.

type distanceScorer struct{}

func (distanceScorer) Name() string { return FactorDistance }

func (distanceScorer) Score(_ context.Context, viewer *Viewer, candidate *UserProfile) (float64, string) {
	from, to := viewer.Profile.Location, candidate.Location
	if from == nil || to == nil {
		return neutralScore, ""
	}

	maxKm := viewer.Preferences.MaxDistanceKm
	distance := haversineKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	if distance > maxKm {
		return 0, ""
	}

	score := 1 - (distance/maxKm)*0.5
	if score >= 0.8 {
		return score, "lives nearby"
	}
	return score, ""
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371 // km

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Recent activity: a step function over time since last seen. The
// breakpoints are product tuning, not physics; keep them as steps.

type activityScorer struct {
	now func() time.Time
}

func newActivityScorer() *activityScorer {
	return &activityScorer{now: time.Now}
}

func (s *activityScorer) Name() string { return FactorActivity }

func (s *activityScorer) Score(_ context.Context, _ *Viewer, candidate *UserProfile) (float64, string) {
	if candidate.LastActiveAt == nil {
		return 0.3, ""
	}

	since := s.now().Sub(*candidate.LastActiveAt)
	switch {
	case since < time.Hour:
		return 1.0, "active right now"
	case since < 24*time.Hour:
		return 0.9, "recently active"
	case since < 72*time.Hour:
		return 0.7, ""
	case since < 168*time.Hour:
		return 0.5, ""
	default:
		return 0.3, ""
	}
}

// Engagement: rewards candidates who convert likes into matches and
// respond once matched. The sole I/O-bearing scorer; a failed aggregate
// read degrades to neutral so one candidate's lookup can never abort a
// whole ranking request.

type engagementScorer struct {
	source EngagementSource
	log    *zap.Logger
}

func newEngagementScorer(source EngagementSource, log *zap.Logger) *engagementScorer {
	return &engagementScorer{source: source, log: log}
}

func (s *engagementScorer) Name() string { return FactorEngagement }

func (s *engagementScorer) Score(ctx context.Context, _ *Viewer, candidate *UserProfile) (float64, string) {
	stats, err := s.source.GetEngagementStats(ctx, candidate.ID)
	if err != nil {
		s.log.Debug("engagement lookup failed, using neutral score",
			zap.Int64("candidate_id", candidate.ID),
			zap.Error(err))
		return neutralScore, ""
	}

	matchRate := 0.0
	if stats.LikesReceived > 0 {
		matchRate = float64(stats.MatchesFormed) / float64(stats.LikesReceived)
	}

	divisor := stats.MatchesFormed
	if divisor < 1 {
		divisor = 1
	}
	responseRate := math.Min(float64(stats.MessagesSent)/float64(divisor), 1)

	raw := 0.5*matchRate + 0.5*responseRate
	score := math.Min(raw*2, 1)

	if score >= 0.8 {
		return score, "usually responds to matches"
	}
	return score, ""
}

// Verification: a bonus, not a penalty. Unverified is neutral, never
// strongly negative.

type verificationScorer struct{}

func (verificationScorer) Name() string { return FactorVerification }

func (verificationScorer) Score(_ context.Context, _ *Viewer, candidate *UserProfile) (float64, string) {
	if candidate.IsVerified {
		return 1.0, "verified profile"
	}
	return neutralScore, ""
}
