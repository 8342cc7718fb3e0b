package matching

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emberlyapp/emberly-backend/internal/config"
)

// Ranker scores a user's candidate pool and serves ranked pages.
//
// Scoring is a pure map over the pool: every candidate is independent
// and only shares the read-only viewer snapshot, so the map step runs
// as a bounded-concurrency fan-out to hide the latency of the
// engagement aggregate reads. Concurrency never changes the final
// order; a total order is imposed only after all scores are collected.
type Ranker struct {
	repo   Repository
	engine *Engine
	cfg    config.ScoringConfig
	log    *zap.Logger
	now    func() time.Time
}

func NewRanker(repo Repository, engine *Engine, cfg config.ScoringConfig, log *zap.Logger) *Ranker {
	return &Ranker{
		repo:   repo,
		engine: engine,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// Rank returns the requested page of ranked candidates for userID plus
// the total number of candidates that passed the score threshold (for
// pagination, not the raw pool size).
//
// Failure to load the requesting user or fetch the pool is fatal.
// Failure to score an individual candidate only drops that candidate.
func (r *Ranker) Rank(ctx context.Context, userID int64, limit, offset int) ([]*RankedCandidate, int, error) {
	start := r.now()

	viewer, err := r.LoadViewer(ctx, userID)
	if err != nil {
		RecordRankRequest("error")
		return nil, 0, err
	}

	excludeIDs, err := r.repo.GetEvaluatedUserIDs(ctx, userID)
	if err != nil {
		RecordRankRequest("error")
		return nil, 0, fmt.Errorf("build candidate exclusions: %w", err)
	}

	pool, err := r.repo.FindCandidates(ctx, userID, excludeIDs, r.cfg.CandidatePoolSize)
	if err != nil {
		RecordRankRequest("error")
		return nil, 0, fmt.Errorf("fetch candidate pool: %w", err)
	}

	scored := r.scorePool(ctx, viewer, pool)
	if err := ctx.Err(); err != nil {
		RecordRankRequest("cancelled")
		return nil, 0, err
	}

	// Full-precision threshold filter, then total order: score
	// descending, candidate id ascending as the deterministic tie-break.
	ranked := make([]*RankedCandidate, 0, len(scored))
	for _, candidate := range scored {
		if candidate != nil && candidate.Score.OverallScore >= r.cfg.MinScore {
			ranked = append(ranked, candidate)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score.OverallScore != ranked[j].Score.OverallScore {
			return ranked[i].Score.OverallScore > ranked[j].Score.OverallScore
		}
		return ranked[i].Profile.ID < ranked[j].Profile.ID
	})

	total := len(ranked)
	page := paginate(ranked, limit, offset)

	RecordRankRequest("ok")
	RecordRankDuration(r.now().Sub(start))

	r.log.Debug("ranked candidate pool",
		zap.Int64("user_id", userID),
		zap.Int("pool_size", len(pool)),
		zap.Int("passed_threshold", total),
		zap.Int("page_size", len(page)))

	return page, total, nil
}

// LoadViewer fetches and normalizes the requesting user's profile and
// preferences. A missing user is fatal; ranking is meaningless without
// the viewer.
func (r *Ranker) LoadViewer(ctx context.Context, userID int64) (*Viewer, error) {
	rec, err := r.repo.GetUserRecord(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load requesting user %d: %w", userID, err)
	}

	return &Viewer{
		Profile:     NormalizeProfile(rec, r.now()),
		Preferences: NormalizePreferences(rec.PreferencesRaw),
	}, nil
}

// scorePool fans the pool out over a bounded set of goroutines. Each
// task writes only its own slot of the result slice, so no locking is
// needed and a cancelled task simply leaves its slot nil.
func (r *Ranker) scorePool(ctx context.Context, viewer *Viewer, pool []*UserRecord) []*RankedCandidate {
	results := make([]*RankedCandidate, len(pool))
	sem := make(chan struct{}, r.cfg.ScoreConcurrency)

	var wg sync.WaitGroup
	for i, rec := range pool {
		wg.Add(1)
		go func(i int, rec *UserRecord) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			results[i] = r.scoreOne(ctx, viewer, rec)
		}(i, rec)
	}
	wg.Wait()

	return results
}

// scoreOne normalizes and scores a single candidate. Any failure,
// including a panic from a malformed record, drops the candidate
// rather than failing the page.
func (r *Ranker) scoreOne(ctx context.Context, viewer *Viewer, rec *UserRecord) (result *RankedCandidate) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("panic while scoring candidate, skipping", zap.Any("panic", rec))
			RecordCandidateSkipped()
			result = nil
		}
	}()

	profile := NormalizeProfile(rec, r.now())
	score, err := r.engine.ScoreCandidate(ctx, viewer, profile)
	if err != nil {
		r.log.Warn("failed to score candidate, skipping",
			zap.Int64("candidate_id", rec.ID),
			zap.Error(err))
		RecordCandidateSkipped()
		return nil
	}

	RecordCandidateScored()
	return &RankedCandidate{Profile: profile, Score: score}
}

func paginate(ranked []*RankedCandidate, limit, offset int) []*RankedCandidate {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ranked) {
		return []*RankedCandidate{}
	}

	end := len(ranked)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return ranked[offset:end]
}
