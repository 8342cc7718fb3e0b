package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// Repository is the storage collaborator contract the engine depends
// on. The engine never touches raw SQL itself; candidate and
// interaction data only enter through these reads.
type Repository interface {
	// User records for scoring
	GetUserRecord(ctx context.Context, userID int64) (*UserRecord, error)
	FindCandidates(ctx context.Context, userID int64, excludeIDs []int64, limit int) ([]*UserRecord, error)
	GetEvaluatedUserIDs(ctx context.Context, userID int64) ([]int64, error)
	GetActiveUsers(ctx context.Context, daysActive int) ([]*UserRecord, error)

	// Interaction history aggregates
	GetEngagementStats(ctx context.Context, userID int64) (*EngagementStats, error)

	// Daily picks
	CreateDailyPick(ctx context.Context, pick *DailyPick) error
	GetDailyPicks(ctx context.Context, userID int64, limit int) ([]*DailyPick, error)
	HasTodayPicks(ctx context.Context, userID int64) (bool, error)
	DeleteExpiredPicks(ctx context.Context) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const userRecordColumns = `
	u.id, u.username, u.display_name, u.bio, u.birth_date, u.gender,
	u.interests, u.preferences, u.location_lat, u.location_lng,
	u.is_verified, u.last_active,
	(SELECT COUNT(*) FROM user_photos p WHERE p.user_id = u.id) AS photo_count
`

func (r *postgresRepository) GetUserRecord(ctx context.Context, userID int64) (*UserRecord, error) {
	query := `SELECT ` + userRecordColumns + ` FROM users u WHERE u.id = $1`

	var rec UserRecord
	err := r.db.GetContext(ctx, &rec, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user record %d: %w", userID, err)
	}

	return &rec, nil
}

// FindCandidates returns up to limit users who are not the requesting
// user, not in excludeIDs, and have at least one photo. The pool is
// ordered by recency of activity so the freshest candidates are
// considered first.
func (r *postgresRepository) FindCandidates(ctx context.Context, userID int64, excludeIDs []int64, limit int) ([]*UserRecord, error) {
	query := `
		SELECT ` + userRecordColumns + `
		FROM users u
		WHERE u.id != $1
		      AND u.id != ALL($2)
		      AND EXISTS (SELECT 1 FROM user_photos p WHERE p.user_id = u.id)
		ORDER BY u.last_active DESC NULLS LAST
		LIMIT $3
	`

	var candidates []*UserRecord
	err := r.db.SelectContext(ctx, &candidates, query, userID, pq.Array(excludeIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("find candidates for user %d: %w", userID, err)
	}

	return candidates, nil
}

// GetEvaluatedUserIDs returns the ids of users the requesting user has
// already acted on, used to exclude them from the candidate pool.
func (r *postgresRepository) GetEvaluatedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT target_id FROM swipes WHERE user_id = $1`

	var ids []int64
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get evaluated ids for user %d: %w", userID, err)
	}

	return ids, nil
}

func (r *postgresRepository) GetActiveUsers(ctx context.Context, daysActive int) ([]*UserRecord, error) {
	query := `
		SELECT ` + userRecordColumns + `
		FROM users u
		WHERE u.last_active > NOW() - ($1 || ' days')::interval
		ORDER BY u.last_active DESC
	`

	var users []*UserRecord
	err := r.db.SelectContext(ctx, &users, query, daysActive)
	if err != nil {
		return nil, fmt.Errorf("get active users: %w", err)
	}

	return users, nil
}

// GetEngagementStats aggregates a user's interaction history: likes
// received, matches formed, messages sent.
func (r *postgresRepository) GetEngagementStats(ctx context.Context, userID int64) (*EngagementStats, error) {
	query := `
		SELECT
		    (SELECT COUNT(*) FROM swipes WHERE target_id = $1 AND action = 'like') AS likes_received,
		    (SELECT COUNT(*) FROM matches WHERE user1_id = $1 OR user2_id = $1) AS matches_formed,
		    (SELECT COUNT(*) FROM messages WHERE sender_id = $1) AS messages_sent
	`

	var stats EngagementStats
	err := r.db.GetContext(ctx, &stats, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get engagement stats for user %d: %w", userID, err)
	}

	return &stats, nil
}

// Daily picks

func (r *postgresRepository) CreateDailyPick(ctx context.Context, pick *DailyPick) error {
	query := `
		INSERT INTO daily_picks (
		    user_id, recommended_user_id, score, reason, factors, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, recommended_user_id, (created_at::date))
		DO UPDATE SET score = $3, reason = $4, factors = $5
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		pick.UserID, pick.RecommendedUserID,
		pick.Score, pick.Reason, pick.Factors, pick.ExpiresAt,
	).Scan(&pick.ID, &pick.CreatedAt)
	if err != nil {
		return fmt.Errorf("create daily pick: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetDailyPicks(ctx context.Context, userID int64, limit int) ([]*DailyPick, error) {
	query := `
		SELECT id, user_id, recommended_user_id, score, reason, factors,
		       is_seen, expires_at, created_at
		FROM daily_picks
		WHERE user_id = $1
		      AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY score DESC, created_at DESC
		LIMIT $2
	`

	var picks []*DailyPick
	err := r.db.SelectContext(ctx, &picks, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get daily picks for user %d: %w", userID, err)
	}

	return picks, nil
}

func (r *postgresRepository) HasTodayPicks(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
		    SELECT 1 FROM daily_picks
		    WHERE user_id = $1 AND created_at::date = CURRENT_DATE
		)
	`

	err := r.db.GetContext(ctx, &exists, query, userID)
	if err != nil {
		return false, fmt.Errorf("check today's picks for user %d: %w", userID, err)
	}

	return exists, nil
}

func (r *postgresRepository) DeleteExpiredPicks(ctx context.Context) error {
	query := `
		DELETE FROM daily_picks
		WHERE expires_at < NOW() OR created_at < NOW() - INTERVAL '7 days'
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("delete expired picks: %w", err)
	}

	return nil
}
