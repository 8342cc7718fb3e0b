package matching

import (
	"encoding/json"
	"time"
)

// Factor names used as keys in MatchScore.Factors.
const (
	FactorPreferenceMatch = "preference_match"
	FactorInterestOverlap = "interest_overlap"
	FactorDistance        = "distance"
	FactorActivity        = "activity"
	FactorEngagement      = "engagement"
	FactorVerification    = "verification"
)

// Score tiers, informational only. MinScore filtering happens in the
// ranker; tiers are attached for UI display.
const (
	TierExcellent = "excellent"
	TierGood      = "good"
	TierFair      = "fair"
)

// UserRecord is a raw user row as stored. Optional fields are pointers;
// interests and preferences arrive as loosely typed serialized text and
// are only made usable by the normalizer.
type UserRecord struct {
	ID             int64      `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	DisplayName    string     `json:"display_name" db:"display_name"`
	Bio            *string    `json:"bio,omitempty" db:"bio"`
	BirthDate      *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Gender         *string    `json:"gender,omitempty" db:"gender"`
	InterestsRaw   *string    `json:"-" db:"interests"`
	PreferencesRaw *string    `json:"-" db:"preferences"`
	Latitude       *float64   `json:"latitude,omitempty" db:"location_lat"`
	Longitude      *float64   `json:"longitude,omitempty" db:"location_lng"`
	IsVerified     bool       `json:"is_verified" db:"is_verified"`
	LastActiveAt   *time.Time `json:"last_active,omitempty" db:"last_active"`
	PhotoCount     int        `json:"photo_count" db:"photo_count"`
}

// Location is a latitude/longitude pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UserProfile is the canonical, normalized view of a user used by the
// scorers. It is derived per request and never written back.
type UserProfile struct {
	ID           int64      `json:"id"`
	DisplayName  string     `json:"display_name"`
	Age          int        `json:"age"`
	Gender       *string    `json:"gender,omitempty"`
	Bio          *string    `json:"bio,omitempty"`
	Interests    []string   `json:"interests"`
	Location     *Location  `json:"location,omitempty"`
	IsVerified   bool       `json:"is_verified"`
	LastActiveAt *time.Time `json:"last_active,omitempty"`
}

// UserPreferences holds a user's declared matching preferences with
// defaults already applied. A nil GenderPreference means no preference.
type UserPreferences struct {
	MinAge           int      `json:"min_age"`
	MaxAge           int      `json:"max_age"`
	MaxDistanceKm    float64  `json:"max_distance_km"`
	GenderPreference *string  `json:"gender_preference,omitempty"`
}

// Viewer bundles the requesting user's normalized profile and
// preferences, the read-only snapshot shared by all scoring tasks.
type Viewer struct {
	Profile     *UserProfile
	Preferences *UserPreferences
}

// EngagementStats are the aggregate interaction counts behind the
// engagement factor.
type EngagementStats struct {
	LikesReceived int64 `json:"likes_received" db:"likes_received"`
	MatchesFormed int64 `json:"matches_formed" db:"matches_formed"`
	MessagesSent  int64 `json:"messages_sent" db:"messages_sent"`
}

// MatchScore is the scored outcome for one candidate. OverallScore is
// kept at full precision; rounding to two decimals happens only at the
// presentation boundary so ranking order is never inverted by rounding.
type MatchScore struct {
	CandidateID  int64              `json:"candidate_id"`
	OverallScore float64            `json:"overall_score"`
	Tier         string             `json:"tier"`
	Factors      map[string]float64 `json:"factors"`
	Explanations []string           `json:"explanations"`
}

// RankedCandidate pairs a candidate profile with its match score.
type RankedCandidate struct {
	Profile *UserProfile `json:"profile"`
	Score   *MatchScore  `json:"match_score"`
}

// CompatibilityResult is the symmetric, bidirectional score between two
// named users.
type CompatibilityResult struct {
	Percentage    int      `json:"percentage"`
	SharedFactors []string `json:"shared_factors"`
}

// DailyPick is a precomputed recommendation persisted for a user.
type DailyPick struct {
	ID                int64           `json:"id" db:"id"`
	UserID            int64           `json:"user_id" db:"user_id"`
	RecommendedUserID int64           `json:"recommended_user_id" db:"recommended_user_id"`
	Score             float64         `json:"score" db:"score"`
	Reason            *string         `json:"reason,omitempty" db:"reason"`
	Factors           json.RawMessage `json:"factors,omitempty" db:"factors"`
	IsSeen            bool            `json:"is_seen" db:"is_seen"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	RecommendedUser   *UserProfile    `json:"recommended_user,omitempty"`
}
