package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string       { return &s }
func floatPtr(f float64) *float64   { return &f }
func timePtr(t time.Time) *time.Time { return &t }

func TestParseInterests(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected []string
	}{
		{
			name:     "nil input",
			raw:      nil,
			expected: []string{},
		},
		{
			name:     "empty string",
			raw:      strPtr("   "),
			expected: []string{},
		},
		{
			name:     "json array",
			raw:      strPtr(`["Hiking","Music","Art"]`),
			expected: []string{"art", "hiking", "music"},
		},
		{
			name:     "comma delimited fallback",
			raw:      strPtr("hiking, music , art"),
			expected: []string{"art", "hiking", "music"},
		},
		{
			name:     "malformed json falls back to comma split",
			raw:      strPtr(`["hiking", "music`),
			expected: []string{`["hiking"`, `"music`},
		},
		{
			name:     "case folding and dedupe",
			raw:      strPtr("Music,music, MUSIC ,art"),
			expected: []string{"art", "music"},
		},
		{
			name:     "empty entries discarded",
			raw:      strPtr("hiking,, ,music"),
			expected: []string{"hiking", "music"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseInterests(tt.raw))
		})
	}
}

func TestNormalizePreferences(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected UserPreferences
	}{
		{
			name:     "absent takes all defaults",
			raw:      nil,
			expected: UserPreferences{MinAge: 18, MaxAge: 99, MaxDistanceKm: 100},
		},
		{
			name:     "malformed json takes all defaults",
			raw:      strPtr(`{"min_age": `),
			expected: UserPreferences{MinAge: 18, MaxAge: 99, MaxDistanceKm: 100},
		},
		{
			name: "full object",
			raw:  strPtr(`{"min_age":25,"max_age":35,"max_distance_km":50,"gender_preference":"FEMALE"}`),
			expected: UserPreferences{
				MinAge: 25, MaxAge: 35, MaxDistanceKm: 50,
				GenderPreference: strPtr("FEMALE"),
			},
		},
		{
			name:     "partial object fills only provided fields",
			raw:      strPtr(`{"max_age":40}`),
			expected: UserPreferences{MinAge: 18, MaxAge: 40, MaxDistanceKm: 100},
		},
		{
			name:     "empty gender preference means no preference",
			raw:      strPtr(`{"gender_preference":""}`),
			expected: UserPreferences{MinAge: 18, MaxAge: 99, MaxDistanceKm: 100},
		},
		{
			name:     "non-positive distance ignored",
			raw:      strPtr(`{"max_distance_km":-5}`),
			expected: UserPreferences{MinAge: 18, MaxAge: 99, MaxDistanceKm: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := NormalizePreferences(tt.raw)
			require.NotNil(t, prefs)
			assert.Equal(t, tt.expected, *prefs)
		})
	}
}

func TestAgeAt(t *testing.T) {
	birth := time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		expected int
	}{
		{"day before birthday", time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC), 29},
		{"on birthday", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 30},
		{"day after birthday", time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), 30},
		{"end of year", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ageAt(birth, tt.now))
		})
	}
}

func TestNormalizeProfile(t *testing.T) {
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("complete record", func(t *testing.T) {
		lastActive := now.Add(-2 * time.Hour)
		rec := &UserRecord{
			ID:           42,
			DisplayName:  "Dana",
			BirthDate:    timePtr(time.Date(1995, 3, 10, 0, 0, 0, 0, time.UTC)),
			Gender:       strPtr("FEMALE"),
			InterestsRaw: strPtr(`["music","hiking"]`),
			Latitude:     floatPtr(52.37),
			Longitude:    floatPtr(4.89),
			IsVerified:   true,
			LastActiveAt: &lastActive,
		}

		profile := NormalizeProfile(rec, now)

		assert.Equal(t, int64(42), profile.ID)
		assert.Equal(t, 30, profile.Age)
		assert.Equal(t, []string{"hiking", "music"}, profile.Interests)
		require.NotNil(t, profile.Location)
		assert.Equal(t, 52.37, profile.Location.Latitude)
		assert.True(t, profile.IsVerified)
		assert.Equal(t, &lastActive, profile.LastActiveAt)
	})

	t.Run("sparse record never errors", func(t *testing.T) {
		profile := NormalizeProfile(&UserRecord{ID: 7}, now)

		assert.Equal(t, fallbackAge, profile.Age)
		assert.Empty(t, profile.Interests)
		assert.Nil(t, profile.Location)
		assert.Nil(t, profile.Gender)
		assert.Nil(t, profile.LastActiveAt)
		assert.False(t, profile.IsVerified)
	})

	t.Run("location needs both coordinates", func(t *testing.T) {
		profile := NormalizeProfile(&UserRecord{ID: 7, Latitude: floatPtr(52.0)}, now)
		assert.Nil(t, profile.Location)
	})
}
