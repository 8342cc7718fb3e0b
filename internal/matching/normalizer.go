package matching

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Normalizer defaults. Parsing at this boundary is fail-soft: malformed
// or absent input always yields a usable value, never an error.
const (
	fallbackAge          = 25
	defaultMinAge        = 18
	defaultMaxAge        = 99
	defaultMaxDistanceKm = 100.0
)

// NormalizeProfile converts a raw user record into a canonical
// UserProfile. It is a pure transformation; "now" is passed in so age
// computation stays deterministic under test.
func NormalizeProfile(rec *UserRecord, now time.Time) *UserProfile {
	profile := &UserProfile{
		ID:           rec.ID,
		DisplayName:  rec.DisplayName,
		Age:          fallbackAge,
		Gender:       rec.Gender,
		Bio:          rec.Bio,
		Interests:    parseInterests(rec.InterestsRaw),
		IsVerified:   rec.IsVerified,
		LastActiveAt: rec.LastActiveAt,
	}

	if rec.BirthDate != nil {
		profile.Age = ageAt(*rec.BirthDate, now)
	}

	if rec.Latitude != nil && rec.Longitude != nil {
		profile.Location = &Location{
			Latitude:  *rec.Latitude,
			Longitude: *rec.Longitude,
		}
	}

	return profile
}

// rawPreferences mirrors the serialized preference object. Pointer
// fields distinguish "absent" from zero so partial objects fill only
// what they provide.
type rawPreferences struct {
	MinAge           *int     `json:"min_age"`
	MaxAge           *int     `json:"max_age"`
	MaxDistanceKm    *float64 `json:"max_distance_km"`
	GenderPreference *string  `json:"gender_preference"`
}

// NormalizePreferences parses a serialized preference object, falling
// back to documented defaults on absence or parse failure. Missing
// fields of a partial object still take defaults.
func NormalizePreferences(raw *string) *UserPreferences {
	prefs := &UserPreferences{
		MinAge:        defaultMinAge,
		MaxAge:        defaultMaxAge,
		MaxDistanceKm: defaultMaxDistanceKm,
	}

	if raw == nil || strings.TrimSpace(*raw) == "" {
		return prefs
	}

	var parsed rawPreferences
	if err := json.Unmarshal([]byte(*raw), &parsed); err != nil {
		return prefs
	}

	if parsed.MinAge != nil {
		prefs.MinAge = *parsed.MinAge
	}
	if parsed.MaxAge != nil {
		prefs.MaxAge = *parsed.MaxAge
	}
	if parsed.MaxDistanceKm != nil && *parsed.MaxDistanceKm > 0 {
		prefs.MaxDistanceKm = *parsed.MaxDistanceKm
	}
	if parsed.GenderPreference != nil && *parsed.GenderPreference != "" {
		prefs.GenderPreference = parsed.GenderPreference
	}

	return prefs
}

// parseInterests accepts either a JSON string array or a comma-delimited
// string. Tokens are case-folded, trimmed and deduplicated; the result
// is sorted so downstream output stays deterministic.
func parseInterests(raw *string) []string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return []string{}
	}

	var tokens []string
	if err := json.Unmarshal([]byte(*raw), &tokens); err != nil {
		tokens = strings.Split(*raw, ",")
	}

	seen := make(map[string]bool, len(tokens))
	interests := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		interests = append(interests, token)
	}

	sort.Strings(interests)
	return interests
}

// ageAt computes whole years elapsed, decrementing when the birthday
// has not yet occurred in the current year.
func ageAt(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()

	anniversary := time.Date(now.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(anniversary) {
		years--
	}

	return years
}
