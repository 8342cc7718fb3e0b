// internal/matching/dto.go
package matching

// DTOs for API requests/responses. Scores are rounded to two decimals
// here, at the presentation boundary only.

type DiscoverParams struct {
	Limit  int `json:"limit" validate:"min=1,max=100"`
	Offset int `json:"offset" validate:"min=0"`
}

type GetPicksParams struct {
	Limit int `json:"limit" validate:"min=1,max=50"`
}

type MatchScoreDTO struct {
	CandidateID  int64              `json:"candidate_id"`
	OverallScore float64            `json:"overall_score"`
	Tier         string             `json:"tier"`
	Factors      map[string]float64 `json:"factors"`
	Explanations []string           `json:"explanations"`
}

type RankedProfileDTO struct {
	Profile    *UserProfile   `json:"profile"`
	MatchScore *MatchScoreDTO `json:"match_score"`
}

type DiscoverResponseDTO struct {
	Profiles []*RankedProfileDTO `json:"profiles"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
}

type CompatibilityResponseDTO struct {
	Percentage    int      `json:"percentage"`
	SharedFactors []string `json:"shared_factors"`
}

func newMatchScoreDTO(score *MatchScore) *MatchScoreDTO {
	factors := make(map[string]float64, len(score.Factors))
	for name, value := range score.Factors {
		factors[name] = Round2(value)
	}

	return &MatchScoreDTO{
		CandidateID:  score.CandidateID,
		OverallScore: Round2(score.OverallScore),
		Tier:         score.Tier,
		Factors:      factors,
		Explanations: score.Explanations,
	}
}

func newDiscoverResponseDTO(result *DiscoverResult, limit, offset int) *DiscoverResponseDTO {
	profiles := make([]*RankedProfileDTO, 0, len(result.Profiles))
	for _, candidate := range result.Profiles {
		profiles = append(profiles, &RankedProfileDTO{
			Profile:    candidate.Profile,
			MatchScore: newMatchScoreDTO(candidate.Score),
		})
	}

	return &DiscoverResponseDTO{
		Profiles: profiles,
		Total:    result.Total,
		Limit:    limit,
		Offset:   offset,
	}
}
