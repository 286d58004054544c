package model

import "time"

// HealthProfile holds a member's daily limits and allergens. Zero limits
// mean "use the defaults" (see DefaultProfile).
type HealthProfile struct {
	MemberID     string    `json:"member_id"`
	DailyCals    float64   `json:"daily_calories"`
	SodiumLimit  float64   `json:"sodium_limit_mg"`
	SugarLimit   float64   `json:"sugar_limit_g"`
	SatFatLimit  float64   `json:"sat_fat_limit_g"`
	Allergens    []string  `json:"allergens"`
	DietaryNotes string    `json:"dietary_notes,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultProfile returns the baseline limits used when a member has not set
// their own. Values follow common daily guideline amounts.
func DefaultProfile(memberID string) HealthProfile {
	return HealthProfile{
		MemberID:    memberID,
		DailyCals:   2000,
		SodiumLimit: 2300,
		SugarLimit:  50,
		SatFatLimit: 20,
	}
}
