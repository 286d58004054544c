// Package score rates foods against a member's health profile. The rules
// are deliberately simple threshold heuristics; the score is a guide for the
// screens, not a medical judgment.
package score

import (
	"strings"

	"github.com/voraviaadmin/voravia/internal/model"
)

// Verdict bands for a 0-100 score.
const (
	VerdictExcellent = "excellent"
	VerdictGood      = "good"
	VerdictFair      = "fair"
	VerdictPoor      = "poor"
	VerdictAvoid     = "avoid"
)

// Rating is the result of scoring one product or dish.
type Rating struct {
	Score   int      `json:"score"`
	Verdict string   `json:"verdict"`
	Reasons []string `json:"reasons,omitempty"`
}

// ScoreProduct rates a scanned product's per-100g nutrition facts against
// the member's profile. Starts at 70 and moves by fixed steps per threshold.
func ScoreProduct(facts model.NutritionFacts, profile model.HealthProfile) Rating {
	score := 70
	var reasons []string

	// Sugar per 100g against the share of the daily limit a single serving
	// plausibly represents.
	switch {
	case facts.SugarG > profile.SugarLimit*0.5:
		score -= 25
		reasons = append(reasons, "very high sugar")
	case facts.SugarG > profile.SugarLimit*0.25:
		score -= 12
		reasons = append(reasons, "high sugar")
	case facts.SugarG <= 2:
		score += 5
	}

	switch {
	case facts.SodiumMg > profile.SodiumLimit*0.4:
		score -= 20
		reasons = append(reasons, "very high sodium")
	case facts.SodiumMg > profile.SodiumLimit*0.2:
		score -= 10
		reasons = append(reasons, "high sodium")
	}

	switch {
	case facts.SatFatG > profile.SatFatLimit*0.5:
		score -= 15
		reasons = append(reasons, "high saturated fat")
	case facts.SatFatG > profile.SatFatLimit*0.25:
		score -= 7
	}

	if facts.Calories > 450 {
		score -= 8
		reasons = append(reasons, "calorie dense")
	}

	if facts.FiberG >= 6 {
		score += 10
		reasons = append(reasons, "good fiber")
	} else if facts.FiberG >= 3 {
		score += 5
	}

	if facts.ProteinG >= 10 {
		score += 8
		reasons = append(reasons, "good protein")
	}

	return finish(score, reasons)
}

// RateMenuItem rates one dish per serving. An allergen match zeroes the
// score outright.
func RateMenuItem(item model.MenuItem, profile model.HealthProfile) Rating {
	if hit, allergen := allergenHit(item.Allergens, profile.Allergens); hit {
		return Rating{Score: 0, Verdict: VerdictAvoid, Reasons: []string{"contains " + allergen}}
	}

	score := 70
	var reasons []string

	// A single meal eating most of a daily limit is the strongest signal.
	switch {
	case item.SodiumMg > profile.SodiumLimit*0.6:
		score -= 25
		reasons = append(reasons, "most of daily sodium in one dish")
	case item.SodiumMg > profile.SodiumLimit*0.35:
		score -= 12
		reasons = append(reasons, "high sodium")
	}

	switch {
	case item.SugarG > profile.SugarLimit*0.6:
		score -= 20
		reasons = append(reasons, "very high sugar")
	case item.SugarG > profile.SugarLimit*0.3:
		score -= 10
		reasons = append(reasons, "high sugar")
	}

	switch {
	case item.SatFatG > profile.SatFatLimit*0.6:
		score -= 15
		reasons = append(reasons, "high saturated fat")
	case item.SatFatG > profile.SatFatLimit*0.3:
		score -= 7
	}

	// More than 40% of daily calories in a single dish.
	if profile.DailyCals > 0 && item.Calories > profile.DailyCals*0.4 {
		score -= 10
		reasons = append(reasons, "calorie heavy")
	}

	if item.FiberG >= 8 {
		score += 10
		reasons = append(reasons, "high fiber")
	} else if item.FiberG >= 4 {
		score += 5
	}

	if item.ProteinG >= 20 {
		score += 8
		reasons = append(reasons, "high protein")
	} else if item.ProteinG >= 12 {
		score += 4
	}

	return finish(score, reasons)
}

// Aggregate returns the mean of the given scores, or 0 for an empty slice.
func Aggregate(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

func finish(score int, reasons []string) Rating {
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return Rating{Score: score, Verdict: verdictFor(score), Reasons: reasons}
}

func verdictFor(score int) string {
	switch {
	case score >= 85:
		return VerdictExcellent
	case score >= 65:
		return VerdictGood
	case score >= 45:
		return VerdictFair
	default:
		return VerdictPoor
	}
}

func allergenHit(itemAllergens, profileAllergens []string) (bool, string) {
	for _, pa := range profileAllergens {
		for _, ia := range itemAllergens {
			if strings.EqualFold(strings.TrimSpace(pa), strings.TrimSpace(ia)) {
				return true, strings.ToLower(strings.TrimSpace(ia))
			}
		}
	}
	return false, ""
}
