package score

import (
	"testing"

	"github.com/voraviaadmin/voravia/internal/model"
)

func defaultProfile() model.HealthProfile {
	return model.DefaultProfile("head")
}

func TestScoreProductBalanced(t *testing.T) {
	facts := model.NutritionFacts{
		Calories: 350,
		SugarG:   1.5,
		SodiumMg: 120,
		SatFatG:  1,
		FiberG:   7,
		ProteinG: 12,
	}

	r := ScoreProduct(facts, defaultProfile())
	// 70 + 5 (low sugar) + 10 (fiber) + 8 (protein) = 93
	if r.Score != 93 {
		t.Errorf("score = %d, want 93", r.Score)
	}
	if r.Verdict != VerdictExcellent {
		t.Errorf("verdict = %q, want %q", r.Verdict, VerdictExcellent)
	}
}

func TestScoreProductSugary(t *testing.T) {
	facts := model.NutritionFacts{
		Calories: 480,
		SugarG:   32, // > 50% of the 50g default limit
		SodiumMg: 80,
		SatFatG:  9,
	}

	r := ScoreProduct(facts, defaultProfile())
	// 70 - 25 (sugar) - 7 (sat fat over 25% of 20g) - 8 (calorie dense) = 30
	if r.Score != 30 {
		t.Errorf("score = %d, want 30", r.Score)
	}
	if r.Verdict != VerdictPoor {
		t.Errorf("verdict = %q, want %q", r.Verdict, VerdictPoor)
	}

	found := false
	for _, reason := range r.Reasons {
		if reason == "very high sugar" {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons = %v, want to include very high sugar", r.Reasons)
	}
}

func TestScoreProductClampedToRange(t *testing.T) {
	bad := model.NutritionFacts{
		Calories: 600,
		SugarG:   40,
		SodiumMg: 1200,
		SatFatG:  15,
	}
	r := ScoreProduct(bad, defaultProfile())
	if r.Score < 0 || r.Score > 100 {
		t.Errorf("score = %d, want within [0,100]", r.Score)
	}
}

func TestScoreProductTighterProfileScoresLower(t *testing.T) {
	facts := model.NutritionFacts{SugarG: 14, SodiumMg: 500}

	loose := ScoreProduct(facts, defaultProfile())

	strict := model.DefaultProfile("head")
	strict.SugarLimit = 25
	strict.SodiumLimit = 1200
	tight := ScoreProduct(facts, strict)

	if tight.Score >= loose.Score {
		t.Errorf("tight profile score %d should be below loose score %d", tight.Score, loose.Score)
	}
}

func TestRateMenuItemAllergen(t *testing.T) {
	item := model.MenuItem{
		Name:      "Pad Thai",
		Allergens: []string{"Peanut", "egg"},
		FiberG:    5,
		ProteinG:  25,
	}
	profile := defaultProfile()
	profile.Allergens = []string{"peanut"}

	r := RateMenuItem(item, profile)
	if r.Score != 0 {
		t.Errorf("score = %d, want 0 for allergen hit", r.Score)
	}
	if r.Verdict != VerdictAvoid {
		t.Errorf("verdict = %q, want %q", r.Verdict, VerdictAvoid)
	}
	if len(r.Reasons) != 1 || r.Reasons[0] != "contains peanut" {
		t.Errorf("reasons = %v, want [contains peanut]", r.Reasons)
	}
}

func TestRateMenuItemSaltyEntree(t *testing.T) {
	item := model.MenuItem{
		Name:     "Loaded Burger",
		Calories: 950, // > 40% of 2000
		SodiumMg: 1500,
		SugarG:   9,
		SatFatG:  14, // > 60% of 20g
		ProteinG: 35,
	}

	r := RateMenuItem(item, defaultProfile())
	// 70 - 25 (sodium) - 15 (sat fat) - 10 (calories) + 8 (protein) = 28
	if r.Score != 28 {
		t.Errorf("score = %d, want 28", r.Score)
	}
	if r.Verdict != VerdictPoor {
		t.Errorf("verdict = %q, want %q", r.Verdict, VerdictPoor)
	}
}

func TestRateMenuItemLightDish(t *testing.T) {
	item := model.MenuItem{
		Name:     "Lentil Soup",
		Calories: 320,
		SodiumMg: 600,
		SugarG:   5,
		SatFatG:  2,
		FiberG:   9,
		ProteinG: 16,
	}

	r := RateMenuItem(item, defaultProfile())
	// 70 + 10 (fiber) + 4 (protein) = 84
	if r.Score != 84 {
		t.Errorf("score = %d, want 84", r.Score)
	}
	if r.Verdict != VerdictGood {
		t.Errorf("verdict = %q, want %q", r.Verdict, VerdictGood)
	}
}

func TestAggregate(t *testing.T) {
	if got := Aggregate(nil); got != 0 {
		t.Errorf("Aggregate(nil) = %v, want 0", got)
	}
	if got := Aggregate([]int{60, 80}); got != 70 {
		t.Errorf("Aggregate = %v, want 70", got)
	}
	if got := Aggregate([]int{50}); got != 50 {
		t.Errorf("Aggregate = %v, want 50", got)
	}
}

func TestVerdictBands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, VerdictExcellent},
		{85, VerdictExcellent},
		{84, VerdictGood},
		{65, VerdictGood},
		{64, VerdictFair},
		{45, VerdictFair},
		{44, VerdictPoor},
		{0, VerdictPoor},
	}
	for _, tt := range tests {
		if got := verdictFor(tt.score); got != tt.want {
			t.Errorf("verdictFor(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
