package model

import "time"

// NutritionFacts are per-100g values as reported by the product database.
type NutritionFacts struct {
	Calories float64 `json:"calories"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMg float64 `json:"sodium_mg"`
	SatFatG  float64 `json:"sat_fat_g"`
	FiberG   float64 `json:"fiber_g"`
	ProteinG float64 `json:"protein_g"`
}

// Scan is one barcode or photo capture by a member, with the resolved
// product and its computed score.
type Scan struct {
	ID          string         `json:"id"`
	MemberID    string         `json:"member_id"`
	Barcode     string         `json:"barcode"`
	ProductName string         `json:"product_name"`
	Brand       string         `json:"brand,omitempty"`
	Facts       NutritionFacts `json:"facts"`
	Score       int            `json:"score"`
	Verdict     string         `json:"verdict"`
	CreatedAt   time.Time      `json:"created_at"`
}
