package model

import "time"

// Restaurant is a catalog entry synced down for nearby browsing.
type Restaurant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Cuisine   string    `json:"cuisine"`
	City      string    `json:"city"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MenuItem is one dish on a restaurant's menu with its nutrition estimate
// (per serving) and any allergens it contains.
type MenuItem struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	Calories     float64   `json:"calories"`
	SugarG       float64   `json:"sugar_g"`
	SodiumMg     float64   `json:"sodium_mg"`
	SatFatG      float64   `json:"sat_fat_g"`
	FiberG       float64   `json:"fiber_g"`
	ProteinG     float64   `json:"protein_g"`
	Allergens    []string  `json:"allergens"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
