package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/voraviaadmin/voravia/internal/model"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get returns the member's profile, falling back to defaults when none has
// been saved.
func (s *ProfileStore) Get(memberID string) (model.HealthProfile, error) {
	var p model.HealthProfile
	var allergens string
	err := s.db.QueryRow(
		`SELECT member_id, daily_calories, sodium_limit_mg, sugar_limit_g, sat_fat_limit_g, allergens, dietary_notes, updated_at
		 FROM health_profiles WHERE member_id = ?`, memberID,
	).Scan(&p.MemberID, &p.DailyCals, &p.SodiumLimit, &p.SugarLimit, &p.SatFatLimit, &allergens, &p.DietaryNotes, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.DefaultProfile(memberID), nil
	}
	if err != nil {
		return model.HealthProfile{}, fmt.Errorf("get profile: %w", err)
	}

	if err := json.Unmarshal([]byte(allergens), &p.Allergens); err != nil {
		p.Allergens = nil
	}

	// Zero limits mean the member never set one; fill from defaults so
	// scoring always has a denominator.
	def := model.DefaultProfile(memberID)
	if p.DailyCals == 0 {
		p.DailyCals = def.DailyCals
	}
	if p.SodiumLimit == 0 {
		p.SodiumLimit = def.SodiumLimit
	}
	if p.SugarLimit == 0 {
		p.SugarLimit = def.SugarLimit
	}
	if p.SatFatLimit == 0 {
		p.SatFatLimit = def.SatFatLimit
	}
	return p, nil
}

func (s *ProfileStore) Save(p model.HealthProfile) error {
	allergens, err := json.Marshal(p.Allergens)
	if err != nil {
		return fmt.Errorf("marshal allergens: %w", err)
	}
	if p.Allergens == nil {
		allergens = []byte("[]")
	}

	_, err = s.db.Exec(
		`INSERT INTO health_profiles (member_id, daily_calories, sodium_limit_mg, sugar_limit_g, sat_fat_limit_g, allergens, dietary_notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(member_id) DO UPDATE SET
		   daily_calories = excluded.daily_calories,
		   sodium_limit_mg = excluded.sodium_limit_mg,
		   sugar_limit_g = excluded.sugar_limit_g,
		   sat_fat_limit_g = excluded.sat_fat_limit_g,
		   allergens = excluded.allergens,
		   dietary_notes = excluded.dietary_notes,
		   updated_at = CURRENT_TIMESTAMP`,
		p.MemberID, p.DailyCals, p.SodiumLimit, p.SugarLimit, p.SatFatLimit, string(allergens), p.DietaryNotes,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
