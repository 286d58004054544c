package model

import "time"

// Group kinds. GroupKindWorkplace was called "corporate" in older records;
// stored rows always use the current spelling.
const (
	GroupKindFamily    = "family"
	GroupKindWorkplace = "workplace"
)

// Group is a family or workplace record referenced by member grants.
// The ID is assigned by the membership directory, not locally.
type Group struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
