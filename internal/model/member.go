package model

import "time"

// HeadMemberID is the seeded owner profile every device starts with.
const HeadMemberID = "head"

// Member is a profile on this device. FamilyID and CorporateID are grants
// referencing external group records; empty means no grant.
type Member struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	AvatarEmoji string    `json:"avatar_emoji"`
	FamilyID    string    `json:"family_id,omitempty"`
	CorporateID string    `json:"corporate_id,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
