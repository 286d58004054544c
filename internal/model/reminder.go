package model

import "time"

// Reminder is a recurring prompt to log a meal or scan, e.g. "log dinner"
// every weekday at 20:00. Rule syntax is parsed by internal/reminder.
type Reminder struct {
	ID        int64     `json:"id"`
	MemberID  string    `json:"member_id"`
	Message   string    `json:"message"`
	Rule      string    `json:"rule"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
