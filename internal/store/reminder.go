package store

import (
	"database/sql"
	"fmt"

	"github.com/voraviaadmin/voravia/internal/model"
)

type ReminderStore struct {
	db *sql.DB
}

func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

const reminderCols = `id, member_id, message, rule, enabled, created_at, updated_at`

func scanReminder(scanner interface{ Scan(...any) error }) (*model.Reminder, error) {
	var r model.Reminder
	err := scanner.Scan(&r.ID, &r.MemberID, &r.Message, &r.Rule, &r.Enabled, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReminderStore) Create(memberID, message, rule string) (*model.Reminder, error) {
	result, err := s.db.Exec(
		`INSERT INTO reminders (member_id, message, rule) VALUES (?, ?, ?)`,
		memberID, message, rule,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReminderStore) GetByID(id int64) (*model.Reminder, error) {
	row := s.db.QueryRow(`SELECT `+reminderCols+` FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderStore) ListByMember(memberID string) ([]model.Reminder, error) {
	rows, err := s.db.Query(`SELECT `+reminderCols+` FROM reminders WHERE member_id = ? ORDER BY id`, memberID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()
	return collectReminders(rows)
}

// ListEnabled returns every enabled reminder; the scheduler walks these each
// tick.
func (s *ReminderStore) ListEnabled() ([]model.Reminder, error) {
	rows, err := s.db.Query(`SELECT ` + reminderCols + ` FROM reminders WHERE enabled = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list enabled reminders: %w", err)
	}
	defer rows.Close()
	return collectReminders(rows)
}

func (s *ReminderStore) Update(id int64, message, rule string, enabled bool) (*model.Reminder, error) {
	_, err := s.db.Exec(
		`UPDATE reminders SET message = ?, rule = ?, enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		message, rule, enabled, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReminderStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

func collectReminders(rows *sql.Rows) ([]model.Reminder, error) {
	var reminders []model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}
