package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/voraviaadmin/voravia/internal/model"
)

// ErrHeadMember is returned when deleting the seeded owner profile.
var ErrHeadMember = errors.New("cannot delete the owner profile")

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberCols = `id, name, color, avatar_emoji, family_id, corporate_id, sort_order, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	err := scanner.Scan(&m.ID, &m.Name, &m.Color, &m.AvatarEmoji, &m.FamilyID, &m.CorporateID, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MemberStore) Create(id, name, color, avatarEmoji string) (*model.Member, error) {
	var maxOrder int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order), -1) FROM members`).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query max sort_order: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO members (id, name, color, avatar_emoji, sort_order) VALUES (?, ?, ?, ?, ?)`,
		id, name, color, avatarEmoji, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) List() ([]model.Member, error) {
	rows, err := s.db.Query(`SELECT ` + memberCols + ` FROM members ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *MemberStore) GetByID(id string) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) Update(id, name, color, avatarEmoji string) (*model.Member, error) {
	_, err := s.db.Exec(
		`UPDATE members SET name = ?, color = ?, avatar_emoji = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, color, avatarEmoji, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	return s.GetByID(id)
}

// SetGrants updates the member's group references. Empty strings clear a
// grant. Callers re-clamp the active context afterwards.
func (s *MemberStore) SetGrants(id, familyID, corporateID string) (*model.Member, error) {
	_, err := s.db.Exec(
		`UPDATE members SET family_id = ?, corporate_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		familyID, corporateID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set member grants: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) Delete(id string) error {
	if id == model.HeadMemberID {
		return ErrHeadMember
	}
	_, err := s.db.Exec(`DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

func (s *MemberStore) UpdateSortOrder(ids []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE members SET sort_order = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.Exec(i, id); err != nil {
			return fmt.Errorf("update sort order for %q: %w", id, err)
		}
	}

	return tx.Commit()
}

// ListByFamily returns the members sharing a family grant, for aggregate
// health scores.
func (s *MemberStore) ListByFamily(familyID string) ([]model.Member, error) {
	return s.listByGrant(`family_id`, familyID)
}

// ListByCorporate returns the members sharing a workplace grant.
func (s *MemberStore) ListByCorporate(corporateID string) ([]model.Member, error) {
	return s.listByGrant(`corporate_id`, corporateID)
}

func (s *MemberStore) listByGrant(column, id string) ([]model.Member, error) {
	if id == "" {
		return nil, nil
	}
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM members WHERE `+column+` = ? ORDER BY sort_order`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query members by %s: %w", column, err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}
