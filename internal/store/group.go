package store

import (
	"database/sql"
	"fmt"

	"github.com/voraviaadmin/voravia/internal/model"
)

type GroupStore struct {
	db *sql.DB
}

func NewGroupStore(db *sql.DB) *GroupStore {
	return &GroupStore{db: db}
}

const groupCols = `id, kind, name, created_at, updated_at`

func scanGroup(scanner interface{ Scan(...any) error }) (*model.Group, error) {
	var g model.Group
	err := scanner.Scan(&g.ID, &g.Kind, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Upsert writes a group record received from the membership directory.
func (s *GroupStore) Upsert(id, kind, name string) (*model.Group, error) {
	_, err := s.db.Exec(
		`INSERT INTO groups (id, kind, name) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, name = excluded.name, updated_at = CURRENT_TIMESTAMP`,
		id, kind, name,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert group: %w", err)
	}
	return s.GetByID(id)
}

func (s *GroupStore) GetByID(id string) (*model.Group, error) {
	row := s.db.QueryRow(`SELECT `+groupCols+` FROM groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

func (s *GroupStore) List() ([]model.Group, error) {
	rows, err := s.db.Query(`SELECT ` + groupCols + ` FROM groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// HasFamilyGroup reports whether any family group record exists. Feeds the
// legacy family-scope fallback in scope.Options.
func (s *GroupStore) HasFamilyGroup() (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM groups WHERE kind = ?`, model.GroupKindFamily).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count family groups: %w", err)
	}
	return count > 0, nil
}

func (s *GroupStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}
