package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/voraviaadmin/voravia/internal/model"
)

type ScanStore struct {
	db *sql.DB
}

func NewScanStore(db *sql.DB) *ScanStore {
	return &ScanStore{db: db}
}

const scanCols = `id, member_id, barcode, product_name, brand, calories, sugar_g, sodium_mg, sat_fat_g, fiber_g, protein_g, score, verdict, created_at`

func scanScan(scanner interface{ Scan(...any) error }) (*model.Scan, error) {
	var sc model.Scan
	err := scanner.Scan(
		&sc.ID, &sc.MemberID, &sc.Barcode, &sc.ProductName, &sc.Brand,
		&sc.Facts.Calories, &sc.Facts.SugarG, &sc.Facts.SodiumMg, &sc.Facts.SatFatG, &sc.Facts.FiberG, &sc.Facts.ProteinG,
		&sc.Score, &sc.Verdict, &sc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *ScanStore) Create(sc model.Scan) (*model.Scan, error) {
	_, err := s.db.Exec(
		`INSERT INTO scans (id, member_id, barcode, product_name, brand, calories, sugar_g, sodium_mg, sat_fat_g, fiber_g, protein_g, score, verdict)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.MemberID, sc.Barcode, sc.ProductName, sc.Brand,
		sc.Facts.Calories, sc.Facts.SugarG, sc.Facts.SodiumMg, sc.Facts.SatFatG, sc.Facts.FiberG, sc.Facts.ProteinG,
		sc.Score, sc.Verdict,
	)
	if err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}
	return s.GetByID(sc.ID)
}

func (s *ScanStore) GetByID(id string) (*model.Scan, error) {
	row := s.db.QueryRow(`SELECT `+scanCols+` FROM scans WHERE id = ?`, id)
	sc, err := scanScan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scan: %w", err)
	}
	return sc, nil
}

func (s *ScanStore) ListByMember(memberID string, limit int) ([]model.Scan, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT `+scanCols+` FROM scans WHERE member_id = ? ORDER BY created_at DESC LIMIT ?`,
		memberID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()
	return collectScans(rows)
}

// RecentScores returns the scan scores recorded for the given members since
// the cutoff, for health-score aggregation.
func (s *ScanStore) RecentScores(memberIDs []string, since time.Time) ([]int, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	query := `SELECT score FROM scans WHERE created_at >= ? AND member_id IN (?` // first placeholder
	args := []any{since, memberIDs[0]}
	for _, id := range memberIDs[1:] {
		query += `, ?`
		args = append(args, id)
	}
	query += `)`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent scores: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

func (s *ScanStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	return nil
}

func collectScans(rows *sql.Rows) ([]model.Scan, error) {
	var scans []model.Scan
	for rows.Next() {
		sc, err := scanScan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		scans = append(scans, *sc)
	}
	return scans, rows.Err()
}
