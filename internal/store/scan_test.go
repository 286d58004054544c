package store

import (
	"testing"
	"time"

	"github.com/voraviaadmin/voravia/internal/database"
	"github.com/voraviaadmin/voravia/internal/model"
)

func setupScanTestDB(t *testing.T) *ScanStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewScanStore(db)
}

func testScan(id string, score int) model.Scan {
	return model.Scan{
		ID:          id,
		MemberID:    "head",
		Barcode:     "0123456789012",
		ProductName: "Oat Bars",
		Brand:       "Granary",
		Facts: model.NutritionFacts{
			Calories: 380,
			SugarG:   12,
			SodiumMg: 150,
			SatFatG:  2,
			FiberG:   7,
			ProteinG: 10,
		},
		Score:   score,
		Verdict: "good",
	}
}

func TestScanCreateAndGet(t *testing.T) {
	ss := setupScanTestDB(t)

	created, err := ss.Create(testScan("s-1", 72))
	if err != nil {
		t.Fatalf("create scan: %v", err)
	}
	if created.Score != 72 {
		t.Errorf("score = %d, want 72", created.Score)
	}
	if created.Facts.FiberG != 7 {
		t.Errorf("fiber = %v, want 7", created.Facts.FiberG)
	}

	got, err := ss.GetByID("s-1")
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if got == nil {
		t.Fatal("expected scan, got nil")
	}
	if got.ProductName != "Oat Bars" {
		t.Errorf("product = %q, want Oat Bars", got.ProductName)
	}
}

func TestScanGetMissing(t *testing.T) {
	ss := setupScanTestDB(t)

	got, err := ss.GetByID("nope")
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing scan")
	}
}

func TestScanListByMemberNewestFirst(t *testing.T) {
	ss := setupScanTestDB(t)

	for i, id := range []string{"s-1", "s-2", "s-3"} {
		sc := testScan(id, 50+i)
		if _, err := ss.Create(sc); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	scans, err := ss.ListByMember("head", 2)
	if err != nil {
		t.Fatalf("list scans: %v", err)
	}
	if len(scans) != 2 {
		t.Fatalf("len(scans) = %d, want 2", len(scans))
	}
}

func TestScanRecentScores(t *testing.T) {
	ss := setupScanTestDB(t)

	if _, err := ss.Create(testScan("s-1", 60)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ss.Create(testScan("s-2", 80)); err != nil {
		t.Fatalf("create: %v", err)
	}

	since := time.Now().UTC().Add(-time.Hour)
	scores, err := ss.RecentScores([]string{"head"}, since)
	if err != nil {
		t.Fatalf("recent scores: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("len(scores) = %d, want 2", len(scores))
	}

	scores, err = ss.RecentScores(nil, since)
	if err != nil {
		t.Fatalf("recent scores with no members: %v", err)
	}
	if scores != nil {
		t.Errorf("expected nil scores for no members, got %v", scores)
	}

	// Nothing is recent if the cutoff is in the future.
	scores, err = ss.RecentScores([]string{"head"}, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("recent scores future cutoff: %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("expected no scores past future cutoff, got %v", scores)
	}
}
