package store

import (
	"testing"

	"github.com/voraviaadmin/voravia/internal/database"
	"github.com/voraviaadmin/voravia/internal/model"
)

func setupRestaurantTestDB(t *testing.T) *RestaurantStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRestaurantStore(db)
}

func TestRestaurantSearch(t *testing.T) {
	rs := setupRestaurantTestDB(t)

	if _, err := rs.Create("Green Bowl", "salads", "Portland", 45.52, -122.68); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rs.Create("Taco Haven", "mexican", "Portland", 45.53, -122.66); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rs.Create("Green Leaf", "salads", "Seattle", 47.61, -122.33); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := rs.Search("Green", "", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("name search = %d results, want 2", len(got))
	}

	got, err = rs.Search("", "salads", "Portland")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Green Bowl" {
		t.Errorf("filter search = %v, want [Green Bowl]", got)
	}

	got, err = rs.Search("", "", "")
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("empty search = %d results, want 3", len(got))
	}
}

func TestRestaurantNearby(t *testing.T) {
	rs := setupRestaurantTestDB(t)

	if _, err := rs.Create("Close Cafe", "cafe", "Portland", 45.520, -122.680); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rs.Create("Far Fishhouse", "seafood", "Seattle", 47.610, -122.330); err != nil {
		t.Fatalf("create: %v", err)
	}

	near, err := rs.Nearby(45.521, -122.681, 5, 10)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(near) != 1 || near[0].Name != "Close Cafe" {
		t.Errorf("nearby = %v, want [Close Cafe]", near)
	}
}

func TestMenuItemsRoundTrip(t *testing.T) {
	rs := setupRestaurantTestDB(t)

	r, err := rs.Create("Green Bowl", "salads", "Portland", 45.52, -122.68)
	if err != nil {
		t.Fatalf("create restaurant: %v", err)
	}

	item, err := rs.CreateMenuItem(model.MenuItem{
		RestaurantID: r.ID,
		Name:         "Kale Caesar",
		Category:     "salads",
		Price:        12.5,
		Calories:     420,
		SugarG:       4,
		SodiumMg:     780,
		SatFatG:      5,
		FiberG:       6,
		ProteinG:     18,
		Allergens:    []string{"dairy", "gluten"},
	})
	if err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	if len(item.Allergens) != 2 {
		t.Errorf("allergens = %v, want 2 entries", item.Allergens)
	}

	menu, err := rs.ListMenu(r.ID)
	if err != nil {
		t.Fatalf("list menu: %v", err)
	}
	if len(menu) != 1 {
		t.Fatalf("len(menu) = %d, want 1", len(menu))
	}
	if menu[0].Name != "Kale Caesar" {
		t.Errorf("item = %q, want Kale Caesar", menu[0].Name)
	}
}
