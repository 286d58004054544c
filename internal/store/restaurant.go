package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/voraviaadmin/voravia/internal/model"
)

type RestaurantStore struct {
	db *sql.DB
}

func NewRestaurantStore(db *sql.DB) *RestaurantStore {
	return &RestaurantStore{db: db}
}

const restaurantCols = `id, name, cuisine, city, latitude, longitude, created_at, updated_at`

func scanRestaurant(scanner interface{ Scan(...any) error }) (*model.Restaurant, error) {
	var r model.Restaurant
	err := scanner.Scan(&r.ID, &r.Name, &r.Cuisine, &r.City, &r.Latitude, &r.Longitude, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RestaurantStore) Create(name, cuisine, city string, lat, lon float64) (*model.Restaurant, error) {
	result, err := s.db.Exec(
		`INSERT INTO restaurants (name, cuisine, city, latitude, longitude) VALUES (?, ?, ?, ?, ?)`,
		name, cuisine, city, lat, lon,
	)
	if err != nil {
		return nil, fmt.Errorf("insert restaurant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RestaurantStore) GetByID(id int64) (*model.Restaurant, error) {
	row := s.db.QueryRow(`SELECT `+restaurantCols+` FROM restaurants WHERE id = ?`, id)
	r, err := scanRestaurant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return r, nil
}

// Search filters by name substring, cuisine, and city. Empty filters match
// everything.
func (s *RestaurantStore) Search(query, cuisine, city string) ([]model.Restaurant, error) {
	rows, err := s.db.Query(
		`SELECT `+restaurantCols+` FROM restaurants
		 WHERE (? = '' OR name LIKE '%' || ? || '%')
		   AND (? = '' OR cuisine = ?)
		   AND (? = '' OR city = ?)
		 ORDER BY name`,
		query, query, cuisine, cuisine, city, city,
	)
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	defer rows.Close()
	return collectRestaurants(rows)
}

// Nearby returns restaurants within radiusKm of the given point, closest
// first. Distance uses an equirectangular approximation, fine at city scale.
func (s *RestaurantStore) Nearby(lat, lon, radiusKm float64, limit int) ([]model.Restaurant, error) {
	if limit <= 0 {
		limit = 20
	}
	all, err := s.Search("", "", "")
	if err != nil {
		return nil, err
	}

	type withDist struct {
		r model.Restaurant
		d float64
	}
	var near []withDist
	for _, r := range all {
		d := approxDistanceKm(lat, lon, r.Latitude, r.Longitude)
		if d <= radiusKm {
			near = append(near, withDist{r, d})
		}
	}

	// insertion sort by distance; lists are small
	for i := 1; i < len(near); i++ {
		for j := i; j > 0 && near[j].d < near[j-1].d; j-- {
			near[j], near[j-1] = near[j-1], near[j]
		}
	}

	out := make([]model.Restaurant, 0, limit)
	for _, n := range near {
		if len(out) == limit {
			break
		}
		out = append(out, n.r)
	}
	return out, nil
}

func approxDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	const kmPerDegree = 111.195
	x := (lon2 - lon1) * math.Cos((lat1+lat2)/2*math.Pi/180)
	y := lat2 - lat1
	return math.Sqrt(x*x+y*y) * kmPerDegree
}

func collectRestaurants(rows *sql.Rows) ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		restaurants = append(restaurants, *r)
	}
	return restaurants, rows.Err()
}

const menuItemCols = `id, restaurant_id, name, category, price, calories, sugar_g, sodium_mg, sat_fat_g, fiber_g, protein_g, allergens, created_at, updated_at`

func scanMenuItem(scanner interface{ Scan(...any) error }) (*model.MenuItem, error) {
	var m model.MenuItem
	var allergens string
	err := scanner.Scan(
		&m.ID, &m.RestaurantID, &m.Name, &m.Category, &m.Price,
		&m.Calories, &m.SugarG, &m.SodiumMg, &m.SatFatG, &m.FiberG, &m.ProteinG,
		&allergens, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(allergens), &m.Allergens); err != nil {
		m.Allergens = nil
	}
	return &m, nil
}

func (s *RestaurantStore) CreateMenuItem(item model.MenuItem) (*model.MenuItem, error) {
	allergens, err := json.Marshal(item.Allergens)
	if err != nil {
		return nil, fmt.Errorf("marshal allergens: %w", err)
	}
	if item.Allergens == nil {
		allergens = []byte("[]")
	}

	result, err := s.db.Exec(
		`INSERT INTO menu_items (restaurant_id, name, category, price, calories, sugar_g, sodium_mg, sat_fat_g, fiber_g, protein_g, allergens)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.RestaurantID, item.Name, item.Category, item.Price,
		item.Calories, item.SugarG, item.SodiumMg, item.SatFatG, item.FiberG, item.ProteinG,
		string(allergens),
	)
	if err != nil {
		return nil, fmt.Errorf("insert menu item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetMenuItem(id)
}

func (s *RestaurantStore) GetMenuItem(id int64) (*model.MenuItem, error) {
	row := s.db.QueryRow(`SELECT `+menuItemCols+` FROM menu_items WHERE id = ?`, id)
	m, err := scanMenuItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return m, nil
}

func (s *RestaurantStore) ListMenu(restaurantID int64) ([]model.MenuItem, error) {
	rows, err := s.db.Query(
		`SELECT `+menuItemCols+` FROM menu_items WHERE restaurant_id = ? ORDER BY category, name`,
		restaurantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}
