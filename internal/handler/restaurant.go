package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/score"
	"github.com/voraviaadmin/voravia/internal/store"
)

type RestaurantHandler struct {
	restaurants *store.RestaurantStore
	profiles    *store.ProfileStore
	contexts    *store.ContextStore
	logger      *slog.Logger
}

func NewRestaurantHandler(rs *store.RestaurantStore, ps *store.ProfileStore, cs *store.ContextStore, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{restaurants: rs, profiles: ps, contexts: cs, logger: logger}
}

func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name"`
		Cuisine   string  `json:"cuisine"`
		City      string  `json:"city"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	restaurant, err := h.restaurants.Create(req.Name, req.Cuisine, req.City, req.Latitude, req.Longitude)
	if err != nil {
		h.logger.Error("create restaurant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create restaurant"})
		return
	}

	writeJSON(w, http.StatusCreated, restaurant)
}

func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	restaurant, err := h.restaurants.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get restaurant"})
		return
	}
	if restaurant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

// Search filters restaurants by free-text name, cuisine, and city.
func (h *RestaurantHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	restaurants, err := h.restaurants.Search(q.Get("q"), q.Get("cuisine"), q.Get("city"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to search restaurants"})
		return
	}
	if restaurants == nil {
		restaurants = []model.Restaurant{}
	}
	writeJSON(w, http.StatusOK, restaurants)
}

// Nearby lists restaurants within radius_km of lat/lng, closest first.
func (h *RestaurantHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat is required"})
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lng is required"})
		return
	}

	radiusKm := 5.0
	if s := q.Get("radius_km"); s != "" {
		radiusKm, err = strconv.ParseFloat(s, 64)
		if err != nil || radiusKm <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid radius_km"})
			return
		}
	}

	limit := 20
	if s := q.Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
	}

	restaurants, err := h.restaurants.Nearby(lat, lng, radiusKm, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list nearby restaurants"})
		return
	}
	if restaurants == nil {
		restaurants = []model.Restaurant{}
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *RestaurantHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	restaurant, err := h.restaurants.GetByID(restaurantID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get restaurant"})
		return
	}
	if restaurant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
		return
	}

	var item model.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	item.RestaurantID = restaurantID

	created, err := h.restaurants.CreateMenuItem(item)
	if err != nil {
		h.logger.Error("create menu item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create menu item"})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

type ratedMenuItem struct {
	model.MenuItem
	Score   int      `json:"score"`
	Verdict string   `json:"verdict"`
	Reasons []string `json:"reasons,omitempty"`
}

// Menu lists a restaurant's dishes, each rated against a member's health
// profile. The member_id query parameter picks the member; without it the
// acting member from the stored context is used.
func (h *RestaurantHandler) Menu(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	restaurant, err := h.restaurants.GetByID(restaurantID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get restaurant"})
		return
	}
	if restaurant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
		return
	}

	items, err := h.restaurants.ListMenu(restaurantID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list menu"})
		return
	}

	memberID := r.URL.Query().Get("member_id")
	if memberID == "" {
		rec, err := h.contexts.Load()
		if err != nil {
			h.logger.Error("load context", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load context"})
			return
		}
		memberID = rec.ActorID
	}

	profile, err := h.profiles.Get(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return
	}

	rated := make([]ratedMenuItem, 0, len(items))
	for _, item := range items {
		rating := score.RateMenuItem(item, profile)
		rated = append(rated, ratedMenuItem{
			MenuItem: item,
			Score:    rating.Score,
			Verdict:  rating.Verdict,
			Reasons:  rating.Reasons,
		})
	}
	writeJSON(w, http.StatusOK, rated)
}
