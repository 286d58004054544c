package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/voraviaadmin/voravia/internal/model"
)

const cacheTTL = 24 * time.Hour

// ErrNotFound indicates the product database has no entry for a barcode.
var ErrNotFound = errors.New("product not found")

// Config holds product database configuration from environment variables.
type Config struct {
	BaseURL   string
	UserAgent string
}

// Product is a resolved barcode lookup.
type Product struct {
	Barcode string
	Name    string
	Brand   string
	Facts   model.NutritionFacts
}

type cacheEntry struct {
	product   Product
	fetchedAt time.Time
}

// Client looks up products by barcode and caches results. Nutrition data
// for packaged goods changes rarely, so entries are kept for a day.
type Client struct {
	config Config
	client *http.Client

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewClient creates a product lookup client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://world.openfoodfacts.org"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "voravia/1.0"
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  make(map[string]cacheEntry),
	}
}

// Lookup resolves a barcode to a product, hitting the cache first.
func (c *Client) Lookup(ctx context.Context, barcode string) (Product, error) {
	c.mu.RLock()
	entry, ok := c.cache[barcode]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < cacheTTL {
		return entry.product, nil
	}

	product, err := c.fetch(ctx, barcode)
	if err != nil {
		// Serve a stale entry on transient failure rather than nothing.
		if ok && !errors.Is(err, ErrNotFound) {
			return entry.product, nil
		}
		return Product{}, err
	}

	c.mu.Lock()
	c.cache[barcode] = cacheEntry{product: product, fetchedAt: time.Now()}
	c.mu.Unlock()
	return product, nil
}

type apiResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName string `json:"product_name"`
		Brands      string `json:"brands"`
		Nutriments  struct {
			EnergyKcal   float64 `json:"energy-kcal_100g"`
			Sugars       float64 `json:"sugars_100g"`
			Sodium       float64 `json:"sodium_100g"`
			SaturatedFat float64 `json:"saturated-fat_100g"`
			Fiber        float64 `json:"fiber_100g"`
			Proteins     float64 `json:"proteins_100g"`
		} `json:"nutriments"`
	} `json:"product"`
}

func (c *Client) fetch(ctx context.Context, barcode string) (Product, error) {
	u := fmt.Sprintf("%s/api/v2/product/%s.json", c.config.BaseURL, url.PathEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Product{}, fmt.Errorf("build product request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("product API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Product{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Product{}, fmt.Errorf("product API returned status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Product{}, fmt.Errorf("decode product response: %w", err)
	}
	if apiResp.Status != 1 {
		return Product{}, ErrNotFound
	}

	return Product{
		Barcode: barcode,
		Name:    apiResp.Product.ProductName,
		Brand:   apiResp.Product.Brands,
		Facts: model.NutritionFacts{
			Calories: apiResp.Product.Nutriments.EnergyKcal,
			SugarG:   apiResp.Product.Nutriments.Sugars,
			// The API reports sodium in grams per 100g.
			SodiumMg: apiResp.Product.Nutriments.Sodium * 1000,
			SatFatG:  apiResp.Product.Nutriments.SaturatedFat,
			FiberG:   apiResp.Product.Nutriments.Fiber,
			ProteinG: apiResp.Product.Nutriments.Proteins,
		},
	}, nil
}
