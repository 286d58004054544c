package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/voraviaadmin/voravia/internal/model"
)

// Config holds membership directory configuration.
type Config struct {
	BaseURL      string
	APIKey       string
	SyncInterval time.Duration
	GracePeriod  time.Duration
	RetryBase    time.Duration
}

// Record is one member's group assignments as reported by the directory.
type Record struct {
	MemberID    string `json:"member_id"`
	FamilyID    string `json:"family_id,omitempty"`
	CorporateID string `json:"corporate_id,omitempty"`
}

// Status describes the last directory sync.
type Status struct {
	LastSynced time.Time `json:"last_synced"`
	Members    int       `json:"members"`
	Offline    bool      `json:"offline"`
	Warning    string    `json:"warning,omitempty"`
}

// GrantWriter applies directory records to local member rows.
type GrantWriter interface {
	SetGrants(memberID, familyID, corporateID string) (*model.Member, error)
}

// SyncCallback is invoked for each member whose grants a sync applied.
type SyncCallback func(member *model.Member)

// Client periodically pulls group assignments from the membership
// directory and applies them locally. When the directory is unreachable
// the last synced grants stay in effect.
type Client struct {
	mu         sync.RWMutex
	cfg        Config
	status     Status
	grants     GrantWriter
	callback   SyncCallback
	logger     *slog.Logger
	httpClient *http.Client
	stopCh     chan struct{}
	stopped    chan struct{}
}

// NewClient creates a directory client. If BaseURL is empty the client is
// inert and Sync is a no-op; grants are then managed locally. The callback
// fires for each member a sync updates and may be nil.
func NewClient(cfg Config, grants GrantWriter, logger *slog.Logger, callback SyncCallback) *Client {
	if cfg.SyncInterval == 0 {
		cfg.SyncInterval = time.Hour
	}
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = 7 * 24 * time.Hour
	}
	if cfg.RetryBase == 0 {
		cfg.RetryBase = time.Second
	}

	return &Client{
		cfg:      cfg,
		grants:   grants,
		callback: callback,
		logger:   logger.With("component", "directory"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Configured reports whether a directory endpoint is set.
func (c *Client) Configured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.BaseURL != ""
}

// Sync fetches the current directory records and writes their grants to
// the member store. Transient failures are retried with backoff.
func (c *Client) Sync(ctx context.Context) error {
	c.mu.RLock()
	base := c.cfg.BaseURL
	c.mu.RUnlock()

	if base == "" {
		return nil
	}

	var records []Record
	backoff := retry.WithMaxRetries(3, retry.NewExponential(c.cfg.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		records, err = c.fetch(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		c.mu.Lock()
		c.status.Offline = true
		c.status.Warning = "Unable to reach membership directory"
		c.mu.Unlock()
		return fmt.Errorf("sync directory: %w", err)
	}

	applied := 0
	for _, rec := range records {
		if rec.MemberID == "" {
			continue
		}
		member, err := c.grants.SetGrants(rec.MemberID, rec.FamilyID, rec.CorporateID)
		if err != nil {
			c.logger.Warn("apply directory grants", "member_id", rec.MemberID, "error", err)
			continue
		}
		applied++
		if c.callback != nil && member != nil {
			c.callback(member)
		}
	}

	c.mu.Lock()
	c.status = Status{
		LastSynced: time.Now(),
		Members:    applied,
	}
	c.mu.Unlock()

	c.logger.Info("directory synced", "members", applied)
	return nil
}

func (c *Client) fetch(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/members", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}
	return records, nil
}

// Stale reports whether the last successful sync is older than the grace
// period. Stale grants are still honored; callers may surface a warning.
func (c *Client) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cfg.BaseURL == "" || c.status.LastSynced.IsZero() {
		return false
	}
	return time.Since(c.status.LastSynced) > c.cfg.GracePeriod
}

// Status returns the last sync status.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Start begins the background sync goroutine.
func (c *Client) Start(ctx context.Context) {
	if err := c.Sync(ctx); err != nil {
		c.logger.Warn("initial directory sync failed", "error", err)
	}

	go func() {
		defer close(c.stopped)
		ticker := time.NewTicker(c.cfg.SyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := c.Sync(ctx); err != nil {
					c.logger.Warn("directory sync failed", "error", err)
				}
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the background sync goroutine.
func (c *Client) Stop() {
	close(c.stopCh)
	<-c.stopped
}
