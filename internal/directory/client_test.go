package directory

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voraviaadmin/voravia/internal/model"
)

type fakeGrants struct {
	applied map[string][2]string
}

func newFakeGrants() *fakeGrants {
	return &fakeGrants{applied: make(map[string][2]string)}
}

func (f *fakeGrants) SetGrants(memberID, familyID, corporateID string) (*model.Member, error) {
	f.applied[memberID] = [2]string{familyID, corporateID}
	return &model.Member{ID: memberID, FamilyID: familyID, CorporateID: corporateID}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSyncAppliesGrants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/members" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("authorization = %q", got)
		}
		json.NewEncoder(w).Encode([]Record{
			{MemberID: "head", FamilyID: "fam-1"},
			{MemberID: "coworker", CorporateID: "CORP-X"},
			{MemberID: ""},
		})
	}))
	defer server.Close()

	grants := newFakeGrants()
	c := NewClient(Config{BaseURL: server.URL, APIKey: "sekrit"}, grants, testLogger(), nil)

	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if got := grants.applied["head"]; got != [2]string{"fam-1", ""} {
		t.Errorf("head grants = %v", got)
	}
	if got := grants.applied["coworker"]; got != [2]string{"", "CORP-X"} {
		t.Errorf("coworker grants = %v", got)
	}
	if len(grants.applied) != 2 {
		t.Errorf("applied %d members, want 2", len(grants.applied))
	}

	status := c.Status()
	if status.Members != 2 || status.Offline {
		t.Errorf("status = %+v", status)
	}
}

func TestSyncNotifiesGrantChanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Record{
			{MemberID: "head", FamilyID: "fam-1"},
			{MemberID: "coworker", CorporateID: "CORP-X"},
		})
	}))
	defer server.Close()

	var notified []*model.Member
	c := NewClient(Config{BaseURL: server.URL}, newFakeGrants(), testLogger(), func(m *model.Member) {
		notified = append(notified, m)
	})

	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if len(notified) != 2 {
		t.Fatalf("notified %d members, want 2", len(notified))
	}
	if notified[0].ID != "head" || notified[0].FamilyID != "fam-1" {
		t.Errorf("first notification = %+v", notified[0])
	}
	if notified[1].ID != "coworker" || notified[1].CorporateID != "CORP-X" {
		t.Errorf("second notification = %+v", notified[1])
	}
}

func TestSyncUnconfiguredIsNoop(t *testing.T) {
	grants := newFakeGrants()
	c := NewClient(Config{}, grants, testLogger(), nil)

	if c.Configured() {
		t.Error("expected unconfigured client")
	}
	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(grants.applied) != 0 {
		t.Errorf("applied %d members, want 0", len(grants.applied))
	}
}

func TestSyncOfflineKeepsLastGrants(t *testing.T) {
	failing := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]Record{{MemberID: "head", CorporateID: "CORP-X"}})
	}))
	defer server.Close()

	grants := newFakeGrants()
	c := NewClient(Config{BaseURL: server.URL, RetryBase: time.Millisecond}, grants, testLogger(), nil)

	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	failing = true
	if err := c.Sync(context.Background()); err == nil {
		t.Error("expected error from failed sync")
	}

	// The previously applied grants are untouched.
	if got := grants.applied["head"]; got != [2]string{"", "CORP-X"} {
		t.Errorf("head grants = %v", got)
	}
	if !c.Status().Offline {
		t.Error("expected offline status")
	}
}

func TestStale(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://example.invalid", GracePeriod: time.Hour}, newFakeGrants(), testLogger(), nil)

	if c.Stale() {
		t.Error("never-synced client is not stale")
	}

	c.mu.Lock()
	c.status.LastSynced = time.Now().Add(-2 * time.Hour)
	c.mu.Unlock()

	if !c.Stale() {
		t.Error("expected stale after grace period")
	}
}
