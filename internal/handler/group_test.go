package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	wsconn "github.com/coder/websocket"

	"github.com/voraviaadmin/voravia/internal/directory"
	"github.com/voraviaadmin/voravia/internal/store"
	"github.com/voraviaadmin/voravia/internal/websocket"
)

func setupGroupTest(t *testing.T) (*GroupHandler, *store.GroupStore, *websocket.Hub) {
	t.Helper()
	db := testDB(t)
	groups := store.NewGroupStore(db)
	members := store.NewMemberStore(db)
	hub := testHub()
	dc := directory.NewClient(directory.Config{}, members, testLogger(), nil)
	return NewGroupHandler(groups, dc, hub, testLogger()), groups, hub
}

func TestGroupDeleteBroadcasts(t *testing.T) {
	h, groups, hub := setupGroupTest(t)

	if _, err := groups.Upsert("fam-1", "family", "The Smiths"); err != nil {
		t.Fatalf("upsert group: %v", err)
	}

	ts := httptest.NewServer(websocket.HandleWebSocket(hub))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := wsconn.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	// Registration happens in the server goroutine after the handshake.
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/groups/fam-1", nil)
	req.SetPathValue("id", "fam-1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg websocket.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "group_deleted" {
		t.Errorf("type = %q, want group_deleted", msg.Type)
	}
	if msg.ID != "fam-1" {
		t.Errorf("id = %q, want fam-1", msg.ID)
	}
	if kind, _ := msg.Extra["kind"].(string); kind != "family" {
		t.Errorf("kind = %q, want family", kind)
	}

	group, err := groups.GetByID("fam-1")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if group != nil {
		t.Error("group still present after delete")
	}
}

func TestGroupDeleteNotFound(t *testing.T) {
	h, _, _ := setupGroupTest(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/groups/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
