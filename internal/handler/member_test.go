package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/store"
)

func setupMemberTest(t *testing.T) (*MemberHandler, *store.MemberStore) {
	t.Helper()
	db := testDB(t)
	members := store.NewMemberStore(db)
	h := NewMemberHandler(members, testHub(), testLogger())
	return h, members
}

func TestMemberListIncludesSeededHead(t *testing.T) {
	h, _ := setupMemberTest(t)

	req := httptest.NewRequest("GET", "/api/members", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got []model.Member
	decodeBody(t, rec, &got)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != model.HeadMemberID {
		t.Errorf("id = %q, want %q", got[0].ID, model.HeadMemberID)
	}
}

func TestMemberCreateDefaults(t *testing.T) {
	h, _ := setupMemberTest(t)

	req := httptest.NewRequest("POST", "/api/members", strings.NewReader(`{"name": "Ruby"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got model.Member
	decodeBody(t, rec, &got)
	if got.ID == "" {
		t.Error("id should be generated")
	}
	if got.Color == "" || got.AvatarEmoji == "" {
		t.Errorf("defaults not applied: color=%q emoji=%q", got.Color, got.AvatarEmoji)
	}
}

func TestMemberCreateInvalidColor(t *testing.T) {
	h, _ := setupMemberTest(t)

	req := httptest.NewRequest("POST", "/api/members", strings.NewReader(`{"name": "Ruby", "color": "red"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMemberDeleteHeadRefused(t *testing.T) {
	h, members := setupMemberTest(t)

	req := httptest.NewRequest("DELETE", "/api/members/head", nil)
	req.SetPathValue("id", "head")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	still, err := members.GetByID("head")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if still == nil {
		t.Fatal("head member should survive")
	}
}

func TestMemberDelete(t *testing.T) {
	h, members := setupMemberTest(t)

	m, err := members.Create("m1", "Sam", "#FF0000", "🥗")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	req := httptest.NewRequest("DELETE", "/api/members/"+m.ID, nil)
	req.SetPathValue("id", m.ID)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	gone, err := members.GetByID(m.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if gone != nil {
		t.Error("member should be deleted")
	}
}

func TestMemberSetGrants(t *testing.T) {
	h, _ := setupMemberTest(t)

	body := strings.NewReader(`{"family_id": "fam-1", "corporate_id": "corp-acme"}`)
	req := httptest.NewRequest("PUT", "/api/members/head/grants", body)
	req.SetPathValue("id", "head")
	rec := httptest.NewRecorder()
	h.SetGrants(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got model.Member
	decodeBody(t, rec, &got)
	if got.FamilyID != "fam-1" || got.CorporateID != "corp-acme" {
		t.Errorf("grants = %q/%q", got.FamilyID, got.CorporateID)
	}
}
