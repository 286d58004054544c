package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/store"
)

func setupReminderTest(t *testing.T) (*ReminderHandler, *store.ReminderStore) {
	t.Helper()
	db := testDB(t)
	reminders := store.NewReminderStore(db)
	h := NewReminderHandler(reminders, store.NewMemberStore(db), testLogger())
	return h, reminders
}

func TestReminderCreate(t *testing.T) {
	h, _ := setupReminderTest(t)

	body := strings.NewReader(`{"message": "Log your lunch", "rule": "daily@12:30"}`)
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest("POST", "/api/reminders", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got model.Reminder
	decodeBody(t, rec, &got)
	if got.MemberID != "head" {
		t.Errorf("member id = %q, want default", got.MemberID)
	}
	if !got.Enabled {
		t.Error("new reminders start enabled")
	}
}

func TestReminderCreateBadRule(t *testing.T) {
	h, _ := setupReminderTest(t)

	body := strings.NewReader(`{"message": "Log your lunch", "rule": "hourly@12:30"}`)
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest("POST", "/api/reminders", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestReminderUpdatePartial(t *testing.T) {
	h, reminders := setupReminderTest(t)

	created, err := reminders.Create("head", "Log your lunch", "daily@12:30")
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	body := strings.NewReader(`{"enabled": false}`)
	req := httptest.NewRequest("PUT", fmt.Sprintf("/api/reminders/%d", created.ID), body)
	req.SetPathValue("id", strconv.FormatInt(created.ID, 10))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got model.Reminder
	decodeBody(t, rec, &got)
	if got.Enabled {
		t.Error("reminder should be disabled")
	}
	if got.Message != "Log your lunch" || got.Rule != "daily@12:30" {
		t.Errorf("unchanged fields mutated: %+v", got)
	}
}

func TestReminderDelete(t *testing.T) {
	h, reminders := setupReminderTest(t)

	created, err := reminders.Create("head", "Log your lunch", "daily@12:30")
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/reminders/%d", created.ID), nil)
	req.SetPathValue("id", strconv.FormatInt(created.ID, 10))
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	gone, err := reminders.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get reminder: %v", err)
	}
	if gone != nil {
		t.Error("reminder should be deleted")
	}
}
