package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/reminder"
	"github.com/voraviaadmin/voravia/internal/store"
)

type ReminderHandler struct {
	reminders *store.ReminderStore
	members   *store.MemberStore
	logger    *slog.Logger
}

func NewReminderHandler(rs *store.ReminderStore, ms *store.MemberStore, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{reminders: rs, members: ms, logger: logger}
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"member_id"`
		Message  string `json:"message"`
		Rule     string `json:"rule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	if req.MemberID == "" {
		req.MemberID = model.HeadMemberID
	}
	if _, err := reminder.Parse(req.Rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	member, err := h.members.GetByID(req.MemberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	created, err := h.reminders.Create(req.MemberID, req.Message, req.Rule)
	if err != nil {
		h.logger.Error("create reminder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create reminder"})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ReminderHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.reminders.ListByMember(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list reminders"})
		return
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.reminders.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get reminder"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reminder not found"})
		return
	}

	var req struct {
		Message string `json:"message"`
		Rule    string `json:"rule"`
		Enabled *bool  `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Message == "" {
		req.Message = existing.Message
	}
	if req.Rule == "" {
		req.Rule = existing.Rule
	}
	if _, err := reminder.Parse(req.Rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	enabled := existing.Enabled
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	updated, err := h.reminders.Update(id, req.Message, req.Rule, enabled)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update reminder"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.reminders.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get reminder"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reminder not found"})
		return
	}

	if err := h.reminders.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete reminder"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
