package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/store"
)

type ProfileHandler struct {
	profiles *store.ProfileStore
	members  *store.MemberStore
	logger   *slog.Logger
}

func NewProfileHandler(ps *store.ProfileStore, ms *store.MemberStore, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: ps, members: ms, logger: logger}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	memberID := r.PathValue("id")

	member, err := h.members.GetByID(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	profile, err := h.profiles.Get(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	memberID := r.PathValue("id")

	member, err := h.members.GetByID(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	var profile model.HealthProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if profile.DailyCals < 0 || profile.SodiumLimit < 0 || profile.SugarLimit < 0 || profile.SatFatLimit < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limits must not be negative"})
		return
	}

	profile.MemberID = memberID
	if err := h.profiles.Save(profile); err != nil {
		h.logger.Error("save profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save profile"})
		return
	}

	saved, err := h.profiles.Get(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
