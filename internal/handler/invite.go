package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/voraviaadmin/voravia/internal/auth"
	"github.com/voraviaadmin/voravia/internal/email"
	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/store"
	"github.com/voraviaadmin/voravia/internal/websocket"
)

// InviteHandler issues signed invitations to family and workplace groups
// and applies the grant when one is accepted.
type InviteHandler struct {
	groups  *store.GroupStore
	members *store.MemberStore
	email   *email.Client
	hub     *websocket.Hub
	secret  []byte
	logger  *slog.Logger
}

func NewInviteHandler(gs *store.GroupStore, ms *store.MemberStore, ec *email.Client, hub *websocket.Hub, secret []byte, logger *slog.Logger) *InviteHandler {
	return &InviteHandler{
		groups:  gs,
		members: ms,
		email:   ec,
		hub:     hub,
		secret:  secret,
		logger:  logger,
	}
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID   string `json:"group_id"`
		GroupKind string `json:"group_kind"`
		GroupName string `json:"group_name"`
		Email     string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.GroupID = strings.TrimSpace(req.GroupID)
	req.GroupName = strings.TrimSpace(req.GroupName)
	if req.GroupID == "" || req.GroupName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "group_id and group_name are required"})
		return
	}
	if req.GroupKind != model.GroupKindFamily && req.GroupKind != model.GroupKindWorkplace {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "group_kind must be family or workplace"})
		return
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email"})
			return
		}
	}

	// The group record exists as soon as an invite is issued, so the
	// family scope lights up for accepted members immediately.
	if _, err := h.groups.Upsert(req.GroupID, req.GroupKind, req.GroupName); err != nil {
		h.logger.Error("upsert group", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save group"})
		return
	}

	token, err := auth.SignInvite(h.secret, req.GroupID, req.GroupKind, req.GroupName, req.Email)
	if err != nil {
		h.logger.Error("sign invite", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create invite"})
		return
	}

	if req.Email != "" && h.email.Configured() {
		if err := h.email.SendGroupInvite(req.Email, token, req.GroupKind, req.GroupName); err != nil {
			h.logger.Warn("send invite email", "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		MemberID string `json:"member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.MemberID == "" {
		req.MemberID = model.HeadMemberID
	}

	claims, err := auth.VerifyInvite(h.secret, req.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired invite"})
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

	if _, err := h.groups.Upsert(claims.GroupID, claims.GroupKind, claims.GroupName); err != nil {
		h.logger.Error("upsert group", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save group"})
		return
	}

	familyID := member.FamilyID
	corporateID := member.CorporateID
	switch claims.GroupKind {
	case model.GroupKindFamily:
		familyID = claims.GroupID
	case model.GroupKindWorkplace:
		corporateID = claims.GroupID
	}

	updated, err := h.members.SetGrants(member.ID, familyID, corporateID)
	if err != nil {
		h.logger.Error("set grants", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to apply invite"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("member", "updated", updated.ID, map[string]any{
		"group_id": claims.GroupID,
	}))
	writeJSON(w, http.StatusOK, updated)
}
