package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/push"
	"github.com/voraviaadmin/voravia/internal/store"
)

type PushHandler struct {
	pushStore *store.PushStore
	service   *push.Service
	logger    *slog.Logger
}

func NewPushHandler(ps *store.PushStore, svc *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, service: svc, logger: logger}
}

// VAPIDKey returns the public key clients need to subscribe.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	key := h.service.VAPIDPublicKey()
	if key == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "push notifications not configured"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": key})
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID   string `json:"member_id"`
		Endpoint   string `json:"endpoint"`
		P256dhKey  string `json:"p256dh_key"`
		AuthKey    string `json:"auth_key"`
		DeviceName string `json:"device_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Endpoint == "" || req.P256dhKey == "" || req.AuthKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint, p256dh_key, and auth_key are required"})
		return
	}
	if req.MemberID == "" {
		req.MemberID = model.HeadMemberID
	}

	sub, err := h.pushStore.CreateSubscription(req.MemberID, req.Endpoint, req.P256dhKey, req.AuthKey, req.DeviceName)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save subscription"})
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *PushHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	subs, err := h.pushStore.ListByMember(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list subscriptions"})
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Endpoint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint is required"})
		return
	}

	if err := h.pushStore.DeleteByEndpoint(req.Endpoint); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete subscription"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Test sends a notification to all of a member's devices so users can
// verify their setup.
func (h *PushHandler) Test(w http.ResponseWriter, r *http.Request) {
	memberID := r.PathValue("id")

	subs, err := h.pushStore.ListByMember(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list subscriptions"})
		return
	}
	if len(subs) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no subscriptions for member"})
		return
	}

	payload := push.Payload{
		Kind:  push.KindTest,
		Title: "Voravia",
		Body:  "Push notifications are working.",
		Tag:   "test",
	}
	sent := 0
	for _, sub := range subs {
		if err := h.service.Send(&sub, payload); err != nil {
			h.logger.Warn("send test push", "error", err)
			continue
		}
		sent++
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
