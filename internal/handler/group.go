package handler

import (
	"log/slog"
	"net/http"

	"github.com/voraviaadmin/voravia/internal/directory"
	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/store"
	"github.com/voraviaadmin/voravia/internal/websocket"
)

type GroupHandler struct {
	groups    *store.GroupStore
	directory *directory.Client
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewGroupHandler(gs *store.GroupStore, dc *directory.Client, hub *websocket.Hub, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: gs, directory: dc, hub: hub, logger: logger}
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list groups"})
		return
	}
	if groups == nil {
		groups = []model.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.GetByID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get group"})
		return
	}
	if group == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "group not found"})
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.groups.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get group"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "group not found"})
		return
	}

	if err := h.groups.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete group"})
		return
	}

	// Dropping a group can shrink scope eligibility, so connected
	// clients need to re-clamp their active context.
	h.hub.Broadcast(websocket.NewMessage("group", "deleted", id, map[string]any{"kind": existing.Kind}))
	w.WriteHeader(http.StatusNoContent)
}

// DirectoryStatus reports the last membership directory sync.
func (h *GroupHandler) DirectoryStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"configured": h.directory.Configured(),
		"stale":      h.directory.Stale(),
		"status":     h.directory.Status(),
	})
}

// DirectorySync triggers an immediate directory pull.
func (h *GroupHandler) DirectorySync(w http.ResponseWriter, r *http.Request) {
	if !h.directory.Configured() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "membership directory not configured"})
		return
	}
	if err := h.directory.Sync(r.Context()); err != nil {
		h.logger.Error("directory sync", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "directory sync failed"})
		return
	}
	writeJSON(w, http.StatusOK, h.directory.Status())
}
