package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/scope"
	"github.com/voraviaadmin/voravia/internal/store"
	"github.com/voraviaadmin/voravia/internal/websocket"
)

// ContextHandler serves the active viewing context: which scope the user
// is looking at and which member the data is about.
type ContextHandler struct {
	contexts *store.ContextStore
	members  *store.MemberStore
	groups   *store.GroupStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewContextHandler(cs *store.ContextStore, ms *store.MemberStore, gs *store.GroupStore, hub *websocket.Hub, logger *slog.Logger) *ContextHandler {
	return &ContextHandler{
		contexts: cs,
		members:  ms,
		groups:   gs,
		hub:      hub,
		logger:   logger,
	}
}

type contextResponse struct {
	Scope           scope.Scope          `json:"scope"`
	ActorID         string               `json:"actor_id"`
	RequestedScope  scope.Scope          `json:"requested_scope"`
	Active          scope.ActiveContext  `json:"active"`
	Eligibility     map[scope.Scope]bool `json:"eligibility"`
	AvailableScopes []scope.Scope        `json:"available_scopes"`
}

// actorFor resolves the stored actor id to eligibility inputs. A missing
// member falls back to an actor with no grants, which clamps to individual.
func (h *ContextHandler) actorFor(actorID string) (scope.Actor, scope.Options, error) {
	actor := scope.Actor{ID: actorID}

	member, err := h.members.GetByID(actorID)
	if err != nil {
		return actor, scope.Options{}, err
	}
	if member != nil {
		actor.FamilyID = member.FamilyID
		actor.CorporateID = member.CorporateID
	}

	hasFamily, err := h.groups.HasFamilyGroup()
	if err != nil {
		return actor, scope.Options{}, err
	}
	return actor, scope.Options{HasFamilyGroup: hasFamily}, nil
}

// activeFor builds the tagged view value for the effective scope, filling
// in the group the scope points at. A family scope reached through the
// group-exists fallback borrows the first stored family group.
func (h *ContextHandler) activeFor(effective scope.Scope, actor scope.Actor) (scope.ActiveContext, error) {
	groupID := ""
	switch effective {
	case scope.Family:
		groupID = actor.FamilyID
	case scope.Workplace:
		groupID = actor.CorporateID
	default:
		return scope.InIndividual(), nil
	}

	if groupID == "" && effective == scope.Family {
		groups, err := h.groups.List()
		if err != nil {
			return scope.ActiveContext{}, err
		}
		for _, g := range groups {
			if g.Kind == model.GroupKindFamily {
				return scope.InFamily(g.ID, g.Name), nil
			}
		}
		return scope.InIndividual(), nil
	}

	group, err := h.groups.GetByID(groupID)
	if err != nil {
		return scope.ActiveContext{}, err
	}
	name := ""
	if group != nil {
		name = group.Name
	}
	if effective == scope.Family {
		return scope.InFamily(groupID, name), nil
	}
	return scope.InWorkplace(groupID, name), nil
}

func (h *ContextHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.contexts.Load()
	if err != nil {
		h.logger.Error("load context", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load context"})
		return
	}

	actor, opts, err := h.actorFor(rec.ActorID)
	if err != nil {
		h.logger.Error("resolve context actor", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve context"})
		return
	}

	effective := scope.Clamp(rec.Scope, actor, opts)
	active, err := h.activeFor(effective, actor)
	if err != nil {
		h.logger.Error("resolve active group", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve context"})
		return
	}

	elig := scope.Eligibility(actor, opts)
	writeJSON(w, http.StatusOK, contextResponse{
		Scope:           effective,
		ActorID:         rec.ActorID,
		RequestedScope:  rec.Scope,
		Active:          active,
		Eligibility:     elig,
		AvailableScopes: scope.AvailableScopes(elig),
	})
}

func (h *ContextHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scope   string `json:"scope"`
		ActorID string `json:"actor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	actorID := strings.TrimSpace(req.ActorID)
	if actorID == "" {
		actorID = model.HeadMemberID
	}
	member, err := h.members.GetByID(actorID)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	actor, opts, err := h.actorFor(actorID)
	if err != nil {
		h.logger.Error("resolve context actor", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve context"})
		return
	}

	// Unknown scope names collapse to individual, legacy names map to
	// their current spelling, and ineligible scopes clamp.
	requested := scope.Normalize(req.Scope)
	effective := scope.Clamp(requested, actor, opts)

	rec := store.ContextRecord{Scope: effective, ActorID: actorID}
	if err := h.contexts.Save(rec); err != nil {
		h.logger.Error("save context", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save context"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("context", "changed", actorID, map[string]any{
		"scope": string(effective),
	}))

	active, err := h.activeFor(effective, actor)
	if err != nil {
		h.logger.Error("resolve active group", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve context"})
		return
	}

	elig := scope.Eligibility(actor, opts)
	writeJSON(w, http.StatusOK, contextResponse{
		Scope:           effective,
		ActorID:         actorID,
		RequestedScope:  requested,
		Active:          active,
		Eligibility:     elig,
		AvailableScopes: scope.AvailableScopes(elig),
	})
}
