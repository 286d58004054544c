package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/scope"
	"github.com/voraviaadmin/voravia/internal/score"
	"github.com/voraviaadmin/voravia/internal/store"
)

// HealthScoreHandler aggregates scan scores over the active context: the
// actor alone, their family, or their workplace.
type HealthScoreHandler struct {
	contexts *store.ContextStore
	members  *store.MemberStore
	groups   *store.GroupStore
	scans    *store.ScanStore
	logger   *slog.Logger
}

func NewHealthScoreHandler(cs *store.ContextStore, ms *store.MemberStore, gs *store.GroupStore, ss *store.ScanStore, logger *slog.Logger) *HealthScoreHandler {
	return &HealthScoreHandler{
		contexts: cs,
		members:  ms,
		groups:   gs,
		scans:    ss,
		logger:   logger,
	}
}

type healthScoreResponse struct {
	Scope        scope.Scope `json:"scope"`
	ActorID      string      `json:"actor_id"`
	Members      int         `json:"members"`
	Scans        int         `json:"scans"`
	AverageScore float64     `json:"average_score"`
	Days         int         `json:"days"`
}

func (h *HealthScoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	days := 7
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 365 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be between 1 and 365"})
			return
		}
		days = n
	}

	rec, err := h.contexts.Load()
	if err != nil {
		h.logger.Error("load context", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load context"})
		return
	}

	actor := scope.Actor{ID: rec.ActorID}
	member, err := h.members.GetByID(rec.ActorID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if member != nil {
		actor.FamilyID = member.FamilyID
		actor.CorporateID = member.CorporateID
	}

	hasFamily, err := h.groups.HasFamilyGroup()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check groups"})
		return
	}

	// A stored scope the actor is no longer eligible for falls back
	// before any data is aggregated.
	effective := scope.Clamp(rec.Scope, actor, scope.Options{HasFamilyGroup: hasFamily})

	memberIDs, err := h.memberIDsFor(effective, actor)
	if err != nil {
		h.logger.Error("resolve scope members", "scope", effective, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve members"})
		return
	}

	since := time.Now().AddDate(0, 0, -days)
	scores, err := h.scans.RecentScores(memberIDs, since)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load scores"})
		return
	}

	writeJSON(w, http.StatusOK, healthScoreResponse{
		Scope:        effective,
		ActorID:      rec.ActorID,
		Members:      len(memberIDs),
		Scans:        len(scores),
		AverageScore: score.Aggregate(scores),
		Days:         days,
	})
}

func (h *HealthScoreHandler) memberIDsFor(s scope.Scope, actor scope.Actor) ([]string, error) {
	var members []model.Member
	var err error

	switch s {
	case scope.Family:
		members, err = h.members.ListByFamily(actor.FamilyID)
	case scope.Workplace:
		members, err = h.members.ListByCorporate(actor.CorporateID)
	default:
		return []string{actor.ID}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(members)+1)
	seen := false
	for _, m := range members {
		if m.ID == actor.ID {
			seen = true
		}
		ids = append(ids, m.ID)
	}
	// The family scope can be eligible via a family group with no member
	// rows sharing the grant yet; the actor still counts.
	if !seen {
		ids = append(ids, actor.ID)
	}
	return ids, nil
}
