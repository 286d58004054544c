package store

import (
	"encoding/json"

	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/scope"
)

const activeContextKey = "active_context"

// ContextRecord is what survives a restart: which scope the app was showing
// and which member was acting.
type ContextRecord struct {
	Scope   scope.Scope `json:"scope"`
	ActorID string      `json:"actor_id"`
}

// DefaultContextRecord is what a fresh device lands on.
func DefaultContextRecord() ContextRecord {
	return ContextRecord{Scope: scope.Individual, ActorID: model.HeadMemberID}
}

// ContextStore persists the active context record in app state. It performs
// no eligibility validation; callers clamp before saving.
type ContextStore struct {
	state *AppStateStore
}

func NewContextStore(state *AppStateStore) *ContextStore {
	return &ContextStore{state: state}
}

// Load reads the persisted record. A missing record returns the default and
// writes it back so later loads are stable; that write-on-read is
// intentional. A record that fails to parse is treated as absent. Scope
// strings pass through scope.Normalize so records written by older app
// versions keep working.
func (s *ContextStore) Load() (ContextRecord, error) {
	raw, ok, err := s.state.Get(activeContextKey)
	if err != nil {
		return DefaultContextRecord(), err
	}
	if !ok {
		rec := DefaultContextRecord()
		return rec, s.Save(rec)
	}

	var stored struct {
		Scope   string `json:"scope"`
		ActorID string `json:"actor_id"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		rec := DefaultContextRecord()
		return rec, s.Save(rec)
	}

	rec := ContextRecord{Scope: scope.Normalize(stored.Scope), ActorID: stored.ActorID}
	if rec.ActorID == "" {
		rec.ActorID = model.HeadMemberID
	}
	return rec, nil
}

// Save overwrites the persisted record unconditionally.
func (s *ContextStore) Save(rec ContextRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.state.Set(activeContextKey, string(data))
}
