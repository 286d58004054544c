// Package scope implements the context scope rules: which aggregate views
// (individual, family, workplace) a member may currently select, and how an
// ineligible selection falls back to a valid one.
package scope

// Scope identifies an aggregate view of health data.
type Scope string

const (
	Individual Scope = "individual"
	Family     Scope = "family"
	Workplace  Scope = "workplace"
)

// All lists every scope in declaration order. Individual comes first: it is
// the terminal fallback and is always selectable.
var All = []Scope{Individual, Family, Workplace}

// Actor is the identity eligibility is evaluated against. FamilyID and
// CorporateID are opaque references to external group records; empty means
// the member holds no such grant.
type Actor struct {
	ID          string `json:"id"`
	FamilyID    string `json:"family_id,omitempty"`
	CorporateID string `json:"corporate_id,omitempty"`
}

// Options carries signals that are not properties of the actor itself.
type Options struct {
	// HasFamilyGroup unlocks the family scope when a family group record
	// exists locally even if the actor carries no family grant. Carried
	// over from older app versions; see Normalize for the same vintage of
	// compatibility. Ambiguous as product behavior but preserved as-is.
	HasFamilyGroup bool `json:"has_family_group"`
}

// Available reports whether the given scope is currently selectable.
// Zero-value actor and options mean "no grants", which still satisfies
// Individual. There are no error conditions.
func Available(s Scope, a Actor, o Options) bool {
	switch s {
	case Individual:
		return true
	case Family:
		return a.FamilyID != "" || o.HasFamilyGroup
	case Workplace:
		return a.CorporateID != ""
	default:
		return false
	}
}

// Eligibility returns the per-scope availability map for the actor.
// It is a pure derived view with no state of its own.
func Eligibility(a Actor, o Options) map[Scope]bool {
	m := make(map[Scope]bool, len(All))
	for _, s := range All {
		m[s] = Available(s, a, o)
	}
	return m
}

// AvailableScopes filters the declaration order down to the scopes marked
// eligible. The result is stable, non-empty, and starts with Individual
// whenever Individual is eligible (it always is for maps produced by
// Eligibility).
func AvailableScopes(elig map[Scope]bool) []Scope {
	out := make([]Scope, 0, len(All))
	for _, s := range All {
		if elig[s] {
			out = append(out, s)
		}
	}
	return out
}

// Clamp resolves a desired scope to a valid one: the desired scope if it is
// available, otherwise the first available scope in declaration order.
// Because Individual is always available, Clamp is total and idempotent.
func Clamp(desired Scope, a Actor, o Options) Scope {
	if desired != "" && Available(desired, a, o) {
		return desired
	}
	for _, s := range All {
		if Available(s, a, o) {
			return s
		}
	}
	return Individual
}
