package scope

// ActiveContext is the tagged value describing which view the app is showing.
// Kind is the discriminant: Individual carries no group, Family and Workplace
// carry the group they point at.
type ActiveContext struct {
	Kind      Scope  `json:"kind"`
	GroupID   string `json:"group_id,omitempty"`
	GroupName string `json:"group_name,omitempty"`
}

// InIndividual returns the individual variant.
func InIndividual() ActiveContext {
	return ActiveContext{Kind: Individual}
}

// InFamily returns the family variant pointing at the given group.
func InFamily(id, name string) ActiveContext {
	return ActiveContext{Kind: Family, GroupID: id, GroupName: name}
}

// InWorkplace returns the workplace variant pointing at the given group.
// Some legacy records spell this "corporate"; the Kind tag is always
// Workplace.
func InWorkplace(id, name string) ActiveContext {
	return ActiveContext{Kind: Workplace, GroupID: id, GroupName: name}
}

// Valid reports whether the variant honors its invariants: Family and
// Workplace must carry a non-empty group id, Individual must not.
func (c ActiveContext) Valid() bool {
	switch c.Kind {
	case Individual:
		return c.GroupID == "" && c.GroupName == ""
	case Family, Workplace:
		return c.GroupID != ""
	default:
		return false
	}
}
