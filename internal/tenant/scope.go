package tenant

import "sort"

// Scope is the set of company ids a principal may read or write. The
// unbounded scope is a marker rather than a materialized id set, so a
// super-admin never forces the whole companies table into memory.
type Scope struct {
	all bool
	ids map[string]struct{}
}

// AllCompanies returns the unbounded scope.
func AllCompanies() Scope {
	return Scope{all: true}
}

// Companies returns a scope bounded to the given company ids.
func Companies(ids ...string) Scope {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return Scope{ids: set}
}

// All reports whether the scope is unbounded.
func (s Scope) All() bool {
	return s.all
}

// Empty reports whether the scope permits no company at all.
func (s Scope) Empty() bool {
	return !s.all && len(s.ids) == 0
}

// Allows reports whether the given company id lies within the scope.
func (s Scope) Allows(companyID string) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[companyID]
	return ok
}

// IDs returns the materialized id set in sorted order. It is only meaningful
// for bounded scopes; callers must check All first.
func (s Scope) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
