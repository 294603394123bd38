// Package roles computes the effective role set for a principal. There is no
// hierarchy: the only roles are "user" and "admin", and an empty grant list
// means the implicit user role.
package roles

const (
	User  = "user"
	Admin = "admin"
)

type Set map[string]struct{}

// Effective builds the single role set all authorization consults. An empty
// label list defaults to {user}.
func Effective(labels []string) Set {
	s := make(Set, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		s[l] = struct{}{}
	}
	if len(s) == 0 {
		s[User] = struct{}{}
	}
	return s
}

func (s Set) Has(role string) bool {
	_, ok := s[role]
	return ok
}

func (s Set) IsAdmin() bool { return s.Has(Admin) }

// Valid reports whether a role label is one the system knows.
func Valid(role string) bool {
	return role == User || role == Admin
}
