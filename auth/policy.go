// Package auth decides who may reach the consoles. Two providers back it: a
// fixed list of console accounts and sessions issued by the remote identity
// service. Both are consumed through Guard.
package auth

// Roles known to the service.
const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
	RoleUser      = "user"
)

// Policy compares the role a principal has with the role a route wants.
type Policy int

const (
	// ExactMatch allows only the very role asked for.
	ExactMatch Policy = iota
	// Hierarchical lets admin reach everything and developer reach user routes.
	Hierarchical
)

var rank = map[string]int{
	RoleUser:      1,
	RoleDeveloper: 2,
	RoleAdmin:     3,
}

// Allows reports whether have satisfies want.
func (p Policy) Allows(have, want string) bool {
	if have == "" {
		return false
	}
	switch p {
	case Hierarchical:
		if have == RoleAdmin {
			return true
		}
		if have == RoleDeveloper {
			return want == RoleDeveloper || want == RoleUser
		}
		return have == want
	default:
		return have == want
	}
}

// AllowsAny reports whether have satisfies one of wants. No wants means any role.
func (p Policy) AllowsAny(have string, wants ...string) bool {
	if len(wants) == 0 {
		return have != ""
	}
	for _, want := range wants {
		if p.Allows(have, want) {
			return true
		}
	}
	return false
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	_, ok := rank[role]
	return ok
}

func (p Policy) String() string {
	if p == Hierarchical {
		return "hierarchical"
	}
	return "exact"
}
