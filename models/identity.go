package models

// Identity is the verified caller of a request.
type Identity struct {
	Email string
	Role  string
	// Bypass is set when authentication is disabled; Email is then unverified.
	Bypass bool
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanActOn reports whether the caller may operate on the friend with the given
// email: either it is the caller's own record or the caller is an admin.
func (i Identity) CanActOn(email string) bool {
	return i.IsAdmin() || (i.Email != "" && i.Email == email)
}
