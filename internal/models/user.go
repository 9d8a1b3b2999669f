package models

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Roles        []Role `json:"roles"`
	PasswordHash string `json:"-"`
}

// IsAdmin reports whether the user holds the global admin role.
func (u User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r.Kind == RoleAdmin {
			return true
		}
	}
	return false
}

// IsFranchiseAdmin reports whether the user administers the given franchise.
func (u User) IsFranchiseAdmin(franchiseID int64) bool {
	for _, r := range u.Roles {
		if r.Kind == RoleFranchisee && r.FranchiseID == franchiseID {
			return true
		}
	}
	return false
}

// CanManageFranchise is true for global admins and admins of that franchise.
func (u User) CanManageFranchise(franchiseID int64) bool {
	return u.IsAdmin() || u.IsFranchiseAdmin(franchiseID)
}

// HasRole reports whether an identical role is already attached.
func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
