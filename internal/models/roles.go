package models

import (
	"encoding/json"
	"fmt"
)

// RoleKind names the kind of grant a Role carries.
type RoleKind string

const (
	RoleDiner      RoleKind = "diner"
	RoleAdmin      RoleKind = "admin"
	RoleFranchisee RoleKind = "franchisee"
)

// Role is a single grant on a user. Franchisee roles are scoped to FranchiseID;
// the other kinds carry no scope.
type Role struct {
	Kind        RoleKind
	FranchiseID int64
}

// Diner is the default role given on registration.
func Diner() Role { return Role{Kind: RoleDiner} }

// Admin is the global administrator role.
func Admin() Role { return Role{Kind: RoleAdmin} }

// FranchiseAdmin scopes administrative rights to a single franchise.
func FranchiseAdmin(franchiseID int64) Role {
	return Role{Kind: RoleFranchisee, FranchiseID: franchiseID}
}

type roleWire struct {
	Role     RoleKind `json:"role"`
	ObjectID int64    `json:"objectId,omitempty"`
}

// MarshalJSON renders {"role": "...", "objectId": n}.
func (r Role) MarshalJSON() ([]byte, error) {
	w := roleWire{Role: r.Kind}
	if r.Kind == RoleFranchisee {
		w.ObjectID = r.FranchiseID
	}
	return json.Marshal(w)
}

// UnmarshalJSON rejects unknown role kinds.
func (r *Role) UnmarshalJSON(data []byte) error {
	var w roleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed, err := ParseRole(string(w.Role), w.ObjectID)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole builds a Role from its stored kind and scope.
func ParseRole(kind string, objectID int64) (Role, error) {
	switch RoleKind(kind) {
	case RoleDiner:
		return Diner(), nil
	case RoleAdmin:
		return Admin(), nil
	case RoleFranchisee:
		if objectID <= 0 {
			return Role{}, fmt.Errorf("franchisee role requires a franchise id")
		}
		return FranchiseAdmin(objectID), nil
	default:
		return Role{}, fmt.Errorf("unknown role %q", kind)
	}
}
