package model

import "github.com/google/uuid"

// Principal is the authenticated actor a request acts on behalf of. It is
// passed explicitly into every service call; nothing reads an ambient
// current-user global.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }
func (p Principal) IsContractor() bool { return p.Role == RoleContractor }
func (p Principal) IsSwachhHR() bool   { return p.Role == RoleSwachhHR }
func (p Principal) IsDriver() bool     { return p.Role == RoleDriver }

func (p Principal) Can(cap Capability) bool { return p.Role.HasCapability(cap) }
