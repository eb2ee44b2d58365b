package model

import "github.com/google/uuid"

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == "ADMIN" }

func (p Principal) IsStaff() bool { return p.Role == "STAFF" }

// CanManageContracts covers both back-office roles; anything else is a token
// from another subsystem and gets read-only access at most.
func (p Principal) CanManageContracts() bool { return p.IsAdmin() || p.IsStaff() }
