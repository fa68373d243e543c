package models

import "time"

// Role is the rank of an account. MWO is the restricted rank: it is barred
// from the admin listing and from the drone access gate.
type Role string

const (
	RoleJWO Role = "JWO"
	RoleWO  Role = "WO"
	RoleMWO Role = "MWO"
)

// Valid reports whether r is one of the known ranks.
func (r Role) Valid() bool {
	switch r {
	case RoleJWO, RoleWO, RoleMWO:
		return true
	}
	return false
}

// Account represents a registered client with a rank and an append-only
// activity log. It maps to the `accounts` table.
//
// PasswordHash is populated only by repository methods that explicitly load
// credentials; the JSON body omits it when empty. Activity is loaded on
// demand, not with every fetch.
type Account struct {
	ID           string          `db:"id" json:"id"`
	Username     string          `db:"username" json:"username"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"passwordHash,omitempty"`
	Role         Role            `db:"role" json:"role"`
	Activity     []ActivityEntry `db:"-" json:"allActivity,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}
