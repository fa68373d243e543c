package models

import "time"

// ActivityKind tags an audit entry with the privileged action that produced it.
type ActivityKind string

const (
	ActivityLogin              ActivityKind = "login"
	ActivityAdminAccessRequest ActivityKind = "admin-access-request"
	ActivityDroneAccessRequest ActivityKind = "drone-access-request"
	ActivityDroneView          ActivityKind = "drone-view"
)

// ActivityEntry is one append-only audit record on an account.
// DroneName and IPAddress are empty when the action has no drone or no
// resolvable source address.
type ActivityEntry struct {
	Kind      ActivityKind `db:"kind" json:"kind"`
	Action    string       `db:"action" json:"action"`
	DroneName string       `db:"drone_name" json:"droneName,omitempty"`
	IPAddress string       `db:"ip_address" json:"ipAddress,omitempty"`
	Timestamp time.Time    `db:"created_at" json:"timestamp"`
}
