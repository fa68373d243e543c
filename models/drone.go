package models

import "time"

// Drone represents a tracked asset reporting position telemetry.
// It maps to the `drones` table; the history lives in `drone_positions`.
//
// The current longitude/latitude/height always mirror the latest telemetry
// report and are nil until the first one arrives. Anomaly fields stick once
// set: a report that omits them never clears them.
type Drone struct {
	ID              string             `db:"id" json:"id"`
	Name            string             `db:"name" json:"droneName"`
	Longitude       *float64           `db:"longitude" json:"longitude"`
	Latitude        *float64           `db:"latitude" json:"latitude"`
	Height          *float64           `db:"height" json:"height"`
	AnomalyObject   *string            `db:"anomaly_object" json:"anomalyObject,omitempty"`
	AnomalyReason   *string            `db:"anomaly_reason" json:"anomalyReason,omitempty"`
	PositionHistory []PositionSnapshot `db:"-" json:"positionHistory"`
	CreatedAt       time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updatedAt"`
}

// PositionSnapshot is one entry in a drone's position history. The timestamp
// is assigned by the server when the report is recorded.
type PositionSnapshot struct {
	Latitude      *float64  `db:"latitude" json:"latitude"`
	Longitude     *float64  `db:"longitude" json:"longitude"`
	Height        *float64  `db:"height" json:"height"`
	AnomalyObject *string   `db:"anomaly_object" json:"anomalyObject,omitempty"`
	Timestamp     time.Time `db:"created_at" json:"timestamp"`
}

// TelemetryReport is a single inbound position report. Nil fields were not
// supplied by the caller: position fields overwrite the drone's current
// values regardless, anomaly fields only apply when present.
type TelemetryReport struct {
	Longitude     *float64
	Latitude      *float64
	Height        *float64
	AnomalyObject *string
	AnomalyReason *string
}
