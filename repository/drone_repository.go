package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/segmentio/ksuid"

	"droneWatch/models"
)

type DroneRepository struct {
	db *sqlx.DB
}

func NewDroneRepository(db *sqlx.DB) *DroneRepository {
	return &DroneRepository{db: db}
}

// Create registers a drone by name. Names are not unique; each registration
// is a distinct record.
func (r *DroneRepository) Create(ctx context.Context, name string) (*models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := time.Now().UTC()
	d := &models.Drone{
		ID:        ksuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO drones (id, name, created_at, updated_at) VALUES (?,?,?,?)`,
		d.ID, d.Name, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetByName fetches a drone and its position history. When several drones
// share a name the oldest registration wins.
func (r *DroneRepository) GetByName(ctx context.Context, name string) (*models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var d models.Drone
	err := r.db.GetContext(ctx, &d,
		`SELECT id, name, longitude, latitude, height, anomaly_object, anomaly_reason, created_at, updated_at
         FROM drones WHERE name = ? ORDER BY created_at LIMIT 1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	history, err := r.history(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.PositionHistory = history
	return &d, nil
}

// List returns all drones with their position histories.
func (r *DroneRepository) List(ctx context.Context) ([]models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var drones []models.Drone
	err := r.db.SelectContext(ctx, &drones,
		`SELECT id, name, longitude, latitude, height, anomaly_object, anomaly_reason, created_at, updated_at
         FROM drones ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	if len(drones) == 0 {
		return drones, nil
	}

	type positionRow struct {
		DroneID string `db:"drone_id"`
		models.PositionSnapshot
	}
	var rows []positionRow
	err = r.db.SelectContext(ctx, &rows,
		`SELECT drone_id, latitude, longitude, height, anomaly_object, created_at FROM drone_positions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	byDrone := make(map[string][]models.PositionSnapshot, len(drones))
	for _, row := range rows {
		byDrone[row.DroneID] = append(byDrone[row.DroneID], row.PositionSnapshot)
	}
	for i := range drones {
		drones[i].PositionHistory = byDrone[drones[i].ID]
	}
	return drones, nil
}

// RecordTelemetry overwrites the drone's current position fields with the
// report (nil clears them), keeps anomaly fields unless the report carries
// replacements, and appends one history snapshot with a server timestamp.
// The update and the append commit together, so two racing reports each land
// exactly one snapshot.
func (r *DroneRepository) RecordTelemetry(ctx context.Context, droneID string, rep models.TelemetryReport) ([]models.PositionSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE drones SET longitude = ?, latitude = ?, height = ?,
            anomaly_object = COALESCE(?, anomaly_object),
            anomaly_reason = COALESCE(?, anomaly_reason),
            updated_at = ?
         WHERE id = ?`,
		rep.Longitude, rep.Latitude, rep.Height, rep.AnomalyObject, rep.AnomalyReason, now, droneID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO drone_positions (drone_id, latitude, longitude, height, anomaly_object, created_at) VALUES (?,?,?,?,?,?)`,
		droneID, rep.Latitude, rep.Longitude, rep.Height, rep.AnomalyObject, now)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.history(ctx, droneID)
}

func (r *DroneRepository) history(ctx context.Context, droneID string) ([]models.PositionSnapshot, error) {
	var out []models.PositionSnapshot
	err := r.db.SelectContext(ctx, &out,
		`SELECT latitude, longitude, height, anomaly_object, created_at FROM drone_positions WHERE drone_id = ? ORDER BY id`, droneID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
