package repository

import (
	"context"

	"droneWatch/models"
)

// AccountRepositoryI defines operations on Account records.
// Lookup methods return (nil, nil) when no record matches.
type AccountRepositoryI interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	// GetByEmail loads the credential hash; it is the signin lookup.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// List returns every account with credential hashes and activity logs,
	// for the admin listing.
	List(ctx context.Context) ([]models.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	AppendActivity(ctx context.Context, accountID string, e models.ActivityEntry) error
	Activity(ctx context.Context, accountID string) ([]models.ActivityEntry, error)
}

// DroneRepositoryI defines operations on Drone records.
// Lookup methods return (nil, nil) when no record matches.
type DroneRepositoryI interface {
	Create(ctx context.Context, name string) (*models.Drone, error)
	GetByName(ctx context.Context, name string) (*models.Drone, error)
	List(ctx context.Context) ([]models.Drone, error)
	// RecordTelemetry applies a report to the drone's current fields and
	// appends one history snapshot, atomically, returning the full history.
	RecordTelemetry(ctx context.Context, droneID string, r models.TelemetryReport) ([]models.PositionSnapshot, error)
}
