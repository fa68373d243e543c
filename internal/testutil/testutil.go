package testutil

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"

	"droneWatch/internal/db"
	"droneWatch/models"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The shared cache keeps all connections on the same database. Closing is
// registered via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sqlx.DB {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	x := sqlx.NewDb(d, "sqlite3")
	t.Cleanup(func() { _ = x.Close() })
	return x
}

// SignToken returns a signed session token with the claims the app uses,
// valid for one hour.
func SignToken(t *testing.T, secret, accountID string, role models.Role) string {
	t.Helper()
	return signToken(t, secret, accountID, role, time.Now().Add(time.Hour))
}

// SignExpiredToken returns a token whose expiry is already in the past.
func SignExpiredToken(t *testing.T, secret, accountID string, role models.Role) string {
	t.Helper()
	return signToken(t, secret, accountID, role, time.Now().Add(-time.Hour))
}

func signToken(t *testing.T, secret, accountID string, role models.Role, expiry time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  accountID,
		"role": string(role),
		"iat":  time.Now().Add(-2 * time.Hour).Unix(),
		"exp":  expiry.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
