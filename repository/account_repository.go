package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/segmentio/ksuid"

	"droneWatch/models"
)

// ErrDuplicateUsername is returned by Create when the username is taken.
var ErrDuplicateUsername = errors.New("username already exists")

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. The caller supplies the password hash; this
// layer never sees plaintext. ID and timestamps are assigned here.
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if a == nil {
		return nil, errors.New("account is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := time.Now().UTC()
	a.ID = ksuid.New().String()
	a.CreatedAt = now
	a.UpdatedAt = now
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, email, password_hash, role, created_at, updated_at) VALUES (?,?,?,?,?,?,?)`,
		a.ID, a.Username, a.Email, a.PasswordHash, string(a.Role), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a models.Account
	err := r.db.GetContext(ctx, &a,
		`SELECT id, username, email, role, created_at, updated_at FROM accounts WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a models.Account
	err := r.db.GetContext(ctx, &a,
		`SELECT id, username, email, role, created_at, updated_at FROM accounts WHERE username = ?`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetByEmail loads the account including its password hash. Email is not
// unique; the oldest match wins.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a models.Account
	err := r.db.GetContext(ctx, &a,
		`SELECT id, username, email, password_hash, role, created_at, updated_at FROM accounts WHERE email = ? ORDER BY created_at LIMIT 1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// List returns all accounts with credential hashes and full activity logs.
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var accounts []models.Account
	err := r.db.SelectContext(ctx, &accounts,
		`SELECT id, username, email, password_hash, role, created_at, updated_at FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return accounts, nil
	}

	type activityRow struct {
		AccountID string `db:"account_id"`
		models.ActivityEntry
	}
	var rows []activityRow
	err = r.db.SelectContext(ctx, &rows,
		`SELECT account_id, kind, action, drone_name, ip_address, created_at FROM account_activity ORDER BY id`)
	if err != nil {
		return nil, err
	}
	byAccount := make(map[string][]models.ActivityEntry, len(accounts))
	for _, row := range rows {
		byAccount[row.AccountID] = append(byAccount[row.AccountID], row.ActivityEntry)
	}
	for i := range accounts {
		accounts[i].Activity = byAccount[accounts[i].ID]
	}
	return accounts, nil
}

// UpdatePassword replaces the stored hash. The caller hashes exactly once per
// plaintext change; unrelated updates never touch this column.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
	return err
}

// AppendActivity adds one audit entry. The entry timestamp is server-assigned
// when zero. Appends are single INSERTs, so concurrent audits never clobber
// each other.
func (r *AccountRepository) AppendActivity(ctx context.Context, accountID string, e models.ActivityEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO account_activity (account_id, kind, action, drone_name, ip_address, created_at) VALUES (?,?,?,?,?,?)`,
		accountID, string(e.Kind), e.Action, e.DroneName, e.IPAddress, ts)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE accounts SET updated_at = ? WHERE id = ?`, ts, accountID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Activity returns an account's audit entries in append order.
func (r *AccountRepository) Activity(ctx context.Context, accountID string) ([]models.ActivityEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out []models.ActivityEntry
	err := r.db.SelectContext(ctx, &out,
		`SELECT kind, action, drone_name, ip_address, created_at FROM account_activity WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
