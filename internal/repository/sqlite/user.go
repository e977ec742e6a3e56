package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/accounts-api/internal/apperror"
	"github.com/sakif/accounts-api/internal/model"
	"github.com/sakif/accounts-api/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, full_name, email, password_hash, city, country, is_graduate, github_id, created_at, updated_at`

// Create inserts a new user, assigning the ID and timestamps in place.
//
// The email UNIQUE index can fire here even after the service's pre-check —
// two concurrent registrations for the same address both pass the check, but
// only one insert wins. The loser gets apperror.ErrDuplicateEmail, exactly as
// if the pre-check had caught it.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.City,
		user.Country,
		user.IsGraduate,
		user.GitHubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "email") {
			return fmt.Errorf("sqlite: inserting user: %w", apperror.DuplicateEmail())
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no row matches.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return db.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id, id)
}

// GetByEmail retrieves a user by email. Comparison is exact and
// case-sensitive — addresses are stored as-is and compared as-is.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email, email)
}

// List returns every user, oldest first.
func (db *DB) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	// rows MUST be closed, or the connection leaks back into the pool busy.
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows.Scan, &u); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// Update persists the mutable fields of an existing user and bumps UpdatedAt.
// Returns apperror.ErrNotFound if the id doesn't exist — RowsAffected tells us
// whether the WHERE clause matched anything.
func (db *DB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET full_name = ?, email = ?, password_hash = ?, city = ?, country = ?,
		     is_graduate = ?, updated_at = ?
		 WHERE id = ?`,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.City,
		user.Country,
		user.IsGraduate,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "email") {
			return fmt.Errorf("sqlite: updating user: %w", apperror.DuplicateEmail())
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of user %s: %w", user.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// UpsertGitHub inserts or refreshes an account keyed on its GitHub ID.
//
// First login → INSERT with a fresh internal ID. Subsequent logins → UPDATE
// the profile fields (name/email may have changed on GitHub) while KEEPING the
// existing internal ID, so issued tokens and references stay stable.
func (db *DB) UpsertGitHub(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return fmt.Errorf("sqlite: upserting user without a GitHub ID")
	}

	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, *user.GitHubID,
	).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", *user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now().UTC()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET full_name = ?, email = ?, updated_at = ? WHERE id = ?`,
			user.FullName,
			user.Email,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			// The email UNIQUE index can fire here too: the GitHub profile's
			// address may already belong to a password account.
			if isUniqueViolation(err, "email") {
				return fmt.Errorf("sqlite: updating user: %w", apperror.DuplicateEmail())
			}
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		// Re-read so the caller sees the canonical row (city, timestamps, …).
		fresh, err := db.GetByID(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("sqlite: re-reading upserted user %s: %w", user.ID, err)
		}
		*user = *fresh
		return nil
	}

	return db.Create(ctx, user)
}

// getOne runs a single-row query and maps sql.ErrNoRows to the not-found
// taxonomy. key is only used for the error message.
func (db *DB) getOne(ctx context.Context, query, arg, key string) (*model.User, error) {
	var u model.User
	row := db.conn.QueryRowContext(ctx, query, arg)
	if err := scanUser(row.Scan, &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", key, err)
	}
	return &u, nil
}

// scanUser reads one row's columns (in userColumns order) into u.
// Taking the Scan func lets it serve both sql.Row and sql.Rows.
func scanUser(scan func(...any) error, u *model.User) error {
	return scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.PasswordHash,
		&u.City,
		&u.Country,
		&u.IsGraduate,
		&u.GitHubID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on the
// given column. modernc.org/sqlite surfaces these as
// "constraint failed: UNIQUE constraint failed: users.email"; matching on the
// message is the portable check that doesn't pin us to driver error types.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
