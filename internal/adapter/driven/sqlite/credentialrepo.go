package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ericfisherdev/passpanel/internal/domain/model"
	"github.com/ericfisherdev/passpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// Each method runs exactly one statement.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Insert stores a new credential. Returns ErrCredentialExists if the
// application name is already present; the existing row is not modified.
func (r *CredentialRepo) Insert(ctx context.Context, cred model.Credential) error {
	const query = `INSERT INTO app_credentials (app_name, user_name, pass_word) VALUES (?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query, cred.AppName, cred.Username, cred.EncryptedPassword)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("insert credential %q: %w", cred.AppName, driven.ErrCredentialExists)
		}
		return fmt.Errorf("insert credential %q: %w: %w", cred.AppName, driven.ErrStorage, err)
	}

	return nil
}

// Fetch returns the credential for appName, or ErrCredentialNotFound.
func (r *CredentialRepo) Fetch(ctx context.Context, appName string) (*model.Credential, error) {
	const query = `SELECT app_name, user_name, pass_word FROM app_credentials WHERE app_name = ?`

	var cred model.Credential
	err := r.db.Reader.QueryRowContext(ctx, query, appName).Scan(&cred.AppName, &cred.Username, &cred.EncryptedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fetch credential %q: %w", appName, driven.ErrCredentialNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch credential %q: %w: %w", appName, driven.ErrStorage, err)
	}

	return &cred, nil
}

// Delete removes the credential for appName. Returns ErrCredentialNotFound
// when nothing was deleted.
func (r *CredentialRepo) Delete(ctx context.Context, appName string) error {
	const query = `DELETE FROM app_credentials WHERE app_name = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, appName)
	if err != nil {
		return fmt.Errorf("delete credential %q: %w: %w", appName, driven.ErrStorage, err)
	}

	return requireAffected(result, "delete credential", appName)
}

// UpdatePassword replaces the encrypted password for appName. The username is
// left as is. Returns ErrCredentialNotFound when no row matched.
func (r *CredentialRepo) UpdatePassword(ctx context.Context, appName, encryptedPassword string) error {
	const query = `UPDATE app_credentials SET pass_word = ? WHERE app_name = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, encryptedPassword, appName)
	if err != nil {
		return fmt.Errorf("update credential %q: %w: %w", appName, driven.ErrStorage, err)
	}

	return requireAffected(result, "update credential", appName)
}

// ListAppNames returns all stored application names ordered by name.
func (r *CredentialRepo) ListAppNames(ctx context.Context) ([]string, error) {
	const query = `SELECT app_name FROM app_credentials ORDER BY app_name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list app names: %w: %w", driven.ErrStorage, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan app name: %w: %w", driven.ErrStorage, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate app names: %w: %w", driven.ErrStorage, err)
	}

	return names, nil
}

// Count returns the number of stored credentials.
func (r *CredentialRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM app_credentials`

	var n int
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count credentials: %w: %w", driven.ErrStorage, err)
	}

	return n, nil
}

func requireAffected(result sql.Result, op, appName string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %q: check rows affected: %w: %w", op, appName, driven.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", op, appName, driven.ErrCredentialNotFound)
	}
	return nil
}

// isConstraintViolation reports whether err is a primary-key or unique
// constraint failure.
func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
