package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"userboard/internal/domain"
	"userboard/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	registration_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const createAdvertsTable = `
CREATE TABLE IF NOT EXISTS adverts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	topic TEXT NOT NULL,
	description TEXT NOT NULL,
	create_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	user_id INTEGER REFERENCES users(id)
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

// Init creates the users and adverts tables if they do not exist yet.
func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createAdvertsTable); err != nil {
		return fmt.Errorf("create adverts table: %w", err)
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = getUser(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	user := &domain.User{
		Username:         username,
		PasswordHash:     passwordHash,
		RegistrationTime: time.Now().UTC(),
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO users (username, password_hash, registration_time)
VALUES (?, ?, ?)`,
			user.Username,
			user.PasswordHash,
			user.RegistrationTime,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert user: %w", domain.ErrUserAlreadyExists)
			}
			return fmt.Errorf("insert user: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("user last insert id: %w", err)
		}
		user.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Patch loads the row, applies only the supplied fields and persists the
// result. A patch with no fields succeeds and returns the row unchanged.
func (r *UserRepository) Patch(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	var user *domain.User
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = getUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.Empty() {
			return nil
		}

		if patch.Username != nil {
			user.Username = *patch.Username
		}
		if patch.PasswordHash != nil {
			user.PasswordHash = *patch.PasswordHash
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE users
SET username = ?, password_hash = ?
WHERE id = ?`,
			user.Username,
			user.PasswordHash,
			user.ID,
		); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getUser(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func (r *UserRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback tx after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func getUser(ctx context.Context, tx *sql.Tx, id int64) (*domain.User, error) {
	row := tx.QueryRowContext(ctx, `
SELECT id, username, password_hash, registration_time
FROM users
WHERE id = ?`,
		id,
	)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.RegistrationTime,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// isUniqueViolation reports whether err is sqlite's unique-constraint
// failure. Detection happens here, after the insert attempt, so there is
// no check-then-insert race on usernames.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
