package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when no user exists for a given id.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when a username is already taken.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// User represents a registered user of the system.
type User struct {
	ID               int64
	Username         string
	PasswordHash     string
	RegistrationTime time.Time
}

// UserPatch carries the fields of a partial update. A nil field means
// "leave unchanged"; a non-nil field is applied even when it points at
// an empty string.
type UserPatch struct {
	Username     *string
	PasswordHash *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.PasswordHash == nil
}
