// Package users owns user identity records: the repository abstraction over
// the flat-file and PostgreSQL stores, and the registration/authentication
// service on top of it.
package users

import (
	"context"
)

type Repository interface {
	// Create stores a new user. Returns common.ErrAlreadyExists when the
	// username is taken.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByUserName returns the user with the exact (case-sensitive)
	// username, or common.ErrNotFound.
	GetByUserName(ctx context.Context, userName string) (*User, error)
}
