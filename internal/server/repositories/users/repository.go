// Package users is the credential store: it persists user accounts and
// enforces username and email uniqueness.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Constraint names shared by the schema and the in-memory store.
const (
	UsernameConstraint = "users_username_key"
	EmailConstraint    = "users_email_key"
)

// Repository looks up and stores users. Lookups return common.ErrorNotFound
// when nothing matches. Save fails with common.ErrUsernameTaken or
// common.ErrEmailTaken when a uniqueness constraint is violated, which makes
// the store the final arbiter for concurrent registrations.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
