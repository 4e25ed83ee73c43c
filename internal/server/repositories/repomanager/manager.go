// Package repomanager wires the credential store implementations to their
// backing storage and owns schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// RepositoryManager vends the repositories for one storage backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close() error
}
