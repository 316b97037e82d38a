// Package db wires the PostgreSQL connection, the repositories, and the
// embedded schema migrations together.
package db

import (
	"context"
	"database/sql"

	"github.com/picloop/identity/internal/accounts"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Accounts() accounts.Repository
	Close() error
}
