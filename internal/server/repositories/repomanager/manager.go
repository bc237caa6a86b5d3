package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophprovider/internal/dbx"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/providers"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX (a *sql.DB or a
// transaction) and prepares the schema they need.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Providers(db dbx.DBTX) providers.Repository
}
