package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophprovider/internal/dbx"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/providers"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out process-wide in-memory repositories.
// The DBTX arguments are ignored and nothing survives a restart.
type MemoryRepositoryManager struct {
	users     *users.MemoryRepository
	providers *providers.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{
		users:     users.NewMemoryRepository(),
		providers: providers.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Providers(dbx.DBTX) providers.Repository { return m.providers }
