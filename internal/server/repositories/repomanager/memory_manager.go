package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/verixa/internal/dbx"
	"github.com/dmitrijs2005/verixa/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out one shared in-memory users repository
// whatever DBTX it is given, so transactional service code runs unchanged
// against it. Migrations are a no-op.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager(repo *users.MemoryRepository) *MemoryRepositoryManager {
	if repo == nil {
		repo = users.NewMemoryRepository()
	}
	return &MemoryRepositoryManager{users: repo}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }
