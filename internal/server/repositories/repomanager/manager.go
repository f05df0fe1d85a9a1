package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/verixa/internal/dbx"
	"github.com/dmitrijs2005/verixa/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so the same service
// code can run against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
