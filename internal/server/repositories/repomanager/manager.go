package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/brandforge/internal/dbx"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/artifacts"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/credits"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Dialect() dbx.Dialect
	Credits(db dbx.DBTX) credits.Repository
	Artifacts(db dbx.DBTX) artifacts.Repository
}
