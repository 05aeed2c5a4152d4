// Package repomanager vends repositories bound to a database handle so that
// services can run them against either the pool or a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bea-ebooks/internal/dbx"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/ebooks"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/users"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/viewlogs"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	// RunInTx executes fn atomically. Repositories obtained from tx inside fn
	// take part in the same unit of work.
	RunInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Ebooks(db dbx.DBTX) ebooks.Repository
	ViewLogs(db dbx.DBTX) viewlogs.Repository
}
