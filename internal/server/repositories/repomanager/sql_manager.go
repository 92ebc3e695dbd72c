// Package repomanager wires repository constructors and goose migrations for
// the configured SQL dialect (PostgreSQL in production, SQLite for local runs
// and tests).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	"github.com/dmitrijs2005/brandforge/internal/dbx"
	"github.com/dmitrijs2005/brandforge/internal/filex"
	"github.com/dmitrijs2005/brandforge/internal/logging"
	"github.com/dmitrijs2005/brandforge/internal/server/migrations"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/artifacts"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/credits"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager vends repositories bound to one dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
	logger  logging.Logger
}

type Option func(*SQLRepositoryManager)

// WithLogger sends migration progress to l instead of discarding it.
func WithLogger(l logging.Logger) Option {
	return func(m *SQLRepositoryManager) {
		if l != nil {
			m.logger = l.With("module", "migrations")
		}
	}
}

func newManager(d dbx.Dialect, opts ...Option) *SQLRepositoryManager {
	m := &SQLRepositoryManager{dialect: d, logger: logging.Nop()}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

// Credits returns a credits.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Credits(db dbx.DBTX) credits.Repository {
	return credits.NewSQLRepository(db, m.dialect)
}

// Artifacts returns an artifacts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Artifacts(db dbx.DBTX) artifacts.Repository {
	return artifacts.NewSQLRepository(db, m.dialect)
}

// gooseUp is a seam for testing the goose provider run.
var gooseUp = func(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS, opts ...goose.ProviderOption) error {
	p, err := goose.NewProvider(dialect, db, fsys, opts...)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// gooseLogger adapts the structured logger to goose's printf interface.
type gooseLogger struct {
	logger logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logger.Info(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf is only reached by goose's own command helpers, which are not used;
// it logs instead of exiting.
func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logger.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// RunMigrations applies the embedded migrations for the manager's dialect.
// Each run builds its own goose provider, so managers never share goose
// package state.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	dir := migrations.PostgresDir
	if m.dialect == dbx.SQLite {
		dir = migrations.SQLiteDir
	}
	fsys, err := fs.Sub(migrations.Migrations, dir)
	if err != nil {
		return err
	}
	return gooseUp(ctx, goose.Dialect(m.dialect.GooseDialect()), db, fsys,
		goose.WithVerbose(true),
		goose.WithLogger(gooseLogger{logger: m.logger}),
	)
}

func NewPostgresRepositoryManager(opts ...Option) RepositoryManager {
	return newManager(dbx.Postgres, opts...)
}

func NewSQLiteRepositoryManager(opts ...Option) RepositoryManager {
	return newManager(dbx.SQLite, opts...)
}

// Open connects to the configured database and returns the manager for its
// dialect. SQLite gets a single connection, which serialises writers.
func Open(driver, dsn string, opts ...Option) (*sql.DB, RepositoryManager, error) {
	dialect, err := dbx.ParseDialect(driver)
	if err != nil {
		return nil, nil, err
	}
	if dialect == dbx.SQLite {
		if path := filex.SQLitePath(dsn); path != "" {
			if _, err := filex.EnsureParentDir(path); err != nil {
				return nil, nil, fmt.Errorf("db open error: %w", err)
			}
		}
	}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if dialect == dbx.SQLite {
		db.SetMaxOpenConns(1)
	}
	return db, newManager(dialect, opts...), nil
}
