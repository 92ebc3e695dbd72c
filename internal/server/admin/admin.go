// Package admin is the operator command line: migrations, ledger inspection
// and adjustment, tier listing and token issuance. It talks to the database
// directly and never goes through the public API.
package admin

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/brandforge/internal/logging"
	"github.com/dmitrijs2005/brandforge/internal/server/config"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/brandforge/internal/server/services"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

type App struct {
	getenv func(string) string
	in     *bufio.Reader
	out    io.Writer
	logger logging.Logger

	configPath string
	driver     string
	dsn        string
	secret     string
	tiersFile  string

	config  *config.Config
	catalog *tiers.Catalog
}

type Option func(*App)

func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.in = bufio.NewReader(in)
		a.out = out
	}
}

func WithEnv(getenv func(string) string) Option { return func(a *App) { a.getenv = getenv } }

func NewApp(opts ...Option) *App {
	a := &App{
		getenv: os.Getenv,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		logger: logging.NewJSON(os.Stderr, "warn"),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Execute runs the command tree with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.RootCommand()
	root.SetArgs(args)
	root.SetOut(a.out)
	return root.ExecuteContext(ctx)
}

// load resolves server configuration the same way the server does, then
// applies the admin flags on top.
func (a *App) load() error {
	var args []string
	if a.configPath != "" {
		args = []string{"-c", a.configPath}
	}
	cfg, err := config.Load(args, a.getenv)
	if err != nil {
		return err
	}
	setString(&cfg.DatabaseDriver, a.driver)
	setString(&cfg.DatabaseDSN, a.dsn)
	setString(&cfg.SecretKey, a.secret)
	setString(&cfg.TiersFile, a.tiersFile)
	a.config = cfg

	a.catalog = tiers.Builtin()
	if cfg.TiersFile != "" {
		a.catalog, err = tiers.LoadFile(cfg.TiersFile)
		if err != nil {
			return err
		}
	}
	return nil
}

// withDB opens the configured database, applies pending migrations and
// runs fn. The handle is closed afterwards.
func (a *App) withDB(ctx context.Context, fn func(db *sql.DB, rm repomanager.RepositoryManager) error) error {
	db, rm, err := repomanager.Open(a.config.DatabaseDriver, a.config.DatabaseDSN, repomanager.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return fn(db, rm)
}

func (a *App) withCredits(ctx context.Context, fn func(*services.CreditService) error) error {
	return a.withDB(ctx, func(db *sql.DB, rm repomanager.RepositoryManager) error {
		return fn(services.NewCreditService(db, rm, a.catalog, a.logger))
	})
}

// confirm asks a yes/no question on an interactive terminal. Without a
// terminal the answer is no.
func (a *App) confirm(question string) (bool, error) {
	if !isTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}
	if _, err := fmt.Fprintf(a.out, "%s [y/N] ", question); err != nil {
		return false, err
	}
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
