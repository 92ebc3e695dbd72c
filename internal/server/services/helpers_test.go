package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/generator"
	"github.com/dmitrijs2005/brandforge/internal/guard"
	"github.com/dmitrijs2005/brandforge/internal/llm"
	"github.com/dmitrijs2005/brandforge/internal/refine"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
	"github.com/stretchr/testify/require"
)

const brand = "A calm, trustworthy fintech brand for young savers"

// clock is a settable time source shared by the services under test. Every
// reading advances it a microsecond so ledger entries sort deterministically.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Microsecond)
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	db      *sql.DB
	rm      repomanager.RepositoryManager
	clock   *clock
	credits *CreditService
	designs *DesignService
}

func openDB(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, rm, err := repomanager.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, rm.RunMigrations(context.Background(), db))
	return db, rm
}

// newFixture wires the services over SQLite with the mock model. toneClient
// drives tone adjustments; nil means the same mock as generation.
func newFixture(t *testing.T, toneClient llm.Client, opts ...DesignOption) *fixture {
	t.Helper()
	db, rm := openDB(t)
	catalog := tiers.Builtin()
	clk := &clock{now: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}

	credits := NewCreditService(db, rm, catalog, nil, WithCreditClock(clk.Now))
	gen := generator.New(&llm.Mock{}, catalog, nil)
	tone := gen
	if toneClient != nil {
		tone = generator.New(toneClient, catalog, nil)
	}
	engine := refine.NewEngine(tone, nil)

	opts = append([]DesignOption{WithDesignClock(clk.Now)}, opts...)
	designs := NewDesignService(db, rm, credits, gen, engine, guard.New(catalog), catalog, nil, opts...)

	return &fixture{db: db, rm: rm, clock: clk, credits: credits, designs: designs}
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
