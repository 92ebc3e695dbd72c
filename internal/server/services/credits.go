// Package services contains server-side business logic. This file implements
// CreditService, the per-user credit ledger.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/dbx"
	"github.com/dmitrijs2005/brandforge/internal/logging"
	"github.com/dmitrijs2005/brandforge/internal/server/auth"
	"github.com/dmitrijs2005/brandforge/internal/server/models"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/credits"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
	"github.com/google/uuid"
)

const (
	DefaultTransactionLimit = 20
	MaxTransactionLimit     = 100
)

// CreditService owns every balance change. Reads that may replenish and all
// writes run in a transaction holding the account row.
type CreditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	catalog     *tiers.Catalog
	logger      logging.Logger
	now         func() time.Time
	newID       func() string
}

type CreditOption func(*CreditService)

func WithCreditClock(now func() time.Time) CreditOption {
	return func(s *CreditService) { s.now = now }
}

func NewCreditService(db *sql.DB, m repomanager.RepositoryManager, catalog *tiers.Catalog, logger logging.Logger, opts ...CreditOption) *CreditService {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &CreditService{
		db:          db,
		repomanager: m,
		catalog:     catalog,
		logger:      logger.With("module", "credits"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetBalance returns the account, creating it with the tier's starting
// allotment on first access and replenishing it when its reset date has
// passed.
func (s *CreditService) GetBalance(ctx context.Context, userID string, tier tiers.Name) (*models.CreditAccount, error) {
	cfg, err := s.tier(tier)
	if err != nil {
		return nil, err
	}
	var account *models.CreditAccount
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		account, err = s.account(ctx, tx, userID, cfg)
		return err
	})
	if err != nil {
		return nil, persistence("get balance", err)
	}
	return account, nil
}

// Account is GetBalance for the authenticated caller. A new account opens on
// the tier claim of the caller's token when it names a known tier, otherwise
// on the default tier; request parameters never choose it.
func (s *CreditService) Account(ctx context.Context, userID string) (*models.CreditAccount, error) {
	return s.GetBalance(ctx, userID, s.openingTier(ctx))
}

func (s *CreditService) openingTier(ctx context.Context) tiers.Name {
	if t, ok := auth.TierFromContext(ctx); ok && s.catalog.IsValid(t) {
		return tiers.Name(t)
	}
	return s.catalog.Default().Name
}

// Deduct charges cost atomically. An account that cannot cover it yields
// *common.InsufficientCreditsError and is left untouched.
func (s *CreditService) Deduct(ctx context.Context, userID string, cost int64, reason string) (int64, error) {
	if cost <= 0 {
		return 0, common.NewValidationError("cost", "must be positive")
	}
	var balance int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		balance, err = s.deduct(ctx, tx, userID, cost, reason)
		return err
	})
	if err != nil {
		return 0, persistence("deduct", err)
	}
	return balance, nil
}

// Add credits amount to the account. Unlimited accounts are unchanged.
func (s *CreditService) Add(ctx context.Context, userID string, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, common.NewValidationError("amount", "must be positive")
	}
	var balance int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		account, err := s.account(ctx, tx, userID, s.catalog.Default())
		if err != nil {
			return err
		}
		if account.Unlimited() {
			balance = account.Balance
			return nil
		}
		repo := s.repomanager.Credits(tx)
		balance, err = repo.Add(ctx, userID, amount, s.now())
		if err != nil {
			return err
		}
		return s.record(ctx, tx, userID, models.TransactionEarn, amount, balance, reason)
	})
	if err != nil {
		return 0, persistence("add", err)
	}
	s.logger.Info(ctx, "credits added", "user", userID, "amount", amount, "balance", balance)
	return balance, nil
}

// Reset discards the account and opens a fresh one on tier.
func (s *CreditService) Reset(ctx context.Context, userID string, tier tiers.Name) (*models.CreditAccount, error) {
	cfg, err := s.tier(tier)
	if err != nil {
		return nil, err
	}
	var account *models.CreditAccount
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Credits(tx)
		if err := repo.Delete(ctx, userID); err != nil {
			return err
		}
		account = newAccount(userID, cfg, s.now())
		if _, err := repo.Create(ctx, account); err != nil {
			return err
		}
		return s.record(ctx, tx, userID, models.TransactionReset, account.Balance, account.Balance,
			fmt.Sprintf("reset to %s", cfg.Name))
	})
	if err != nil {
		return nil, persistence("reset", err)
	}
	s.logger.Info(ctx, "credit account reset", "user", userID, "tier", cfg.Name)
	return account, nil
}

// Transactions lists the most recent ledger entries, newest first.
func (s *CreditService) Transactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	switch {
	case limit <= 0:
		limit = DefaultTransactionLimit
	case limit > MaxTransactionLimit:
		limit = MaxTransactionLimit
	}
	list, err := s.repomanager.Credits(s.db).ListTransactions(ctx, userID, limit)
	if err != nil {
		return nil, persistence("list transactions", err)
	}
	return list, nil
}

func (s *CreditService) tier(name tiers.Name) (tiers.Config, error) {
	cfg, ok := s.catalog.Resolve(string(name))
	if !ok {
		return tiers.Config{}, common.NewValidationError("tier", fmt.Sprintf("unknown tier %q", name))
	}
	return cfg, nil
}

// account loads and locks the user's row, creating or replenishing it as
// needed. tx must be a transaction.
func (s *CreditService) account(ctx context.Context, tx dbx.DBTX, userID string, cfg tiers.Config) (*models.CreditAccount, error) {
	repo := s.repomanager.Credits(tx)
	now := s.now()

	account, err := repo.GetForUpdate(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		fresh := newAccount(userID, cfg, now)
		created, createErr := repo.Create(ctx, fresh)
		if createErr != nil {
			return nil, createErr
		}
		if created {
			s.logger.Info(ctx, "credit account opened", "user", userID, "tier", cfg.Name, "balance", fresh.Balance)
			if err := s.record(ctx, tx, userID, models.TransactionEarn, fresh.TotalEarned, fresh.Balance, "initial allotment"); err != nil {
				return nil, err
			}
			return fresh, nil
		}
		// Lost the race to a concurrent first access.
		account, err = repo.GetForUpdate(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	if !account.DueForReset(now) {
		return account, nil
	}
	own, ok := s.catalog.Get(account.Tier)
	if !ok || !own.Replenishes() {
		return account, nil
	}
	next := nextReset(now)
	if err := repo.Replenish(ctx, userID, own.MonthlyCredits, &next, now); err != nil {
		return nil, err
	}
	if err := s.record(ctx, tx, userID, models.TransactionReplenish, own.MonthlyCredits, own.MonthlyCredits, "monthly allotment"); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "credits replenished", "user", userID, "tier", own.Name, "balance", own.MonthlyCredits)

	account.Balance = own.MonthlyCredits
	account.TotalEarned += own.MonthlyCredits
	account.TotalSpent = 0
	account.ResetDate = &next
	account.LastUpdated = now
	return account, nil
}

// deduct charges inside an existing transaction.
func (s *CreditService) deduct(ctx context.Context, tx dbx.DBTX, userID string, cost int64, reason string) (int64, error) {
	repo := s.repomanager.Credits(tx)
	balance, err := repo.Deduct(ctx, userID, cost, s.now())
	if errors.Is(err, credits.ErrNotCharged) {
		current, getErr := repo.Get(ctx, userID)
		if getErr != nil {
			if errors.Is(getErr, common.ErrorNotFound) {
				return 0, &common.InsufficientCreditsError{Required: cost}
			}
			return 0, getErr
		}
		return 0, &common.InsufficientCreditsError{Required: cost, Balance: current.Balance}
	}
	if err != nil {
		return 0, err
	}
	if err := s.record(ctx, tx, userID, models.TransactionSpend, cost, balance, reason); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *CreditService) record(ctx context.Context, tx dbx.DBTX, userID string, kind models.TransactionKind, amount, balance int64, reason string) error {
	return s.repomanager.Credits(tx).InsertTransaction(ctx, &models.CreditTransaction{
		ID:           s.newID(),
		UserID:       userID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balance,
		Reason:       reason,
		CreatedAt:    s.now().UTC(),
	})
}

func newAccount(userID string, cfg tiers.Config, now time.Time) *models.CreditAccount {
	a := &models.CreditAccount{
		UserID:      userID,
		Tier:        cfg.Name,
		Balance:     cfg.InitialCredits,
		TotalEarned: cfg.InitialCredits,
		LastUpdated: now.UTC(),
		CreatedAt:   now.UTC(),
	}
	if cfg.Unlimited {
		a.Balance = models.UnlimitedBalance
		a.TotalEarned = 0
	}
	if cfg.Replenishes() {
		next := nextReset(now)
		a.ResetDate = &next
	}
	return a
}

// nextReset is the first instant of the month after now, in UTC.
func nextReset(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// persistence wraps storage failures. Caller-facing errors pass through.
func persistence(op string, err error) error {
	if errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrInsufficientCredits) ||
		errors.Is(err, common.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", common.ErrPersistence, op, err)
}
