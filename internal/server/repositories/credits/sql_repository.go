package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/dbx"
	"github.com/dmitrijs2005/brandforge/internal/server/models"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, dbx.Postgres)
}

const selectAccount = `SELECT user_id, tier, balance, total_earned, total_spent, reset_date, last_updated, created_at
	FROM credit_accounts
	WHERE user_id = $1`

func (r *SQLRepository) Get(ctx context.Context, userID string) (*models.CreditAccount, error) {
	return r.get(ctx, r.dialect.Rebind(selectAccount), userID)
}

func (r *SQLRepository) GetForUpdate(ctx context.Context, userID string) (*models.CreditAccount, error) {
	return r.get(ctx, r.dialect.Rebind(selectAccount)+r.dialect.ForUpdate(), userID)
}

func (r *SQLRepository) get(ctx context.Context, query, userID string) (*models.CreditAccount, error) {
	var (
		a                    models.CreditAccount
		tier                 string
		reset, updated, made dbx.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&a.UserID, &tier, &a.Balance, &a.TotalEarned, &a.TotalSpent, &reset, &updated, &made)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	a.Tier = tiers.Name(tier)
	a.ResetDate = reset.Ptr()
	a.LastUpdated = updated.Time
	a.CreatedAt = made.Time
	return &a, nil
}

// Create inserts the account unless one already exists for the user and
// reports whether a row was written.
func (r *SQLRepository) Create(ctx context.Context, a *models.CreditAccount) (bool, error) {
	query := `INSERT INTO credit_accounts (user_id, tier, balance, total_earned, total_spent, reset_date, last_updated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		a.UserID, string(a.Tier), a.Balance, a.TotalEarned, a.TotalSpent,
		nullTime(a.ResetDate), a.LastUpdated.UTC(), a.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM credit_accounts WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Deduct checks and charges in one statement, so concurrent callers can never
// drive the balance below zero. Unlimited accounts only accumulate spend.
func (r *SQLRepository) Deduct(ctx context.Context, userID string, cost int64, now time.Time) (int64, error) {
	query := `UPDATE credit_accounts
		SET balance = CASE WHEN balance = -1 THEN -1 ELSE balance - $1 END,
			total_spent = total_spent + $2,
			last_updated = $3
		WHERE user_id = $4 AND (balance = -1 OR balance >= $5)
		RETURNING balance`

	var balance int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), cost, cost, now.UTC(), userID, cost).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotCharged
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

func (r *SQLRepository) Add(ctx context.Context, userID string, amount int64, now time.Time) (int64, error) {
	query := `UPDATE credit_accounts
		SET balance = CASE WHEN balance = -1 THEN -1 ELSE balance + $1 END,
			total_earned = CASE WHEN balance = -1 THEN total_earned ELSE total_earned + $2 END,
			last_updated = $3
		WHERE user_id = $4
		RETURNING balance`

	var balance int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), amount, amount, now.UTC(), userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

// Replenish overwrites the balance with a fresh monthly allotment and starts a
// new spending period.
func (r *SQLRepository) Replenish(ctx context.Context, userID string, balance int64, resetDate *time.Time, now time.Time) error {
	query := `UPDATE credit_accounts
		SET balance = $1,
			total_earned = total_earned + $2,
			total_spent = 0,
			reset_date = $3,
			last_updated = $4
		WHERE user_id = $5`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), balance, balance, nullTime(resetDate), now.UTC(), userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) InsertTransaction(ctx context.Context, t *models.CreditTransaction) error {
	query := `INSERT INTO credit_transactions (id, user_id, kind, amount, balance_after, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		t.ID, t.UserID, string(t.Kind), t.Amount, t.BalanceAfter, t.Reason, t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListTransactions returns the newest transactions first.
func (r *SQLRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	query := `SELECT id, user_id, kind, amount, balance_after, reason, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.CreditTransaction, 0)
	for rows.Next() {
		var (
			t       models.CreditTransaction
			kind    string
			created dbx.NullTime
		)
		if err := rows.Scan(&t.ID, &t.UserID, &kind, &t.Amount, &t.BalanceAfter, &t.Reason, &created); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		t.Kind = models.TransactionKind(kind)
		t.CreatedAt = created.Time
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
