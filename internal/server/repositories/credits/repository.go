package credits

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/server/models"
)

// ErrNotCharged is returned by Deduct when the conditional update matched no
// row: the account is missing or cannot cover the cost.
var ErrNotCharged = errors.New("credits: deduction not applied")

type Repository interface {
	Get(ctx context.Context, userID string) (*models.CreditAccount, error)
	// GetForUpdate reads the account and locks the row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, userID string) (*models.CreditAccount, error)
	Create(ctx context.Context, account *models.CreditAccount) (bool, error)
	Delete(ctx context.Context, userID string) error
	Deduct(ctx context.Context, userID string, cost int64, now time.Time) (int64, error)
	Add(ctx context.Context, userID string, amount int64, now time.Time) (int64, error)
	Replenish(ctx context.Context, userID string, balance int64, resetDate *time.Time, now time.Time) error
	InsertTransaction(ctx context.Context, tx *models.CreditTransaction) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error)
}
