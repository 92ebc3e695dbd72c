package credits

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/server/models"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var accountColumns = []string{"user_id", "tier", "balance", "total_earned", "total_spent", "reset_date", "last_updated", "created_at"}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	reset := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(accountColumns).
		AddRow("u1", "professional", int64(48), int64(50), int64(2), reset, now, now)

	q := `(?s)^SELECT\s+user_id,.*FROM\s+credit_accounts\s+WHERE\s+user_id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, tiers.Professional, got.Tier)
	assert.Equal(t, int64(48), got.Balance)
	require.NotNil(t, got.ResetDate)
	assert.True(t, got.ResetDate.Equal(reset))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(accountColumns).
		AddRow("u1", "basic", int64(3), int64(3), int64(0), nil, now, now)

	q := `(?s)^SELECT\s+user_id,.*WHERE\s+user_id\s*=\s*\$1\s+FOR\s+UPDATE$`
	mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(rows)

	got, err := repo.GetForUpdate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, got.ResetDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+user_id`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+user_id`).WithArgs("u1").WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)^INSERT\s+INTO\s+credit_accounts\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8\)\s+ON\s+CONFLICT\s+\(user_id\)\s+DO\s+NOTHING$`
	mock.ExpectExec(q).
		WithArgs("u1", "basic", int64(3), int64(3), int64(0), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), &models.CreditAccount{
		UserID: "u1", Tier: tiers.Basic, Balance: 3, TotalEarned: 3, LastUpdated: now, CreatedAt: now,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeduct_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+credit_accounts\s+SET\s+balance\s*=\s*CASE.*WHERE\s+user_id\s*=\s*\$4\s+AND\s+\(balance\s*=\s*-1\s+OR\s+balance\s*>=\s*\$5\)\s+RETURNING\s+balance$`
	mock.ExpectQuery(q).
		WithArgs(int64(2), int64(2), sqlmock.AnyArg(), "u1", int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(48)))

	got, err := repo.Deduct(context.Background(), "u1", 2, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(48), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeduct_NotCharged(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^UPDATE\s+credit_accounts`).
		WithArgs(int64(5), int64(5), sqlmock.AnyArg(), "u1", int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Deduct(context.Background(), "u1", 5, time.Now())
	assert.ErrorIs(t, err, ErrNotCharged)
}

func TestAdd_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^UPDATE\s+credit_accounts`).
		WithArgs(int64(10), int64(10), sqlmock.AnyArg(), "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Add(context.Background(), "ghost", 10, time.Now())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestReplenish_NoRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	reset := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	q := `(?s)^UPDATE\s+credit_accounts\s+SET\s+balance\s*=\s*\$1,.*total_spent\s*=\s*0,.*WHERE\s+user_id\s*=\s*\$5$`
	mock.ExpectExec(q).
		WithArgs(int64(50), int64(50), reset, sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Replenish(context.Background(), "ghost", 50, &reset, time.Now())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListTransactions(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "kind", "amount", "balance_after", "reason", "created_at"}).
		AddRow("t2", "u1", "SPEND", int64(1), int64(2), "generation", at).
		AddRow("t1", "u1", "RESET", int64(3), int64(3), "account created", at.Add(-time.Hour))

	q := `(?s)^SELECT\s+id,.*FROM\s+credit_transactions\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC.*LIMIT\s+\$2$`
	mock.ExpectQuery(q).WithArgs("u1", 20).WillReturnRows(rows)

	got, err := repo.ListTransactions(context.Background(), "u1", 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.TransactionSpend, got[0].Kind)
	assert.Equal(t, models.TransactionReset, got[1].Kind)
	assert.True(t, got[0].CreatedAt.Equal(at))
}

func TestListTransactions_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "user_id", "kind", "amount", "balance_after", "reason", "created_at"}).
		AddRow("t1", "u1", "SPEND", "not-a-number", int64(2), "", time.Now())
	mock.ExpectQuery(`(?s)^SELECT\s+id,`).WithArgs("u1", 5).WillReturnRows(rows)

	_, err := repo.ListTransactions(context.Background(), "u1", 5)
	if err == nil || !regexp.MustCompile(`^db error: `).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
