package dbx

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func ledgerDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE ledger (user_id TEXT PRIMARY KEY, balance INTEGER NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO ledger(user_id, balance) VALUES ('u1', 3)`)
	require.NoError(t, err)
	return db
}

func balance(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT balance FROM ledger WHERE user_id = 'u1'`).Scan(&n))
	return n
}

func spend(ctx context.Context, tx DBTX) error {
	_, err := tx.ExecContext(ctx, `UPDATE ledger SET balance = balance - 1 WHERE user_id = 'u1'`)
	return err
}

func TestWithTx(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(ctx context.Context, tx DBTX) error
		wantErr bool
		want    int
	}{
		{
			name: "commits",
			fn:   spend,
			want: 2,
		},
		{
			name: "rolls back on error",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := spend(ctx, tx); err != nil {
					return err
				}
				return errors.New("charge rejected")
			},
			wantErr: true,
			want:    3,
		},
		{
			name: "sees its own writes",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := spend(ctx, tx); err != nil {
					return err
				}
				var n int
				if err := tx.QueryRowContext(ctx, `SELECT balance FROM ledger WHERE user_id = 'u1'`).Scan(&n); err != nil {
					return err
				}
				if n != 2 {
					return errors.New("uncommitted write not visible")
				}
				return nil
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := ledgerDB(t)
			err := WithTx(context.Background(), db, nil, tt.fn)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, balance(t, db))
		})
	}
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := ledgerDB(t)

	assert.PanicsWithValue(t, "provider exploded", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, spend(ctx, tx))
			panic("provider exploded")
		})
	})
	assert.Equal(t, 3, balance(t, db))
}

func TestWithTx_BeginError(t *testing.T) {
	db := ledgerDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(context.Context, DBTX) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestWithTx_CommitError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE ledger`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	err = WithTx(context.Background(), db, nil, spend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}
