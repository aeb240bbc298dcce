package tx

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "accredis/pkg/domain-errors"
)

func TestSQLRunner_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewSQLRunner(db).RunInTx(context.Background(), func(txCtx context.Context) error {
		_, ok := From(txCtx)
		require.True(t, ok)
		_, err := Or(txCtx, db).ExecContext(txCtx, "UPDATE documents SET title = $1", "x")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRunner_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = NewSQLRunner(db).RunInTx(context.Background(), func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRunner_NestedJoinsOuter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	runner := NewSQLRunner(db)
	err = runner.RunInTx(context.Background(), func(outer context.Context) error {
		return runner.RunInTx(outer, func(inner context.Context) error {
			o, _ := From(outer)
			i, _ := From(inner)
			assert.Same(t, o, i)
			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewMemoryRunner().RunInTx(ctx, func(context.Context) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}
