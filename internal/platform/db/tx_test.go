package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	txs      []*fakeTx
	beginErr error
}

func (b *fakeBeginner) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	tx := &fakeTx{}
	b.txs = append(b.txs, tx)
	return tx, nil
}

func pgErr(code string) error {
	return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
}

func TestWithTxCommits(t *testing.T) {
	b := &fakeBeginner{}
	require.NoError(t, WithTx(context.Background(), b, func(pgx.Tx) error { return nil }))
	require.Len(t, b.txs, 1)
	assert.True(t, b.txs[0].committed)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	b := &fakeBeginner{}
	boom := errors.New("boom")
	err := WithTx(context.Background(), b, func(pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	require.Len(t, b.txs, 1)
	assert.False(t, b.txs[0].committed)
	assert.True(t, b.txs[0].rolledBack)
}

func TestWithTxRetriesSerializationFailures(t *testing.T) {
	b := &fakeBeginner{}
	calls := 0
	err := WithTx(context.Background(), b, func(pgx.Tx) error {
		calls++
		if calls < 3 {
			return pgErr(codeSerializationFailure)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, b.txs[2].committed)

	calls = 0
	err = WithTx(context.Background(), &fakeBeginner{}, func(pgx.Tx) error {
		calls++
		return pgErr(codeDeadlockDetected)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
	assert.Equal(t, txAttempts, calls)
}

func TestWithTxStopsRetryingWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()
	calls := 0
	err := WithTx(ctx, &fakeBeginner{}, func(pgx.Tx) error {
		calls++
		return pgErr(codeSerializationFailure)
	})
	require.True(t, IsRetryable(err))
	assert.Equal(t, 1, calls)
}

func TestWithTxBeginError(t *testing.T) {
	err := WithTx(context.Background(), &fakeBeginner{beginErr: errors.New("no conn")}, func(pgx.Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsUniqueViolation(pgErr(codeUniqueViolation)))
	assert.False(t, IsUniqueViolation(pgErr(codeSerializationFailure)))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestConfigAppliesOptions(t *testing.T) {
	cfg, err := Config("postgres://u:p@localhost:5432/ledger", PoolOptions{
		MaxConns:          8,
		MinConns:          2,
		MaxConnIdleTime:   time.Minute,
		HealthCheckPeriod: 30 * time.Second,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 8, cfg.MaxConns)
	assert.EqualValues(t, 2, cfg.MinConns)
	assert.Equal(t, time.Minute, cfg.MaxConnIdleTime)
	assert.Equal(t, 30*time.Second, cfg.HealthCheckPeriod)
	assert.Equal(t, "mycoledger", cfg.ConnConfig.RuntimeParams["application_name"])

	_, err = Config("::not a dsn", PoolOptions{})
	require.Error(t, err)
}
