package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	beginErr error
	opts     []pgx.TxOptions
	txs      []*fakeTx
}

func (b *fakeBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	b.opts = append(b.opts, opts)
	tx := &fakeTx{}
	b.txs = append(b.txs, tx)
	return tx, nil
}

func TestWithTransaction_Commits(t *testing.T) {
	db := &fakeBeginner{}

	require.NoError(t, WithTransaction(context.Background(), db, func(pgx.Tx) error { return nil }))

	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].committed)
	assert.False(t, db.txs[0].rolledBack)
	assert.Equal(t, pgx.ReadCommitted, db.opts[0].IsoLevel)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := &fakeBeginner{}
	boom := errors.New("boom")

	err := WithTransaction(context.Background(), db, func(pgx.Tx) error { return boom })

	require.ErrorIs(t, err, boom)
	require.Len(t, db.txs, 1, "plain errors are not replayed")
	assert.True(t, db.txs[0].rolledBack)
}

func TestWithTransaction_BeginFailure(t *testing.T) {
	db := &fakeBeginner{beginErr: errors.New("no connection")}

	err := WithTransaction(context.Background(), db, func(pgx.Tx) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestWithTransaction_CommitFailure(t *testing.T) {
	db := &commitFailingBeginner{}

	err := WithTransaction(context.Background(), db, func(pgx.Tx) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit tx")
}

type commitFailingBeginner struct{}

func (commitFailingBeginner) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	return &fakeTx{commitErr: errors.New("connection reset")}, nil
}

func TestWithTxConfig_ReplaysSerializationFailures(t *testing.T) {
	db := &fakeBeginner{}
	calls := 0

	err := WithTxConfig(context.Background(), db, TxConfig{
		Options:  pgx.TxOptions{IsoLevel: pgx.Serializable},
		Attempts: 3,
	}, func(pgx.Tx) error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: codeSerializationFailure}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, db.txs, 3)
	assert.True(t, db.txs[2].committed)
	assert.Equal(t, pgx.Serializable, db.opts[0].IsoLevel)
}

func TestWithTxConfig_GivesUp(t *testing.T) {
	db := &fakeBeginner{}

	err := WithTxConfig(context.Background(), db, TxConfig{Attempts: 2}, func(pgx.Tx) error {
		return &pgconn.PgError{Code: codeDeadlockDetected}
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 2 attempts")
	assert.True(t, IsRetryable(err))
	assert.Len(t, db.txs, 2)
}

func TestWithTxConfig_ZeroAttemptsRunsOnce(t *testing.T) {
	db := &fakeBeginner{}

	err := WithTxConfig(context.Background(), db, TxConfig{}, func(pgx.Tx) error {
		return &pgconn.PgError{Code: codeSerializationFailure}
	})

	require.Error(t, err)
	assert.Len(t, db.txs, 1)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}
