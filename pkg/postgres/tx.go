package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes that mean the transaction lost a race and may be replayed.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// DefaultTxAttempts bounds replays of a transaction that hit a conflict.
const DefaultTxAttempts = 3

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so read helpers can
// run inside or outside a transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TxBeginner opens transactions. *pgxpool.Pool and *pgx.Conn implement it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxConfig tunes WithTxConfig.
type TxConfig struct {
	Options pgx.TxOptions
	// Attempts caps how often fn runs when Postgres reports a serialization
	// failure or deadlock. Values below 1 mean a single attempt.
	Attempts int
}

// WithTransaction runs fn in a read-committed transaction, replaying it up
// to DefaultTxAttempts times on a retryable conflict.
func WithTransaction(ctx context.Context, db TxBeginner, fn func(tx pgx.Tx) error) error {
	return WithTxConfig(ctx, db, TxConfig{
		Options:  pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
		Attempts: DefaultTxAttempts,
	}, fn)
}

// WithTxConfig runs fn in a transaction opened with cfg.Options. fn must be
// safe to replay; it commits on nil and rolls back on error.
func WithTxConfig(ctx context.Context, db TxBeginner, cfg TxConfig, fn func(tx pgx.Tx) error) error {
	attempts := max(cfg.Attempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = runTx(ctx, db, cfg.Options, fn)
		if err == nil || !IsRetryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("postgres: giving up after %d attempts: %w", attempts, err)
}

func runTx(ctx context.Context, db TxBeginner, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("postgres: rollback tx: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

// IsRetryable reports whether err carries a serialization failure or a
// deadlock from the server.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}
