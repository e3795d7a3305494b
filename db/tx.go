package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	postgresUniqueValueViolationErrorCode = "23505"
	postgresSerializationFailureErrorCode = "40001"
	postgresDeadlockDetectedErrorCode     = "40P01"

	maxTxRetryElapsedTime = 30 * time.Second
)

func UpdateInTx(
	ctx context.Context,
	db *sqlx.DB,
	isolation sql.IsolationLevel,
	fn func(ctx context.Context, tx *sqlx.Tx) error,
) (err error) {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				err = errors.Join(err, rollbackErr)
			}
			return
		}

		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

// RetryInTx runs fn in a transaction and restarts it when Postgres aborts it because of a
// conflicting concurrent transaction. Retries are bounded by ctx and maxTxRetryElapsedTime only,
// so every contender eventually sees the committed counter.
func RetryInTx(
	ctx context.Context,
	db *sqlx.DB,
	isolation sql.IsolationLevel,
	fn func(ctx context.Context, tx *sqlx.Tx) error,
) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Millisecond
	policy.MaxInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = maxTxRetryElapsedTime

	return backoff.Retry(
		func() error {
			err := UpdateInTx(ctx, db, isolation, fn)
			if err == nil || isConcurrentUpdateError(err) {
				return err
			}
			return backoff.Permanent(err)
		},
		backoff.WithContext(policy, ctx),
	)
}

func isConcurrentUpdateError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == postgresSerializationFailureErrorCode || pqErr.Code == postgresDeadlockDetectedErrorCode
}

func isErrorUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == postgresUniqueValueViolationErrorCode
}
