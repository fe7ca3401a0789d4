package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/goto/lineage/core/graph"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

var (
	errNilDBClient       = errors.New("db client is nil")
	errNilPostgresClient = errors.New("postgres client is nil")
	errDuplicateKey      = errors.New("duplicate key")
)

// checkPostgresError classifies driver errors. Rejected values become
// invalid arguments so the mutation is not retried, cancellations keep
// their context error, and everything else is left for the caller to
// report as a store failure.
func checkPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == pgerrcode.UniqueViolation:
		return fmt.Errorf("%w [%s]", errDuplicateKey, pgErr.Detail)
	case pgErr.Code == pgerrcode.QueryCanceled:
		return fmt.Errorf("%w: %s", context.Canceled, pgErr.Message)
	case pgerrcode.IsDataException(pgErr.Code),
		pgErr.Code == pgerrcode.CheckViolation,
		pgErr.Code == pgerrcode.NotNullViolation:
		return graph.InvalidArgumentError{Op: "postgres", Err: pgErr}
	}
	return err
}
