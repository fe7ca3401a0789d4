package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/goto/lineage/core/graph"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
)

func TestCheckPostgresError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "UniqueViolation",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: "Key (id)=(1) already exists."},
			expected: errDuplicateKey,
		},
		{
			name:     "QueryCanceled",
			err:      &pgconn.PgError{Code: pgerrcode.QueryCanceled, Message: "canceling statement due to user request"},
			expected: context.Canceled,
		},
		{
			name:     "StringTooLong",
			err:      &pgconn.PgError{Code: pgerrcode.StringDataRightTruncationDataException, Message: "value too long"},
			expected: graph.ErrInvalidArgument,
		},
		{
			name:     "NotNullViolation",
			err:      &pgconn.PgError{Code: pgerrcode.NotNullViolation, Message: "null value in column"},
			expected: graph.ErrInvalidArgument,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, checkPostgresError(tc.err), tc.expected)
		})
	}

	t.Run("ConnectionFailureIsUnchanged", func(t *testing.T) {
		err := &pgconn.PgError{Code: pgerrcode.ConnectionFailure}
		assert.Same(t, err, checkPostgresError(err))

		plain := errors.New("broken pipe")
		assert.Same(t, plain, checkPostgresError(plain))
	})
}
