package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlstateCodes maps the SQLSTATEs a comment import or search can raise.
// Anything else from postgres is ErrorCodeDB.
var sqlstateCodes = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,
	"23502": ErrorCodeValidation, // not_null_violation
	"23514": ErrorCodeValidation, // check_violation
	// a dangling job id or an over-long cell is bad input, not a server fault
	"23503": ErrorCodeInvalidArgument, // foreign_key_violation
	"22001": ErrorCodeInvalidArgument, // string_data_right_truncation
	"22P02": ErrorCodeInvalidArgument, // invalid_text_representation
	"25006": ErrorCodeUnavailable,     // read_only_sql_transaction, e.g. during failover
	"57P03": ErrorCodeUnavailable,     // cannot_connect_now
}

// retrySQLStates are contention or restart states where a row write can simply run again
var retrySQLStates = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57P03": true, // cannot_connect_now
}

// pgx reports some aborts only as text, e.g. on commit
var transientText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"could not obtain lock on row",
	"terminating connection due to administrator command",
}

// ExtractPgError finds the *pgconn.PgError at the root of err
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	ok := stderrs.As(Root(err), &pe)
	return pe, ok
}

// DBErrorCode classifies a postgres error; ok is false when err carries no PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	var pe *pgconn.PgError
	if !stderrs.As(err, &pe) {
		return ErrorCodeUnknown, false
	}
	if c, ok := sqlstateCodes[pe.Code]; ok {
		return c, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with its classified code and msg; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// IsRetryable reports whether a row write hit contention or a restarting server.
// Local cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe, ok := ExtractPgError(err); ok {
		return retrySQLStates[pe.Code]
	}
	msg := strings.ToLower(Root(err).Error())
	for _, frag := range transientText {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
