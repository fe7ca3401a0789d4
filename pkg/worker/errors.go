package worker

import (
	"errors"
	"fmt"
)

var (
	ErrTypeExists  = errors.New("handler for given job type exists")
	ErrUnknownType = errors.New("job type is invalid")
	ErrJobExists   = errors.New("job with id exists")
	ErrNoJob       = errors.New("no job found")
)

// RetryableError marks a handler failure as transient. The job is retried
// only while it has attempts left.
type RetryableError struct {
	Cause error
}

func Retryable(cause error) error {
	if cause == nil {
		return nil
	}
	return &RetryableError{Cause: cause}
}

func (re *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %v", re.Cause)
}

func (re *RetryableError) Unwrap() error { return re.Cause }

func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
