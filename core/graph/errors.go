package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrCancelled        = errors.New("cancelled")

	ErrNilEdgeStore = errors.New("nil edge store")
)

type InvalidArgumentError struct {
	Op  string
	Err error
}

func (err InvalidArgumentError) Error() string {
	if err.Op == "" {
		return fmt.Sprintf("invalid argument: %s", err.Err)
	}
	return fmt.Sprintf("invalid argument: %s: %s", err.Op, err.Err)
}

func (err InvalidArgumentError) Unwrap() error { return err.Err }

func (err InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

type NotFoundError struct {
	URN  URN
	Edge *EdgeKey
}

func (err NotFoundError) Error() string {
	if err.Edge != nil {
		return fmt.Sprintf("could not find edge (%s)-[%s]->(%s)", err.Edge.Source, err.Edge.Type, err.Edge.Destination)
	}
	if err.URN != "" {
		return fmt.Sprintf("could not find entity with urn = %s", err.URN)
	}
	return "could not find entity"
}

func (err NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StoreError reports a failure of the backing store for a single edge or
// node operation.
type StoreError struct {
	Op   string
	URN  URN
	Edge *EdgeKey
	Err  error
}

func (err *StoreError) Error() string {
	var s strings.Builder
	s.WriteString("store error: ")
	if err.Op != "" {
		s.WriteString(err.Op + ": ")
	}
	if err.Edge != nil {
		s.WriteString(fmt.Sprintf("edge (%s)-[%s]->(%s): ", err.Edge.Source, err.Edge.Type, err.Edge.Destination))
	} else if err.URN != "" {
		s.WriteString("urn '" + string(err.URN) + "': ")
	}
	if err.Err != nil {
		s.WriteString(err.Err.Error())
	} else {
		s.WriteString(ErrStoreUnavailable.Error())
	}
	return s.String()
}

func (err *StoreError) Unwrap() error { return err.Err }

func (err *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// RemoveNodeError lists the edges a node removal could not delete.
type RemoveNodeError struct {
	Node    URN
	Removed int
	Failed  []EdgeKey
	Err     error
}

func (err *RemoveNodeError) Error() string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("remove node '%s': removed %d edges", err.Node, err.Removed))
	if len(err.Failed) > 0 {
		s.WriteString(fmt.Sprintf(", failed to remove %d edges [", len(err.Failed)))
		for i, k := range err.Failed {
			if i > 0 {
				s.WriteString(", ")
			}
			s.WriteString(fmt.Sprintf("(%s)-[%s]->(%s)", k.Source, k.Type, k.Destination))
		}
		s.WriteString("]")
	}
	if err.Err != nil {
		s.WriteString(": " + err.Err.Error())
	}
	return s.String()
}

func (err *RemoveNodeError) Unwrap() error { return err.Err }

func (err *RemoveNodeError) Is(target error) bool { return target == ErrStoreUnavailable }

type CancelledError struct {
	Err error
}

func (err CancelledError) Error() string {
	if err.Err == nil {
		return ErrCancelled.Error()
	}
	return fmt.Sprintf("%s: %s", ErrCancelled, err.Err)
}

func (err CancelledError) Unwrap() error { return err.Err }

func (err CancelledError) Is(target error) bool { return target == ErrCancelled }

func invalidArgument(op string, err error) error {
	return InvalidArgumentError{Op: op, Err: err}
}

// translateStoreError maps an error returned by an EdgeStore or an
// EntityChecker onto the caller facing taxonomy.
func translateStoreError(ctx context.Context, op string, urn URN, edge *EdgeKey, err error) error {
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return CancelledError{Err: ctxErr}
	}

	switch {
	case errors.Is(err, ErrCancelled),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrStoreUnavailable):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CancelledError{Err: err}
	}

	return &StoreError{Op: op, URN: urn, Edge: edge, Err: err}
}
