package workermanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goto/lineage/core/graph"
	"github.com/goto/lineage/core/validator"
	"github.com/goto/lineage/pkg/worker"
)

const (
	jobUpsertEdge = "upsert-edge"
	jobRemoveEdge = "remove-edge"
	jobRemoveNode = "remove-node"
)

// MutationQueue accepts graph mutations for later application.
type MutationQueue interface {
	EnqueueUpsertEdgeJob(ctx context.Context, edge graph.Edge) error
	EnqueueRemoveEdgeJob(ctx context.Context, key graph.EdgeKey) error
	EnqueueRemoveNodeJob(ctx context.Context, node graph.URN, filter graph.RelationshipFilter) error
	Close() error
}

type RemoveNodePayload struct {
	URN    graph.URN                `json:"urn" validate:"required"`
	Filter graph.RelationshipFilter `json:"filter"`
}

func (p RemoveNodePayload) validate() error {
	if err := validator.ValidateStruct(p); err != nil {
		return err
	}
	if len(p.Filter.Types) == 0 {
		return errors.New("relationship types cannot be empty")
	}
	return nil
}

func (m *Manager) EnqueueUpsertEdgeJob(ctx context.Context, edge graph.Edge) error {
	if err := validator.ValidateStruct(edge); err != nil {
		return graph.InvalidArgumentError{Op: "enqueue upsert edge job", Err: err}
	}
	return m.enqueue(ctx, jobUpsertEdge, edge)
}

func (m *Manager) EnqueueRemoveEdgeJob(ctx context.Context, key graph.EdgeKey) error {
	if err := validator.ValidateStruct(key); err != nil {
		return graph.InvalidArgumentError{Op: "enqueue remove edge job", Err: err}
	}
	return m.enqueue(ctx, jobRemoveEdge, key)
}

func (m *Manager) EnqueueRemoveNodeJob(ctx context.Context, node graph.URN, filter graph.RelationshipFilter) error {
	payload := RemoveNodePayload{URN: node, Filter: filter}
	if err := payload.validate(); err != nil {
		return graph.InvalidArgumentError{Op: "enqueue remove node job", Err: err}
	}
	return m.enqueue(ctx, jobRemoveNode, payload)
}

func (m *Manager) enqueue(ctx context.Context, typ string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("enqueue %s job: marshal payload: %w", typ, err)
	}

	if err := m.worker.Enqueue(ctx, worker.JobSpec{Type: typ, Payload: data}); err != nil {
		return fmt.Errorf("enqueue %s job: %w", typ, err)
	}
	return nil
}

func (m *Manager) ApplyUpsertEdge(ctx context.Context, job worker.JobSpec) error {
	var edge graph.Edge
	if err := json.Unmarshal(job.Payload, &edge); err != nil {
		return fmt.Errorf("apply upsert edge: decode payload: %w", err)
	}

	if err := m.graph.UpsertEdge(ctx, edge); err != nil {
		return retryUnlessInvalid(fmt.Errorf("apply upsert edge: %w", err))
	}
	return nil
}

func (m *Manager) ApplyRemoveEdge(ctx context.Context, job worker.JobSpec) error {
	var key graph.EdgeKey
	if err := json.Unmarshal(job.Payload, &key); err != nil {
		return fmt.Errorf("apply remove edge: decode payload: %w", err)
	}

	if err := m.graph.RemoveEdge(ctx, key); err != nil {
		return retryUnlessInvalid(fmt.Errorf("apply remove edge: %w", err))
	}
	return nil
}

func (m *Manager) ApplyRemoveNode(ctx context.Context, job worker.JobSpec) error {
	var payload RemoveNodePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("apply remove node: decode payload: %w", err)
	}

	removed, err := m.graph.RemoveEdgesFromNode(ctx, payload.URN, payload.Filter)
	if err != nil {
		return retryUnlessInvalid(fmt.Errorf("apply remove node: %w", err))
	}

	m.logger.Debug("removed edges from node", "urn", payload.URN, "removed", removed)
	return nil
}

// retryUnlessInvalid retries everything except rejected input, which can
// never succeed.
func retryUnlessInvalid(err error) error {
	if errors.Is(err, graph.ErrInvalidArgument) {
		return err
	}
	return worker.Retryable(err)
}
